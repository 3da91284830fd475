package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"DrawdownSentinel/internal/common"
	"DrawdownSentinel/internal/model"
	"DrawdownSentinel/internal/notifier"
	"DrawdownSentinel/internal/recorder"
	"DrawdownSentinel/internal/strategy"
)

// Refresher produces boards. Implemented by board.Service.
type Refresher interface {
	Refresh(ctx context.Context) *model.Board
	Latest() *model.Board
	Thresholds() strategy.Thresholds
}

// Scheduler drives the refresh cycle and turns transitions into alerts.
type Scheduler struct {
	Cron     *cron.Cron
	Board    Refresher
	Notifier notifier.Notifier // nil disables alerts
	Recorder recorder.Recorder
	Logger   *common.Logger
	Ctx      context.Context

	alertOn map[model.Status]bool
	labels  map[model.Status]string
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, b Refresher, n notifier.Notifier, rec recorder.Recorder, alertStatuses []model.Status, logger *common.Logger) *Scheduler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	alertOn := make(map[model.Status]bool, len(alertStatuses))
	for _, st := range alertStatuses {
		alertOn[st] = true
	}
	labels := make(map[model.Status]string)
	for _, tier := range b.Thresholds().Tiers() {
		labels[tier.Status] = tier.Label
	}
	cl := cronLogger{logger}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		Board:    b,
		Notifier: n,
		Recorder: rec,
		Logger:   logger,
		Ctx:      ctx,
		alertOn:  alertOn,
		labels:   labels,
	}
}

// Register schedules the refresh tick every interval.
func (s *Scheduler) Register(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("register refresh task: interval must be positive, got %s", interval)
	}
	if _, err := s.Cron.AddFunc("@every "+interval.String(), func() { s.refresh() }); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info().Int("tasks", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running tick.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info().Msg("scheduler stopped")
}

// RunNow executes one refresh cycle immediately and returns its transitions.
func (s *Scheduler) RunNow() []model.Transition {
	return s.refresh()
}

func (s *Scheduler) refresh() []model.Transition {
	b := s.Board.Refresh(s.Ctx)
	transitions := s.Recorder.RecordCycle(b)
	for _, tr := range transitions {
		s.Logger.Info().
			Str("symbol", tr.Symbol).
			Str("from", string(tr.From)).
			Str("to", string(tr.To)).
			Float64("drawdown", tr.Drawdown).
			Msg("status changed")
	}

	alerts := s.alerts(transitions)
	if len(alerts) > 0 {
		s.trySend(notifier.FormatTransitions(alerts, s.labels))
	}
	return transitions
}

func (s *Scheduler) alerts(transitions []model.Transition) []model.Transition {
	var out []model.Transition
	for _, tr := range transitions {
		if s.alertOn[tr.To] {
			out = append(out, tr)
		}
	}
	return out
}

const helpText = "可用命令:\n• /status 查看全部标的\n• /symbol QQQ 查看单个标的\n• /help 帮助"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch fields[0] {
	case "/status", "查看状态":
		return notifier.FormatBoard(s.Board.Latest())
	case "/symbol":
		if len(fields) < 2 {
			return "用法: /symbol QQQ"
		}
		b := s.Board.Latest()
		if b == nil {
			return notifier.FormatBoard(nil)
		}
		sym := strings.ToUpper(fields[1])
		sheet, ok := b.Sheet(sym)
		if !ok {
			return notifier.FormatUnknownSymbol(sym)
		}
		return notifier.FormatSheet(sheet)
	default:
		return helpText
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Logger.Error().Err(err).Msg("send notification")
	}
}

// cronLogger routes cron's own messages through zerolog.
type cronLogger struct{ l *common.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg("cron " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg("cron " + msg)
}
