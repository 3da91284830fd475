package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DrawdownSentinel/internal/model"
	"DrawdownSentinel/internal/recorder"
	"DrawdownSentinel/internal/strategy"
)

// scriptedBoard returns the queued boards in order, repeating the last.
type scriptedBoard struct {
	mu     sync.Mutex
	boards []*model.Board
	latest *model.Board
	calls  int
}

func (b *scriptedBoard) Refresh(context.Context) *model.Board {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.calls
	if i >= len(b.boards) {
		i = len(b.boards) - 1
	}
	b.calls++
	b.latest = b.boards[i]
	return b.latest
}

func (b *scriptedBoard) Latest() *model.Board {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest
}

func (b *scriptedBoard) Thresholds() strategy.Thresholds { return strategy.DefaultThresholds() }

func (b *scriptedBoard) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (c *captureNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	return nil
}

func (c *captureNotifier) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

func sheet(symbol string, status model.Status, dd float64) model.FactSheet {
	_, label := strategy.Classify(dd, strategy.DefaultThresholds())
	return model.FactSheet{
		Symbol:      symbol,
		Price:       model.Float(100 * (1 - dd)),
		PriceSource: model.SourceRealtime,
		Drawdown:    model.Float(dd),
		Status:      status,
		StatusLabel: label,
	}
}

func newBoards(sheets ...[]model.FactSheet) *scriptedBoard {
	b := &scriptedBoard{}
	for i, s := range sheets {
		b.boards = append(b.boards, &model.Board{Seq: uint64(i + 1), Sheets: s})
	}
	return b
}

func TestRunNow_AlertsOnlyConfiguredTransitions(t *testing.T) {
	b := newBoards(
		[]model.FactSheet{sheet("QQQ", model.StatusGood, 0.04), sheet("SMH", model.StatusWatch, 0.01)},
		[]model.FactSheet{sheet("QQQ", model.StatusBuy, 0.05), sheet("SMH", model.StatusWait, 0.02)},
	)
	n := &captureNotifier{}
	s := NewScheduler(context.Background(), b, n, recorder.NewMemoryRecorder(10), []model.Status{model.StatusBuy}, nil)

	assert.Empty(t, s.RunNow())
	assert.Empty(t, n.Sent())

	transitions := s.RunNow()
	require.Len(t, transitions, 2)
	sent := n.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "<b>QQQ</b>: good → 触发买入区间（≥4.5%）")
	assert.NotContains(t, sent[0], "SMH")
}

func TestRunNow_NilNotifier(t *testing.T) {
	b := newBoards(
		[]model.FactSheet{sheet("QQQ", model.StatusGood, 0.04)},
		[]model.FactSheet{sheet("QQQ", model.StatusBuy, 0.05)},
	)
	s := NewScheduler(context.Background(), b, nil, recorder.NewMemoryRecorder(10), []model.Status{model.StatusBuy}, nil)
	s.RunNow()
	assert.Len(t, s.RunNow(), 1)
}

func TestHandleCommand(t *testing.T) {
	b := newBoards([]model.FactSheet{sheet("QQQ", model.StatusPrep, 0.031), sheet("VGT", model.StatusWatch, 0)})
	s := NewScheduler(context.Background(), b, nil, nil, nil, nil)

	assert.Contains(t, s.HandleCommand("/status"), "尚无数据")

	s.RunNow()
	status := s.HandleCommand("/status")
	assert.Contains(t, status, "QQQ")
	assert.Contains(t, status, "VGT")

	assert.Contains(t, s.HandleCommand("/symbol qqq"), "准备进场（≥3.0%）")
	assert.Contains(t, s.HandleCommand("/symbol SPY"), "未跟踪的标的: SPY")
	assert.Contains(t, s.HandleCommand("/symbol <b>"), "未跟踪的标的: &lt;B&gt;")
	assert.Contains(t, s.HandleCommand("/symbol vgt"), "观望（&lt;2.0%）")
	assert.Contains(t, s.HandleCommand("/symbol"), "用法")
	assert.Contains(t, s.HandleCommand("/help"), "/status")
	assert.Contains(t, s.HandleCommand(""), "/status")
}

func TestRegister_RejectsNonPositive(t *testing.T) {
	s := NewScheduler(context.Background(), newBoards(nil), nil, nil, nil, nil)
	assert.Error(t, s.Register(0))
	require.NoError(t, s.Register(10*time.Second))
	assert.Len(t, s.Cron.Entries(), 1)
}

func TestStart_TicksOnInterval(t *testing.T) {
	b := newBoards([]model.FactSheet{sheet("QQQ", model.StatusWatch, 0)})
	s := NewScheduler(context.Background(), b, nil, nil, nil, nil)
	require.NoError(t, s.Register(time.Second))

	s.Start()
	defer s.Stop()
	assert.Eventually(t, func() bool { return b.Calls() >= 1 }, 3*time.Second, 50*time.Millisecond)
}
