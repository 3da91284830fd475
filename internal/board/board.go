// Package board runs refresh cycles over the configured instruments.
package board

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"DrawdownSentinel/internal/common"
	"DrawdownSentinel/internal/model"
	"DrawdownSentinel/internal/strategy"
)

// Snapshotter supplies one raw snapshot per instrument.
type Snapshotter interface {
	Snapshot(ctx context.Context, symbol string) *model.Snapshot
}

// Service builds boards and keeps the newest completed one.
type Service struct {
	source      Snapshotter
	instruments []string
	thresholds  strategy.Thresholds
	logger      *common.Logger
	now         func() time.Time

	seq    atomic.Uint64
	mu     sync.RWMutex
	latest *model.Board
}

// NewService creates a board service over instruments, in display order.
func NewService(source Snapshotter, instruments []string, thresholds strategy.Thresholds, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		source:      source,
		instruments: append([]string(nil), instruments...),
		thresholds:  thresholds,
		logger:      logger,
		now:         time.Now,
	}
}

// Instruments returns the configured symbols.
func (s *Service) Instruments() []string {
	return append([]string(nil), s.instruments...)
}

// Thresholds returns the classifier thresholds in use.
func (s *Service) Thresholds() strategy.Thresholds {
	return s.thresholds
}

// Refresh runs one cycle. Instruments resolve concurrently; one
// instrument's provider trouble only degrades its own sheet. The board is
// published unless a newer cycle finished first, and returned either way.
func (s *Service) Refresh(ctx context.Context) *model.Board {
	seq := s.seq.Add(1)
	start := s.now()

	sheets := make([]model.FactSheet, len(s.instruments))
	g, gctx := errgroup.WithContext(ctx)
	for i, symbol := range s.instruments {
		g.Go(func() error {
			snap := s.source.Snapshot(gctx, symbol)
			sheets[i] = strategy.Assemble(snap, s.thresholds)
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	b := &model.Board{
		CycleID:     uuid.NewString(),
		Seq:         seq,
		GeneratedAt: s.now(),
		Session:     Session(start),
		BeijingTime: beijingClock(start),
		LocalTime:   losAngelesClock(start),
		Sheets:      sheets,
	}

	if !s.publish(b) {
		s.logger.Debug().Uint64("seq", seq).Msg("stale cycle dropped")
	}
	s.logger.Info().
		Str("cycle", b.CycleID).
		Uint64("seq", seq).
		Str("session", string(b.Session)).
		Dur("took", s.now().Sub(start)).
		Msg("board refreshed")
	return b
}

func (s *Service) publish(b *model.Board) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest != nil && s.latest.Seq > b.Seq {
		return false
	}
	s.latest = b
	return true
}

// Latest returns the newest published board, or nil before the first cycle.
func (s *Service) Latest() *model.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
