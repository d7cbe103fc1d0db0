// Package historian drains decided matches from the queue the server pushes
// them on and persists them in batches.
package historian

import (
	"context"
	"time"

	"github.com/jason-s-yu/kingcourt/internal/models"
	"github.com/sirupsen/logrus"
)

// Source yields queued match results. Pop returns nil, nil when nothing
// arrived within timeout.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*models.MatchResult, error)
}

// Writer persists one batch atomically.
type Writer func(ctx context.Context, batch []models.MatchResult) error

// Service accumulates results and flushes them when the batch is full or the
// flush delay elapses.
type Service struct {
	Source     Source
	Write      Writer
	Log        logrus.FieldLogger
	BatchSize  int
	FlushDelay time.Duration
	PopTimeout time.Duration

	batch []models.MatchResult
}

const (
	defaultBatchSize  = 20
	defaultFlushDelay = 500 * time.Millisecond
	defaultPopTimeout = 3 * time.Second
)

// NewService returns a service with the default batch size and timings.
func NewService(src Source, write Writer, logger logrus.FieldLogger) *Service {
	return &Service{
		Source:     src,
		Write:      write,
		Log:        logger,
		BatchSize:  defaultBatchSize,
		FlushDelay: defaultFlushDelay,
		PopTimeout: defaultPopTimeout,
	}
}

// normalize replaces non-positive settings with the defaults.
func (s *Service) normalize() {
	if s.BatchSize <= 0 {
		s.Log.Warnf("batch size %d is not positive, using %d", s.BatchSize, defaultBatchSize)
		s.BatchSize = defaultBatchSize
	}
	if s.FlushDelay <= 0 {
		s.Log.Warnf("flush delay %s is not positive, using %s", s.FlushDelay, defaultFlushDelay)
		s.FlushDelay = defaultFlushDelay
	}
	if s.PopTimeout <= 0 {
		s.PopTimeout = defaultPopTimeout
	}
}

// Run consumes the source until ctx is cancelled, then flushes what is left.
func (s *Service) Run(ctx context.Context) {
	s.normalize()
	ticker := time.NewTicker(s.FlushDelay)
	defer ticker.Stop()

	s.Log.Info("historian started")
	for {
		select {
		case <-ctx.Done():
			// The run context is gone; give the final flush its own deadline.
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.flush(flushCtx)
			cancel()
			s.Log.Info("historian stopped")
			return

		case <-ticker.C:
			s.flush(ctx)

		default:
			res, err := s.Source.Pop(ctx, s.PopTimeout)
			if err != nil {
				if ctx.Err() == nil {
					s.Log.Errorf("pop: %v", err)
				}
				continue
			}
			if res == nil {
				continue
			}
			s.batch = append(s.batch, *res)
			if len(s.batch) >= s.BatchSize {
				s.flush(ctx)
			}
		}
	}
}

// flush writes the pending batch. A failed batch is kept and retried on the
// next flush.
func (s *Service) flush(ctx context.Context) {
	if len(s.batch) == 0 {
		return
	}
	if err := s.Write(ctx, s.batch); err != nil {
		s.Log.WithField("pending", len(s.batch)).Errorf("flush: %v", err)
		return
	}
	s.Log.Debugf("flushed %d match results", len(s.batch))
	s.batch = s.batch[:0]
}
