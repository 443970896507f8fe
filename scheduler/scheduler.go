// Package scheduler periodically fetches today's bulletin so the service
// cache is warm before clients ask for it.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aluiziolira/go-price-bulletin/models"
	"github.com/robfig/cron/v3"
)

// Warmer fetches a day through the cached service.
type Warmer interface {
	Today() time.Time
	FetchDay(ctx context.Context, day time.Time) (*models.DayBulletin, error)
}

// Scheduler runs the warm-up job on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	warmer  Warmer
	timeout time.Duration
	entry   cron.EntryID

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// New registers the warm-up job for spec, a standard five-field cron
// expression. Each run is bounded by timeout.
func New(spec string, warmer Warmer, timeout time.Duration) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		warmer:  warmer,
		timeout: timeout,
	}

	entry, err := s.cron.AddFunc(spec, func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("invalid warm-up schedule %q: %w", spec, err)
	}
	s.entry = entry
	return s, nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("warm-up scheduler started", slog.Time("next_run", s.Next()))
}

// Stop halts the cron loop and waits for a running job to finish or ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("warm-up job still running at shutdown")
	}
}

// Next reports the next scheduled run, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// RunOnce fetches today's bulletin. Failures are logged and kept for
// LastRun; they never stop the schedule.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	day := s.warmer.Today()
	result, err := s.warmer.FetchDay(ctx, day)

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		slog.Warn("warm-up failed",
			slog.String("date", day.Format("2006-01-02")),
			slog.Any("error", err),
		)
		return
	}
	slog.Info("warm-up complete",
		slog.String("date", result.Date),
		slog.Int("products", result.TotalProducts),
	)
}

// LastRun returns the time and error of the most recent run.
func (s *Scheduler) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}
