package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aluiziolira/go-price-bulletin/models"
)

type countingWarmer struct {
	calls    int64
	err      error
	deadline bool
}

func (w *countingWarmer) Today() time.Time {
	return time.Date(2025, 11, 20, 0, 0, 0, 0, time.Local)
}

func (w *countingWarmer) FetchDay(ctx context.Context, day time.Time) (*models.DayBulletin, error) {
	atomic.AddInt64(&w.calls, 1)
	if _, ok := ctx.Deadline(); ok {
		w.deadline = true
	}
	if w.err != nil {
		return nil, w.err
	}
	return &models.DayBulletin{Date: day.Format("2006-01-02"), TotalProducts: 3}, nil
}

func TestNewRejectsInvalidSchedule(t *testing.T) {
	if _, err := New("not a cron", &countingWarmer{}, time.Second); err == nil {
		t.Fatalf("expected invalid schedule error")
	}
}

func TestRunOnce(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "success"},
		{name: "failure is recorded", err: errors.New("upstream down"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warmer := &countingWarmer{err: tt.err}
			s, err := New("30 7 * * *", warmer, time.Second)
			if err != nil {
				t.Fatalf("new: %v", err)
			}

			s.RunOnce(context.Background())

			if warmer.calls != 1 {
				t.Fatalf("calls = %d, want 1", warmer.calls)
			}
			if !warmer.deadline {
				t.Fatalf("expected run to be bounded by a deadline")
			}
			last, lastErr := s.LastRun()
			if last.IsZero() {
				t.Fatalf("expected last run time")
			}
			if (lastErr != nil) != tt.wantErr {
				t.Fatalf("last error = %v, wantErr %v", lastErr, tt.wantErr)
			}
		})
	}
}

func TestStartSchedulesNextRun(t *testing.T) {
	s, err := New("30 7 * * *", &countingWarmer{}, time.Second)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.Start()
	defer s.Stop(context.Background())

	next := s.Next()
	if next.IsZero() {
		t.Fatalf("expected next run after start")
	}
	if next.Hour() != 7 || next.Minute() != 30 {
		t.Fatalf("next run = %v, want 07:30", next)
	}
}
