package server

import (
	"context"
	"time"

	"github.com/teemow/handoff/internal/logging"
)

// Scheduler runs calendar scans at a fixed interval.
type Scheduler struct {
	sc         *ServerContext
	interval   time.Duration
	calendarID string
}

// NewScheduler creates a Scheduler scanning calendarID (the workflow's
// default when empty) every interval.
func NewScheduler(sc *ServerContext, interval time.Duration, calendarID string) *Scheduler {
	return &Scheduler{sc: sc, interval: interval, calendarID: calendarID}
}

// Run scans once immediately and then on every tick until ctx is done.
// Scan failures are logged; the schedule keeps running.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.scanOnce(ctx)
	for {
		select {
		case <-ticker.C:
			s.scanOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) scanOnce(ctx context.Context) {
	logger := logging.WithOperation(s.sc.Logger(), "scheduled_scan")

	report, err := s.sc.RunScan(ctx, s.calendarID, s.sc.DefaultWindow())
	if err != nil {
		logger.Error("Scheduled scan failed", logging.Status(logging.StatusError), logging.Err(err))
		return
	}
	logger.Info("Scheduled scan finished", logging.Status(logging.StatusSuccess), "summary", report.Summary())
}
