package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"stackedwins/logger"
)

// SchedulerService runs background maintenance jobs.
type SchedulerService interface {
	Start() error
	Stop()
	// RefreshMetrics runs the metrics refresh job once.
	RefreshMetrics(ctx context.Context)
}

type schedulerService struct {
	metrics  MetricsService
	interval time.Duration
	sched    *gocron.Scheduler
	log      *logger.Logger
}

// NewSchedulerService creates a scheduler that refreshes every user's
// progress metrics each interval.
func NewSchedulerService(metrics MetricsService, interval time.Duration, loc *time.Location, log *logger.Logger) SchedulerService {
	if loc == nil {
		loc = time.Local
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &schedulerService{
		metrics:  metrics,
		interval: interval,
		sched:    gocron.NewScheduler(loc),
		log:      orNop(log).Component("SchedulerService"),
	}
}

func (s *schedulerService) Start() error {
	_, err := s.sched.Every(s.interval).
		WaitForSchedule().
		SingletonMode().
		Do(func() { s.RefreshMetrics(context.Background()) })
	if err != nil {
		return fmt.Errorf("schedule metrics refresh: %w", err)
	}
	s.sched.StartAsync()
	s.log.Info("Scheduler started", "metrics_refresh_interval", s.interval.String())
	return nil
}

func (s *schedulerService) Stop() {
	s.sched.Stop()
	s.log.Info("Scheduler stopped")
}

func (s *schedulerService) RefreshMetrics(ctx context.Context) {
	started := time.Now()
	n, err := s.metrics.RecomputeAll(ctx)
	if err != nil {
		s.log.Error("Scheduled metrics refresh failed", "refreshed", n, "error", err)
		return
	}
	s.log.Info("Scheduled metrics refresh finished", "refreshed", n, "duration", time.Since(started).String())
}
