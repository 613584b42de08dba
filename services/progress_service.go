package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"stackedwins/logger"
	"stackedwins/models"
	"stackedwins/repository"
)

const (
	dashboardRecentCheckIns = 5
	moodTrendWindow         = 30 * 24 * time.Hour
)

// MoodPoint is one day on the dashboard trend line.
type MoodPoint struct {
	Date   time.Time `json:"date"`
	Energy int       `json:"energy"`
	Stress int       `json:"stress"`
}

// Dashboard is everything the progress screen shows in one response.
type Dashboard struct {
	Metrics        *models.ProgressMetrics `json:"metrics"`
	Baseline       *models.Baseline        `json:"baseline"`
	Progress       *models.Progress        `json:"progress"`
	RecentCheckIns []models.DailyCheckIn   `json:"recentCheckIns"`
	MoodTrend      []MoodPoint             `json:"moodTrend"`
}

// ProgressService defines the interface for the progress dashboard.
type ProgressService interface {
	Dashboard(ctx context.Context, userID string) (*Dashboard, error)
	// Metrics returns the stored rollup, or zeros when none exists yet.
	Metrics(ctx context.Context, userID string) (*models.ProgressMetrics, error)
}

type progressService struct {
	baselines BaselineService
	metrics   MetricsService
	checkIns  repository.CheckInRepository
	now       Clock
	log       *logger.Logger
}

// NewProgressService creates a new instance of ProgressService.
func NewProgressService(baselines BaselineService, metrics MetricsService, checkIns repository.CheckInRepository, now Clock, log *logger.Logger) ProgressService {
	return &progressService{
		baselines: baselines,
		metrics:   metrics,
		checkIns:  checkIns,
		now:       orNow(now),
		log:       orNop(log),
	}
}

func (s *progressService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		m, err := s.metrics.Get(gctx, userID)
		d.Metrics = m
		return err
	})
	g.Go(func() error {
		b, err := s.baselines.GetUserBaseline(gctx, userID)
		d.Baseline = b
		return err
	})
	g.Go(func() error {
		p, err := s.baselines.CalculateProgress(gctx, userID)
		d.Progress = p
		return err
	})
	g.Go(func() error {
		recent, err := s.checkIns.ListRecent(gctx, userID, dashboardRecentCheckIns)
		if err != nil {
			return fmt.Errorf("load recent check-ins: %w", err)
		}
		d.RecentCheckIns = recent
		return nil
	})
	g.Go(func() error {
		window, err := s.checkIns.ListSince(gctx, userID, s.now().Add(-moodTrendWindow))
		if err != nil {
			return fmt.Errorf("load mood trend: %w", err)
		}
		d.MoodTrend = moodTrend(window)
		return nil
	})

	if err := g.Wait(); err != nil {
		scoped(ctx, s.log, "ProgressService").Error("Get dashboard error", "user_id", userID, "error", err)
		return nil, err
	}
	if d.RecentCheckIns == nil {
		d.RecentCheckIns = []models.DailyCheckIn{}
	}
	return &d, nil
}

func (s *progressService) Metrics(ctx context.Context, userID string) (*models.ProgressMetrics, error) {
	return s.metrics.Get(ctx, userID)
}

// moodTrend turns newest-first check-ins into an oldest-first series.
func moodTrend(newestFirst []models.DailyCheckIn) []MoodPoint {
	points := make([]MoodPoint, len(newestFirst))
	for i, c := range newestFirst {
		points[len(newestFirst)-1-i] = MoodPoint{Date: c.Date, Energy: c.Energy, Stress: c.Stress}
	}
	return points
}
