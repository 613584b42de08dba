package services

import (
	"context"
	"fmt"

	"stackedwins/logger"
	"stackedwins/models"
	"stackedwins/repository"
)

// ComputeMetrics derives the progress rollup from check-in tallies ordered
// oldest first. It does not touch UserID or LastUpdated.
func ComputeMetrics(tallies []models.CheckInTally) models.ProgressMetrics {
	var m models.ProgressMetrics
	if len(tallies) == 0 {
		return m
	}

	withWins := 0
	for _, t := range tallies {
		m.WinsStacked += t.Completions
		if t.HasWins() {
			withWins++
		}
	}
	m.ConsistencyRate = float64(withWins) / float64(len(tallies)) * 100

	for i := len(tallies) - 1; i >= 0; i-- {
		if !tallies[i].HasWins() {
			break
		}
		m.BaselineStreak++
	}

	hadWins := false
	for _, t := range tallies {
		if t.HasWins() && !hadWins {
			m.RecoveryStrength++
		}
		hadWins = t.HasWins()
	}
	return m
}

// MetricsUpdater refreshes a user's rollup after their history changes.
type MetricsUpdater interface {
	// UpdateProgressMetrics recomputes and stores the rollup. Failures are
	// logged and never returned.
	UpdateProgressMetrics(ctx context.Context, userID string)
}

// MetricsService maintains the per-user progress rollup.
type MetricsService interface {
	MetricsUpdater
	// Recompute is UpdateProgressMetrics with the error surfaced.
	Recompute(ctx context.Context, userID string) (*models.ProgressMetrics, error)
	// RecomputeAll refreshes every user with check-ins, one after another,
	// and returns how many were refreshed. It stops early only when ctx ends.
	RecomputeAll(ctx context.Context) (int, error)
	// Get returns the stored rollup, or zeros when none was computed yet.
	Get(ctx context.Context, userID string) (*models.ProgressMetrics, error)
}

type metricsService struct {
	checkIns repository.CheckInRepository
	metrics  repository.MetricsRepository
	now      Clock
	log      *logger.Logger
}

func NewMetricsService(checkIns repository.CheckInRepository, metrics repository.MetricsRepository, now Clock, log *logger.Logger) MetricsService {
	return &metricsService{
		checkIns: checkIns,
		metrics:  metrics,
		now:      orNow(now),
		log:      orNop(log),
	}
}

func (s *metricsService) UpdateProgressMetrics(ctx context.Context, userID string) {
	if _, err := s.Recompute(ctx, userID); err != nil {
		scoped(ctx, s.log, "MetricsService").Error("Update progress metrics error", "user_id", userID, "error", err)
	}
}

func (s *metricsService) Recompute(ctx context.Context, userID string) (*models.ProgressMetrics, error) {
	tallies, err := s.checkIns.Tallies(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load check-in tallies: %w", err)
	}
	m := ComputeMetrics(tallies)
	m.UserID = userID
	m.LastUpdated = s.now()
	if err := s.metrics.Upsert(ctx, &m); err != nil {
		return nil, fmt.Errorf("store progress metrics: %w", err)
	}
	return &m, nil
}

func (s *metricsService) RecomputeAll(ctx context.Context) (int, error) {
	log := scoped(ctx, s.log, "MetricsService")
	userIDs, err := s.checkIns.UserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users with check-ins: %w", err)
	}
	refreshed := 0
	for _, id := range userIDs {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		if _, err := s.Recompute(ctx, id); err != nil {
			log.Warn("Skipping user after metrics refresh failure", "user_id", id, "error", err)
			continue
		}
		refreshed++
	}
	log.Info("Progress metrics refreshed", "users", refreshed, "total", len(userIDs))
	return refreshed, nil
}

func (s *metricsService) Get(ctx context.Context, userID string) (*models.ProgressMetrics, error) {
	m, err := s.metrics.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress metrics: %w", err)
	}
	if m == nil {
		return &models.ProgressMetrics{UserID: userID, LastUpdated: s.now()}, nil
	}
	return m, nil
}
