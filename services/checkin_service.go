package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stackedwins/apperr"
	"stackedwins/logger"
	"stackedwins/models"
	"stackedwins/repository"
)

const (
	DefaultHistoryLimit = 30

	msgCheckInRequired = "Energy and stress levels are required"
	msgCheckInRange    = "Energy and stress must be between 1 and 10"
	msgCheckInSleep    = "Sleep quality must be between 1 and 10"
)

type CheckInInput struct {
	Energy       *int    `json:"energy"`
	Stress       *int    `json:"stress"`
	SleepQuality *int    `json:"sleepQuality"`
	Reflection   *string `json:"reflection"`
}

func (in *CheckInInput) Validate() error {
	if in.Energy == nil || in.Stress == nil {
		return apperr.Validation(msgCheckInRequired)
	}
	if !inRange(*in.Energy, 1, 10) || !inRange(*in.Stress, 1, 10) {
		return apperr.Validation(msgCheckInRange)
	}
	if in.SleepQuality != nil && !inRange(*in.SleepQuality, 1, 10) {
		return apperr.Validation(msgCheckInSleep)
	}
	return nil
}

func inRange(v, lo, hi int) bool {
	return v >= lo && v <= hi
}

// CheckInService records daily check-ins.
type CheckInService interface {
	// Submit writes today's check-in, replacing the scores of an earlier
	// submission the same day, then refreshes the user's metrics.
	Submit(ctx context.Context, userID string, in CheckInInput) (*models.DailyCheckIn, error)
	// History returns the newest check-ins with their completed tasks.
	History(ctx context.Context, userID string, limit int) ([]models.DailyCheckIn, error)
}

type checkInService struct {
	checkIns repository.CheckInRepository
	metrics  MetricsUpdater
	now      Clock
	loc      *time.Location
	log      *logger.Logger
}

func NewCheckInService(checkIns repository.CheckInRepository, metrics MetricsUpdater, now Clock, loc *time.Location, log *logger.Logger) CheckInService {
	if loc == nil {
		loc = time.Local
	}
	return &checkInService{
		checkIns: checkIns,
		metrics:  metrics,
		now:      orNow(now),
		loc:      loc,
		log:      orNop(log),
	}
}

func (s *checkInService) Submit(ctx context.Context, userID string, in CheckInInput) (*models.DailyCheckIn, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	log := scoped(ctx, s.log, "CheckInService")

	var reflection *string
	if in.Reflection != nil && strings.TrimSpace(*in.Reflection) != "" {
		reflection = in.Reflection
	}
	checkIn, err := s.checkIns.Upsert(ctx, &models.DailyCheckIn{
		UserID:       userID,
		Date:         startOfDay(s.now(), s.loc),
		Energy:       *in.Energy,
		Stress:       *in.Stress,
		SleepQuality: in.SleepQuality,
		Reflection:   reflection,
	})
	if err != nil {
		log.Error("Check-in submission error", "user_id", userID, "error", err)
		return nil, fmt.Errorf("store check-in: %w", err)
	}

	s.metrics.UpdateProgressMetrics(ctx, userID)
	log.Info("Check-in submitted", "user_id", userID, "check_in_id", checkIn.ID, "energy", checkIn.Energy, "stress", checkIn.Stress)
	return checkIn, nil
}

func (s *checkInService) History(ctx context.Context, userID string, limit int) ([]models.DailyCheckIn, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	checkIns, err := s.checkIns.ListRecent(ctx, userID, limit)
	if err != nil {
		scoped(ctx, s.log, "CheckInService").Error("Get check-in history error", "user_id", userID, "error", err)
		return nil, fmt.Errorf("load check-in history: %w", err)
	}
	return checkIns, nil
}
