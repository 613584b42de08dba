package services

import (
	"context"
	"fmt"

	"stackedwins/apperr"
	"stackedwins/logger"
	"stackedwins/models"
	"stackedwins/repository"
)

const (
	msgAssessmentMissing = "Missing required fields. All assessment fields are required."
	msgAssessmentScores  = "Stress, anxiety, mood stability, and sleep quality must be between 1 and 10"
	msgSleepHours        = "Sleep hours must be between 4 and 12"
	msgTimeAvailability  = "Time availability must be between 5 and 180 minutes"
	msgPreferredTone     = "Preferred tone must be one of: steady, firm, gentle"
)

// AssessmentInput is the submitted questionnaire. Pointer fields distinguish
// "missing" from zero.
type AssessmentInput struct {
	StressLevel      *int     `json:"stressLevel"`
	AnxietyLevel     *int     `json:"anxietyLevel"`
	MoodStability    *int     `json:"moodStability"`
	SleepQuality     *int     `json:"sleepQuality"`
	SleepHours       *float64 `json:"sleepHours"`
	WeekdayMinutes   *int     `json:"weekdayMinutes"`
	WeekendMinutes   *int     `json:"weekendMinutes"`
	Goals            []string `json:"goals"`
	Values           []string `json:"values"`
	CurrentStruggles []string `json:"currentStruggles"`
	PreferredTone    string   `json:"preferredTone"`
}

// Validate checks presence first, then each range, returning the first
// failure as a validation error.
func (in *AssessmentInput) Validate() error {
	if in.StressLevel == nil || in.AnxietyLevel == nil || in.MoodStability == nil ||
		in.SleepQuality == nil || in.SleepHours == nil ||
		in.WeekdayMinutes == nil || in.WeekendMinutes == nil ||
		len(in.Goals) == 0 || in.PreferredTone == "" {
		return apperr.Validation(msgAssessmentMissing)
	}
	for _, score := range []int{*in.StressLevel, *in.AnxietyLevel, *in.MoodStability, *in.SleepQuality} {
		if score < 1 || score > 10 {
			return apperr.Validation(msgAssessmentScores)
		}
	}
	if *in.SleepHours < 4 || *in.SleepHours > 12 {
		return apperr.Validation(msgSleepHours)
	}
	for _, minutes := range []int{*in.WeekdayMinutes, *in.WeekendMinutes} {
		if minutes < 5 || minutes > 180 {
			return apperr.Validation(msgTimeAvailability)
		}
	}
	if !models.Tone(in.PreferredTone).Valid() {
		return apperr.Validation(msgPreferredTone)
	}
	return nil
}

// AssessmentResult is the stored assessment with its baseline flattened
// alongside it.
type AssessmentResult struct {
	*models.Assessment
	Baseline   *models.Baseline `json:"baseline"`
	IsBaseline *bool            `json:"isBaseline,omitempty"`
}

// AssessmentService handles assessment intake.
type AssessmentService interface {
	// Submit validates and stores the assessment, overwriting any previous
	// one. IsBaseline is true only for the user's first submission.
	Submit(ctx context.Context, userID string, in AssessmentInput) (*AssessmentResult, error)
	Get(ctx context.Context, userID string) (*AssessmentResult, error)
}

type assessmentService struct {
	repo repository.AssessmentRepository
	now  Clock
	log  *logger.Logger
}

func NewAssessmentService(repo repository.AssessmentRepository, now Clock, log *logger.Logger) AssessmentService {
	return &assessmentService{repo: repo, now: orNow(now), log: orNop(log)}
}

func (s *assessmentService) Submit(ctx context.Context, userID string, in AssessmentInput) (*AssessmentResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	log := scoped(ctx, s.log, "AssessmentService")

	existing, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check existing assessment: %w", err)
	}
	isBaseline := existing == nil

	now := s.now()
	stored, err := s.repo.Upsert(ctx, &models.Assessment{
		UserID:           userID,
		StressLevel:      *in.StressLevel,
		AnxietyLevel:     *in.AnxietyLevel,
		MoodStability:    *in.MoodStability,
		SleepQuality:     *in.SleepQuality,
		SleepHours:       *in.SleepHours,
		WeekdayMinutes:   *in.WeekdayMinutes,
		WeekendMinutes:   *in.WeekendMinutes,
		Goals:            in.Goals,
		Values:           nonNil(in.Values),
		CurrentStruggles: nonNil(in.CurrentStruggles),
		PreferredTone:    models.Tone(in.PreferredTone),
		CompletedAt:      now,
	})
	if err != nil {
		log.Error("Assessment submission error", "user_id", userID, "error", err)
		return nil, fmt.Errorf("store assessment: %w", err)
	}

	baseline := CalculateBaseline(stored, now)
	log.Info("Assessment submitted",
		"user_id", userID,
		"assessment_id", stored.ID,
		"is_baseline", isBaseline,
		"stress", baseline.MentalHealth.Stress,
		"anxiety", baseline.MentalHealth.Anxiety,
		"mood_stability", baseline.MentalHealth.MoodStability,
	)
	return &AssessmentResult{Assessment: stored, Baseline: baseline, IsBaseline: &isBaseline}, nil
}

func (s *assessmentService) Get(ctx context.Context, userID string) (*AssessmentResult, error) {
	a, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load assessment: %w", err)
	}
	if a == nil {
		return nil, apperr.NotFound("Assessment not found")
	}
	return &AssessmentResult{Assessment: a, Baseline: CalculateBaseline(a, s.now())}, nil
}
