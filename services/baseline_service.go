package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"stackedwins/logger"
	"stackedwins/models"
	"stackedwins/repository"
)

const progressWindow = 7 * 24 * time.Hour

// CalculateBaseline snapshots an assessment into the baseline every progress
// comparison is made against.
func CalculateBaseline(a *models.Assessment, now time.Time) *models.Baseline {
	return &models.Baseline{
		MentalHealth: models.MentalHealthBaseline{
			Stress:        a.StressLevel,
			Anxiety:       a.AnxietyLevel,
			MoodStability: a.MoodStability,
			Average:       float64(a.StressLevel+a.AnxietyLevel+a.MoodStability) / 3,
		},
		Sleep: models.SleepBaseline{
			Quality: a.SleepQuality,
			Hours:   a.SleepHours,
		},
		TimeAvailability: models.TimeAvailability{
			Weekday: a.WeekdayMinutes,
			Weekend: a.WeekendMinutes,
			Average: float64(a.WeekdayMinutes+a.WeekendMinutes) / 2,
		},
		Goals:         nonNil(a.Goals),
		Values:        nonNil(a.Values),
		PreferredTone: a.PreferredTone,
		Timestamp:     now,
	}
}

// CalculateCurrent averages a window of check-ins. Stress is averaged on the
// inverted scale and flipped back. Sleep falls back to the baseline quality
// when no check-in recorded it.
func CalculateCurrent(checkIns []models.DailyCheckIn, baseline *models.Baseline) *models.CurrentState {
	if len(checkIns) == 0 {
		return nil
	}
	var inverted, energy, sleep float64
	sleepCount := 0
	for _, c := range checkIns {
		inverted += float64(10 - c.Stress)
		energy += float64(c.Energy)
		if c.SleepQuality != nil && *c.SleepQuality > 0 {
			sleep += float64(*c.SleepQuality)
			sleepCount++
		}
	}
	n := float64(len(checkIns))
	current := &models.CurrentState{
		Stress: 10 - inverted/n,
		Energy: energy / n,
	}
	if sleepCount > 0 {
		current.SleepQuality = sleep / float64(sleepCount)
	} else {
		current.SleepQuality = float64(baseline.Sleep.Quality)
	}
	return current
}

// CalculateImprovement returns percentage changes against the baseline.
// A zero denominator yields 0 for that dimension.
func CalculateImprovement(baseline *models.Baseline, current *models.CurrentState) *models.Improvement {
	return &models.Improvement{
		Stress: percentChange(float64(baseline.MentalHealth.Stress), float64(baseline.MentalHealth.Stress)-current.Stress),
		Energy: percentChange(baseline.MentalHealth.Average, current.Energy-baseline.MentalHealth.Average),
		Sleep:  percentChange(float64(baseline.Sleep.Quality), current.SleepQuality-float64(baseline.Sleep.Quality)),
	}
}

func percentChange(base, delta float64) float64 {
	if base <= 0 {
		return 0
	}
	return delta / base * 100
}

// BaselineService answers baseline and progress questions about a user.
type BaselineService interface {
	GetUserBaseline(ctx context.Context, userID string) (*models.Baseline, error)
	// CalculateProgress compares the last seven days of check-ins with the
	// baseline. It returns (nil, nil) when the user has no baseline.
	CalculateProgress(ctx context.Context, userID string) (*models.Progress, error)
	// NeedsReassessment is true when the user never assessed or the latest
	// assessment is at least thresholdDays whole days old. Store errors
	// are logged and reported as false.
	NeedsReassessment(ctx context.Context, userID string, thresholdDays int) bool
	// BaselineSummary renders the baseline and progress as prompt context.
	BaselineSummary(ctx context.Context, userID string) string
}

type baselineService struct {
	assessments repository.AssessmentRepository
	checkIns    repository.CheckInRepository
	now         Clock
	log         *logger.Logger
}

func NewBaselineService(assessments repository.AssessmentRepository, checkIns repository.CheckInRepository, now Clock, log *logger.Logger) BaselineService {
	return &baselineService{
		assessments: assessments,
		checkIns:    checkIns,
		now:         orNow(now),
		log:         orNop(log),
	}
}

func (s *baselineService) GetUserBaseline(ctx context.Context, userID string) (*models.Baseline, error) {
	first, err := s.assessments.EarliestByCompletedAt(ctx, userID)
	if err != nil {
		scoped(ctx, s.log, "BaselineService").Error("Error getting user baseline", "user_id", userID, "error", err)
		return nil, fmt.Errorf("get baseline for user %s: %w", userID, err)
	}
	if first == nil {
		return nil, nil
	}
	return CalculateBaseline(first, s.now()), nil
}

func (s *baselineService) CalculateProgress(ctx context.Context, userID string) (*models.Progress, error) {
	baseline, err := s.GetUserBaseline(ctx, userID)
	if err != nil || baseline == nil {
		return nil, err
	}

	recent, err := s.checkIns.ListSince(ctx, userID, s.now().Add(-progressWindow))
	if err != nil {
		scoped(ctx, s.log, "BaselineService").Error("Error calculating progress", "user_id", userID, "error", err)
		return nil, fmt.Errorf("load recent check-ins for user %s: %w", userID, err)
	}
	progress := &models.Progress{Baseline: baseline, DaysTracked: len(recent)}
	if len(recent) == 0 {
		return progress, nil
	}
	progress.Current = CalculateCurrent(recent, baseline)
	progress.Improvement = CalculateImprovement(baseline, progress.Current)
	return progress, nil
}

func (s *baselineService) NeedsReassessment(ctx context.Context, userID string, thresholdDays int) bool {
	latest, err := s.assessments.LatestByCompletedAt(ctx, userID)
	if err != nil {
		scoped(ctx, s.log, "BaselineService").Error("Error checking reassessment need", "user_id", userID, "error", err)
		return false
	}
	if latest == nil {
		return true
	}
	daysSince := int(math.Floor(s.now().Sub(latest.CompletedAt).Hours() / 24))
	return daysSince >= thresholdDays
}

func (s *baselineService) BaselineSummary(ctx context.Context, userID string) string {
	baseline, err := s.GetUserBaseline(ctx, userID)
	if err != nil {
		return "Error retrieving baseline data."
	}
	if baseline == nil {
		return "No baseline data available."
	}
	progress, err := s.CalculateProgress(ctx, userID)
	if err != nil {
		return "Error retrieving baseline data."
	}

	var b strings.Builder
	b.WriteString("User Baseline:\n")
	fmt.Fprintf(&b, "- Mental Health: Stress %d/10, Anxiety %d/10, Mood Stability %d/10\n",
		baseline.MentalHealth.Stress, baseline.MentalHealth.Anxiety, baseline.MentalHealth.MoodStability)
	fmt.Fprintf(&b, "- Sleep: Quality %d/10, Hours %s\n", baseline.Sleep.Quality, formatNumber(baseline.Sleep.Hours))
	fmt.Fprintf(&b, "- Time Available: Weekday %dmin, Weekend %dmin\n",
		baseline.TimeAvailability.Weekday, baseline.TimeAvailability.Weekend)
	fmt.Fprintf(&b, "- Goals: %s\n", strings.Join(baseline.Goals, ", "))
	fmt.Fprintf(&b, "- Values: %s\n", strings.Join(baseline.Values, ", "))
	fmt.Fprintf(&b, "- Preferred Tone: %s\n", baseline.PreferredTone)

	if progress != nil && progress.Improvement != nil {
		b.WriteString("\nProgress Since Baseline:\n")
		fmt.Fprintf(&b, "- Stress: %s%% change\n", signedPercent(progress.Improvement.Stress))
		fmt.Fprintf(&b, "- Energy: %s%% change\n", signedPercent(progress.Improvement.Energy))
		fmt.Fprintf(&b, "- Sleep: %s%% change\n", signedPercent(progress.Improvement.Sleep))
		fmt.Fprintf(&b, "- Days Tracked: %d\n", progress.DaysTracked)
	}
	return b.String()
}

// signedPercent formats v with one decimal and a leading "+" when positive.
func signedPercent(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.1f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// formatNumber prints 7 as "7" and 7.5 as "7.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
