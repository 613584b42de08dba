package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"stackedwins/models"
)

// MockAssessmentRepository is a mock type for the AssessmentRepository interface
type MockAssessmentRepository struct {
	mock.Mock
}

func (m *MockAssessmentRepository) GetByUserID(ctx context.Context, userID string) (*models.Assessment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) EarliestByCompletedAt(ctx context.Context, userID string) (*models.Assessment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) LatestByCompletedAt(ctx context.Context, userID string) (*models.Assessment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) Upsert(ctx context.Context, a *models.Assessment) (*models.Assessment, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assessment), args.Error(1)
}

// MockPlanRepository is a mock type for the PlanRepository interface
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) ReplaceActivePlan(ctx context.Context, plan *models.GrowthPlan) error {
	return m.Called(ctx, plan).Error(0)
}

func (m *MockPlanRepository) GetActivePlan(ctx context.Context, userID string) (*models.GrowthPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GrowthPlan), args.Error(1)
}

func (m *MockPlanRepository) GetActiveTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockPlanRepository) MilestoneOwnedBy(ctx context.Context, userID, milestoneID string) (bool, error) {
	args := m.Called(ctx, userID, milestoneID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPlanRepository) CountActivePlans(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCheckInRepository is a mock type for the CheckInRepository interface
type MockCheckInRepository struct {
	mock.Mock
}

func (m *MockCheckInRepository) GetByDate(ctx context.Context, userID string, date time.Time) (*models.DailyCheckIn, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyCheckIn), args.Error(1)
}

func (m *MockCheckInRepository) Upsert(ctx context.Context, c *models.DailyCheckIn) (*models.DailyCheckIn, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyCheckIn), args.Error(1)
}

func (m *MockCheckInRepository) GetOrCreate(ctx context.Context, defaults *models.DailyCheckIn) (*models.DailyCheckIn, error) {
	args := m.Called(ctx, defaults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyCheckIn), args.Error(1)
}

func (m *MockCheckInRepository) CreateCompletion(ctx context.Context, tc *models.TaskCompletion) (bool, error) {
	args := m.Called(ctx, tc)
	return args.Bool(0), args.Error(1)
}

func (m *MockCheckInRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]models.DailyCheckIn, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyCheckIn), args.Error(1)
}

func (m *MockCheckInRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.DailyCheckIn, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyCheckIn), args.Error(1)
}

func (m *MockCheckInRepository) ListAll(ctx context.Context, userID string) ([]models.DailyCheckIn, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyCheckIn), args.Error(1)
}

func (m *MockCheckInRepository) Tallies(ctx context.Context, userID string) ([]models.CheckInTally, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CheckInTally), args.Error(1)
}

func (m *MockCheckInRepository) RecentCompletions(ctx context.Context, userID string, since time.Time, limit int) ([]models.TaskCompletion, error) {
	args := m.Called(ctx, userID, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TaskCompletion), args.Error(1)
}

func (m *MockCheckInRepository) UserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockMetricsRepository is a mock type for the MetricsRepository interface
type MockMetricsRepository struct {
	mock.Mock
}

func (m *MockMetricsRepository) Get(ctx context.Context, userID string) (*models.ProgressMetrics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProgressMetrics), args.Error(1)
}

func (m *MockMetricsRepository) Upsert(ctx context.Context, pm *models.ProgressMetrics) error {
	return m.Called(ctx, pm).Error(0)
}

// MockJournalRepository is a mock type for the JournalRepository interface
type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) Create(ctx context.Context, e *models.JournalEntry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockJournalRepository) Get(ctx context.Context, userID, id string) (*models.JournalEntry, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) List(ctx context.Context, f models.JournalFilter) ([]models.JournalEntry, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.JournalEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockJournalRepository) Save(ctx context.Context, e *models.JournalEntry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockJournalRepository) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

// MockFeedbackRepository is a mock type for the FeedbackRepository interface
type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) Create(ctx context.Context, f *models.Feedback) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFeedbackRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Feedback, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Feedback), args.Error(1)
}

// MockCoachRepository is a mock type for the CoachRepository interface
type MockCoachRepository struct {
	mock.Mock
}

func (m *MockCoachRepository) Recent(ctx context.Context, userID string, n int) ([]models.CoachChat, error) {
	args := m.Called(ctx, userID, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CoachChat), args.Error(1)
}

func (m *MockCoachRepository) SaveExchange(ctx context.Context, rows []models.CoachChat) error {
	return m.Called(ctx, rows).Error(0)
}

func (m *MockCoachRepository) History(ctx context.Context, userID string, limit int) ([]models.CoachChat, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CoachChat), args.Error(1)
}

// MockBaselineService is a mock type for the BaselineService interface
type MockBaselineService struct {
	mock.Mock
}

func (m *MockBaselineService) GetUserBaseline(ctx context.Context, userID string) (*models.Baseline, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Baseline), args.Error(1)
}

func (m *MockBaselineService) CalculateProgress(ctx context.Context, userID string) (*models.Progress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Progress), args.Error(1)
}

func (m *MockBaselineService) NeedsReassessment(ctx context.Context, userID string, thresholdDays int) bool {
	return m.Called(ctx, userID, thresholdDays).Bool(0)
}

func (m *MockBaselineService) BaselineSummary(ctx context.Context, userID string) string {
	return m.Called(ctx, userID).String(0)
}

// MockMetricsService is a mock type for the MetricsService interface
type MockMetricsService struct {
	mock.Mock
}

func (m *MockMetricsService) UpdateProgressMetrics(ctx context.Context, userID string) {
	m.Called(ctx, userID)
}

func (m *MockMetricsService) Recompute(ctx context.Context, userID string) (*models.ProgressMetrics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProgressMetrics), args.Error(1)
}

func (m *MockMetricsService) RecomputeAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockMetricsService) Get(ctx context.Context, userID string) (*models.ProgressMetrics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProgressMetrics), args.Error(1)
}

// MockCompleter is a mock type for the Completer interface
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// fixedClock pins "now" for a test.
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
