package api

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"stackedwins/models"
	"stackedwins/services"
)

// tokenVerifier accepts "good-token" as user-1 and rejects everything else.
type tokenVerifier struct{}

func (tokenVerifier) Verify(_ context.Context, token string) (string, error) {
	if token == "good-token" {
		return "user-1", nil
	}
	return "", context.Canceled
}

type MockAssessmentService struct {
	mock.Mock
}

func (m *MockAssessmentService) Submit(ctx context.Context, userID string, in services.AssessmentInput) (*services.AssessmentResult, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AssessmentResult), args.Error(1)
}

func (m *MockAssessmentService) Get(ctx context.Context, userID string) (*services.AssessmentResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AssessmentResult), args.Error(1)
}

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

type MockPlanService struct {
	mock.Mock
}

func (m *MockPlanService) GeneratePlan(ctx context.Context, userID string) (*models.GrowthPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GrowthPlan), args.Error(1)
}

func (m *MockPlanService) GetCurrentPlan(ctx context.Context, userID string) (*services.CurrentPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CurrentPlan), args.Error(1)
}

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) GetTodayTasks(ctx context.Context, userID string) ([]models.TodayTask, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TodayTask), args.Error(1)
}

func (m *MockTaskService) CompleteTask(ctx context.Context, userID, taskID string) (*services.CompletionResult, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CompletionResult), args.Error(1)
}

func (m *MockTaskService) AdjustTodayPlan(ctx context.Context, userID, mode string) ([]models.TodayTask, error) {
	args := m.Called(ctx, userID, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TodayTask), args.Error(1)
}

type MockCheckInService struct {
	mock.Mock
}

func (m *MockCheckInService) Submit(ctx context.Context, userID string, in services.CheckInInput) (*models.DailyCheckIn, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyCheckIn), args.Error(1)
}

func (m *MockCheckInService) History(ctx context.Context, userID string, limit int) ([]models.DailyCheckIn, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyCheckIn), args.Error(1)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) WriteCheckIns(ctx context.Context, userID string, w io.Writer) error {
	args := m.Called(ctx, userID, w)
	if body := args.String(1); body != "" {
		_, _ = io.WriteString(w, body)
	}
	return args.Error(0)
}

type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) Create(ctx context.Context, userID string, in services.JournalInput) (*models.JournalEntry, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JournalEntry), args.Error(1)
}

func (m *MockJournalService) Get(ctx context.Context, userID, id string) (*models.JournalEntry, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JournalEntry), args.Error(1)
}

func (m *MockJournalService) List(ctx context.Context, f models.JournalFilter) (*services.JournalPage, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.JournalPage), args.Error(1)
}

func (m *MockJournalService) Update(ctx context.Context, userID, id string, in services.JournalInput) (*models.JournalEntry, error) {
	args := m.Called(ctx, userID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JournalEntry), args.Error(1)
}

func (m *MockJournalService) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockFeedbackService struct {
	mock.Mock
}

func (m *MockFeedbackService) Submit(ctx context.Context, userID string, in services.FeedbackInput) (*services.FeedbackReceipt, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.FeedbackReceipt), args.Error(1)
}

func (m *MockFeedbackService) List(ctx context.Context, userID string, limit int) ([]models.Feedback, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Feedback), args.Error(1)
}

type MockCoachService struct {
	mock.Mock
}

func (m *MockCoachService) Chat(ctx context.Context, userID, message string) (*services.CoachReply, error) {
	args := m.Called(ctx, userID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CoachReply), args.Error(1)
}

func (m *MockCoachService) History(ctx context.Context, userID string, limit int) ([]models.CoachConversation, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CoachConversation), args.Error(1)
}
