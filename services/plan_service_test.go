package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stackedwins/apperr"
	"stackedwins/models"
)

const planReply = `{
  "vision": "Calmer evenings and steady energy.",
  "intensity": "standard",
  "weeklyFocus": "Sleep discipline",
  "milestones": [
    {"title": "Month 1", "description": "Lights out by 11", "targetDate": "2026-11-14"},
    {"title": "Month 2", "description": "Walk 3x a week", "targetDate": "2026-12-14"},
    {"title": "Month 3", "description": "Journal nightly", "targetDate": "2027-01-13"}
  ],
  "dailyTasks": [
    {"title": "Box breathing", "description": "Settle the body", "estimatedMinutes": 3, "isAnchorWin": true, "category": "mental"},
    {"title": "Evening walk", "description": "Move", "estimatedMinutes": 10, "isAnchorWin": false, "category": "physical"},
    {"title": "Write one line", "description": "Reflect", "estimatedMinutes": 2, "isAnchorWin": false, "category": "purpose"}
  ]
}`

func TestBuildPlanPrompt(t *testing.T) {
	a := sampleAssessment("user-1")
	baseline := CalculateBaseline(a, testNow)

	t.Run("Baseline and progress lines", func(t *testing.T) {
		progress := &models.Progress{Baseline: baseline, Improvement: &models.Improvement{Stress: 12.34, Energy: -5}}

		prompt := BuildPlanPrompt(a, baseline, progress)

		assert.Contains(t, prompt, "Baseline: Stress 8/10, Anxiety 6/10, Mood 4/10. Sleep: 6/10 quality, 6.5 hours. Time: 20min weekday, 45min weekend.\n")
		assert.Contains(t, prompt, "Progress: Stress +12.3%, Energy -5.0%.\n")
		assert.Contains(t, prompt, "- Goals: sleep better, move daily\n")
		assert.Contains(t, prompt, "- Total daily time should not exceed 20 minutes on weekdays.\n")
		assert.Contains(t, prompt, "- Use the steady tone in descriptions.\n")
		assert.True(t, strings.HasSuffix(prompt, "Respond with ONLY the JSON object, no other text."))
	})

	t.Run("No progress data yet", func(t *testing.T) {
		prompt := BuildPlanPrompt(a, baseline, &models.Progress{Baseline: baseline})
		assert.Contains(t, prompt, "Progress: No progress data yet.\n")
	})

	t.Run("Daily cap never exceeds thirty minutes", func(t *testing.T) {
		big := sampleAssessment("user-1")
		big.WeekdayMinutes = 120
		prompt := BuildPlanPrompt(big, nil, nil)
		assert.Contains(t, prompt, "No baseline data available.\n")
		assert.Contains(t, prompt, "should not exceed 30 minutes")
	})

	t.Run("Deterministic", func(t *testing.T) {
		assert.Equal(t, BuildPlanPrompt(a, baseline, nil), BuildPlanPrompt(a, baseline, nil))
	})
}

func TestParsePlanResponse(t *testing.T) {
	t.Run("Plain JSON", func(t *testing.T) {
		gp, err := ParsePlanResponse(planReply)
		require.NoError(t, err)
		assert.Len(t, gp.DailyTasks, 3)
		assert.Len(t, gp.Milestones, 3)
	})

	t.Run("Code fence", func(t *testing.T) {
		gp, err := ParsePlanResponse("```json\n" + planReply + "\n```")
		require.NoError(t, err)
		assert.Equal(t, "Sleep discipline", gp.WeeklyFocus)
	})

	for name, raw := range map[string]string{
		"Empty":     "  ",
		"Not JSON":  "Here is your plan: be calm.",
		"No tasks":  `{"vision": "x", "dailyTasks": []}`,
		"Truncated": `{"vision": "x", "dailyTasks": [{"title": "a"`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePlanResponse(raw)
			assert.Error(t, err)
		})
	}
}

func TestGeneratedPlan_ToPlan(t *testing.T) {
	loc := time.UTC

	t.Run("High stress forces low intensity and short tasks", func(t *testing.T) {
		a := sampleAssessment("user-1")
		a.StressLevel = 9
		gp := &GeneratedPlan{
			Intensity: "high",
			DailyTasks: []GeneratedTask{
				{Title: "Long walk", EstimatedMinutes: 10, Category: "physical"},
				{Title: "Stretch", EstimatedMinutes: 7, Category: "physical"},
				{Title: "Breathe", EstimatedMinutes: 1, Category: "mental"},
			},
		}

		plan, err := gp.ToPlan("user-1", a, testNow, loc)

		require.NoError(t, err)
		assert.Equal(t, models.IntensityLow, plan.Intensity)
		for _, task := range plan.Tasks {
			assert.LessOrEqual(t, task.EstimatedMinutes, 5, task.Title)
			assert.GreaterOrEqual(t, task.EstimatedMinutes, 2, task.Title)
		}
	})

	t.Run("Anxiety alone also counts as high stress", func(t *testing.T) {
		a := sampleAssessment("user-1")
		a.StressLevel, a.AnxietyLevel = 3, 8
		gp := &GeneratedPlan{Intensity: "standard", DailyTasks: []GeneratedTask{{Title: "Breathe", EstimatedMinutes: 8}}}

		plan, err := gp.ToPlan("user-1", a, testNow, loc)

		require.NoError(t, err)
		assert.Equal(t, models.IntensityLow, plan.Intensity)
		assert.Equal(t, 5, plan.Tasks[0].EstimatedMinutes)
	})

	t.Run("Normalizes fields", func(t *testing.T) {
		a := sampleAssessment("user-1")
		a.StressLevel, a.AnxietyLevel = 5, 5
		gp := &GeneratedPlan{
			Intensity: "extreme",
			DailyTasks: []GeneratedTask{
				{Title: "A", EstimatedMinutes: 30, Category: "spiritual"},
				{Title: "  ", EstimatedMinutes: 3},
				{Title: "B", EstimatedMinutes: 2.6, IsAnchorWin: true, Category: "Mental"},
				{Title: "C", EstimatedMinutes: 4, IsAnchorWin: true, Category: "routine"},
			},
			Milestones: []GeneratedMilestone{
				{Title: "Later", TargetDate: "2027-02-01"},
				{Title: "Soon", TargetDate: "next month"},
			},
		}

		plan, err := gp.ToPlan("user-1", a, testNow, loc)

		require.NoError(t, err)
		assert.Equal(t, models.IntensityStandard, plan.Intensity)
		require.Len(t, plan.Tasks, 4)
		assert.Equal(t, 10, plan.Tasks[0].EstimatedMinutes)
		assert.Equal(t, models.CategoryRoutine, plan.Tasks[0].Category)
		assert.Equal(t, "", plan.Tasks[1].Title)
		assert.Equal(t, 3, plan.Tasks[2].EstimatedMinutes)
		assert.Equal(t, models.CategoryMental, plan.Tasks[2].Category)
		assert.Equal(t, []bool{false, false, true, false},
			[]bool{plan.Tasks[0].IsAnchorWin, plan.Tasks[1].IsAnchorWin, plan.Tasks[2].IsAnchorWin, plan.Tasks[3].IsAnchorWin})

		require.Len(t, plan.Milestones, 2)
		assert.Equal(t, "Soon", plan.Milestones[0].Title)
		assert.Equal(t, time.Date(2026, time.December, 14, 0, 0, 0, 0, loc), plan.Milestones[0].TargetDate)
		assert.Equal(t, "Later", plan.Milestones[1].Title)
		assert.Zero(t, plan.Milestones[0].Progress)
	})

	t.Run("First task becomes the anchor when none is flagged", func(t *testing.T) {
		gp := &GeneratedPlan{DailyTasks: []GeneratedTask{{Title: "A", EstimatedMinutes: 3}, {Title: "B", EstimatedMinutes: 3}}}

		plan, err := gp.ToPlan("user-1", sampleAssessment("user-1"), testNow, loc)

		require.NoError(t, err)
		assert.True(t, plan.Tasks[0].IsAnchorWin)
		assert.False(t, plan.Tasks[1].IsAnchorWin)
	})

	t.Run("Every task is kept with its response index as order", func(t *testing.T) {
		titles := []string{" ", "a", "b", "c", "d", "e", "f"}
		var tasks []GeneratedTask
		for _, title := range titles {
			tasks = append(tasks, GeneratedTask{Title: title, EstimatedMinutes: 3})
		}

		plan, err := (&GeneratedPlan{DailyTasks: tasks}).ToPlan("user-1", sampleAssessment("user-1"), testNow, loc)

		require.NoError(t, err)
		require.Len(t, plan.Tasks, len(titles))
		for i, task := range plan.Tasks {
			assert.Equal(t, i, task.Order)
			assert.Equal(t, strings.TrimSpace(titles[i]), task.Title)
		}
	})

	t.Run("Milestones are kept as returned", func(t *testing.T) {
		gp := &GeneratedPlan{
			DailyTasks: []GeneratedTask{{Title: "A", EstimatedMinutes: 3}},
			Milestones: []GeneratedMilestone{{Title: "Only", TargetDate: "2026-11-14"}},
		}

		plan, err := gp.ToPlan("user-1", sampleAssessment("user-1"), testNow, loc)

		require.NoError(t, err)
		require.Len(t, plan.Milestones, 1)
		assert.Equal(t, "Only", plan.Milestones[0].Title)
	})

	t.Run("No tasks", func(t *testing.T) {
		_, err := (&GeneratedPlan{}).ToPlan("user-1", sampleAssessment("user-1"), testNow, loc)
		assert.ErrorIs(t, err, errNoTasks)
	})
}

// blockingCompleter never answers before its context ends.
type blockingCompleter struct{}

func (blockingCompleter) Complete(ctx context.Context, _ CompletionRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type planServiceFixture struct {
	plans       *MockPlanRepository
	assessments *MockAssessmentRepository
	baselines   *MockBaselineService
	llm         *MockCompleter
	service     PlanService
}

func newPlanServiceFixture() *planServiceFixture {
	f := &planServiceFixture{
		plans:       new(MockPlanRepository),
		assessments: new(MockAssessmentRepository),
		baselines:   new(MockBaselineService),
		llm:         new(MockCompleter),
	}
	f.service = NewPlanService(f.plans, f.assessments, f.baselines, f.llm,
		PlanOptions{Temperature: 0.7, Timeout: time.Second, Location: time.UTC}, fixedClock(testNow), nil)
	return f
}

func (f *planServiceFixture) expectContext(userID string, a *models.Assessment) {
	f.assessments.On("GetByUserID", mock.Anything, userID).Return(a, nil).Once()
	f.baselines.On("GetUserBaseline", mock.Anything, userID).Return(CalculateBaseline(a, testNow), nil).Once()
	f.baselines.On("CalculateProgress", mock.Anything, userID).Return(nil, nil).Once()
	f.baselines.On("NeedsReassessment", mock.Anything, userID, DefaultReassessmentDays).Return(false).Once()
}

func TestPlanService_GeneratePlan(t *testing.T) {
	ctx := context.Background()
	userID := "user-1"

	t.Run("Successfully generate a plan", func(t *testing.T) {
		f := newPlanServiceFixture()
		a := sampleAssessment(userID)
		a.StressLevel = 5
		f.expectContext(userID, a)
		f.llm.On("Complete", mock.Anything, mock.MatchedBy(func(req CompletionRequest) bool {
			return req.JSONObject && req.Temperature == 0.7 && len(req.Messages) == 2 &&
				req.Messages[0].Role == RoleSystem && req.Messages[0].Content == planSystemPrompt &&
				req.Messages[1].Content == BuildPlanPrompt(a, CalculateBaseline(a, testNow), nil)
		})).Return(planReply, nil).Once()
		f.plans.On("ReplaceActivePlan", mock.Anything, mock.MatchedBy(func(p *models.GrowthPlan) bool {
			return p.UserID == userID && p.IsActive && len(p.Tasks) == 3 && len(p.Milestones) == 3
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.GrowthPlan).ID = "plan-1"
		}).Return(nil).Once()

		plan, err := f.service.GeneratePlan(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, "plan-1", plan.ID)
		assert.Equal(t, models.IntensityStandard, plan.Intensity)
		assert.Equal(t, "Sleep discipline", plan.WeeklyFocus)
		assert.True(t, plan.Tasks[0].IsAnchorWin)
		f.llm.AssertExpectations(t)
		f.plans.AssertExpectations(t)
		f.baselines.AssertExpectations(t)
	})

	t.Run("High stress user gets a low intensity plan", func(t *testing.T) {
		f := newPlanServiceFixture()
		a := sampleAssessment(userID)
		a.StressLevel = 9
		f.expectContext(userID, a)
		f.llm.On("Complete", mock.Anything, mock.Anything).Return(planReply, nil).Once()
		f.plans.On("ReplaceActivePlan", mock.Anything, mock.Anything).Return(nil).Once()

		plan, err := f.service.GeneratePlan(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, models.IntensityLow, plan.Intensity)
		for _, task := range plan.Tasks {
			assert.LessOrEqual(t, task.EstimatedMinutes, 5)
		}
	})

	t.Run("No assessment", func(t *testing.T) {
		f := newPlanServiceFixture()
		f.assessments.On("GetByUserID", mock.Anything, userID).Return(nil, nil).Once()

		plan, err := f.service.GeneratePlan(ctx, userID)

		assert.Nil(t, plan)
		assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
		assert.Equal(t, msgAssessmentRequired, apperr.PublicMessage(err))
		f.llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("Completion failure keeps the existing plan", func(t *testing.T) {
		f := newPlanServiceFixture()
		f.expectContext(userID, sampleAssessment(userID))
		f.llm.On("Complete", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded).Once()

		plan, err := f.service.GeneratePlan(ctx, userID)

		assert.Nil(t, plan)
		assert.ErrorIs(t, err, apperr.ErrGeneration)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
		f.plans.AssertNotCalled(t, "ReplaceActivePlan", mock.Anything, mock.Anything)
	})

	t.Run("Completion is bounded by the configured timeout", func(t *testing.T) {
		f := newPlanServiceFixture()
		f.expectContext(userID, sampleAssessment(userID))
		service := NewPlanService(f.plans, f.assessments, f.baselines, blockingCompleter{},
			PlanOptions{Timeout: 50 * time.Millisecond, Location: time.UTC}, fixedClock(testNow), nil)

		started := time.Now()
		plan, err := service.GeneratePlan(ctx, userID)

		assert.Nil(t, plan)
		assert.Less(t, time.Since(started), 5*time.Second)
		assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
		assert.ErrorIs(t, err, apperr.ErrGeneration)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		f.plans.AssertNotCalled(t, "ReplaceActivePlan", mock.Anything, mock.Anything)
	})

	t.Run("Malformed completion keeps the existing plan", func(t *testing.T) {
		f := newPlanServiceFixture()
		f.expectContext(userID, sampleAssessment(userID))
		f.llm.On("Complete", mock.Anything, mock.Anything).Return("I cannot help with that.", nil).Once()

		_, err := f.service.GeneratePlan(ctx, userID)

		assert.ErrorIs(t, err, apperr.ErrGeneration)
		f.plans.AssertNotCalled(t, "ReplaceActivePlan", mock.Anything, mock.Anything)
	})

	t.Run("Store failure", func(t *testing.T) {
		f := newPlanServiceFixture()
		f.expectContext(userID, sampleAssessment(userID))
		f.llm.On("Complete", mock.Anything, mock.Anything).Return(planReply, nil).Once()
		f.plans.On("ReplaceActivePlan", mock.Anything, mock.Anything).Return(errors.New("tx aborted")).Once()

		_, err := f.service.GeneratePlan(ctx, userID)

		assert.Error(t, err)
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	})
}

func TestPlanService_GetCurrentPlan(t *testing.T) {
	ctx := context.Background()

	t.Run("Active plan with reassessment flag", func(t *testing.T) {
		f := newPlanServiceFixture()
		f.plans.On("GetActivePlan", mock.Anything, "user-1").Return(&models.GrowthPlan{ID: "plan-1", IsActive: true}, nil).Once()
		f.baselines.On("NeedsReassessment", mock.Anything, "user-1", DefaultReassessmentDays).Return(true).Once()

		current, err := f.service.GetCurrentPlan(ctx, "user-1")

		require.NoError(t, err)
		assert.Equal(t, "plan-1", current.ID)
		assert.True(t, current.NeedsReassessment)
	})

	t.Run("No active plan", func(t *testing.T) {
		f := newPlanServiceFixture()
		f.plans.On("GetActivePlan", mock.Anything, "user-1").Return(nil, nil).Once()

		_, err := f.service.GetCurrentPlan(ctx, "user-1")

		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Equal(t, msgNoActivePlan, apperr.PublicMessage(err))
	})
}
