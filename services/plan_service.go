package services

import (
	"context"
	"fmt"
	"time"

	"stackedwins/apperr"
	"stackedwins/logger"
	"stackedwins/models"
	"stackedwins/repository"
)

const (
	msgAssessmentRequired = "Please complete your assessment before generating a plan."
	msgNoActivePlan       = "No active plan found. Please generate a plan first."
	msgGenerationFailed   = "Failed to generate plan. Please try again."
)

// PlanOptions tunes the completion request for plan generation.
type PlanOptions struct {
	Temperature float32
	Timeout     time.Duration
	Location    *time.Location
}

// CurrentPlan is the active plan with the reassessment reminder flattened in.
type CurrentPlan struct {
	*models.GrowthPlan
	NeedsReassessment bool `json:"needsReassessment"`
}

// PlanService defines plan generation and retrieval.
type PlanService interface {
	// GeneratePlan asks the completion service for a new plan and makes it
	// the user's only active plan.
	GeneratePlan(ctx context.Context, userID string) (*models.GrowthPlan, error)
	GetCurrentPlan(ctx context.Context, userID string) (*CurrentPlan, error)
}

type planService struct {
	plans       repository.PlanRepository
	assessments repository.AssessmentRepository
	baselines   BaselineService
	llm         Completer
	opts        PlanOptions
	now         Clock
	log         *logger.Logger
}

// NewPlanService creates a new instance of PlanService.
func NewPlanService(
	plans repository.PlanRepository,
	assessments repository.AssessmentRepository,
	baselines BaselineService,
	llm Completer,
	opts PlanOptions,
	now Clock,
	log *logger.Logger,
) PlanService {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &planService{
		plans:       plans,
		assessments: assessments,
		baselines:   baselines,
		llm:         llm,
		opts:        opts,
		now:         orNow(now),
		log:         orNop(log),
	}
}

func (s *planService) GeneratePlan(ctx context.Context, userID string) (*models.GrowthPlan, error) {
	log := scoped(ctx, s.log, "PlanService")

	assessment, err := s.assessments.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load assessment: %w", err)
	}
	if assessment == nil {
		return nil, apperr.Precondition(msgAssessmentRequired)
	}

	baseline, err := s.baselines.GetUserBaseline(ctx, userID)
	if err != nil {
		return nil, err
	}
	progress, err := s.baselines.CalculateProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	needsReassessment := s.baselines.NeedsReassessment(ctx, userID, DefaultReassessmentDays)

	prompt := BuildPlanPrompt(assessment, baseline, progress)
	log.Info("Generating plan with AI",
		"user_id", userID,
		"has_baseline", baseline != nil,
		"needs_reassessment", needsReassessment,
	)

	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	raw, err := s.llm.Complete(callCtx, CompletionRequest{
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: planSystemPrompt},
			{Role: RoleUser, Content: prompt},
		},
		Temperature: s.opts.Temperature,
		JSONObject:  true,
	})
	if err != nil {
		log.Error("Plan generation error", "user_id", userID, "error", err)
		return nil, apperr.Upstream(msgGenerationFailed, err)
	}

	generated, err := ParsePlanResponse(raw)
	if err != nil {
		log.Error("Plan response could not be parsed", "user_id", userID, "error", err, "response_length", len(raw))
		return nil, apperr.Upstream(msgGenerationFailed, err)
	}
	plan, err := generated.ToPlan(userID, assessment, s.now(), s.opts.Location)
	if err != nil {
		log.Error("Plan response rejected", "user_id", userID, "error", err)
		return nil, apperr.Upstream(msgGenerationFailed, err)
	}
	if len(plan.Milestones) < expectedMilestones {
		log.Warn("Plan response has fewer milestones than requested",
			"user_id", userID, "milestone_count", len(plan.Milestones), "expected", expectedMilestones)
	}

	if err := s.plans.ReplaceActivePlan(ctx, plan); err != nil {
		log.Error("Failed to store generated plan", "user_id", userID, "error", err)
		return nil, fmt.Errorf("store plan: %w", err)
	}

	log.Info("Plan generated successfully",
		"user_id", userID,
		"plan_id", plan.ID,
		"intensity", plan.Intensity,
		"task_count", len(plan.Tasks),
		"milestone_count", len(plan.Milestones),
	)
	return plan, nil
}

func (s *planService) GetCurrentPlan(ctx context.Context, userID string) (*CurrentPlan, error) {
	plan, err := s.plans.GetActivePlan(ctx, userID)
	if err != nil {
		scoped(ctx, s.log, "PlanService").Error("Get plan error", "user_id", userID, "error", err)
		return nil, fmt.Errorf("load active plan: %w", err)
	}
	if plan == nil {
		return nil, apperr.NotFound(msgNoActivePlan)
	}
	return &CurrentPlan{
		GrowthPlan:        plan,
		NeedsReassessment: s.baselines.NeedsReassessment(ctx, userID, DefaultReassessmentDays),
	}, nil
}
