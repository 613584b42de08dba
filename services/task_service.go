package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"stackedwins/apperr"
	"stackedwins/logger"
	"stackedwins/models"
	"stackedwins/repository"
)

const (
	ModeMinimum  = "minimum"
	ModeStandard = "standard"

	defaultCheckInScore = 5
	minimumExtraTasks   = 2
)

const (
	msgTaskIDRequired = "Task ID is required"
	msgTaskNotOwned   = "Task not found or does not belong to your active plan"
	msgInvalidMode    = `Mode must be "minimum" or "standard"`
	msgTaskCompleted  = "Task completed successfully"
	msgTaskRepeated   = "Task already completed today"
)

// CompletionResult reports the outcome of CompleteTask. A repeated completion
// is still a success.
type CompletionResult struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	AlreadyCompleted bool   `json:"alreadyCompleted"`
}

// TaskService serves the daily task view.
type TaskService interface {
	// GetTodayTasks lists the active plan's tasks by order, each marked with
	// whether it was completed today. No active plan yields an empty list.
	GetTodayTasks(ctx context.Context, userID string) ([]models.TodayTask, error)
	// CompleteTask records today's completion of a task on the active plan.
	// It is idempotent per user, task and day.
	CompleteTask(ctx context.Context, userID, taskID string) (*CompletionResult, error)
	// AdjustTodayPlan filters today's tasks for the given mode without
	// changing any data.
	AdjustTodayPlan(ctx context.Context, userID, mode string) ([]models.TodayTask, error)
}

type taskService struct {
	plans    repository.PlanRepository
	checkIns repository.CheckInRepository
	metrics  MetricsUpdater
	now      Clock
	loc      *time.Location
	log      *logger.Logger
}

func NewTaskService(plans repository.PlanRepository, checkIns repository.CheckInRepository, metrics MetricsUpdater, now Clock, loc *time.Location, log *logger.Logger) TaskService {
	if loc == nil {
		loc = time.Local
	}
	return &taskService{
		plans:    plans,
		checkIns: checkIns,
		metrics:  metrics,
		now:      orNow(now),
		loc:      loc,
		log:      orNop(log),
	}
}

func (s *taskService) today() time.Time {
	return startOfDay(s.now(), s.loc)
}

func (s *taskService) GetTodayTasks(ctx context.Context, userID string) ([]models.TodayTask, error) {
	plan, err := s.plans.GetActivePlan(ctx, userID)
	if err != nil {
		scoped(ctx, s.log, "TaskService").Error("Get today tasks error", "user_id", userID, "error", err)
		return nil, fmt.Errorf("load active plan: %w", err)
	}
	if plan == nil {
		return []models.TodayTask{}, nil
	}

	checkIn, err := s.checkIns.GetByDate(ctx, userID, s.today())
	if err != nil {
		return nil, fmt.Errorf("load today's check-in: %w", err)
	}
	done := make(map[string]bool)
	if checkIn != nil {
		for _, c := range checkIn.Completions {
			done[c.TaskID] = true
		}
	}

	tasks := make([]models.TodayTask, 0, len(plan.Tasks))
	for _, t := range plan.Tasks {
		tasks = append(tasks, models.TodayTask{Task: t, Completed: done[t.ID]})
	}
	return tasks, nil
}

func (s *taskService) CompleteTask(ctx context.Context, userID, taskID string) (*CompletionResult, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, apperr.Validation(msgTaskIDRequired)
	}
	log := scoped(ctx, s.log, "TaskService")

	task, err := s.plans.GetActiveTask(ctx, userID, taskID)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	if task == nil {
		return nil, apperr.NotFound(msgTaskNotOwned)
	}

	checkIn, err := s.checkIns.GetOrCreate(ctx, &models.DailyCheckIn{
		UserID: userID,
		Date:   s.today(),
		Energy: defaultCheckInScore,
		Stress: defaultCheckInScore,
	})
	if err != nil {
		log.Error("Complete task error", "user_id", userID, "task_id", taskID, "error", err)
		return nil, fmt.Errorf("get or create today's check-in: %w", err)
	}

	created, err := s.checkIns.CreateCompletion(ctx, &models.TaskCompletion{
		TaskID:      task.ID,
		CheckInID:   checkIn.ID,
		CompletedAt: s.now(),
	})
	if err != nil {
		log.Error("Complete task error", "user_id", userID, "task_id", taskID, "error", err)
		return nil, fmt.Errorf("record completion: %w", err)
	}
	if !created {
		return &CompletionResult{Success: true, Message: msgTaskRepeated, AlreadyCompleted: true}, nil
	}

	s.metrics.UpdateProgressMetrics(ctx, userID)
	log.Info("Task completed", "user_id", userID, "task_id", taskID, "check_in_id", checkIn.ID)
	return &CompletionResult{Success: true, Message: msgTaskCompleted}, nil
}

func (s *taskService) AdjustTodayPlan(ctx context.Context, userID, mode string) ([]models.TodayTask, error) {
	if mode != ModeMinimum && mode != ModeStandard {
		return nil, apperr.Validation(msgInvalidMode)
	}
	tasks, err := s.GetTodayTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	if mode == ModeStandard {
		return tasks, nil
	}
	return SelectMinimum(tasks), nil
}

// SelectMinimum keeps the first anchor task, whatever its state, and the two
// smallest incomplete non-anchor tasks. The result is ordered by estimated
// minutes, ties keeping plan order.
func SelectMinimum(tasks []models.TodayTask) []models.TodayTask {
	var (
		anchor *models.TodayTask
		rest   []models.TodayTask
	)
	for i := range tasks {
		t := tasks[i]
		if t.IsAnchorWin {
			if anchor == nil {
				anchor = &t
			}
			continue
		}
		if !t.Completed {
			rest = append(rest, t)
		}
	}
	byMinutes := func(s []models.TodayTask) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].EstimatedMinutes < s[j].EstimatedMinutes })
	}
	byMinutes(rest)
	if len(rest) > minimumExtraTasks {
		rest = rest[:minimumExtraTasks]
	}

	out := make([]models.TodayTask, 0, len(rest)+1)
	if anchor != nil {
		out = append(out, *anchor)
	}
	out = append(out, rest...)
	byMinutes(out)
	return out
}
