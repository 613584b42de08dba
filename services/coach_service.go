package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"stackedwins/apperr"
	"stackedwins/logger"
	"stackedwins/models"
	"stackedwins/repository"
)

const (
	DefaultCoachHistoryLimit = 50
	MaxCoachMessageLength    = 1000

	coachHistoryTurns      = 5
	coachRecentCheckIns    = 7
	coachCompletionsLoaded = 10
	coachCompletionsShown  = 5
	coachMaxTokens         = 500
	coachContextWindow     = 7 * 24 * time.Hour

	msgCoachMessageRequired = "Message is required"
	msgCoachMessageTooLong  = "Message must be 1000 characters or less"
	msgCoachFailed          = "The coach is unavailable right now. Please try again."
)

const coachRules = `You are a wellness coach for the Stacked Wins app. Your role is to:

- Provide grounded, supportive guidance
- Help users stay on track with their growth plan
- Offer perspective and reframe challenges
- Encourage discipline and consistency
- Keep responses concise and actionable
- Use the user's preferred tone (from their baseline)
- Reference their baseline and progress when relevant
- Never make therapy claims or medical advice`

const coachClosing = "Respond in a supportive, structured way. Keep responses under 200 words unless the user asks for more detail."

// CoachReply is returned for one chat exchange.
type CoachReply struct {
	ID        string           `json:"id"`
	Message   string           `json:"message"`
	Response  string           `json:"response"`
	Role      models.CoachRole `json:"role"`
	CreatedAt time.Time        `json:"createdAt"`
}

// CoachService defines the AI coach chat.
type CoachService interface {
	Chat(ctx context.Context, userID, message string) (*CoachReply, error)
	// History pairs each user message with the reply that followed it,
	// oldest first.
	History(ctx context.Context, userID string, limit int) ([]models.CoachConversation, error)
}

type coachService struct {
	chats     repository.CoachRepository
	plans     repository.PlanRepository
	checkIns  repository.CheckInRepository
	metrics   repository.MetricsRepository
	baselines BaselineService
	llm       Completer
	opts      PlanOptions
	now       Clock
	log       *logger.Logger
}

func NewCoachService(
	chats repository.CoachRepository,
	plans repository.PlanRepository,
	checkIns repository.CheckInRepository,
	metrics repository.MetricsRepository,
	baselines BaselineService,
	llm Completer,
	opts PlanOptions,
	now Clock,
	log *logger.Logger,
) CoachService {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &coachService{
		chats:     chats,
		plans:     plans,
		checkIns:  checkIns,
		metrics:   metrics,
		baselines: baselines,
		llm:       llm,
		opts:      opts,
		now:       orNow(now),
		log:       orNop(log),
	}
}

func (s *coachService) Chat(ctx context.Context, userID, message string) (*CoachReply, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperr.Validation(msgCoachMessageRequired)
	}
	if utf8.RuneCountInString(message) > MaxCoachMessageLength {
		return nil, apperr.Validation(msgCoachMessageTooLong)
	}
	log := scoped(ctx, s.log, "CoachService")

	coachingContext, err := s.buildContext(ctx, userID)
	if err != nil {
		log.Error("Get coaching context error", "user_id", userID, "error", err)
		return nil, err
	}
	recent, err := s.chats.Recent(ctx, userID, coachHistoryTurns)
	if err != nil {
		return nil, fmt.Errorf("load coach history: %w", err)
	}

	messages := make([]ChatMessage, 0, len(recent)+2)
	messages = append(messages, ChatMessage{
		Role:    RoleSystem,
		Content: coachRules + "\n\n" + coachingContext + "\n\n" + coachClosing,
	})
	for _, c := range recent {
		content := c.Message
		if c.Role == models.CoachRoleAssistant {
			content = c.Response
		}
		messages = append(messages, ChatMessage{Role: string(c.Role), Content: content})
	}
	messages = append(messages, ChatMessage{Role: RoleUser, Content: message})

	log.Info("Sending coach message", "user_id", userID, "message_length", len(message))
	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	response, err := s.llm.Complete(callCtx, CompletionRequest{
		Messages:    messages,
		Temperature: s.opts.Temperature,
		MaxTokens:   coachMaxTokens,
	})
	if err != nil {
		log.Error("Coach message error", "user_id", userID, "error", err)
		return nil, apperr.Upstream(msgCoachFailed, err)
	}

	now := s.now()
	err = s.chats.SaveExchange(ctx, []models.CoachChat{
		{UserID: userID, Role: models.CoachRoleUser, Message: message, CreatedAt: now},
		{UserID: userID, Role: models.CoachRoleAssistant, Response: response, CreatedAt: now.Add(time.Millisecond)},
	})
	if err != nil {
		return nil, fmt.Errorf("store coach exchange: %w", err)
	}

	log.Info("Coach response generated", "user_id", userID, "response_length", len(response))
	return &CoachReply{
		ID:        fmt.Sprintf("chat-%d", now.UnixMilli()),
		Message:   message,
		Response:  response,
		Role:      models.CoachRoleAssistant,
		CreatedAt: now,
	}, nil
}

// buildContext renders what the coach knows about the user.
func (s *coachService) buildContext(ctx context.Context, userID string) (string, error) {
	summary := s.baselines.BaselineSummary(ctx, userID)

	plan, err := s.plans.GetActivePlan(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load active plan: %w", err)
	}
	metrics, err := s.metrics.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load metrics: %w", err)
	}
	since := s.now().Add(-coachContextWindow)
	checkIns, err := s.checkIns.ListSince(ctx, userID, since)
	if err != nil {
		return "", fmt.Errorf("load recent check-ins: %w", err)
	}
	if len(checkIns) > coachRecentCheckIns {
		checkIns = checkIns[:coachRecentCheckIns]
	}
	completions, err := s.checkIns.RecentCompletions(ctx, userID, since, coachCompletionsLoaded)
	if err != nil {
		return "", fmt.Errorf("load recent completions: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a wellness coach helping a user with their personal growth journey.\n\n")
	b.WriteString(summary + "\n\n")

	if plan != nil {
		b.WriteString("Current Plan:\n")
		fmt.Fprintf(&b, "- Vision: %s\n", plan.Vision)
		fmt.Fprintf(&b, "- Intensity: %s\n", plan.Intensity)
		fmt.Fprintf(&b, "- Active Milestones: %d\n", len(plan.Milestones))
		fmt.Fprintf(&b, "- Daily Tasks: %d\n\n", len(plan.Tasks))
	}
	if metrics != nil {
		b.WriteString("Progress:\n")
		fmt.Fprintf(&b, "- Wins Stacked: %d\n", metrics.WinsStacked)
		fmt.Fprintf(&b, "- Consistency Rate: %.1f%%\n", metrics.ConsistencyRate)
		fmt.Fprintf(&b, "- Current Streak: %d days\n\n", metrics.BaselineStreak)
	}
	if len(checkIns) > 0 {
		var energy, stress float64
		for _, c := range checkIns {
			energy += float64(c.Energy)
			stress += float64(c.Stress)
		}
		n := float64(len(checkIns))
		b.WriteString("Recent Check-ins (last 7 days):\n")
		fmt.Fprintf(&b, "- Average Energy: %.1f/10\n", energy/n)
		fmt.Fprintf(&b, "- Average Stress: %.1f/10\n\n", stress/n)
	}
	if len(completions) > 0 {
		b.WriteString("Recent Task Completions:\n")
		for i, c := range completions {
			if i == coachCompletionsShown {
				break
			}
			if c.Task != nil {
				fmt.Fprintf(&b, "- %s\n", c.Task.Title)
			}
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (s *coachService) History(ctx context.Context, userID string, limit int) ([]models.CoachConversation, error) {
	if limit <= 0 {
		limit = DefaultCoachHistoryLimit
	}
	rows, err := s.chats.History(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("load coach history: %w", err)
	}
	return GroupConversations(rows), nil
}

// GroupConversations folds chat rows, oldest first, into exchanges. An
// assistant row with no preceding user row is dropped.
func GroupConversations(rows []models.CoachChat) []models.CoachConversation {
	out := []models.CoachConversation{}
	var current *models.CoachConversation
	for _, r := range rows {
		switch r.Role {
		case models.CoachRoleUser:
			if current != nil {
				out = append(out, *current)
			}
			current = &models.CoachConversation{
				ID:        r.ID,
				Message:   r.Message,
				Role:      models.CoachRoleUser,
				CreatedAt: r.CreatedAt,
			}
		case models.CoachRoleAssistant:
			if current != nil {
				current.Response = r.Response
				current.CreatedAt = r.CreatedAt
			}
		}
	}
	if current != nil {
		out = append(out, *current)
	}
	return out
}
