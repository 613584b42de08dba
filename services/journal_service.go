package services

import (
	"context"
	"fmt"
	"strings"

	"stackedwins/apperr"
	"stackedwins/logger"
	"stackedwins/models"
	"stackedwins/repository"
)

const (
	DefaultJournalLimit = 50

	msgJournalContent      = "Journal content is required"
	msgJournalContentEmpty = "Journal content cannot be empty"
	msgJournalMood         = "Mood must be one of: grateful, reflective, motivated, challenged, proud, neutral"
	msgMilestoneNotOwned   = "Milestone not found or does not belong to your plan"
	msgJournalNotFound     = "Journal entry not found"
)

type JournalInput struct {
	Title       *string  `json:"title"`
	Content     *string  `json:"content"`
	Mood        *string  `json:"mood"`
	Tags        []string `json:"tags"`
	MilestoneID *string  `json:"milestoneId"`
}

// JournalPage is one page of a journal listing.
type JournalPage struct {
	Entries []models.JournalEntry `json:"entries"`
	Total   int64                 `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

type JournalService interface {
	Create(ctx context.Context, userID string, in JournalInput) (*models.JournalEntry, error)
	Get(ctx context.Context, userID, id string) (*models.JournalEntry, error)
	List(ctx context.Context, f models.JournalFilter) (*JournalPage, error)
	// Update changes only the fields present in the input.
	Update(ctx context.Context, userID, id string, in JournalInput) (*models.JournalEntry, error)
	Delete(ctx context.Context, userID, id string) error
}

type journalService struct {
	journal repository.JournalRepository
	plans   repository.PlanRepository
	log     *logger.Logger
}

func NewJournalService(journal repository.JournalRepository, plans repository.PlanRepository, log *logger.Logger) JournalService {
	return &journalService{journal: journal, plans: plans, log: orNop(log)}
}

func validMood(mood *string) error {
	if mood != nil && *mood != "" && !models.Mood(*mood).Valid() {
		return apperr.Validation(msgJournalMood)
	}
	return nil
}

// optional maps an absent or empty string to nil.
func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func moodOf(s *string) *models.Mood {
	if s = optional(s); s == nil {
		return nil
	}
	m := models.Mood(*s)
	return &m
}

func (s *journalService) Create(ctx context.Context, userID string, in JournalInput) (*models.JournalEntry, error) {
	if in.Content == nil || strings.TrimSpace(*in.Content) == "" {
		return nil, apperr.Validation(msgJournalContent)
	}
	if err := validMood(in.Mood); err != nil {
		return nil, err
	}
	milestoneID := optional(in.MilestoneID)
	if milestoneID != nil {
		owned, err := s.plans.MilestoneOwnedBy(ctx, userID, *milestoneID)
		if err != nil {
			return nil, fmt.Errorf("check milestone owner: %w", err)
		}
		if !owned {
			return nil, apperr.NotFound(msgMilestoneNotOwned)
		}
	}

	entry := &models.JournalEntry{
		UserID:      userID,
		Title:       optional(in.Title),
		Content:     strings.TrimSpace(*in.Content),
		Mood:        moodOf(in.Mood),
		Tags:        nonNil(in.Tags),
		MilestoneID: milestoneID,
	}
	if err := s.journal.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create journal entry: %w", err)
	}
	scoped(ctx, s.log, "JournalService").Info("Journal entry created", "user_id", userID, "entry_id", entry.ID)
	return entry, nil
}

func (s *journalService) Get(ctx context.Context, userID, id string) (*models.JournalEntry, error) {
	entry, err := s.journal.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("load journal entry: %w", err)
	}
	if entry == nil {
		return nil, apperr.NotFound(msgJournalNotFound)
	}
	return entry, nil
}

func (s *journalService) List(ctx context.Context, f models.JournalFilter) (*JournalPage, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultJournalLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	entries, total, err := s.journal.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	return &JournalPage{Entries: entries, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *journalService) Update(ctx context.Context, userID, id string, in JournalInput) (*models.JournalEntry, error) {
	entry, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		return nil, apperr.Validation(msgJournalContentEmpty)
	}
	if err := validMood(in.Mood); err != nil {
		return nil, err
	}

	if in.Title != nil {
		entry.Title = optional(in.Title)
	}
	if in.Content != nil {
		entry.Content = strings.TrimSpace(*in.Content)
	}
	if in.Mood != nil {
		entry.Mood = moodOf(in.Mood)
	}
	if in.Tags != nil {
		entry.Tags = in.Tags
	}
	if err := s.journal.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("update journal entry: %w", err)
	}
	scoped(ctx, s.log, "JournalService").Info("Journal entry updated", "user_id", userID, "entry_id", id)
	return entry, nil
}

func (s *journalService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.journal.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	scoped(ctx, s.log, "JournalService").Info("Journal entry deleted", "user_id", userID, "entry_id", id)
	return nil
}
