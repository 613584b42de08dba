package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stackedwins/apperr"
	"stackedwins/models"
)

func TestJournalService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Entry linked to an owned milestone", func(t *testing.T) {
		journal := new(MockJournalRepository)
		plans := new(MockPlanRepository)
		plans.On("MilestoneOwnedBy", mock.Anything, "user-1", "m1").Return(true, nil).Once()
		journal.On("Create", mock.Anything, mock.MatchedBy(func(e *models.JournalEntry) bool {
			return e.UserID == "user-1" && e.Content == "Walked twice" && e.Title == nil &&
				e.Mood != nil && *e.Mood == models.MoodProud && e.Tags != nil && *e.MilestoneID == "m1"
		})).Return(nil).Once()

		entry, err := NewJournalService(journal, plans, nil).Create(ctx, "user-1", JournalInput{
			Title:       strPtr(""),
			Content:     strPtr(" Walked twice "),
			Mood:        strPtr("proud"),
			MilestoneID: strPtr("m1"),
		})

		require.NoError(t, err)
		assert.Empty(t, entry.Tags)
		journal.AssertExpectations(t)
		plans.AssertExpectations(t)
	})

	t.Run("Foreign milestone", func(t *testing.T) {
		journal := new(MockJournalRepository)
		plans := new(MockPlanRepository)
		plans.On("MilestoneOwnedBy", mock.Anything, "user-1", "m9").Return(false, nil).Once()

		_, err := NewJournalService(journal, plans, nil).Create(ctx, "user-1", JournalInput{
			Content:     strPtr("text"),
			MilestoneID: strPtr("m9"),
		})

		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Equal(t, msgMilestoneNotOwned, apperr.PublicMessage(err))
		journal.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Missing content", func(t *testing.T) {
		_, err := NewJournalService(new(MockJournalRepository), new(MockPlanRepository), nil).
			Create(ctx, "user-1", JournalInput{Content: strPtr("  ")})
		assert.Equal(t, msgJournalContent, apperr.PublicMessage(err))
	})

	t.Run("Unknown mood", func(t *testing.T) {
		_, err := NewJournalService(new(MockJournalRepository), new(MockPlanRepository), nil).
			Create(ctx, "user-1", JournalInput{Content: strPtr("text"), Mood: strPtr("angry")})
		assert.Equal(t, msgJournalMood, apperr.PublicMessage(err))
	})
}

func TestJournalService_List(t *testing.T) {
	journal := new(MockJournalRepository)
	journal.On("List", mock.Anything, models.JournalFilter{UserID: "user-1", Mood: "proud", Limit: DefaultJournalLimit}).
		Return([]models.JournalEntry{{ID: "j1"}}, int64(12), nil).Once()

	page, err := NewJournalService(journal, nil, nil).List(context.Background(), models.JournalFilter{UserID: "user-1", Mood: "proud", Offset: -3})

	require.NoError(t, err)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, DefaultJournalLimit, page.Limit)
	assert.Zero(t, page.Offset)
	assert.Len(t, page.Entries, 1)
	journal.AssertExpectations(t)
}

func TestJournalService_Update(t *testing.T) {
	ctx := context.Background()
	existing := func() *models.JournalEntry {
		mood := models.MoodNeutral
		return &models.JournalEntry{ID: "j1", UserID: "user-1", Title: strPtr("Day 1"), Content: "old", Mood: &mood, Tags: []string{"a"}}
	}

	t.Run("Only provided fields change", func(t *testing.T) {
		journal := new(MockJournalRepository)
		journal.On("Get", mock.Anything, "user-1", "j1").Return(existing(), nil).Once()
		journal.On("Save", mock.Anything, mock.AnythingOfType("*models.JournalEntry")).Return(nil).Once()

		entry, err := NewJournalService(journal, nil, nil).Update(ctx, "user-1", "j1", JournalInput{Content: strPtr("new")})

		require.NoError(t, err)
		assert.Equal(t, "new", entry.Content)
		assert.Equal(t, "Day 1", *entry.Title)
		assert.Equal(t, models.MoodNeutral, *entry.Mood)
		assert.Equal(t, []string{"a"}, []string(entry.Tags))
	})

	t.Run("Empty mood clears it", func(t *testing.T) {
		journal := new(MockJournalRepository)
		journal.On("Get", mock.Anything, "user-1", "j1").Return(existing(), nil).Once()
		journal.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

		entry, err := NewJournalService(journal, nil, nil).Update(ctx, "user-1", "j1", JournalInput{Mood: strPtr("")})

		require.NoError(t, err)
		assert.Nil(t, entry.Mood)
	})

	t.Run("Blank content rejected", func(t *testing.T) {
		journal := new(MockJournalRepository)
		journal.On("Get", mock.Anything, "user-1", "j1").Return(existing(), nil).Once()

		_, err := NewJournalService(journal, nil, nil).Update(ctx, "user-1", "j1", JournalInput{Content: strPtr(" ")})

		assert.Equal(t, msgJournalContentEmpty, apperr.PublicMessage(err))
		journal.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Entry of another user", func(t *testing.T) {
		journal := new(MockJournalRepository)
		journal.On("Get", mock.Anything, "user-2", "j1").Return(nil, nil).Once()

		_, err := NewJournalService(journal, nil, nil).Update(ctx, "user-2", "j1", JournalInput{Content: strPtr("x")})

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestJournalService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes an owned entry", func(t *testing.T) {
		journal := new(MockJournalRepository)
		journal.On("Get", mock.Anything, "user-1", "j1").Return(&models.JournalEntry{ID: "j1"}, nil).Once()
		journal.On("Delete", mock.Anything, "user-1", "j1").Return(nil).Once()

		require.NoError(t, NewJournalService(journal, nil, nil).Delete(ctx, "user-1", "j1"))
		journal.AssertExpectations(t)
	})

	t.Run("Missing entry", func(t *testing.T) {
		journal := new(MockJournalRepository)
		journal.On("Get", mock.Anything, "user-1", "j2").Return(nil, nil).Once()

		err := NewJournalService(journal, nil, nil).Delete(ctx, "user-1", "j2")

		assert.Equal(t, msgJournalNotFound, apperr.PublicMessage(err))
		journal.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})
}
