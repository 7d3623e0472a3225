package reading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readtrail/readtrail/internal/entities"
)

func TestJourneyService_Create(t *testing.T) {
	t.Run("first journey is named First Read", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		journey, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)

		assert.Equal(t, "First Read", journey.SessionName)
		assert.Equal(t, entities.JourneyStatusActive, journey.Status)
		assert.False(t, journey.StartedAt.IsZero())

		updated := reloadBook(t, env, book.ID)
		assert.Equal(t, entities.ReadingStatusReading, updated.ReadingStatus)
		assert.NotNil(t, updated.ReadingStartedAt)
	})

	t.Run("second active journey is refused with the blocker's ID", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		first, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)

		_, err = env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, first.ID, conflict.ActiveJourneyID)
	})

	t.Run("different users can hold active journeys on the same book", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		_, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)
		_, err = env.journeyService.Create(2, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)
	})

	t.Run("re-read gets a numbered name", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		first, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)
		require.NoError(t, env.journeyService.Complete(1, first.ID, nil, nil))

		second, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)
		assert.Equal(t, "Re-read #2", second.SessionName)
	})

	t.Run("unknown visibility is rejected", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		_, err := env.journeyService.Create(1, book.ID, entities.Visibility("friends"), "")
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("missing book is not found", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()

		_, err := env.journeyService.Create(1, 9999, entities.VisibilityPublic, "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("public journey publishes a book_started event", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		_, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)

		events := env.publisher.eventsOfType(entities.ActivityBookStarted)
		require.Len(t, events, 1)
		assert.Equal(t, book.ID, events[0].BookID)
	})

	t.Run("private journey publishes nothing", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		_, err := env.journeyService.Create(1, book.ID, entities.VisibilityPrivate, "")
		require.NoError(t, err)

		assert.Empty(t, env.publisher.events)
	})
}

// racingStore simulates a concurrent creator winning the insert race:
// the pre-check sees no active journey, but by the time our insert runs
// another one exists and the unique index rejects it.
type racingStore struct {
	JourneyStore
	env    *testEnv
	winner *entities.ReadingJourney
}

func (s *racingStore) Create(journey *entities.ReadingJourney) error {
	winner := &entities.ReadingJourney{
		BookID:      journey.BookID,
		UserID:      journey.UserID,
		Status:      entities.JourneyStatusActive,
		Visibility:  entities.VisibilityPublic,
		SessionName: "First Read",
		StartedAt:   time.Now(),
	}
	if err := s.env.db.Create(winner).Error; err != nil {
		return err
	}
	s.winner = winner
	return s.JourneyStore.Create(journey)
}

func TestJourneyService_CreateRace(t *testing.T) {
	t.Run("losing the insert race reports the winner", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		store := &racingStore{JourneyStore: env.journeys, env: env}
		service := NewJourneyService(store, env.sessions, env.books, env.publisher)

		_, err := service.Create(1, book.ID, entities.VisibilityPublic, "")
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, store.winner.ID, conflict.ActiveJourneyID)
	})

	t.Run("resolve-or-create settles on the race winner", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		store := &racingStore{JourneyStore: env.journeys, env: env}
		service := NewJourneyService(store, env.sessions, env.books, env.publisher)

		journey, err := service.ResolveOrCreateActive(1, book.ID)
		require.NoError(t, err)
		assert.Equal(t, store.winner.ID, journey.ID)
	})
}

func TestJourneyService_Complete(t *testing.T) {
	t.Run("stores rating and review and stamps finished_at", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)
		journey, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)

		rating := 4
		review := "loved it"
		require.NoError(t, env.journeyService.Complete(1, journey.ID, &rating, &review))

		updated := reloadJourney(t, env, journey.ID)
		assert.Equal(t, entities.JourneyStatusCompleted, updated.Status)
		require.NotNil(t, updated.FinishedAt)
		require.NotNil(t, updated.Rating)
		assert.Equal(t, 4, *updated.Rating)
		require.NotNil(t, updated.Review)
		assert.Equal(t, "loved it", *updated.Review)

		updatedBook := reloadBook(t, env, book.ID)
		assert.Equal(t, entities.ReadingStatusCompleted, updatedBook.ReadingStatus)
		assert.NotNil(t, updatedBook.ReadingFinishedAt)

		events := env.publisher.eventsOfType(entities.ActivityBookFinished)
		require.Len(t, events, 1)
	})

	t.Run("nil rating and review clear stored values", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)
		journey, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)

		rating := 3
		review := "first impression"
		require.NoError(t, env.journeyService.Complete(1, journey.ID, &rating, &review))
		require.NoError(t, env.journeyService.Complete(1, journey.ID, nil, nil))

		updated := reloadJourney(t, env, journey.ID)
		assert.Nil(t, updated.Rating)
		assert.Nil(t, updated.Review)
	})

	t.Run("out of range rating is rejected", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)
		journey, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)

		rating := 6
		err = env.journeyService.Complete(1, journey.ID, &rating, nil)
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("foreign journey is not found", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)
		journey, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)

		err = env.journeyService.Complete(2, journey.ID, nil, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestJourneyService_Abandon(t *testing.T) {
	t.Run("records the reason and stamps finished_at", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)
		journey, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)

		reason := "not my genre"
		require.NoError(t, env.journeyService.Abandon(1, journey.ID, &reason))

		updated := reloadJourney(t, env, journey.ID)
		assert.Equal(t, entities.JourneyStatusAbandoned, updated.Status)
		assert.NotNil(t, updated.FinishedAt)
		require.NotNil(t, updated.AbandonReason)
		assert.Equal(t, "not my genre", *updated.AbandonReason)

		// Abandoning does not touch the book row
		updatedBook := reloadBook(t, env, book.ID)
		assert.Equal(t, entities.ReadingStatusReading, updatedBook.ReadingStatus)
	})

	t.Run("only active journeys can be abandoned", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)
		journey, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)
		require.NoError(t, env.journeyService.Complete(1, journey.ID, nil, nil))

		err = env.journeyService.Abandon(1, journey.ID, nil)
		var transition *TransitionError
		require.ErrorAs(t, err, &transition)
		assert.Equal(t, entities.JourneyStatusCompleted, transition.From)
	})
}

func TestJourneyService_Archive(t *testing.T) {
	t.Run("completed journey can be archived", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)
		journey, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)
		require.NoError(t, env.journeyService.Complete(1, journey.ID, nil, nil))

		require.NoError(t, env.journeyService.Archive(1, journey.ID))
		assert.Equal(t, entities.JourneyStatusArchived, reloadJourney(t, env, journey.ID).Status)
	})

	t.Run("active journey cannot be archived", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)
		journey, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)

		err = env.journeyService.Archive(1, journey.ID)
		var transition *TransitionError
		assert.ErrorAs(t, err, &transition)
	})
}

func TestJourneyService_Reopen(t *testing.T) {
	t.Run("clears finished_at and keeps the abandon reason", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)
		journey, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)
		reason := "too long"
		require.NoError(t, env.journeyService.Abandon(1, journey.ID, &reason))

		require.NoError(t, env.journeyService.Reopen(1, journey.ID))

		updated := reloadJourney(t, env, journey.ID)
		assert.Equal(t, entities.JourneyStatusActive, updated.Status)
		assert.Nil(t, updated.FinishedAt)
		require.NotNil(t, updated.AbandonReason)
		assert.Equal(t, "too long", *updated.AbandonReason)
	})

	t.Run("reopening an active journey is an invalid transition", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)
		journey, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)

		err = env.journeyService.Reopen(1, journey.ID)
		var transition *TransitionError
		assert.ErrorAs(t, err, &transition)
	})

	t.Run("conflicts with another active journey without mutating", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)
		first, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)
		require.NoError(t, env.journeyService.Complete(1, first.ID, nil, nil))

		second, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)

		err = env.journeyService.Reopen(1, first.ID)
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, second.ID, conflict.ActiveJourneyID)
		assert.Equal(t, entities.JourneyStatusCompleted, reloadJourney(t, env, first.ID).Status)
	})
}

func TestJourneyService_Delete(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	book := createTestBook(t, env, 1, nil)
	journey, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
	require.NoError(t, err)

	_, err = env.progressService.AddSession(1, book.ID, SessionInput{PagesRead: 10})
	require.NoError(t, err)
	_, err = env.notesService.AddQuickNote(1, journey.ID, "short note", nil)
	require.NoError(t, err)

	require.NoError(t, env.journeyService.Delete(1, journey.ID))

	var sessionCount, thoughtCount int64
	env.db.Model(&entities.ReadingSession{}).Where("journey_id = ?", journey.ID).Count(&sessionCount)
	env.db.Model(&entities.ReadingThought{}).Where("journey_id = ?", journey.ID).Count(&thoughtCount)
	assert.Zero(t, sessionCount)
	assert.Zero(t, thoughtCount)

	err = env.journeyService.Delete(1, journey.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJourneyService_HideFromOwner(t *testing.T) {
	t.Run("book owner can hide another reader's journey", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)
		journey, err := env.journeyService.Create(2, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)

		require.NoError(t, env.journeyService.HideFromOwner(1, journey.ID, true))
		assert.True(t, reloadJourney(t, env, journey.ID).IsHiddenByOwner)

		require.NoError(t, env.journeyService.HideFromOwner(1, journey.ID, false))
		assert.False(t, reloadJourney(t, env, journey.ID).IsHiddenByOwner)
	})

	t.Run("journey owner cannot hide their own journey", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)
		journey, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)

		err = env.journeyService.HideFromOwner(1, journey.ID, true)
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("a bystander cannot hide anything", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)
		journey, err := env.journeyService.Create(2, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)

		err = env.journeyService.HideFromOwner(3, journey.ID, true)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestJourneyService_GetAll(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	book := createTestBook(t, env, 1, nil)

	mine, err := env.journeyService.Create(1, book.ID, entities.VisibilityPrivate, "")
	require.NoError(t, err)
	public, err := env.journeyService.Create(2, book.ID, entities.VisibilityPublic, "")
	require.NoError(t, err)
	_, err = env.journeyService.Create(3, book.ID, entities.VisibilityPrivate, "")
	require.NoError(t, err)
	hidden, err := env.journeyService.Create(4, book.ID, entities.VisibilityPublic, "")
	require.NoError(t, err)
	require.NoError(t, env.journeyService.HideFromOwner(1, hidden.ID, true))

	journeys, err := env.journeyService.GetAll(1, book.ID, 0)
	require.NoError(t, err)

	ids := make(map[uint]bool, len(journeys))
	for _, j := range journeys {
		ids[j.ID] = true
	}
	// Own private yes, other's public yes, other's private no, hidden no.
	assert.True(t, ids[mine.ID])
	assert.True(t, ids[public.ID])
	assert.Len(t, journeys, 2)
}

func TestJourneyService_GetActive(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	book := createTestBook(t, env, 1, nil)

	journey, err := env.journeyService.GetActive(1, book.ID)
	require.NoError(t, err)
	assert.Nil(t, journey)

	created, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
	require.NoError(t, err)
	_, err = env.progressService.AddSession(1, book.ID, SessionInput{PagesRead: 5})
	require.NoError(t, err)

	journey, err = env.journeyService.GetActive(1, book.ID)
	require.NoError(t, err)
	require.NotNil(t, journey)
	assert.Equal(t, created.ID, journey.ID)
	assert.Equal(t, int64(1), journey.SessionsCount)
}

func TestJourneyService_GetStats(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	book := createTestBook(t, env, 1, nil)
	journey, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
	require.NoError(t, err)

	_, err = env.progressService.AddSession(1, book.ID, SessionInput{PagesRead: 10, DurationMinutes: intPtr(30)})
	require.NoError(t, err)
	_, err = env.progressService.AddSession(1, book.ID, SessionInput{PagesRead: 20})
	require.NoError(t, err)

	stats, err := env.journeyService.GetStats(1, journey.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 30, stats.TotalPagesRead)
	assert.Equal(t, 30, stats.TotalTimeSpent)
	assert.Equal(t, 15, stats.AveragePagesPerSession)
	assert.Equal(t, 30, stats.AverageTimePerSession)

	_, err = env.journeyService.GetStats(2, journey.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJourneyService_RenameAndVisibility(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	book := createTestBook(t, env, 1, nil)
	journey, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
	require.NoError(t, err)

	require.NoError(t, env.journeyService.Rename(1, journey.ID, "Summer read"))
	require.NoError(t, env.journeyService.UpdateVisibility(1, journey.ID, entities.VisibilityPrivate))

	updated := reloadJourney(t, env, journey.ID)
	assert.Equal(t, "Summer read", updated.SessionName)
	assert.Equal(t, entities.VisibilityPrivate, updated.Visibility)

	err = env.journeyService.Rename(1, journey.ID, "")
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)

	err = env.journeyService.Rename(2, journey.ID, "not yours")
	assert.ErrorIs(t, err, ErrNotFound)
}
