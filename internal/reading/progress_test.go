package reading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readtrail/readtrail/internal/entities"
)

func TestProgressService_StartReading(t *testing.T) {
	t.Run("marks the book as currently reading", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		pages := 320
		require.NoError(t, env.progressService.StartReading(1, book.ID, &pages))

		updated := reloadBook(t, env, book.ID)
		assert.Equal(t, entities.ReadingStatusReading, updated.ReadingStatus)
		assert.NotNil(t, updated.ReadingStartedAt)
		assert.Equal(t, 0, updated.CurrentPage)
		require.NotNil(t, updated.Pages)
		assert.Equal(t, 320, *updated.Pages)
	})

	t.Run("rejects a non-positive page count", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		zero := 0
		err := env.progressService.StartReading(1, book.ID, &zero)
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("foreign book is not found", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		err := env.progressService.StartReading(2, book.ID, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestProgressService_AddSession(t *testing.T) {
	t.Run("auto-provisions a public journey", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		session, err := env.progressService.AddSession(1, book.ID, SessionInput{PagesRead: 15})
		require.NoError(t, err)

		journey := reloadJourney(t, env, session.JourneyID)
		assert.Equal(t, entities.JourneyStatusActive, journey.Status)
		assert.Equal(t, entities.VisibilityPublic, journey.Visibility)
		assert.Equal(t, "First Read", journey.SessionName)

		updated := reloadBook(t, env, book.ID)
		assert.Equal(t, 15, updated.CurrentPage)
		assert.Equal(t, entities.ReadingStatusReading, updated.ReadingStatus)

		assert.Len(t, env.publisher.eventsOfType(entities.ActivitySessionLogged), 1)
	})

	t.Run("reuses the existing active journey", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)
		journey, err := env.journeyService.Create(1, book.ID, entities.VisibilityPublic, "")
		require.NoError(t, err)

		session, err := env.progressService.AddSession(1, book.ID, SessionInput{PagesRead: 10})
		require.NoError(t, err)
		assert.Equal(t, journey.ID, session.JourneyID)
	})

	t.Run("end_page wins over pages_read accumulation", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		_, err := env.progressService.AddSession(1, book.ID, SessionInput{PagesRead: 10})
		require.NoError(t, err)
		_, err = env.progressService.AddSession(1, book.ID, SessionInput{
			PagesRead: 5,
			EndPage:   intPtr(42),
		})
		require.NoError(t, err)

		assert.Equal(t, 42, reloadBook(t, env, book.ID).CurrentPage)
	})

	t.Run("reaching the known page total completes the book", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, intPtr(100))

		_, err := env.progressService.AddSession(1, book.ID, SessionInput{PagesRead: 100})
		require.NoError(t, err)

		updated := reloadBook(t, env, book.ID)
		assert.Equal(t, entities.ReadingStatusCompleted, updated.ReadingStatus)
		assert.NotNil(t, updated.ReadingFinishedAt)
	})

	t.Run("unknown page total never auto-completes", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		_, err := env.progressService.AddSession(1, book.ID, SessionInput{PagesRead: 5000})
		require.NoError(t, err)

		assert.Equal(t, entities.ReadingStatusReading, reloadBook(t, env, book.ID).ReadingStatus)
	})

	t.Run("session date defaults to now", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		session, err := env.progressService.AddSession(1, book.ID, SessionInput{PagesRead: 1})
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), session.SessionDate, time.Minute)
	})

	t.Run("negative inputs are rejected", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		var validation *ValidationError
		_, err := env.progressService.AddSession(1, book.ID, SessionInput{PagesRead: -1})
		assert.ErrorAs(t, err, &validation)

		_, err = env.progressService.AddSession(1, book.ID, SessionInput{
			PagesRead:       1,
			DurationMinutes: intPtr(-5),
		})
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("a reader who does not own the book never mutates its row", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, intPtr(100))

		session, err := env.progressService.AddSession(2, book.ID, SessionInput{PagesRead: 100})
		require.NoError(t, err)
		assert.Equal(t, uint(2), session.UserID)

		// The owner's progress fields are untouched by a stranger's session.
		updated := reloadBook(t, env, book.ID)
		assert.Equal(t, 0, updated.CurrentPage)
		assert.Equal(t, entities.ReadingStatusToRead, updated.ReadingStatus)
		assert.Nil(t, updated.ReadingStartedAt)
	})
}

func TestProgressService_UpdateProgress(t *testing.T) {
	t.Run("sets the current page", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, intPtr(200))

		require.NoError(t, env.progressService.UpdateProgress(1, book.ID, 50))

		updated := reloadBook(t, env, book.ID)
		assert.Equal(t, 50, updated.CurrentPage)
		assert.Equal(t, entities.ReadingStatusReading, updated.ReadingStatus)
	})

	t.Run("completes the book at the page total", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, intPtr(200))

		require.NoError(t, env.progressService.UpdateProgress(1, book.ID, 200))

		updated := reloadBook(t, env, book.ID)
		assert.Equal(t, entities.ReadingStatusCompleted, updated.ReadingStatus)
		assert.NotNil(t, updated.ReadingFinishedAt)
	})

	t.Run("negative page is rejected", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		err := env.progressService.UpdateProgress(1, book.ID, -1)
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("foreign book is not found", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		err := env.progressService.UpdateProgress(2, book.ID, 10)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestProgressService_FinishReading(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	book := createTestBook(t, env, 1, intPtr(300))

	rating := 5
	review := "a keeper"
	require.NoError(t, env.progressService.FinishReading(1, book.ID, &rating, &review))

	updated := reloadBook(t, env, book.ID)
	assert.Equal(t, entities.ReadingStatusCompleted, updated.ReadingStatus)
	assert.Equal(t, 300, updated.CurrentPage)

	// The auto-created journey carries the rating and review.
	var journey entities.ReadingJourney
	require.NoError(t, env.db.Where("book_id = ? AND user_id = ?", book.ID, 1).First(&journey).Error)
	assert.Equal(t, entities.JourneyStatusCompleted, journey.Status)
	require.NotNil(t, journey.Rating)
	assert.Equal(t, 5, *journey.Rating)
}

func TestProgressService_DeleteSession(t *testing.T) {
	t.Run("removes the session without recomputing the book", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		session, err := env.progressService.AddSession(1, book.ID, SessionInput{PagesRead: 30})
		require.NoError(t, err)
		require.Equal(t, 30, reloadBook(t, env, book.ID).CurrentPage)

		require.NoError(t, env.progressService.DeleteSession(1, session.ID))

		sessions, err := env.progressService.GetSessionsForBook(1, book.ID)
		require.NoError(t, err)
		assert.Empty(t, sessions)

		// current_page deliberately stays where the session left it
		assert.Equal(t, 30, reloadBook(t, env, book.ID).CurrentPage)
	})

	t.Run("foreign session is not found", func(t *testing.T) {
		env, cleanup := setupTestEnv(t)
		defer cleanup()
		book := createTestBook(t, env, 1, nil)

		session, err := env.progressService.AddSession(1, book.ID, SessionInput{PagesRead: 30})
		require.NoError(t, err)

		err = env.progressService.DeleteSession(2, session.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestProgressService_GetBookStats(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	book := createTestBook(t, env, 1, nil)

	day1 := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 5, 11, 9, 0, 0, 0, time.UTC)

	_, err := env.progressService.AddSession(1, book.ID, SessionInput{PagesRead: 10, SessionDate: &day1, DurationMinutes: intPtr(20)})
	require.NoError(t, err)
	_, err = env.progressService.AddSession(1, book.ID, SessionInput{PagesRead: 25, SessionDate: &day1})
	require.NoError(t, err)

	// Second journey after completing the first
	journey, err := env.journeyService.GetActive(1, book.ID)
	require.NoError(t, err)
	require.NoError(t, env.journeyService.Complete(1, journey.ID, nil, nil))
	_, err = env.progressService.AddSession(1, book.ID, SessionInput{PagesRead: 5, SessionDate: &day2})
	require.NoError(t, err)

	// Book stats span every journey's sessions.
	stats, err := env.progressService.GetBookStats(1, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalSessions)
	assert.Equal(t, 40, stats.TotalPagesRead)
	assert.Equal(t, 2, stats.ReadingDays)
	assert.Equal(t, 25, stats.LongestSession)
	assert.Equal(t, 20, stats.AverageTimePerSession)
}

func TestProgressService_UpdateTotalPages(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	book := createTestBook(t, env, 1, nil)

	require.NoError(t, env.progressService.UpdateTotalPages(1, book.ID, 412))
	updated := reloadBook(t, env, book.ID)
	require.NotNil(t, updated.Pages)
	assert.Equal(t, 412, *updated.Pages)

	err := env.progressService.UpdateTotalPages(1, book.ID, 0)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}
