package reading

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/readtrail/readtrail/internal/database"
	"github.com/readtrail/readtrail/internal/database/books"
	"github.com/readtrail/readtrail/internal/database/journeys"
	"github.com/readtrail/readtrail/internal/database/sessions"
	"github.com/readtrail/readtrail/internal/database/thoughts"
	"github.com/readtrail/readtrail/internal/entities"
)

// testEnv bundles the real repositories and services wired against a
// throwaway SQLite database, migrated the same way the server migrates.
type testEnv struct {
	db        *gorm.DB
	books     *books.Repository
	journeys  *journeys.Repository
	sessions  *sessions.Repository
	thoughts  *thoughts.Repository
	publisher *recordingPublisher

	journeyService  *JourneyService
	progressService *ProgressService
	notesService    *NotesService
}

func setupTestEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()
	dbPath := "./test_reading_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	env := &testEnv{
		db:        db,
		books:     books.NewRepository(db),
		journeys:  journeys.NewRepository(db),
		sessions:  sessions.NewRepository(db),
		thoughts:  thoughts.NewRepository(db),
		publisher: &recordingPublisher{},
	}
	env.journeyService = NewJourneyService(env.journeys, env.sessions, env.books, env.publisher)
	env.progressService = NewProgressService(env.books, env.sessions, env.journeyService, env.publisher)
	env.notesService = NewNotesService(env.thoughts, env.journeys)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}
	return env, cleanup
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	events []entities.ActivityEvent
}

func (p *recordingPublisher) Publish(event entities.ActivityEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) eventsOfType(eventType entities.ActivityType) []entities.ActivityEvent {
	var matched []entities.ActivityEvent
	for _, e := range p.events {
		if e.EventType == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

func createTestBook(t *testing.T, env *testEnv, userID uint, pages *int) *entities.Book {
	t.Helper()
	book := &entities.Book{
		Title:         "The Test Book",
		Author:        "Test Author",
		UserID:        userID,
		Pages:         pages,
		ReadingStatus: entities.ReadingStatusToRead,
	}
	require.NoError(t, env.books.Create(book))
	return book
}

func reloadJourney(t *testing.T, env *testEnv, id uint) *entities.ReadingJourney {
	t.Helper()
	var journey entities.ReadingJourney
	require.NoError(t, env.db.First(&journey, id).Error)
	return &journey
}

func reloadBook(t *testing.T, env *testEnv, id uint) *entities.Book {
	t.Helper()
	var book entities.Book
	require.NoError(t, env.db.First(&book, id).Error)
	return &book
}
