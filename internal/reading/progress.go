package reading

import (
	"fmt"
	"log"
	"time"

	"github.com/readtrail/readtrail/internal/entities"
)

// SessionInput carries the fields for one logged reading sitting.
// PagesRead is the only required field; SessionDate defaults to today.
type SessionInput struct {
	SessionDate     *time.Time
	StartPage       *int
	EndPage         *int
	PagesRead       int
	DurationMinutes *int
	Notes           string
	Mood            string
	SessionRating   *int
}

// ProgressService records reading sessions and keeps the book's derived
// progress fields (current_page, reading_status, started/finished
// timestamps) in step with them.
type ProgressService struct {
	books     BookStore
	sessions  SessionStore
	journeys  *JourneyService
	publisher ActivityPublisher
}

// NewProgressService creates a session and progress recorder. It chains
// into the journey service to resolve or auto-create active journeys.
func NewProgressService(bookStore BookStore, sessionStore SessionStore, journeyService *JourneyService, publisher ActivityPublisher) *ProgressService {
	return &ProgressService{
		books:     bookStore,
		sessions:  sessionStore,
		journeys:  journeyService,
		publisher: publisher,
	}
}

// StartReading marks an owned book as currently being read, resetting
// progress to page zero. totalPages, when given, records the book's
// page count.
func (s *ProgressService) StartReading(userID, bookID uint, totalPages *int) error {
	if totalPages != nil && *totalPages < 1 {
		return errValidation("total pages must be at least 1")
	}
	if _, err := s.books.GetOwned(bookID, userID); err != nil {
		return translateNotFound(err)
	}

	fields := map[string]any{
		"reading_status":     entities.ReadingStatusReading,
		"reading_started_at": time.Now(),
		"current_page":       0,
	}
	if totalPages != nil {
		fields["pages"] = *totalPages
	}
	return s.books.UpdateReadingFields(bookID, userID, fields)
}

// AddSession logs one reading sitting. When the caller has no active
// journey for the book, one is auto-created with public visibility.
// After the session row is written the book's current page is advanced
// (end_page wins over current+pages_read) and the book is marked
// completed once a known total page count is reached. The feed post in
// between is best effort and cannot fail the session.
func (s *ProgressService) AddSession(userID, bookID uint, input SessionInput) (*entities.ReadingSession, error) {
	if input.PagesRead < 0 {
		return nil, errValidation("pages_read must not be negative")
	}
	if input.DurationMinutes != nil && *input.DurationMinutes < 0 {
		return nil, errValidation("duration_minutes must not be negative")
	}

	book, err := s.books.GetByID(bookID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	journey, err := s.journeys.ResolveOrCreateActive(userID, bookID)
	if err != nil {
		return nil, err
	}

	if book.UserID == userID && book.ReadingStartedAt == nil {
		s.updateBook(bookID, userID, map[string]any{
			"reading_status":     entities.ReadingStatusReading,
			"reading_started_at": time.Now(),
		})
	}

	sessionDate := time.Now()
	if input.SessionDate != nil {
		sessionDate = *input.SessionDate
	}

	session := &entities.ReadingSession{
		JourneyID:       journey.ID,
		BookID:          bookID,
		UserID:          userID,
		SessionDate:     sessionDate,
		StartPage:       input.StartPage,
		EndPage:         input.EndPage,
		PagesRead:       input.PagesRead,
		DurationMinutes: input.DurationMinutes,
		Notes:           input.Notes,
		Mood:            input.Mood,
		SessionRating:   input.SessionRating,
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}

	if journey.Visibility != entities.VisibilityPrivate {
		s.publishSession(journey, book, input.PagesRead)
	}

	newCurrent := book.CurrentPage + input.PagesRead
	if input.EndPage != nil {
		newCurrent = *input.EndPage
	}
	fields := map[string]any{
		"current_page":   newCurrent,
		"reading_status": entities.ReadingStatusReading,
	}
	if book.Pages != nil && newCurrent >= *book.Pages {
		fields["reading_status"] = entities.ReadingStatusCompleted
		fields["reading_finished_at"] = time.Now()
	}
	s.updateBook(bookID, userID, fields)

	return session, nil
}

// UpdateProgress sets the book's current page directly, applying the
// same completion rule as AddSession without writing a session row.
func (s *ProgressService) UpdateProgress(userID, bookID uint, currentPage int) error {
	if currentPage < 0 {
		return errValidation("current page must not be negative")
	}
	book, err := s.books.GetOwned(bookID, userID)
	if err != nil {
		return translateNotFound(err)
	}

	fields := map[string]any{
		"current_page":   currentPage,
		"reading_status": entities.ReadingStatusReading,
	}
	if book.Pages != nil && currentPage >= *book.Pages {
		fields["reading_status"] = entities.ReadingStatusCompleted
		fields["reading_finished_at"] = time.Now()
	}
	return s.books.UpdateReadingFields(bookID, userID, fields)
}

// UpdateTotalPages records the book's total page count.
func (s *ProgressService) UpdateTotalPages(userID, bookID uint, totalPages int) error {
	if totalPages < 1 {
		return errValidation("total pages must be at least 1")
	}
	if _, err := s.books.GetOwned(bookID, userID); err != nil {
		return translateNotFound(err)
	}
	return s.books.UpdateReadingFields(bookID, userID, map[string]any{
		"pages": totalPages,
	})
}

// FinishReading completes the book in one step: the active journey
// (auto-created when missing) is marked completed with the given rating
// and review, and the book's current page jumps to its total when that
// is known. This is the one operation that chains the lifecycle manager
// and the recorder together.
func (s *ProgressService) FinishReading(userID, bookID uint, rating *int, review *string) error {
	book, err := s.books.GetOwned(bookID, userID)
	if err != nil {
		return translateNotFound(err)
	}

	journey, err := s.journeys.ResolveOrCreateActive(userID, bookID)
	if err != nil {
		return err
	}
	if err := s.journeys.Complete(userID, journey.ID, rating, review); err != nil {
		return err
	}

	if book.Pages != nil {
		s.updateBook(bookID, userID, map[string]any{
			"current_page": *book.Pages,
		})
	}
	return nil
}

// DeleteSession removes an owned session. The book's current_page and
// reading_status are deliberately not recomputed; see the design notes
// on the known staleness window.
func (s *ProgressService) DeleteSession(userID, sessionID uint) error {
	return translateNotFound(s.sessions.DeleteOwned(sessionID, userID))
}

// GetSessionsForBook returns all of the caller's sessions for a book.
func (s *ProgressService) GetSessionsForBook(userID, bookID uint) ([]entities.ReadingSession, error) {
	return s.sessions.GetByBook(bookID, userID)
}

// GetBookStats aggregates the caller's sessions for a book into the
// book-level statistics.
func (s *ProgressService) GetBookStats(userID, bookID uint) (*BookStats, error) {
	sessions, err := s.sessions.GetByBook(bookID, userID)
	if err != nil {
		return nil, err
	}
	stats := ComputeBookStats(sessions)
	return &stats, nil
}

func (s *ProgressService) publishSession(journey *entities.ReadingJourney, book *entities.Book, pagesRead int) {
	if s.publisher == nil {
		return
	}
	event := entities.ActivityEvent{
		UserID:     journey.UserID,
		BookID:     book.ID,
		JourneyID:  journey.ID,
		EventType:  entities.ActivitySessionLogged,
		Summary:    fmt.Sprintf("read %d pages of %q", pagesRead, book.Title),
		Visibility: journey.Visibility,
	}
	if err := s.publisher.Publish(event); err != nil {
		log.Printf("WARNING: failed to publish session activity for book %d: %v", book.ID, err)
	}
}

func (s *ProgressService) updateBook(bookID, userID uint, fields map[string]any) {
	if err := s.books.UpdateReadingFields(bookID, userID, fields); err != nil {
		log.Printf("WARNING: failed to update book %d reading fields: %v", bookID, err)
	}
}
