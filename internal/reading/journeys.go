// Package reading implements the reading journey lifecycle, session and
// progress recording, derived statistics, and journey-scoped notes.
//
// Every operation takes the caller's user ID explicitly; there is no
// ambient identity. Ownership checks are folded into store lookups, so
// records belonging to other users surface as ErrNotFound.
package reading

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/readtrail/readtrail/internal/database/journeys"
	"github.com/readtrail/readtrail/internal/entities"
)

// JourneyStore defines the database operations the journey lifecycle
// needs. Implemented by journeys.Repository.
type JourneyStore interface {
	Create(journey *entities.ReadingJourney) error
	GetByID(id uint) (*entities.ReadingJourney, error)
	GetOwned(id, userID uint) (*entities.ReadingJourney, error)
	GetActive(bookID, userID uint) (*entities.ReadingJourney, error)
	GetAllForBook(bookID, userID, viewerID uint) ([]entities.ReadingJourney, error)
	CountForBookAndUser(bookID, userID uint) (int64, error)
	UpdateFields(id, userID uint, fields map[string]any) error
	SetHiddenByOwner(id uint, hidden bool) error
	Delete(id, userID uint) error
}

// BookStore defines the book operations the core needs: reading any
// book's metadata, and mutating progress fields scoped by owner so that
// cross-tenant writes are impossible.
type BookStore interface {
	GetByID(id uint) (*entities.Book, error)
	GetOwned(id, userID uint) (*entities.Book, error)
	UpdateReadingFields(id, userID uint, fields map[string]any) error
}

// SessionStore defines the session operations shared by the journey and
// progress services. Implemented by sessions.Repository.
type SessionStore interface {
	Create(session *entities.ReadingSession) error
	GetByJourney(journeyID uint) ([]entities.ReadingSession, error)
	GetByBook(bookID, userID uint) ([]entities.ReadingSession, error)
	DeleteOwned(id, userID uint) error
}

// ActivityPublisher publishes feed events. Publishing is best effort:
// the services log failures and never let them fail the mutation that
// triggered them.
type ActivityPublisher interface {
	Publish(event entities.ActivityEvent) error
}

// JourneyService owns the journey state machine: creation, completion,
// abandonment, archival, reopening, deletion, renaming, visibility and
// the book-owner hide flag.
type JourneyService struct {
	journeys  JourneyStore
	sessions  SessionStore
	books     BookStore
	publisher ActivityPublisher
}

// NewJourneyService creates a journey lifecycle service. The publisher
// may be nil, in which case no feed events are emitted.
func NewJourneyService(journeyStore JourneyStore, sessionStore SessionStore, bookStore BookStore, publisher ActivityPublisher) *JourneyService {
	return &JourneyService{
		journeys:  journeyStore,
		sessions:  sessionStore,
		books:     bookStore,
		publisher: publisher,
	}
}

// Create starts a new active journey for the book. When the user already
// has an active journey there, it fails with a ConflictError naming the
// blocking journey. An empty sessionName is auto-generated: "First Read"
// for the user's first journey on the book, "Re-read #N" afterwards.
func (s *JourneyService) Create(userID, bookID uint, visibility entities.Visibility, sessionName string) (*entities.ReadingJourney, error) {
	if !visibility.IsValid() {
		return nil, errValidation("unknown visibility %q", visibility)
	}

	book, err := s.books.GetByID(bookID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	if active, err := s.journeys.GetActive(bookID, userID); err == nil {
		return nil, &ConflictError{ActiveJourneyID: active.ID}
	} else if !errors.Is(translateNotFound(err), ErrNotFound) {
		return nil, err
	}

	if sessionName == "" {
		count, err := s.journeys.CountForBookAndUser(bookID, userID)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			sessionName = "First Read"
		} else {
			sessionName = fmt.Sprintf("Re-read #%d", count+1)
		}
	}

	now := time.Now()
	journey := &entities.ReadingJourney{
		BookID:      bookID,
		UserID:      userID,
		Status:      entities.JourneyStatusActive,
		Visibility:  visibility,
		SessionName: sessionName,
		StartedAt:   now,
	}
	if err := s.journeys.Create(journey); err != nil {
		if errors.Is(err, journeys.ErrDuplicateActive) {
			// Lost a race to a concurrent creator. Report the winner.
			if active, getErr := s.journeys.GetActive(bookID, userID); getErr == nil {
				return nil, &ConflictError{ActiveJourneyID: active.ID}
			}
			return nil, &ConflictError{}
		}
		return nil, err
	}

	if visibility != entities.VisibilityPrivate {
		s.publish(entities.ActivityEvent{
			UserID:     userID,
			BookID:     bookID,
			JourneyID:  journey.ID,
			EventType:  entities.ActivityBookStarted,
			Summary:    fmt.Sprintf("started reading %q", book.Title),
			Visibility: visibility,
		})
	}

	s.updateBook(bookID, userID, map[string]any{
		"reading_status":     entities.ReadingStatusReading,
		"reading_started_at": now,
	})

	return journey, nil
}

// Complete finishes a journey, stamping finished_at and storing the
// rating and review. A nil rating or review clears the stored value
// rather than preserving it.
func (s *JourneyService) Complete(userID, journeyID uint, rating *int, review *string) error {
	journey, err := s.journeys.GetOwned(journeyID, userID)
	if err != nil {
		return translateNotFound(err)
	}

	if rating != nil && (*rating < 0 || *rating > 5) {
		return errValidation("rating must be between 0 and 5")
	}

	now := time.Now()
	fields := map[string]any{
		"status":      entities.JourneyStatusCompleted,
		"finished_at": now,
		"rating":      nil,
		"review":      nil,
	}
	if rating != nil {
		fields["rating"] = *rating
	}
	if review != nil {
		fields["review"] = *review
	}
	if err := s.journeys.UpdateFields(journeyID, userID, fields); err != nil {
		return translateNotFound(err)
	}

	if journey.Visibility != entities.VisibilityPrivate {
		summary := "finished reading"
		if book, err := s.books.GetByID(journey.BookID); err == nil {
			summary = fmt.Sprintf("finished reading %q", book.Title)
		}
		s.publish(entities.ActivityEvent{
			UserID:     userID,
			BookID:     journey.BookID,
			JourneyID:  journey.ID,
			EventType:  entities.ActivityBookFinished,
			Summary:    summary,
			Visibility: journey.Visibility,
		})
	}

	s.updateBook(journey.BookID, userID, map[string]any{
		"reading_status":      entities.ReadingStatusCompleted,
		"reading_finished_at": now,
	})

	return nil
}

// Abandon gives up on an active journey, recording an optional reason.
func (s *JourneyService) Abandon(userID, journeyID uint, reason *string) error {
	journey, err := s.journeys.GetOwned(journeyID, userID)
	if err != nil {
		return translateNotFound(err)
	}
	if journey.Status != entities.JourneyStatusActive {
		return &TransitionError{Op: "abandon", From: journey.Status}
	}

	fields := map[string]any{
		"status":         entities.JourneyStatusAbandoned,
		"finished_at":    time.Now(),
		"abandon_reason": nil,
	}
	if reason != nil {
		fields["abandon_reason"] = *reason
	}
	return translateNotFound(s.journeys.UpdateFields(journeyID, userID, fields))
}

// Archive shelves a finished journey. Only completed or abandoned
// journeys can be archived; finished_at is left untouched.
func (s *JourneyService) Archive(userID, journeyID uint) error {
	journey, err := s.journeys.GetOwned(journeyID, userID)
	if err != nil {
		return translateNotFound(err)
	}
	if journey.Status != entities.JourneyStatusCompleted && journey.Status != entities.JourneyStatusAbandoned {
		return &TransitionError{Op: "archive", From: journey.Status}
	}

	return translateNotFound(s.journeys.UpdateFields(journeyID, userID, map[string]any{
		"status": entities.JourneyStatusArchived,
	}))
}

// Reopen makes a completed, abandoned or archived journey active again,
// clearing finished_at. It fails with a ConflictError, without mutating
// anything, when another journey for the book is already active.
func (s *JourneyService) Reopen(userID, journeyID uint) error {
	journey, err := s.journeys.GetOwned(journeyID, userID)
	if err != nil {
		return translateNotFound(err)
	}
	if journey.Status == entities.JourneyStatusActive {
		return &TransitionError{Op: "reopen", From: journey.Status}
	}

	if active, err := s.journeys.GetActive(journey.BookID, userID); err == nil {
		return &ConflictError{ActiveJourneyID: active.ID}
	} else if !errors.Is(translateNotFound(err), ErrNotFound) {
		return err
	}

	err = s.journeys.UpdateFields(journeyID, userID, map[string]any{
		"status":      entities.JourneyStatusActive,
		"finished_at": nil,
	})
	if errors.Is(err, journeys.ErrDuplicateActive) {
		if active, getErr := s.journeys.GetActive(journey.BookID, userID); getErr == nil {
			return &ConflictError{ActiveJourneyID: active.ID}
		}
		return &ConflictError{}
	}
	return translateNotFound(err)
}

// Delete removes an owned journey and, to keep referential integrity,
// all of its sessions and thoughts.
func (s *JourneyService) Delete(userID, journeyID uint) error {
	return translateNotFound(s.journeys.Delete(journeyID, userID))
}

// HideFromOwner lets a book's owner hide another user's journey on that
// book. The journey owner cannot use this on their own journey; delete
// or visibility changes are the tools for that.
func (s *JourneyService) HideFromOwner(userID, journeyID uint, hide bool) error {
	journey, err := s.journeys.GetByID(journeyID)
	if err != nil {
		return translateNotFound(err)
	}
	if journey.UserID == userID {
		return errValidation("cannot hide your own journey; use delete or visibility instead")
	}
	if _, err := s.books.GetOwned(journey.BookID, userID); err != nil {
		// Caller does not own the book.
		return translateNotFound(err)
	}
	return translateNotFound(s.journeys.SetHiddenByOwner(journeyID, hide))
}

// UpdateVisibility changes a journey's sharing scope.
func (s *JourneyService) UpdateVisibility(userID, journeyID uint, visibility entities.Visibility) error {
	if !visibility.IsValid() {
		return errValidation("unknown visibility %q", visibility)
	}
	return translateNotFound(s.journeys.UpdateFields(journeyID, userID, map[string]any{
		"visibility": visibility,
	}))
}

// Rename changes a journey's display label.
func (s *JourneyService) Rename(userID, journeyID uint, name string) error {
	if name == "" {
		return errValidation("name must not be empty")
	}
	return translateNotFound(s.journeys.UpdateFields(journeyID, userID, map[string]any{
		"session_name": name,
	}))
}

// GetActive returns the caller's active journey for a book with session
// and thought counts, or nil when none is active.
func (s *JourneyService) GetActive(userID, bookID uint) (*entities.ReadingJourney, error) {
	journey, err := s.journeys.GetActive(bookID, userID)
	if err != nil {
		if errors.Is(translateNotFound(err), ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return journey, nil
}

// GetAll returns the journeys for a book visible to the caller,
// optionally filtered to one journey owner (userID 0 means all).
func (s *JourneyService) GetAll(viewerID, bookID, userID uint) ([]entities.ReadingJourney, error) {
	return s.journeys.GetAllForBook(bookID, userID, viewerID)
}

// GetStats computes the derived metrics for an owned journey.
func (s *JourneyService) GetStats(userID, journeyID uint) (*JourneyStats, error) {
	if _, err := s.journeys.GetOwned(journeyID, userID); err != nil {
		return nil, translateNotFound(err)
	}
	sessions, err := s.sessions.GetByJourney(journeyID)
	if err != nil {
		return nil, err
	}
	stats := ComputeJourneyStats(sessions)
	return &stats, nil
}

// ResolveOrCreateActive returns the user's active journey for a book,
// creating one (visibility public) when none exists. Losing a creation
// race to a concurrent caller resolves to the winner's journey instead
// of failing.
func (s *JourneyService) ResolveOrCreateActive(userID, bookID uint) (*entities.ReadingJourney, error) {
	active, err := s.journeys.GetActive(bookID, userID)
	if err == nil {
		return active, nil
	}
	if !errors.Is(translateNotFound(err), ErrNotFound) {
		return nil, err
	}

	journey, err := s.Create(userID, bookID, entities.VisibilityPublic, "")
	if err == nil {
		return journey, nil
	}
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		// Someone else created it between our check and insert.
		return s.journeys.GetActive(bookID, userID)
	}
	return nil, err
}

// publish emits a feed event, swallowing and logging failures so the
// primary mutation never depends on the feed.
func (s *JourneyService) publish(event entities.ActivityEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(event); err != nil {
		log.Printf("WARNING: failed to publish %s activity for book %d: %v",
			event.EventType, event.BookID, err)
	}
}

// updateBook applies an owner-scoped book update, logging failures. Book
// progress fields are derived state; a failed write here is not fatal to
// the journey mutation that triggered it.
func (s *JourneyService) updateBook(bookID, userID uint, fields map[string]any) {
	if err := s.books.UpdateReadingFields(bookID, userID, fields); err != nil {
		log.Printf("WARNING: failed to update book %d reading fields: %v", bookID, err)
	}
}
