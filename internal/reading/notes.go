package reading

import (
	"errors"
	"unicode/utf8"

	"github.com/readtrail/readtrail/internal/entities"
)

// MaxQuickNoteLength is the character limit for quick notes. Detailed
// thoughts are unbounded.
const MaxQuickNoteLength = 280

// ThoughtStore defines the database operations the notes subsystem
// needs. Implemented by thoughts.Repository.
type ThoughtStore interface {
	Create(thought *entities.ReadingThought) error
	GetOwned(id, userID uint) (*entities.ReadingThought, error)
	GetByJourney(journeyID, userID uint) ([]entities.ReadingThought, error)
	SetStarred(id, userID uint, starred bool) error
	ConvertToThought(id, userID uint) error
	DeleteOwned(id, userID uint) error
}

// NotesService owns quick notes and detailed thoughts: short starrable
// annotations scoped to a journey, with a one-way promotion path from
// quick note to detailed thought.
type NotesService struct {
	thoughts ThoughtStore
	journeys JourneyStore
}

// NewNotesService creates a notes service.
func NewNotesService(thoughtStore ThoughtStore, journeyStore JourneyStore) *NotesService {
	return &NotesService{thoughts: thoughtStore, journeys: journeyStore}
}

// AddQuickNote attaches a short note to an owned journey. Content over
// MaxQuickNoteLength characters is rejected with a validation error.
func (s *NotesService) AddQuickNote(userID, journeyID uint, content string, pageNumber *int) (*entities.ReadingThought, error) {
	if content == "" {
		return nil, errValidation("content must not be empty")
	}
	if utf8.RuneCountInString(content) > MaxQuickNoteLength {
		return nil, errValidation("quick notes are limited to %d characters", MaxQuickNoteLength)
	}

	journey, err := s.journeys.GetOwned(journeyID, userID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	thought := &entities.ReadingThought{
		JourneyID:  journeyID,
		BookID:     journey.BookID,
		UserID:     userID,
		Content:    content,
		PageNumber: pageNumber,
		NoteType:   entities.NoteTypeQuickNote,
		IsStarred:  false,
	}
	if err := s.thoughts.Create(thought); err != nil {
		return nil, err
	}
	return thought, nil
}

// AddThought attaches an unbounded detailed thought to an owned journey.
func (s *NotesService) AddThought(userID, journeyID uint, content, chapter string, pageNumber *int, containsSpoilers bool) (*entities.ReadingThought, error) {
	if content == "" {
		return nil, errValidation("content must not be empty")
	}

	journey, err := s.journeys.GetOwned(journeyID, userID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	thought := &entities.ReadingThought{
		JourneyID:        journeyID,
		BookID:           journey.BookID,
		UserID:           userID,
		Content:          content,
		PageNumber:       pageNumber,
		Chapter:          chapter,
		NoteType:         entities.NoteTypeDetailedThought,
		ContainsSpoilers: containsSpoilers,
	}
	if err := s.thoughts.Create(thought); err != nil {
		return nil, err
	}
	return thought, nil
}

// ToggleStarred sets the starred flag on an owned note.
func (s *NotesService) ToggleStarred(userID, noteID uint, starred bool) error {
	return translateNotFound(s.thoughts.SetStarred(noteID, userID, starred))
}

// ConvertToThought promotes a quick note to a detailed thought, clearing
// its starred flag. Conversion is one-directional: a note that is
// already a detailed thought fails with a validation error and is left
// untouched.
func (s *NotesService) ConvertToThought(userID, noteID uint) error {
	err := s.thoughts.ConvertToThought(noteID, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(translateNotFound(err), ErrNotFound) {
		return err
	}

	// The conditional update matched nothing: either the note does not
	// exist (or is not ours), or it is already a detailed thought.
	note, getErr := s.thoughts.GetOwned(noteID, userID)
	if getErr != nil {
		return translateNotFound(getErr)
	}
	if note.NoteType == entities.NoteTypeDetailedThought {
		return errValidation("note is already a detailed thought")
	}
	return err
}

// Delete removes an owned note.
func (s *NotesService) Delete(userID, noteID uint) error {
	return translateNotFound(s.thoughts.DeleteOwned(noteID, userID))
}

// ListForJourney returns the caller's notes on a journey, newest first.
func (s *NotesService) ListForJourney(userID, journeyID uint) ([]entities.ReadingThought, error) {
	return s.thoughts.GetByJourney(journeyID, userID)
}
