package reading

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/readtrail/readtrail/internal/entities"
)

// ErrNotFound is returned when a book, journey, session or thought does
// not exist or does not belong to the caller. Ownership is folded into
// the lookup on purpose: a foreign record must be indistinguishable
// from a missing one.
var ErrNotFound = errors.New("record not found")

// ConflictError reports a violation of the single-active-journey rule.
// ActiveJourneyID identifies the blocking journey so callers can offer
// an "archive and start new" resolution.
type ConflictError struct {
	ActiveJourneyID uint
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("an active journey already exists (journey %d)", e.ActiveJourneyID)
}

// ValidationError reports malformed input: a quick note over the length
// limit, negative page counts, an unknown visibility, and so on.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// TransitionError reports a journey operation attempted from a status
// the lifecycle does not allow it from.
type TransitionError struct {
	Op   string
	From entities.JourneyStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a journey with status %q", e.Op, e.From)
}

func errValidation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// translateNotFound maps the store's record-not-found onto the domain
// error so callers never depend on GORM.
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
