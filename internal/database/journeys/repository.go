// Package journeys provides database operations for reading journey
// management.
//
// A journey is one continuous reading attempt of a book by a user. The
// single most important rule lives here: at most one active journey per
// (book, user), enforced by a partial unique index so that concurrent
// creators cannot both win.
package journeys

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/readtrail/readtrail/internal/entities"
)

// ErrDuplicateActive is returned by Create when another active journey
// already exists for the same (book, user) pair.
var ErrDuplicateActive = errors.New("active journey already exists for this book")

// Repository handles all reading journey database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new journeys repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new journey. When the journey is active and another
// active journey already exists for the same (book, user), the partial
// unique index rejects the insert and ErrDuplicateActive is returned.
func (r *Repository) Create(journey *entities.ReadingJourney) error {
	err := r.db.Create(journey).Error
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateActive
	}
	return err
}

// GetByID retrieves a journey regardless of owner. Used for the
// hide-from-owner path where the caller is the book's owner, not the
// journey's.
func (r *Repository) GetByID(id uint) (*entities.ReadingJourney, error) {
	var journey entities.ReadingJourney
	err := r.db.First(&journey, id).Error
	if err != nil {
		return nil, err
	}
	return &journey, nil
}

// GetOwned retrieves a journey scoped to its owner. Ownership is folded
// into the lookup so a foreign journey is indistinguishable from a
// missing one.
func (r *Repository) GetOwned(id, userID uint) (*entities.ReadingJourney, error) {
	var journey entities.ReadingJourney
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&journey).Error
	if err != nil {
		return nil, err
	}
	return &journey, nil
}

// GetActive returns the user's active journey for a book with its
// session and thought counts attached, or gorm.ErrRecordNotFound when
// none is active.
func (r *Repository) GetActive(bookID, userID uint) (*entities.ReadingJourney, error) {
	var journey entities.ReadingJourney
	err := r.db.Where("book_id = ? AND user_id = ? AND status = ?",
		bookID, userID, entities.JourneyStatusActive).First(&journey).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachCounts(&journey); err != nil {
		return nil, err
	}
	return &journey, nil
}

// GetAllForBook returns the journeys for a book visible to viewerID,
// newest first, optionally filtered to a single journey owner (userID 0
// means all users). The viewer always sees their own journeys; other
// users' journeys only when public and not hidden by the book's owner.
func (r *Repository) GetAllForBook(bookID, userID, viewerID uint) ([]entities.ReadingJourney, error) {
	query := r.db.Where("book_id = ?", bookID)
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	query = query.Where(
		"user_id = ? OR (visibility = ? AND is_hidden_by_owner = ?)",
		viewerID, entities.VisibilityPublic, false,
	)

	var journeys []entities.ReadingJourney
	err := query.Order("started_at DESC").Find(&journeys).Error
	if err != nil {
		return nil, err
	}
	for i := range journeys {
		if err := r.attachCounts(&journeys[i]); err != nil {
			return nil, err
		}
	}
	return journeys, nil
}

// CountForBookAndUser returns how many journeys (any status) the user
// already has for the book. Used to auto-name re-reads.
func (r *Repository) CountForBookAndUser(bookID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.ReadingJourney{}).
		Where("book_id = ? AND user_id = ?", bookID, userID).
		Count(&count).Error
	return count, err
}

// UpdateFields applies a partial update scoped to the journey's owner.
// Returns gorm.ErrRecordNotFound when no owned row matched. A transition
// back to active can trip the partial unique index; that surfaces as
// ErrDuplicateActive.
func (r *Repository) UpdateFields(id, userID uint, fields map[string]any) error {
	result := r.db.Model(&entities.ReadingJourney{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrDuplicateActive
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetHiddenByOwner flips the book-owner-controlled hidden flag. Unlike
// UpdateFields this is not scoped to the journey owner; the service layer
// verifies the caller owns the book.
func (r *Repository) SetHiddenByOwner(id uint, hidden bool) error {
	result := r.db.Model(&entities.ReadingJourney{}).
		Where("id = ?", id).
		Update("is_hidden_by_owner", hidden)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes an owned journey together with its sessions and
// thoughts in a single transaction.
func (r *Repository) Delete(id, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).
			Delete(&entities.ReadingJourney{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("journey_id = ?", id).
			Delete(&entities.ReadingSession{}).Error; err != nil {
			return err
		}
		return tx.Where("journey_id = ?", id).
			Delete(&entities.ReadingThought{}).Error
	})
}

// CountSessions returns the number of sessions recorded on a journey.
func (r *Repository) CountSessions(journeyID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.ReadingSession{}).
		Where("journey_id = ?", journeyID).
		Count(&count).Error
	return count, err
}

// CountThoughts returns the number of thoughts attached to a journey.
func (r *Repository) CountThoughts(journeyID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.ReadingThought{}).
		Where("journey_id = ?", journeyID).
		Count(&count).Error
	return count, err
}

func (r *Repository) attachCounts(journey *entities.ReadingJourney) error {
	sessions, err := r.CountSessions(journey.ID)
	if err != nil {
		return err
	}
	thoughts, err := r.CountThoughts(journey.ID)
	if err != nil {
		return err
	}
	journey.SessionsCount = sessions
	journey.ThoughtsCount = thoughts
	return nil
}

// isUniqueViolation reports whether err came from the SQLite unique
// index. The sqlite driver does not expose a typed error through GORM,
// so match on the stable constraint message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
