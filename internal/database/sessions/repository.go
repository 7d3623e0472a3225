// Package sessions provides database operations for reading session
// management. Sessions are insert-only: they are created when a sitting
// is logged and deleted by their owner, never updated in place.
package sessions

import (
	"gorm.io/gorm"

	"github.com/readtrail/readtrail/internal/entities"
)

// Repository handles all reading session database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sessions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new reading session.
func (r *Repository) Create(session *entities.ReadingSession) error {
	return r.db.Create(session).Error
}

// GetOwned retrieves a session scoped to its owner.
func (r *Repository) GetOwned(id, userID uint) (*entities.ReadingSession, error) {
	var session entities.ReadingSession
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetByJourney returns all sessions for a journey, newest sitting first.
func (r *Repository) GetByJourney(journeyID uint) ([]entities.ReadingSession, error) {
	var sessions []entities.ReadingSession
	err := r.db.Where("journey_id = ?", journeyID).
		Order("session_date DESC, id DESC").
		Find(&sessions).Error
	return sessions, err
}

// GetByBook returns all of a user's sessions for a book across every
// journey, newest sitting first.
func (r *Repository) GetByBook(bookID, userID uint) ([]entities.ReadingSession, error) {
	var sessions []entities.ReadingSession
	err := r.db.Where("book_id = ? AND user_id = ?", bookID, userID).
		Order("session_date DESC, id DESC").
		Find(&sessions).Error
	return sessions, err
}

// DeleteOwned removes a session scoped to its owner. Returns
// gorm.ErrRecordNotFound when no owned row matched.
func (r *Repository) DeleteOwned(id, userID uint) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&entities.ReadingSession{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
