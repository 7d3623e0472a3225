// Package thoughts provides database operations for quick notes and
// detailed thoughts attached to reading journeys.
package thoughts

import (
	"gorm.io/gorm"

	"github.com/readtrail/readtrail/internal/entities"
)

// Repository handles all reading thought database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new thoughts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new thought or quick note.
func (r *Repository) Create(thought *entities.ReadingThought) error {
	return r.db.Create(thought).Error
}

// GetOwned retrieves a thought scoped to its owner.
func (r *Repository) GetOwned(id, userID uint) (*entities.ReadingThought, error) {
	var thought entities.ReadingThought
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&thought).Error
	if err != nil {
		return nil, err
	}
	return &thought, nil
}

// GetByJourney returns all thoughts on a journey, newest first.
func (r *Repository) GetByJourney(journeyID, userID uint) ([]entities.ReadingThought, error) {
	var thoughts []entities.ReadingThought
	err := r.db.Where("journey_id = ? AND user_id = ?", journeyID, userID).
		Order("created_at DESC").
		Find(&thoughts).Error
	return thoughts, err
}

// SetStarred updates the starred flag on an owned thought.
func (r *Repository) SetStarred(id, userID uint, starred bool) error {
	result := r.db.Model(&entities.ReadingThought{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_starred", starred)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ConvertToThought promotes a quick note to a detailed thought and
// clears its starred flag. The update is conditional on the current
// note_type, so converting an already detailed thought matches no rows
// and reports gorm.ErrRecordNotFound without mutating anything.
func (r *Repository) ConvertToThought(id, userID uint) error {
	result := r.db.Model(&entities.ReadingThought{}).
		Where("id = ? AND user_id = ? AND note_type = ?",
			id, userID, entities.NoteTypeQuickNote).
		Updates(map[string]any{
			"note_type":  entities.NoteTypeDetailedThought,
			"is_starred": false,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteOwned removes a thought scoped to its owner.
func (r *Repository) DeleteOwned(id, userID uint) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&entities.ReadingThought{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
