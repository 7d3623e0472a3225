// Package activity provides database operations for the activity feed
// sink. Rows are written by the background task processor and read by
// the feed endpoint; the request path never writes here directly.
package activity

import (
	"time"

	"gorm.io/gorm"

	"github.com/readtrail/readtrail/internal/entities"
)

// Repository handles all activity feed database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new activity repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends an event to the feed.
func (r *Repository) Insert(event *entities.ActivityEvent) error {
	return r.db.Create(event).Error
}

// ListVisible returns the newest public events plus the viewer's own,
// newest first.
func (r *Repository) ListVisible(viewerID uint, limit int) ([]entities.ActivityEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var events []entities.ActivityEvent
	err := r.db.Where("user_id = ? OR visibility = ?", viewerID, entities.VisibilityPublic).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// DeleteOlderThan prunes events past the retention window and returns
// how many rows were removed.
func (r *Repository) DeleteOlderThan(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := r.db.Where("created_at < ?", cutoff).
		Delete(&entities.ActivityEvent{})
	return result.RowsAffected, result.Error
}
