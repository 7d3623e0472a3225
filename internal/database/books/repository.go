// Package books provides database operations for the book catalog and
// the per-book reading progress fields derived from journeys and
// sessions.
package books

import (
	"gorm.io/gorm"

	"github.com/readtrail/readtrail/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new book owned by the user already set on it.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Create(book).Error
}

// GetByID retrieves a book regardless of owner. Books are readable by
// any authenticated user; only their progress fields are tenant-scoped.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetOwned retrieves a book scoped to its owner.
func (r *Repository) GetOwned(id, userID uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListForUser returns all books owned by the user, most recently
// updated first.
func (r *Repository) ListForUser(userID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&books).Error
	return books, err
}

// UpdateReadingFields applies a partial update to a book's progress
// fields scoped by (id, user_id). A caller who does not own the book
// matches no rows and the update is a silent no-op; this is what keeps
// journey and session writes from ever touching another tenant's book.
func (r *Repository) UpdateReadingFields(id, userID uint, fields map[string]any) error {
	return r.db.Model(&entities.Book{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields).Error
}

// DeleteOwned removes a book scoped to its owner.
func (r *Repository) DeleteOwned(id, userID uint) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&entities.Book{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountForUser returns the number of books in the user's catalog.
func (r *Repository) CountForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
