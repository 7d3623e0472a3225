package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/readtrail/readtrail/internal/entities"
)

// BooksStore defines database operations for the book catalog.
type BooksStore interface {
	Create(book *entities.Book) error
	GetByID(id uint) (*entities.Book, error)
	ListForUser(userID uint) ([]entities.Book, error)
	DeleteOwned(id, userID uint) error
	CountForUser(userID uint) (int64, error)
}

// BooksController exposes the thin catalog CRUD around which the
// reading features hang.
type BooksController struct {
	store BooksStore
}

func NewBooksController(store BooksStore) *BooksController {
	return &BooksController{store: store}
}

type createBookRequest struct {
	Title    string `json:"title" binding:"required"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn"`
	CoverURL string `json:"cover_url"`
	Pages    *int   `json:"pages"`
}

// Create adds a book to the caller's catalog.
// POST /api/books
func (bc *BooksController) Create(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}
	if req.Pages != nil && *req.Pages < 1 {
		respondBadRequest(c, "pages must be at least 1")
		return
	}

	book := &entities.Book{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		CoverURL:      req.CoverURL,
		Pages:         req.Pages,
		UserID:        GetUserID(c),
		ReadingStatus: entities.ReadingStatusToRead,
	}
	if err := bc.store.Create(book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	respondCreated(c, gin.H{"book": book})
}

// Get returns one book. Books are readable by any viewer; progress
// fields on them only ever reflect the owner's reading.
// GET /api/books/:id
func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	c.JSON(http.StatusOK, gin.H{"book": book})
}

// List returns the caller's catalog.
// GET /api/books
func (bc *BooksController) List(c *gin.Context) {
	userID := GetUserID(c)
	books, err := bc.store.ListForUser(userID)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	total, err := bc.store.CountForUser(userID)
	if err != nil {
		respondInternalError(c, err, "count books")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books, "total": total})
}

// Delete removes an owned book.
// DELETE /api/books/:id
func (bc *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.store.DeleteOwned(id, GetUserID(c)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}

	respondSuccess(c, "book deleted")
}
