package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/readtrail/readtrail/internal/reading"
)

// ProgressController exposes session logging and book progress updates.
type ProgressController struct {
	service *reading.ProgressService
}

func NewProgressController(service *reading.ProgressService) *ProgressController {
	return &ProgressController{service: service}
}

type addSessionRequest struct {
	SessionDate     *time.Time `json:"session_date"`
	StartPage       *int       `json:"start_page"`
	EndPage         *int       `json:"end_page"`
	PagesRead       int        `json:"pages_read"`
	DurationMinutes *int       `json:"duration_minutes"`
	Notes           string     `json:"notes"`
	Mood            string     `json:"mood"`
	SessionRating   *int       `json:"session_rating"`
}

// AddSession logs one reading sitting against the book's active
// journey, auto-creating the journey when none exists.
// POST /api/books/:id/sessions
func (pc *ProgressController) AddSession(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req addSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	session, err := pc.service.AddSession(GetUserID(c), bookID, reading.SessionInput{
		SessionDate:     req.SessionDate,
		StartPage:       req.StartPage,
		EndPage:         req.EndPage,
		PagesRead:       req.PagesRead,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		Mood:            req.Mood,
		SessionRating:   req.SessionRating,
	})
	if err != nil {
		respondDomainError(c, err, "add session")
		return
	}

	respondCreated(c, gin.H{"session": session})
}

// GetSessions lists the caller's sessions for a book, newest first.
// GET /api/books/:id/sessions
func (pc *ProgressController) GetSessions(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	sessions, err := pc.service.GetSessionsForBook(GetUserID(c), bookID)
	if err != nil {
		respondInternalError(c, err, "list sessions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// DeleteSession removes an owned session.
// DELETE /api/sessions/:id
func (pc *ProgressController) DeleteSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := pc.service.DeleteSession(GetUserID(c), sessionID); err != nil {
		respondDomainError(c, err, "delete session")
		return
	}

	respondSuccess(c, "session deleted")
}

type updateProgressRequest struct {
	CurrentPage *int `json:"current_page" binding:"required"`
}

// UpdateProgress sets the book's current page directly.
// POST /api/books/:id/progress
func (pc *ProgressController) UpdateProgress(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "current_page is required")
		return
	}

	if err := pc.service.UpdateProgress(GetUserID(c), bookID, *req.CurrentPage); err != nil {
		respondDomainError(c, err, "update progress")
		return
	}

	respondSuccess(c, "progress updated")
}

type updatePagesRequest struct {
	Pages *int `json:"pages" binding:"required"`
}

// UpdateTotalPages records the book's total page count.
// POST /api/books/:id/pages
func (pc *ProgressController) UpdateTotalPages(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updatePagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "pages is required")
		return
	}

	if err := pc.service.UpdateTotalPages(GetUserID(c), bookID, *req.Pages); err != nil {
		respondDomainError(c, err, "update total pages")
		return
	}

	respondSuccess(c, "total pages updated")
}

type startReadingRequest struct {
	Pages *int `json:"pages"`
}

// StartReading marks a book as currently being read.
// POST /api/books/:id/start
func (pc *ProgressController) StartReading(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req startReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := pc.service.StartReading(GetUserID(c), bookID, req.Pages); err != nil {
		respondDomainError(c, err, "start reading")
		return
	}

	respondSuccess(c, "reading started")
}

type finishReadingRequest struct {
	Rating *int    `json:"rating"`
	Review *string `json:"review"`
}

// FinishReading completes the book in one step.
// POST /api/books/:id/finish
func (pc *ProgressController) FinishReading(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req finishReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := pc.service.FinishReading(GetUserID(c), bookID, req.Rating, req.Review); err != nil {
		respondDomainError(c, err, "finish reading")
		return
	}

	respondSuccess(c, "book finished")
}

// GetBookStats aggregates the caller's sessions for a book.
// GET /api/books/:id/stats
func (pc *ProgressController) GetBookStats(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := pc.service.GetBookStats(GetUserID(c), bookID)
	if err != nil {
		respondInternalError(c, err, "book stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
