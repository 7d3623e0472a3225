package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/readtrail/readtrail/internal/reading"
)

// NotesController exposes quick notes and detailed thoughts.
type NotesController struct {
	service *reading.NotesService
}

func NewNotesController(service *reading.NotesService) *NotesController {
	return &NotesController{service: service}
}

type addQuickNoteRequest struct {
	Content    string `json:"content" binding:"required"`
	PageNumber *int   `json:"page_number"`
}

// AddQuickNote attaches a short note to a journey.
// POST /api/journeys/:id/notes
func (nc *NotesController) AddQuickNote(c *gin.Context) {
	journeyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req addQuickNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "content is required")
		return
	}

	note, err := nc.service.AddQuickNote(GetUserID(c), journeyID, req.Content, req.PageNumber)
	if err != nil {
		respondDomainError(c, err, "add quick note")
		return
	}

	respondCreated(c, gin.H{"note": note})
}

type addThoughtRequest struct {
	Content          string `json:"content" binding:"required"`
	Chapter          string `json:"chapter"`
	PageNumber       *int   `json:"page_number"`
	ContainsSpoilers bool   `json:"contains_spoilers"`
}

// AddThought attaches a detailed thought to a journey.
// POST /api/journeys/:id/thoughts
func (nc *NotesController) AddThought(c *gin.Context) {
	journeyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req addThoughtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "content is required")
		return
	}

	thought, err := nc.service.AddThought(GetUserID(c), journeyID, req.Content, req.Chapter, req.PageNumber, req.ContainsSpoilers)
	if err != nil {
		respondDomainError(c, err, "add thought")
		return
	}

	respondCreated(c, gin.H{"note": thought})
}

// List returns the caller's notes on a journey, newest first.
// GET /api/journeys/:id/notes
func (nc *NotesController) List(c *gin.Context) {
	journeyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	notes, err := nc.service.ListForJourney(GetUserID(c), journeyID)
	if err != nil {
		respondInternalError(c, err, "list notes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes, "count": len(notes)})
}

type starNoteRequest struct {
	Starred *bool `json:"starred" binding:"required"`
}

// SetStarred stars or unstars a note.
// POST /api/notes/:id/star
func (nc *NotesController) SetStarred(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req starNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "starred is required")
		return
	}

	if err := nc.service.ToggleStarred(GetUserID(c), noteID, *req.Starred); err != nil {
		respondDomainError(c, err, "star note")
		return
	}

	respondSuccess(c, "note updated")
}

// Convert promotes a quick note to a detailed thought.
// POST /api/notes/:id/convert
func (nc *NotesController) Convert(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := nc.service.ConvertToThought(GetUserID(c), noteID); err != nil {
		respondDomainError(c, err, "convert note")
		return
	}

	respondSuccess(c, "note converted to detailed thought")
}

// Delete removes an owned note.
// DELETE /api/notes/:id
func (nc *NotesController) Delete(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := nc.service.Delete(GetUserID(c), noteID); err != nil {
		respondDomainError(c, err, "delete note")
		return
	}

	respondSuccess(c, "note deleted")
}
