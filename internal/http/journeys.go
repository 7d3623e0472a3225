package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/readtrail/readtrail/internal/entities"
	"github.com/readtrail/readtrail/internal/reading"
)

// JourneysController exposes the journey lifecycle over HTTP.
type JourneysController struct {
	service *reading.JourneyService
}

func NewJourneysController(service *reading.JourneyService) *JourneysController {
	return &JourneysController{service: service}
}

type createJourneyRequest struct {
	Visibility  string `json:"visibility"`
	SessionName string `json:"session_name"`
}

// Create starts a new journey for a book.
// POST /api/books/:id/journeys
func (jc *JourneysController) Create(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req createJourneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Visibility == "" {
		req.Visibility = string(entities.VisibilityPublic)
	}

	journey, err := jc.service.Create(GetUserID(c), bookID, entities.Visibility(req.Visibility), req.SessionName)
	if err != nil {
		respondDomainError(c, err, "create journey")
		return
	}

	respondCreated(c, gin.H{"journey": journey})
}

type completeJourneyRequest struct {
	Rating *int    `json:"rating"`
	Review *string `json:"review"`
}

// Complete marks a journey finished, storing rating and review.
// POST /api/journeys/:id/complete
func (jc *JourneysController) Complete(c *gin.Context) {
	journeyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req completeJourneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := jc.service.Complete(GetUserID(c), journeyID, req.Rating, req.Review); err != nil {
		respondDomainError(c, err, "complete journey")
		return
	}

	respondSuccess(c, "journey completed")
}

type abandonJourneyRequest struct {
	Reason *string `json:"reason"`
}

// Abandon gives up on an active journey.
// POST /api/journeys/:id/abandon
func (jc *JourneysController) Abandon(c *gin.Context) {
	journeyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req abandonJourneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := jc.service.Abandon(GetUserID(c), journeyID, req.Reason); err != nil {
		respondDomainError(c, err, "abandon journey")
		return
	}

	respondSuccess(c, "journey abandoned")
}

// Archive shelves a completed or abandoned journey.
// POST /api/journeys/:id/archive
func (jc *JourneysController) Archive(c *gin.Context) {
	journeyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := jc.service.Archive(GetUserID(c), journeyID); err != nil {
		respondDomainError(c, err, "archive journey")
		return
	}

	respondSuccess(c, "journey archived")
}

// Reopen makes a finished journey active again.
// POST /api/journeys/:id/reopen
func (jc *JourneysController) Reopen(c *gin.Context) {
	journeyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := jc.service.Reopen(GetUserID(c), journeyID); err != nil {
		respondDomainError(c, err, "reopen journey")
		return
	}

	respondSuccess(c, "journey reopened")
}

// Delete removes a journey with its sessions and thoughts.
// DELETE /api/journeys/:id
func (jc *JourneysController) Delete(c *gin.Context) {
	journeyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := jc.service.Delete(GetUserID(c), journeyID); err != nil {
		respondDomainError(c, err, "delete journey")
		return
	}

	respondSuccess(c, "journey deleted")
}

type updateVisibilityRequest struct {
	Visibility string `json:"visibility" binding:"required"`
}

// UpdateVisibility changes a journey's sharing scope.
// PATCH /api/journeys/:id/visibility
func (jc *JourneysController) UpdateVisibility(c *gin.Context) {
	journeyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "visibility is required")
		return
	}

	if err := jc.service.UpdateVisibility(GetUserID(c), journeyID, entities.Visibility(req.Visibility)); err != nil {
		respondDomainError(c, err, "update journey visibility")
		return
	}

	respondSuccess(c, "visibility updated")
}

type renameJourneyRequest struct {
	SessionName string `json:"session_name" binding:"required"`
}

// Rename changes a journey's display label.
// PATCH /api/journeys/:id/name
func (jc *JourneysController) Rename(c *gin.Context) {
	journeyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req renameJourneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "session_name is required")
		return
	}

	if err := jc.service.Rename(GetUserID(c), journeyID, req.SessionName); err != nil {
		respondDomainError(c, err, "rename journey")
		return
	}

	respondSuccess(c, "journey renamed")
}

type hideJourneyRequest struct {
	Hidden *bool `json:"hidden" binding:"required"`
}

// SetHidden lets the book's owner hide or unhide another reader's
// journey on their book page.
// PATCH /api/journeys/:id/hidden
func (jc *JourneysController) SetHidden(c *gin.Context) {
	journeyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req hideJourneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "hidden is required")
		return
	}

	if err := jc.service.HideFromOwner(GetUserID(c), journeyID, *req.Hidden); err != nil {
		respondDomainError(c, err, "hide journey")
		return
	}

	respondSuccess(c, "journey visibility on book page updated")
}

// GetActive returns the caller's active journey for a book, if any.
// GET /api/books/:id/journeys/active
func (jc *JourneysController) GetActive(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	journey, err := jc.service.GetActive(GetUserID(c), bookID)
	if err != nil {
		respondInternalError(c, err, "get active journey")
		return
	}
	if journey == nil {
		respondNotFound(c, "active journey")
		return
	}

	c.JSON(http.StatusOK, gin.H{"journey": journey})
}

// GetAll lists the journeys on a book visible to the caller. An
// optional user_id query restricts the list to one reader's journeys.
// GET /api/books/:id/journeys
func (jc *JourneysController) GetAll(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var userID uint
	if userIDStr := c.Query("user_id"); userIDStr != "" {
		parsed, err := strconv.ParseUint(userIDStr, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid user_id")
			return
		}
		userID = uint(parsed)
	}

	journeys, err := jc.service.GetAll(GetUserID(c), bookID, userID)
	if err != nil {
		respondInternalError(c, err, "list journeys")
		return
	}

	c.JSON(http.StatusOK, gin.H{"journeys": journeys, "count": len(journeys)})
}

// GetStats returns the derived statistics for an owned journey.
// GET /api/journeys/:id/stats
func (jc *JourneysController) GetStats(c *gin.Context) {
	journeyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := jc.service.GetStats(GetUserID(c), journeyID)
	if err != nil {
		respondDomainError(c, err, "journey stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
