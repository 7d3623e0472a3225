package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/readtrail/readtrail/internal/entities"
)

// FeedStore defines read access to the activity feed.
type FeedStore interface {
	ListVisible(viewerID uint, limit int) ([]entities.ActivityEvent, error)
}

// FeedController serves the social activity feed.
type FeedController struct {
	store       FeedStore
	defaultSize int
}

func NewFeedController(store FeedStore, defaultSize int) *FeedController {
	if defaultSize <= 0 {
		defaultSize = 50
	}
	return &FeedController{store: store, defaultSize: defaultSize}
}

// List returns the newest feed events visible to the caller: public
// events plus the caller's own regardless of visibility.
// GET /api/feed
func (fc *FeedController) List(c *gin.Context) {
	limit := fc.defaultSize
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			respondBadRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}

	events, err := fc.store.ListVisible(GetUserID(c), limit)
	if err != nil {
		respondInternalError(c, err, "list feed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
