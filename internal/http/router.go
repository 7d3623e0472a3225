package http

import (
	"github.com/gin-gonic/gin"

	"github.com/readtrail/readtrail/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// Apply CSRF protection if auth is enabled
	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Apply auth middleware if enabled
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Register auth routes if auth service is available
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)
		authController.RegisterRoutes(router)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	journeysController := NewJourneysController(cfg.JourneyService)
	progressController := NewProgressController(cfg.ProgressService)
	notesController := NewNotesController(cfg.NotesService)
	booksController := NewBooksController(cfg.BooksStore)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Book catalog endpoints
	router.POST("/api/books", booksController.Create)
	router.GET("/api/books", booksController.List)
	router.GET("/api/books/:id", booksController.Get)
	router.DELETE("/api/books/:id", booksController.Delete)

	// Journey lifecycle endpoints
	router.POST("/api/books/:id/journeys", journeysController.Create)
	router.GET("/api/books/:id/journeys", journeysController.GetAll)
	router.GET("/api/books/:id/journeys/active", journeysController.GetActive)
	router.POST("/api/journeys/:id/complete", journeysController.Complete)
	router.POST("/api/journeys/:id/abandon", journeysController.Abandon)
	router.POST("/api/journeys/:id/archive", journeysController.Archive)
	router.POST("/api/journeys/:id/reopen", journeysController.Reopen)
	router.DELETE("/api/journeys/:id", journeysController.Delete)
	router.PATCH("/api/journeys/:id/visibility", journeysController.UpdateVisibility)
	router.PATCH("/api/journeys/:id/name", journeysController.Rename)
	router.PATCH("/api/journeys/:id/hidden", journeysController.SetHidden)
	router.GET("/api/journeys/:id/stats", journeysController.GetStats)

	// Session and progress endpoints
	router.POST("/api/books/:id/sessions", progressController.AddSession)
	router.GET("/api/books/:id/sessions", progressController.GetSessions)
	router.DELETE("/api/sessions/:id", progressController.DeleteSession)
	router.POST("/api/books/:id/progress", progressController.UpdateProgress)
	router.POST("/api/books/:id/pages", progressController.UpdateTotalPages)
	router.POST("/api/books/:id/start", progressController.StartReading)
	router.POST("/api/books/:id/finish", progressController.FinishReading)
	router.GET("/api/books/:id/stats", progressController.GetBookStats)

	// Notes and thoughts endpoints
	router.POST("/api/journeys/:id/notes", notesController.AddQuickNote)
	router.POST("/api/journeys/:id/thoughts", notesController.AddThought)
	router.GET("/api/journeys/:id/notes", notesController.List)
	router.POST("/api/notes/:id/star", notesController.SetStarred)
	router.POST("/api/notes/:id/convert", notesController.Convert)
	router.DELETE("/api/notes/:id", notesController.Delete)

	// Activity feed
	if cfg.FeedStore != nil {
		feedController := NewFeedController(cfg.FeedStore, cfg.FeedPageSize)
		router.GET("/api/feed", feedController.List)
	}

	return router
}
