package http

import (
	"github.com/readtrail/readtrail/internal/auth"
	"github.com/readtrail/readtrail/internal/config"
	"github.com/readtrail/readtrail/internal/database"
	"github.com/readtrail/readtrail/internal/reading"
)

// RouterConfig contains all dependencies and configuration needed to
// create the HTTP router. This replaces a long parameter list in
// NewRouter for better maintainability.
type RouterConfig struct {
	// Core services
	JourneyService  *reading.JourneyService
	ProgressService *reading.ProgressService
	NotesService    *reading.NotesService

	// Stores consumed directly by thin controllers
	BooksStore BooksStore
	FeedStore  FeedStore

	// Health checks
	Database *database.Database

	// Authentication
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Feed page size
	FeedPageSize int

	// Application info
	Version string
}
