// Package entrypoint wires the application together: database, stores,
// services, background tasks, auth and the HTTP server.
package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/readtrail/readtrail/internal/auth"
	"github.com/readtrail/readtrail/internal/config"
	"github.com/readtrail/readtrail/internal/database"
	"github.com/readtrail/readtrail/internal/database/activity"
	"github.com/readtrail/readtrail/internal/database/books"
	"github.com/readtrail/readtrail/internal/database/journeys"
	"github.com/readtrail/readtrail/internal/database/sessions"
	"github.com/readtrail/readtrail/internal/database/thoughts"
	"github.com/readtrail/readtrail/internal/feed"
	http_controllers "github.com/readtrail/readtrail/internal/http"
	"github.com/readtrail/readtrail/internal/reading"
	"github.com/readtrail/readtrail/internal/scheduler"
	"github.com/readtrail/readtrail/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run builds the full application and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting ReadTrail v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Per-entity repositories
	bookRepo := books.NewRepository(db.DB)
	journeyRepo := journeys.NewRepository(db.DB)
	sessionRepo := sessions.NewRepository(db.DB)
	thoughtRepo := thoughts.NewRepository(db.DB)
	activityRepo := activity.NewRepository(db.DB)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewPublishActivityQueue(activityRepo),
			tasks.NewCleanupActivityQueue(activityRepo),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Feed publisher: queue-backed in production, direct writes when the
	// queue is disabled.
	var publisher reading.ActivityPublisher
	if taskClient != nil {
		publisher = feed.NewQueuePublisher(taskClient)
	} else {
		publisher = feed.NewDirectPublisher(activityRepo)
	}

	// Core services
	journeyService := reading.NewJourneyService(journeyRepo, sessionRepo, bookRepo, publisher)
	progressService := reading.NewProgressService(bookRepo, sessionRepo, journeyService, publisher)
	notesService := reading.NewNotesService(thoughtRepo, journeyRepo)

	// Feed retention cleanup on a cron schedule
	var cleanupScheduler *scheduler.ActivityCleanupScheduler
	if taskClient != nil && cfg.Activity.CleanupSchedule != "" {
		cleanupScheduler = scheduler.NewActivityCleanupScheduler(
			taskClient, cfg.Activity.CleanupSchedule, cfg.Activity.RetentionDays)
		if err := cleanupScheduler.Start(context.Background()); err != nil {
			log.Printf("WARNING: failed to start activity cleanup scheduler: %v", err)
		}
	}

	// Initialize authentication if enabled
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService = auth.NewService(db.DB, cfg.Auth)

		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)

		// Generate or use configured CSRF secret
		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No users found. POST /api/auth/setup to create an administrator account.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	routerCfg := http_controllers.RouterConfig{
		JourneyService:  journeyService,
		ProgressService: progressService,
		NotesService:    notesService,
		BooksStore:      bookRepo,
		FeedStore:       activityRepo,
		Database:        db,
		AuthService:     authService,
		AuthMiddleware:  authMiddleware,
		SessionManager:  sessionManager,
		AuthConfig:      cfg.Auth,
		CSRFSecret:      csrfSecret,
		SecureCookies:   cfg.Auth.SecureCookies,
		FeedPageSize:    cfg.Activity.FeedPageSize,
		Version:         version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
