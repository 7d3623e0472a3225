// Package scheduler runs the periodic background jobs: currently just
// the activity feed retention cleanup, enqueued on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/readtrail/readtrail/internal/tasks"
)

// ActivityCleanupScheduler periodically enqueues a feed cleanup task.
type ActivityCleanupScheduler struct {
	taskClient    *tasks.Client
	schedule      string
	retentionDays int

	cron       *cron.Cron
	mu         sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewActivityCleanupScheduler creates a scheduler instance. The
// schedule uses standard five-field cron syntax.
func NewActivityCleanupScheduler(taskClient *tasks.Client, schedule string, retentionDays int) *ActivityCleanupScheduler {
	return &ActivityCleanupScheduler{
		taskClient:    taskClient,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *ActivityCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.taskClient == nil {
		log.Printf("Activity cleanup scheduler: task queue disabled, skipping")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.enqueueCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule activity cleanup: %w", err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true
	log.Printf("Activity cleanup scheduler: started with schedule %q (retention %d days)",
		s.schedule, s.retentionDays)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to
// complete.
func (s *ActivityCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Activity cleanup scheduler: stopped")
}

func (s *ActivityCleanupScheduler) enqueueCleanup() {
	task := tasks.CleanupActivityTask{RetentionDays: s.retentionDays}
	if _, err := s.taskClient.Add(task).Save(); err != nil {
		log.Printf("WARNING: failed to enqueue activity cleanup: %v", err)
	}
}
