package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/readtrail/readtrail/internal/entities"
)

// ActivityWriter provides the ability to append an event to the
// activity feed.
type ActivityWriter interface {
	Insert(event *entities.ActivityEvent) error
}

// PublishActivityTask writes one activity event into the feed. The
// request path enqueues these instead of writing feed rows inline so
// a slow or broken feed can never fail a journey or session mutation.
type PublishActivityTask struct {
	UserID     uint                  `json:"user_id"`
	BookID     uint                  `json:"book_id"`
	JourneyID  uint                  `json:"journey_id"`
	EventType  entities.ActivityType `json:"event_type"`
	Summary    string                `json:"summary"`
	Visibility entities.Visibility   `json:"visibility"`
}

// Config returns the queue configuration for activity publish tasks.
func (t PublishActivityTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "publish_activity",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PublishActivityProcessor creates a processor function for
// PublishActivityTask.
func PublishActivityProcessor(writer ActivityWriter) backlite.QueueProcessor[PublishActivityTask] {
	return func(ctx context.Context, task PublishActivityTask) error {
		if writer == nil {
			return fmt.Errorf("activity writer not configured")
		}

		event := &entities.ActivityEvent{
			UserID:     task.UserID,
			BookID:     task.BookID,
			JourneyID:  task.JourneyID,
			EventType:  task.EventType,
			Summary:    task.Summary,
			Visibility: task.Visibility,
		}
		if err := writer.Insert(event); err != nil {
			return fmt.Errorf("publish activity: %w", err)
		}
		return nil
	}
}

// NewPublishActivityQueue creates a backlite queue for activity publish
// tasks.
func NewPublishActivityQueue(writer ActivityWriter) backlite.Queue {
	return backlite.NewQueue(PublishActivityProcessor(writer))
}
