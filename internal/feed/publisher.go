// Package feed provides the activity publishers: implementations of
// reading.ActivityPublisher that carry journey and session events into
// the activity feed. Publishing is best effort by contract; callers
// swallow and log any error these return.
package feed

import (
	"github.com/readtrail/readtrail/internal/entities"
	"github.com/readtrail/readtrail/internal/tasks"
)

// QueuePublisher enqueues a background task per event. This is the
// production publisher: the feed row is written by a task worker, so a
// broken feed costs the request path nothing beyond the enqueue.
type QueuePublisher struct {
	client *tasks.Client
}

// NewQueuePublisher creates a publisher backed by the task queue.
func NewQueuePublisher(client *tasks.Client) *QueuePublisher {
	return &QueuePublisher{client: client}
}

// Publish enqueues the event for background delivery.
func (p *QueuePublisher) Publish(event entities.ActivityEvent) error {
	task := tasks.PublishActivityTask{
		UserID:     event.UserID,
		BookID:     event.BookID,
		JourneyID:  event.JourneyID,
		EventType:  event.EventType,
		Summary:    event.Summary,
		Visibility: event.Visibility,
	}
	_, err := p.client.Add(task).Save()
	return err
}

// DirectPublisher writes feed rows synchronously. Used when the task
// queue is disabled, and handy in tests.
type DirectPublisher struct {
	writer tasks.ActivityWriter
}

// NewDirectPublisher creates a publisher that writes straight to the
// feed store.
func NewDirectPublisher(writer tasks.ActivityWriter) *DirectPublisher {
	return &DirectPublisher{writer: writer}
}

// Publish writes the event to the feed store.
func (p *DirectPublisher) Publish(event entities.ActivityEvent) error {
	return p.writer.Insert(&event)
}
