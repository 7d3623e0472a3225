package entities

import "time"

type ActivityType string

const (
	ActivityBookStarted   ActivityType = "book_started"
	ActivityBookFinished  ActivityType = "book_finished"
	ActivitySessionLogged ActivityType = "session_logged"
)

// ActivityEvent is a row in the activity feed. Events are written by a
// background task processor, never directly by the request path, so a
// slow or failing feed write can never block a core mutation.
type ActivityEvent struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"index" json:"user_id"`
	BookID    uint         `gorm:"index" json:"book_id"`
	JourneyID uint         `gorm:"index" json:"journey_id,omitempty"`
	EventType ActivityType `gorm:"size:30" json:"event_type"`
	Summary   string       `gorm:"size:512" json:"summary,omitempty"`

	// Visibility is copied from the journey at publish time so feed reads
	// do not need a join to decide what a viewer may see.
	Visibility Visibility `gorm:"size:20;default:'public'" json:"visibility"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (ActivityEvent) TableName() string {
	return "activity_events"
}
