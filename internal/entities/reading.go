package entities

import (
	"time"

	"gorm.io/gorm"
)

type ReadingStatus string

const (
	ReadingStatusToRead    ReadingStatus = "to_read"
	ReadingStatusReading   ReadingStatus = "currently_reading"
	ReadingStatusCompleted ReadingStatus = "completed"
	ReadingStatusAbandoned ReadingStatus = "abandoned"
)

type JourneyStatus string

const (
	JourneyStatusActive    JourneyStatus = "active"
	JourneyStatusCompleted JourneyStatus = "completed"
	JourneyStatusAbandoned JourneyStatus = "abandoned"
	JourneyStatusArchived  JourneyStatus = "archived"
)

type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityConnections Visibility = "connections"
	VisibilityPrivate     Visibility = "private"
)

// IsValid reports whether v is one of the known visibility levels.
func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityPublic, VisibilityConnections, VisibilityPrivate:
		return true
	}
	return false
}

type NoteType string

const (
	NoteTypeQuickNote       NoteType = "quick_note"
	NoteTypeDetailedThought NoteType = "detailed_thought"
)

type Book struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"index" json:"user_id"`
	Title    string `gorm:"index;size:512" json:"title"`
	Author   string `gorm:"index;size:256" json:"author"`
	ISBN     string `gorm:"index;size:20" json:"isbn,omitempty"`
	CoverURL string `gorm:"size:2048" json:"cover_url,omitempty"`

	// Reading progress, derived from journeys and sessions
	Pages             *int          `json:"pages,omitempty"` // total pages, nil when unknown
	CurrentPage       int           `gorm:"default:0" json:"current_page"`
	ReadingStatus     ReadingStatus `gorm:"size:20;default:'to_read'" json:"reading_status"`
	ReadingStartedAt  *time.Time    `json:"reading_started_at,omitempty"`
	ReadingFinishedAt *time.Time    `json:"reading_finished_at,omitempty"`

	User      User           `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// ReadingJourney is one continuous reading attempt ("season") of a book by
// a user. A user may have many journeys per book but at most one active
// one; the store enforces that with a partial unique index.
type ReadingJourney struct {
	ID     uint          `gorm:"primaryKey" json:"id"`
	BookID uint          `gorm:"index" json:"book_id"`
	UserID uint          `gorm:"index" json:"user_id"`
	Status JourneyStatus `gorm:"size:20;default:'active'" json:"status"`

	Visibility    Visibility `gorm:"size:20;default:'public'" json:"visibility"`
	SessionName   string     `gorm:"size:256" json:"session_name,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	Rating        *int       `json:"rating,omitempty"` // 0-5
	Review        *string    `gorm:"type:text" json:"review,omitempty"`
	AbandonReason *string    `gorm:"type:text" json:"abandon_reason,omitempty"`

	// Set by the book's owner to hide another user's journey on their
	// book, never by the journey owner.
	IsHiddenByOwner bool `gorm:"default:false" json:"is_hidden_by_owner"`

	// Denormalized counts filled in by aggregate queries, not persisted.
	SessionsCount int64 `gorm:"-" json:"sessions_count"`
	ThoughtsCount int64 `gorm:"-" json:"thoughts_count"`

	Book      Book           `gorm:"foreignKey:BookID" json:"-"`
	User      User           `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// ReadingSession is one logged reading event (a sitting) within a journey.
// Sessions are created and deleted, never updated in place.
type ReadingSession struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	JourneyID uint `gorm:"index" json:"journey_id"`
	BookID    uint `gorm:"index" json:"book_id"`
	UserID    uint `gorm:"index" json:"user_id"`

	SessionDate     time.Time `json:"session_date"`
	StartPage       *int      `json:"start_page,omitempty"`
	EndPage         *int      `json:"end_page,omitempty"`
	PagesRead       int       `json:"pages_read"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	Notes           string    `gorm:"type:text" json:"notes,omitempty"`
	Mood            string    `gorm:"size:50" json:"mood,omitempty"`
	SessionRating   *int      `json:"session_rating,omitempty"`

	Journey   ReadingJourney `gorm:"foreignKey:JourneyID" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ReadingThought is a journey-scoped annotation: either a short quick note
// (at most 280 characters, starrable) or an unbounded detailed thought.
type ReadingThought struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	JourneyID uint `gorm:"index" json:"journey_id"`
	BookID    uint `gorm:"index" json:"book_id"`
	UserID    uint `gorm:"index" json:"user_id"`

	Content          string   `gorm:"type:text" json:"content"`
	PageNumber       *int     `json:"page_number,omitempty"`
	Chapter          string   `gorm:"size:256" json:"chapter,omitempty"`
	NoteType         NoteType `gorm:"size:20;default:'quick_note'" json:"note_type"`
	IsStarred        bool     `gorm:"default:false" json:"is_starred"`
	ContainsSpoilers bool     `gorm:"default:false" json:"contains_spoilers"`

	Journey   ReadingJourney `gorm:"foreignKey:JourneyID" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

func (ReadingJourney) TableName() string {
	return "reading_journeys"
}

func (ReadingSession) TableName() string {
	return "reading_sessions"
}

func (ReadingThought) TableName() string {
	return "reading_thoughts"
}
