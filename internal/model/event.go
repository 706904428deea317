package model

import "time"

// Event priorities.
const (
	PriorityNormal    = "normal"
	PriorityImportant = "important"
	PriorityUrgent    = "urgent"
)

// Event visibilities. Public events are gated by course subscription;
// private events are readable only by their creator (parents excluded,
// coordinators and admins see everything).
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	EventType   string    `json:"event_type"`
	EventDate   string    `json:"event_date"`
	StartTime   *string   `json:"start_time"`
	EndTime     *string   `json:"end_time"`
	Location    *string   `json:"location"`
	LocationURL *string   `json:"location_url"`
	Priority    string    `json:"priority"`
	Visibility  string    `json:"visibility"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventSummary is a listing row: the event enriched with the concatenated
// names and colors of its linked courses.
type EventSummary struct {
	Event
	CourseNames  *string `json:"course_names"`
	CourseColors *string `json:"course_colors"`
}

// CourseRef is the compact course shape embedded in an event detail.
type CourseRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// EventDetail is the single-event shape: courses, materials with the
// viewer's check state, and the viewer's read state.
type EventDetail struct {
	Event
	Courses   []CourseRef     `json:"courses"`
	Materials []EventMaterial `json:"materials"`
	Read      bool            `json:"read"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
}

// EventInput carries the write shape for create and update. Materials are
// only consumed on create.
type EventInput struct {
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	EventType   string          `json:"event_type"`
	EventDate   string          `json:"event_date"`
	StartTime   *string         `json:"start_time"`
	EndTime     *string         `json:"end_time"`
	Location    *string         `json:"location"`
	LocationURL *string         `json:"location_url"`
	Priority    string          `json:"priority"`
	Visibility  string          `json:"visibility"`
	CourseIDs   []int64         `json:"course_ids"`
	Materials   []MaterialInput `json:"materials"`
}
