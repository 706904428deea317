package model

import "time"

type Material struct {
	ID          int64  `json:"id"`
	EventID     int64  `json:"event_id"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	SortOrder   int    `json:"sort_order"`
}

// MaterialInput is the create shape; quantity defaults to 1 when omitted.
type MaterialInput struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

// EventMaterial is a material within an event detail, carrying the viewing
// user's check state. Checked is nil when the user never touched it.
type EventMaterial struct {
	Material
	Checked *int `json:"checked"`
}

// UpcomingMaterial is a row of the 7-day materials view: the material plus
// enough of its event to render, and the viewer's check state.
type UpcomingMaterial struct {
	ID          int64      `json:"id"`
	EventID     int64      `json:"event_id"`
	Description string     `json:"description"`
	Quantity    int        `json:"quantity"`
	EventTitle  string     `json:"event_title"`
	EventDate   string     `json:"event_date"`
	StartTime   *string    `json:"start_time"`
	Checked     *int       `json:"checked"`
	CheckedAt   *time.Time `json:"checked_at"`
}
