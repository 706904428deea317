package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/colegiosync/colegiosync/internal/auth"
	"github.com/colegiosync/colegiosync/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

const eventCols = `e.id, e.title, e.description, e.event_type, e.event_date,
	e.start_time, e.end_time, e.location, e.location_url,
	e.priority, e.visibility, e.created_by, e.created_at, e.updated_at`

// Listings order by day, then start time with timeless events last.
const eventOrder = `ORDER BY e.event_date, e.start_time IS NULL, e.start_time`

func scanEventInto(scanner interface{ Scan(...any) error }, e *model.Event, extra ...any) error {
	dest := []any{
		&e.ID, &e.Title, &e.Description, &e.EventType, &e.EventDate,
		&e.StartTime, &e.EndTime, &e.Location, &e.LocationURL,
		&e.Priority, &e.Visibility, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	}
	return scanner.Scan(append(dest, extra...)...)
}

// Create inserts the event together with its course links and materials in
// one transaction, so a failure partway through leaves nothing behind.
func (s *EventStore) Create(input model.EventInput, createdBy int64) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO events (title, description, event_type, event_date, start_time, end_time,
			location, location_url, priority, visibility, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		input.Title, input.Description, input.EventType, input.EventDate,
		input.StartTime, input.EndTime, input.Location, input.LocationURL,
		input.Priority, input.Visibility, createdBy,
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	for _, courseID := range input.CourseIDs {
		if _, err := tx.Exec(
			`INSERT INTO event_courses (event_id, course_id) VALUES (?, ?)`, id, courseID,
		); err != nil {
			return 0, fmt.Errorf("link course %d: %w", courseID, err)
		}
	}

	for i, m := range input.Materials {
		qty := m.Quantity
		if qty <= 0 {
			qty = 1
		}
		if _, err := tx.Exec(
			`INSERT INTO materials (event_id, description, quantity, sort_order) VALUES (?, ?, ?, ?)`,
			id, m.Description, qty, i,
		); err != nil {
			return 0, fmt.Errorf("insert material: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Update rewrites the event row and, when CourseIDs is non-nil, replaces
// its course links. Runs in a transaction for the same reason Create does.
func (s *EventStore) Update(id int64, input model.EventInput) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE events SET
			title = ?, description = ?, event_type = ?, event_date = ?,
			start_time = ?, end_time = ?, location = ?, location_url = ?,
			priority = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		input.Title, input.Description, input.EventType, input.EventDate,
		input.StartTime, input.EndTime, input.Location, input.LocationURL,
		input.Priority, id,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	if input.CourseIDs != nil {
		if _, err := tx.Exec(`DELETE FROM event_courses WHERE event_id = ?`, id); err != nil {
			return fmt.Errorf("clear course links: %w", err)
		}
		for _, courseID := range input.CourseIDs {
			if _, err := tx.Exec(
				`INSERT INTO event_courses (event_id, course_id) VALUES (?, ?)`, id, courseID,
			); err != nil {
				return fmt.Errorf("link course %d: %w", courseID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Delete removes the event; course links, materials and reads cascade.
func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	var e model.Event
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM events e WHERE e.id = ?`, id)
	err := scanEventInto(row, &e)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// EventFilter narrows a listing by calendar day. Zero values mean
// unbounded; To is only meaningful together with From.
type EventFilter struct {
	Date  string
	From  string
	To    string
	Limit int
}

func (f EventFilter) dateCond() (string, []any) {
	switch {
	case f.Date != "":
		return `e.event_date = ?`, []any{f.Date}
	case f.From != "" && f.To != "":
		return `e.event_date BETWEEN ? AND ?`, []any{f.From, f.To}
	case f.From != "":
		return `e.event_date >= ?`, []any{f.From}
	}
	return "", nil
}

// ListVisible returns the events the viewer may see, enriched with
// concatenated course names and colors.
//
// Parents see public events of courses they are subscribed to plus their
// own private events. Coordinators and admins see everything; the private
// flag only shields events from other parents.
func (s *EventStore) ListVisible(viewer auth.Identity, f EventFilter) ([]model.EventSummary, error) {
	cond, args := f.dateCond()

	var b strings.Builder
	if viewer.Role.SeesAllEvents() {
		b.WriteString(`SELECT ` + eventCols + `,
			GROUP_CONCAT(DISTINCT c.name), GROUP_CONCAT(DISTINCT c.color)
			FROM events e
			LEFT JOIN event_courses ec ON e.id = ec.event_id
			LEFT JOIN courses c ON ec.course_id = c.id`)
		if cond != "" {
			b.WriteString(` WHERE ` + cond)
		}
	} else {
		b.WriteString(`SELECT DISTINCT ` + eventCols + `,
			GROUP_CONCAT(c.name), GROUP_CONCAT(c.color)
			FROM events e
			JOIN event_courses ec ON e.id = ec.event_id
			JOIN courses c ON ec.course_id = c.id
			WHERE `)
		if cond != "" {
			b.WriteString(cond + ` AND `)
		}
		b.WriteString(`(
			(e.visibility = 'public' AND ec.course_id IN (
				SELECT course_id FROM subscriptions WHERE user_id = ?
			))
			OR (e.visibility = 'private' AND e.created_by = ?)
		)`)
		args = append(args, viewer.UserID, viewer.UserID)
	}

	b.WriteString(` GROUP BY e.id ` + eventOrder)
	if f.Limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.EventSummary
	for rows.Next() {
		var ev model.EventSummary
		if err := scanEventInto(rows, &ev.Event, &ev.CourseNames, &ev.CourseColors); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Detail assembles the single-event view for a viewer: linked courses,
// materials with the viewer's check state, and the viewer's read state.
func (s *EventStore) Detail(id, viewerID int64) (*model.EventDetail, error) {
	event, err := s.GetByID(id)
	if err != nil || event == nil {
		return nil, err
	}
	detail := model.EventDetail{Event: *event}

	courseRows, err := s.db.Query(
		`SELECT c.id, c.name, c.color
		 FROM courses c
		 JOIN event_courses ec ON c.id = ec.course_id
		 WHERE ec.event_id = ?`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("event courses: %w", err)
	}
	defer courseRows.Close()
	for courseRows.Next() {
		var c model.CourseRef
		if err := courseRows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("scan event course: %w", err)
		}
		detail.Courses = append(detail.Courses, c)
	}
	if err := courseRows.Err(); err != nil {
		return nil, err
	}

	matRows, err := s.db.Query(
		`SELECT m.id, m.event_id, m.description, m.quantity, m.sort_order, mc.checked
		 FROM materials m
		 LEFT JOIN material_checks mc ON m.id = mc.material_id AND mc.user_id = ?
		 WHERE m.event_id = ?
		 ORDER BY m.sort_order`,
		viewerID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("event materials: %w", err)
	}
	defer matRows.Close()
	for matRows.Next() {
		var m model.EventMaterial
		if err := matRows.Scan(&m.ID, &m.EventID, &m.Description, &m.Quantity, &m.SortOrder, &m.Checked); err != nil {
			return nil, fmt.Errorf("scan event material: %w", err)
		}
		detail.Materials = append(detail.Materials, m)
	}
	if err := matRows.Err(); err != nil {
		return nil, err
	}

	err = s.db.QueryRow(
		`SELECT read_at FROM event_reads WHERE event_id = ? AND user_id = ?`, id, viewerID,
	).Scan(&detail.ReadAt)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("event read state: %w", err)
	}
	detail.Read = err == nil

	return &detail, nil
}

// MarkRead records that the user saw the event. Re-marking is a no-op and
// reports alreadyRead=true; exactly one row ever exists per (event, user).
func (s *EventStore) MarkRead(eventID, userID int64) (alreadyRead bool, err error) {
	var one int
	err = s.db.QueryRow(
		`SELECT 1 FROM event_reads WHERE event_id = ? AND user_id = ?`, eventID, userID,
	).Scan(&one)
	if err == nil {
		return true, nil
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("check event read: %w", err)
	}

	// INSERT OR IGNORE keeps a concurrent double-mark from erroring.
	if _, err := s.db.Exec(
		`INSERT OR IGNORE INTO event_reads (event_id, user_id) VALUES (?, ?)`, eventID, userID,
	); err != nil {
		return false, fmt.Errorf("mark event read: %w", err)
	}
	return false, nil
}
