package store

import (
	"database/sql"
	"fmt"

	"github.com/colegiosync/colegiosync/internal/auth"
	"github.com/colegiosync/colegiosync/internal/model"
)

type MaterialStore struct {
	db *sql.DB
}

func NewMaterialStore(db *sql.DB) *MaterialStore {
	return &MaterialStore{db: db}
}

// ListUpcoming returns materials of events in [from, to], scoped by the
// same visibility rule as event listings, with the viewer's check state.
func (s *MaterialStore) ListUpcoming(viewer auth.Identity, from, to string) ([]model.UpcomingMaterial, error) {
	var query string
	var args []any

	if viewer.Role.SeesAllEvents() {
		query = `
			SELECT DISTINCT m.id, m.event_id, m.description, m.quantity,
				e.title, e.event_date, e.start_time, mc.checked, mc.checked_at
			FROM materials m
			JOIN events e ON m.event_id = e.id
			LEFT JOIN material_checks mc ON m.id = mc.material_id AND mc.user_id = ?
			WHERE e.event_date BETWEEN ? AND ?
			ORDER BY e.event_date, e.start_time IS NULL, e.start_time, m.sort_order`
		args = []any{viewer.UserID, from, to}
	} else {
		query = `
			SELECT DISTINCT m.id, m.event_id, m.description, m.quantity,
				e.title, e.event_date, e.start_time, mc.checked, mc.checked_at
			FROM materials m
			JOIN events e ON m.event_id = e.id
			LEFT JOIN material_checks mc ON m.id = mc.material_id AND mc.user_id = ?
			WHERE e.event_date BETWEEN ? AND ?
			  AND (
				(e.visibility = 'public' AND e.id IN (
					SELECT ec.event_id FROM event_courses ec
					WHERE ec.course_id IN (SELECT course_id FROM subscriptions WHERE user_id = ?)
				))
				OR (e.visibility = 'private' AND e.created_by = ?)
			  )
			ORDER BY e.event_date, e.start_time IS NULL, e.start_time, m.sort_order`
		args = []any{viewer.UserID, from, to, viewer.UserID, viewer.UserID}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list upcoming materials: %w", err)
	}
	defer rows.Close()

	var materials []model.UpcomingMaterial
	for rows.Next() {
		var m model.UpcomingMaterial
		if err := rows.Scan(&m.ID, &m.EventID, &m.Description, &m.Quantity,
			&m.EventTitle, &m.EventDate, &m.StartTime, &m.Checked, &m.CheckedAt); err != nil {
			return nil, fmt.Errorf("scan upcoming material: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

// ToggleCheck flips the viewer's check state for a material, creating it
// checked on first touch. Returns the resulting state. Check state is
// per-viewer: one parent ticking an item does not tick it for others.
func (s *MaterialStore) ToggleCheck(materialID, userID int64) (bool, error) {
	var checked int
	err := s.db.QueryRow(
		`SELECT checked FROM material_checks WHERE material_id = ? AND user_id = ?`,
		materialID, userID,
	).Scan(&checked)

	if err == sql.ErrNoRows {
		if _, err := s.db.Exec(
			`INSERT INTO material_checks (material_id, user_id, checked) VALUES (?, ?, 1)`,
			materialID, userID,
		); err != nil {
			return false, fmt.Errorf("insert material check: %w", err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("get material check: %w", err)
	}

	next := 1 - checked
	if _, err := s.db.Exec(
		`UPDATE material_checks SET checked = ?, checked_at = CURRENT_TIMESTAMP
		 WHERE material_id = ? AND user_id = ?`,
		next, materialID, userID,
	); err != nil {
		return false, fmt.Errorf("update material check: %w", err)
	}
	return next == 1, nil
}
