package store

import (
	"database/sql"
	"fmt"

	"github.com/colegiosync/colegiosync/internal/model"
)

type SubscriptionStore struct {
	db *sql.DB
}

func NewSubscriptionStore(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// ListForUser returns the user's subscriptions joined with their courses,
// skipping retired courses.
func (s *SubscriptionStore) ListForUser(userID int64) ([]model.SubscriptionWithCourse, error) {
	rows, err := s.db.Query(
		`SELECT s.id, s.child_alias, c.id, c.name, c.color
		 FROM subscriptions s
		 JOIN courses c ON s.course_id = c.id
		 WHERE s.user_id = ? AND c.active = 1
		 ORDER BY c.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.SubscriptionWithCourse
	for rows.Next() {
		var sub model.SubscriptionWithCourse
		if err := rows.Scan(&sub.ID, &sub.ChildAlias, &sub.CourseID, &sub.CourseName, &sub.CourseColor); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Create subscribes a user to a course. A second subscription to the same
// course returns ErrDuplicate; concurrent duplicates hit the unique index
// and map to the same error.
func (s *SubscriptionStore) Create(userID, courseID int64, childAlias *string) (*model.Subscription, error) {
	var existing int64
	err := s.db.QueryRow(
		`SELECT id FROM subscriptions WHERE user_id = ? AND course_id = ?`,
		userID, courseID,
	).Scan(&existing)
	if err == nil {
		return nil, ErrDuplicate
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("check subscription: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO subscriptions (user_id, course_id, child_alias) VALUES (?, ?, ?)`,
		userID, courseID, childAlias,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *SubscriptionStore) GetByID(id int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := s.db.QueryRow(
		`SELECT id, user_id, course_id, child_alias, created_at FROM subscriptions WHERE id = ?`, id,
	).Scan(&sub.ID, &sub.UserID, &sub.CourseID, &sub.ChildAlias, &sub.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &sub, nil
}

// Delete removes a subscription owned by userID. Returns false when no such
// owned subscription exists.
func (s *SubscriptionStore) Delete(id, userID int64) (bool, error) {
	result, err := s.db.Exec(
		`DELETE FROM subscriptions WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// CourseIDs returns the IDs of all courses the user is subscribed to.
func (s *SubscriptionStore) CourseIDs(userID int64) ([]int64, error) {
	rows, err := s.db.Query(`SELECT course_id FROM subscriptions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscribed course ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan course id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
