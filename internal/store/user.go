package store

import (
	"database/sql"
	"fmt"

	"github.com/colegiosync/colegiosync/internal/auth"
	"github.com/colegiosync/colegiosync/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userCols = `id, email, name, password_hash, role, phone,
	notification_evening, notification_morning,
	notification_time_evening, notification_time_morning,
	notification_only_important, push_subscription, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var role string
	err := scanner.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.Phone,
		&u.NotificationEvening, &u.NotificationMorning,
		&u.NotificationTimeEvening, &u.NotificationTimeMorning,
		&u.NotificationOnlyImportant, &u.PushSubscription,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)
	return &u, nil
}

// Create inserts a user with an already-hashed password. A taken email
// surfaces as ErrDuplicate whether caught by the caller's pre-check or by
// the unique index.
func (s *UserStore) Create(email, name, passwordHash string, role auth.Role) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (email, name, password_hash, role) VALUES (?, ?, ?, ?)`,
		email, name, passwordHash, string(role),
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// SetPushSubscription stores the browser subscription JSON; nil clears it.
func (s *UserStore) SetPushSubscription(id int64, subscription *string) error {
	_, err := s.db.Exec(
		`UPDATE users SET push_subscription = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		subscription, id,
	)
	if err != nil {
		return fmt.Errorf("set push subscription: %w", err)
	}
	return nil
}

func (s *UserStore) UpdateNotificationPrefs(id int64, p model.NotificationPrefs) error {
	_, err := s.db.Exec(
		`UPDATE users SET
			notification_evening = ?,
			notification_morning = ?,
			notification_time_evening = ?,
			notification_time_morning = ?,
			notification_only_important = ?,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		p.Evening, p.Morning, p.TimeEvening, p.TimeMorning, p.OnlyImportant, id,
	)
	if err != nil {
		return fmt.Errorf("update notification prefs: %w", err)
	}
	return nil
}

// ListPushEnabled returns users with a registered push endpoint. The
// reminder scheduler walks this list every tick.
func (s *UserStore) ListPushEnabled() ([]model.User, error) {
	rows, err := s.db.Query(`SELECT ` + userCols + ` FROM users WHERE push_subscription IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("list push-enabled users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
