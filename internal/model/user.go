package model

import (
	"time"

	"github.com/colegiosync/colegiosync/internal/auth"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	Phone        *string   `json:"phone"`

	// Notification preferences, flat on the user row like the rest of the
	// profile. Times are HH:MM local (ART).
	NotificationEvening       int    `json:"notification_evening"`
	NotificationMorning       int    `json:"notification_morning"`
	NotificationTimeEvening   string `json:"notification_time_evening"`
	NotificationTimeMorning   string `json:"notification_time_morning"`
	NotificationOnlyImportant int    `json:"notification_only_important"`

	// PushSubscription holds the browser PushSubscription JSON, or nil when
	// the user has no registered push endpoint.
	PushSubscription *string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity derives the token identity for this user.
func (u *User) Identity() auth.Identity {
	return auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// NotificationPrefs is the updatable preference subset of a user.
type NotificationPrefs struct {
	Evening       int    `json:"notification_evening"`
	Morning       int    `json:"notification_morning"`
	TimeEvening   string `json:"notification_time_evening"`
	TimeMorning   string `json:"notification_time_morning"`
	OnlyImportant int    `json:"notification_only_important"`
}
