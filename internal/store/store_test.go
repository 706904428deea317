package store

import (
	"database/sql"
	"testing"

	"github.com/colegiosync/colegiosync/internal/auth"
	"github.com/colegiosync/colegiosync/internal/database"
	"github.com/colegiosync/colegiosync/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// The DSN pragma is not reliably honored for :memory: databases.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB, email string, role auth.Role) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create(email, "Test User", "hash", role)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func seedCourse(t *testing.T, db *sql.DB, name string) *model.Course {
	t.Helper()
	c, err := NewCourseStore(db).Create(name, "#10B981", 2025)
	if err != nil {
		t.Fatalf("seed course %s: %v", name, err)
	}
	return c
}

func subscribe(t *testing.T, db *sql.DB, userID, courseID int64) *model.Subscription {
	t.Helper()
	sub, err := NewSubscriptionStore(db).Create(userID, courseID, nil)
	if err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
	return sub
}

func strptr(s string) *string { return &s }
