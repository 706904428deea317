package store

import (
	"errors"
	"testing"

	"github.com/colegiosync/colegiosync/internal/auth"
	"github.com/colegiosync/colegiosync/internal/model"
)

func TestUserCreateAndLookup(t *testing.T) {
	db := openTestDB(t)
	s := NewUserStore(db)

	u, err := s.Create("maria@example.com", "María", "bcrypt-hash", auth.RoleParent)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Role != auth.RoleParent {
		t.Errorf("role = %q, want parent", u.Role)
	}
	if u.NotificationTimeEvening != "20:00" || u.NotificationTimeMorning != "07:00" {
		t.Errorf("default notification times = %q/%q", u.NotificationTimeEvening, u.NotificationTimeMorning)
	}
	if u.NotificationEvening != 1 || u.NotificationMorning != 1 || u.NotificationOnlyImportant != 0 {
		t.Error("default notification flags wrong")
	}
	if u.PushSubscription != nil {
		t.Error("new user should have no push subscription")
	}

	byEmail, err := s.GetByEmail("maria@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail == nil || byEmail.ID != u.ID {
		t.Fatal("lookup by email did not return the created user")
	}
	if byEmail.PasswordHash != "bcrypt-hash" {
		t.Errorf("password hash = %q", byEmail.PasswordHash)
	}

	missing, err := s.GetByEmail("nadie@example.com")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown email")
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	s := NewUserStore(db)

	if _, err := s.Create("dup@example.com", "One", "h", auth.RoleParent); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := s.Create("dup@example.com", "Two", "h", auth.RoleParent)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second create err = %v, want ErrDuplicate", err)
	}
}

func TestUserNotificationPrefs(t *testing.T) {
	db := openTestDB(t)
	s := NewUserStore(db)
	u := seedUser(t, db, "prefs@example.com", auth.RoleParent)

	err := s.UpdateNotificationPrefs(u.ID, model.NotificationPrefs{
		Evening: 0, Morning: 1, TimeEvening: "21:30", TimeMorning: "06:45", OnlyImportant: 1,
	})
	if err != nil {
		t.Fatalf("update prefs: %v", err)
	}

	got, _ := s.GetByID(u.ID)
	if got.NotificationEvening != 0 || got.NotificationTimeEvening != "21:30" {
		t.Errorf("evening prefs not applied: %+v", got)
	}
	if got.NotificationOnlyImportant != 1 {
		t.Error("only_important not applied")
	}
}

func TestUserPushSubscription(t *testing.T) {
	db := openTestDB(t)
	s := NewUserStore(db)
	u := seedUser(t, db, "push@example.com", auth.RoleParent)
	seedUser(t, db, "nopush@example.com", auth.RoleParent)

	sub := `{"endpoint":"https://push.example/abc","keys":{"p256dh":"k","auth":"a"}}`
	if err := s.SetPushSubscription(u.ID, &sub); err != nil {
		t.Fatalf("set push subscription: %v", err)
	}

	enabled, err := s.ListPushEnabled()
	if err != nil {
		t.Fatalf("list push enabled: %v", err)
	}
	if len(enabled) != 1 || enabled[0].ID != u.ID {
		t.Fatalf("push enabled = %v, want just user %d", enabled, u.ID)
	}
	if enabled[0].PushSubscription == nil || *enabled[0].PushSubscription != sub {
		t.Error("stored subscription JSON mismatch")
	}

	if err := s.SetPushSubscription(u.ID, nil); err != nil {
		t.Fatalf("clear push subscription: %v", err)
	}
	enabled, _ = s.ListPushEnabled()
	if len(enabled) != 0 {
		t.Error("cleared subscription still listed")
	}
}
