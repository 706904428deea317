package auth

import (
	"context"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"parent", RoleParent, false},
		{"coordinator", RoleCoordinator, false},
		{"admin", RoleAdmin, false},
		{"", "", true},
		{"Admin", "", true},
		{"superuser", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRole(%q) = %v, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRole(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRolePredicates(t *testing.T) {
	if RoleParent.CanCoordinate() {
		t.Error("parent should not coordinate")
	}
	if !RoleCoordinator.CanCoordinate() || !RoleAdmin.CanCoordinate() {
		t.Error("coordinator and admin should coordinate")
	}
	if RoleParent.SeesAllEvents() {
		t.Error("parent should not see all events")
	}
	if !RoleCoordinator.SeesAllEvents() || !RoleAdmin.SeesAllEvents() {
		t.Error("coordinator and admin should see all events")
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	want := Identity{UserID: 7, Email: "ana@example.com", Role: RoleCoordinator}
	ctx := WithIdentity(context.Background(), want)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("identity not found in context")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if UserID(ctx) != 7 {
		t.Errorf("UserID = %d, want 7", UserID(ctx))
	}
	if IsAdmin(ctx) {
		t.Error("coordinator should not be admin")
	}
}

func TestEmptyContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := FromContext(ctx); ok {
		t.Error("expected no identity in empty context")
	}
	if UserID(ctx) != 0 {
		t.Error("UserID on empty context should be 0")
	}
	if IsAdmin(ctx) {
		t.Error("IsAdmin on empty context should be false")
	}
}
