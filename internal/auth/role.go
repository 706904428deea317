package auth

import "fmt"

// Role is the closed set of account roles. The zero value is not valid;
// use ParseRole for anything that crosses a trust boundary.
type Role string

const (
	RoleParent      Role = "parent"
	RoleCoordinator Role = "coordinator"
	RoleAdmin       Role = "admin"
)

// ParseRole validates a raw role string, typically read from a token claim
// or a registration request.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleParent, RoleCoordinator, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// CanCoordinate reports whether the role may create and manage events.
func (r Role) CanCoordinate() bool {
	switch r {
	case RoleCoordinator, RoleAdmin:
		return true
	case RoleParent:
		return false
	}
	return false
}

// SeesAllEvents reports whether the role bypasses subscription and
// visibility scoping. Coordinators intentionally see other coordinators'
// private events; the private flag only shields events from parents.
func (r Role) SeesAllEvents() bool {
	switch r {
	case RoleCoordinator, RoleAdmin:
		return true
	case RoleParent:
		return false
	}
	return false
}

func (r Role) String() string { return string(r) }
