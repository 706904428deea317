package store

import (
	"errors"
	"strings"
)

// ErrDuplicate reports a uniqueness violation (email, (user, course) pair).
// Pre-insert existence checks race with concurrent inserts, so the unique
// index is the authority and its violation maps to the same error.
var ErrDuplicate = errors.New("duplicate resource")

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
