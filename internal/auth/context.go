package auth

import "context"

type contextKey struct{}

// Identity is the authenticated (id, email, role) tuple resolved from the
// request's token. It is self-contained: no store lookup happens after
// token validation.
type Identity struct {
	UserID int64
	Email  string
	Role   Role
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// UserID returns the authenticated user ID, or 0 when unauthenticated.
func UserID(ctx context.Context) int64 {
	id, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return id.UserID
}

func IsAdmin(ctx context.Context) bool {
	id, ok := FromContext(ctx)
	return ok && id.Role == RoleAdmin
}
