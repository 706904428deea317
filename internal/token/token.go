package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/colegiosync/colegiosync/internal/auth"
)

// TTL is the fixed validity window of an issued token. There is no
// revocation list: a token stays valid until expiry even if the account's
// role changes in the meantime.
const TTL = 7 * 24 * time.Hour

type claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and validates self-contained identity tokens (HS256).
type Service struct {
	secret []byte
	now    func() time.Time
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret), now: time.Now}
}

// Issue signs an identity assertion embedding {id, email, role} with an
// issued-at time and a 7-day expiry.
func (s *Service) Issue(id auth.Identity) (string, error) {
	now := s.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: id.UserID,
		Email:  id.Email,
		Role:   string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	})

	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature and expiry and returns the embedded identity.
// Malformed input, a bad signature, and an expired token are all reported
// the same way: ok=false. Callers must treat them identically.
func (s *Service) Validate(raw string) (auth.Identity, bool) {
	var c claims
	t, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil || !t.Valid {
		return auth.Identity{}, false
	}

	role, err := auth.ParseRole(c.Role)
	if err != nil {
		return auth.Identity{}, false
	}

	return auth.Identity{UserID: c.UserID, Email: c.Email, Role: role}, true
}
