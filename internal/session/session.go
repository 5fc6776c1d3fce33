package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials is returned when the username/password pair is not allow-listed.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNotFound is returned for unknown or expired tokens.
	ErrNotFound = errors.New("session not found")
)

// Session is the opaque marker handed to a logged-in client.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists sessions by token.
type Store interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

type contextKey struct{}

// WithSession stores the authenticated session on the context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session placed by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}
