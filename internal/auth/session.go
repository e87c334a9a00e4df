package auth

import (
	"context"
	"time"
)

// Session replaces a process wide "current user": it is created on sign-in,
// travels in the request context and is deleted on sign-out.
type Session struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"-"`
	User        *User     `json:"user,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type contextKey string

const sessionKey contextKey = "session"

func NewContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)

	return s, ok && s != nil
}
