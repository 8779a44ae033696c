// Package session carries the authenticated caller through a request.
package session

import (
	"context"

	"github.com/google/uuid"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Session is the caller identity after the cookie has been verified and the
// role re-read from the user store.
type Session struct {
	UserID uuid.UUID
	Role   string
}

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

func (s Session) Valid() bool { return s.UserID != uuid.Nil && s.Role != "" }

type ctxKey struct{}

func IntoContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok && s.Valid()
}
