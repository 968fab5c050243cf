package session

import (
	"context"
	"time"
)

// Session binds an opaque bearer token to the anonymous session that owns a
// cart and a wishlist.
type Session struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	// DeleteExpired removes sessions expired at now and returns their session ids.
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)
}
