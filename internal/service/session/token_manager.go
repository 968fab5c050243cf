package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"xoned-commerce/internal/domain"
	sessionrepo "xoned-commerce/internal/repository/session"
)

var errExpired = errors.New("session expired")

type tokenManager struct {
	repo sessionrepo.Repository
	now  func() time.Time
}

func newTokenManager(repo sessionrepo.Repository) *tokenManager {
	return &tokenManager{repo: repo, now: time.Now}
}

func (m *tokenManager) Issue(ctx context.Context, sessionID string, ttl time.Duration) (string, error) {
	expiresAt := m.now().Add(ttl)
	for i := 0; i < 5; i++ {
		token, err := randomToken()
		if err != nil {
			return "", err
		}
		err = m.repo.Create(ctx, sessionrepo.Session{
			Token:     token,
			SessionID: sessionID,
			ExpiresAt: expiresAt,
		})
		if err == nil {
			return token, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", err
	}
	return "", errors.New("session token collision")
}

// Validate returns domain.ErrNotFound for unknown tokens. Expired tokens are
// deleted on sight and reported as errExpired together with their session.
func (m *tokenManager) Validate(ctx context.Context, token string) (*sessionrepo.Session, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	meta, err := m.repo.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !m.now().Before(meta.ExpiresAt) {
		_ = m.repo.Delete(ctx, token)
		return meta, errExpired
	}
	return meta, nil
}

// Revoke deletes the token and returns the session it belonged to, or ""
// when the token was unknown.
func (m *tokenManager) Revoke(ctx context.Context, token string) (string, error) {
	meta, err := m.repo.Get(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	err = m.repo.Delete(ctx, token)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	return meta.SessionID, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
