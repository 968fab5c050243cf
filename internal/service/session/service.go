package session

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"xoned-commerce/internal/domain"
	sessionrepo "xoned-commerce/internal/repository/session"
)

var ErrInvalidToken = errors.New("invalid session token")

type Service struct {
	tokens *tokenManager
	ttl    time.Duration
	owners []DataOwner
	logger *log.Logger
}

// DataOwner keeps per-session state that must go when the session ends.
type DataOwner interface {
	Forget(ctx context.Context, sessionID string) error
}

func New(repo sessionrepo.Repository, ttl time.Duration, logger *log.Logger, owners ...DataOwner) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{tokens: newTokenManager(repo), ttl: ttl, owners: owners, logger: logger}
}

// Issue starts a new anonymous session and returns its bearer token.
func (s *Service) Issue(ctx context.Context) (token, sessionID string, err error) {
	sessionID = uuid.NewString()
	token, err = s.tokens.Issue(ctx, sessionID, s.ttl)
	if err != nil {
		s.logger.Printf("session: issue error=%v", err)
		return "", "", err
	}
	return token, sessionID, nil
}

// Lookup resolves a token to its session id. Unknown and expired tokens are
// both ErrInvalidToken; storage failures are returned as is.
func (s *Service) Lookup(ctx context.Context, token string) (string, error) {
	meta, err := s.tokens.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, errExpired) {
			s.forget(ctx, meta.SessionID)
			return "", ErrInvalidToken
		}
		if errors.Is(err, domain.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	return meta.SessionID, nil
}

// Revoke ends the session behind token and drops its data. Unknown tokens
// are a no-op.
func (s *Service) Revoke(ctx context.Context, token string) error {
	sessionID, err := s.tokens.Revoke(ctx, token)
	if err != nil {
		return err
	}
	if sessionID != "" {
		s.forget(ctx, sessionID)
	}
	return nil
}

// PurgeExpired removes expired sessions with their data and reports how many
// were dropped.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	ids, err := s.tokens.repo.DeleteExpired(ctx, s.tokens.now())
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.forget(ctx, id)
	}
	if len(ids) > 0 {
		s.logger.Printf("session: purged expired count=%d", len(ids))
	}
	return int64(len(ids)), nil
}

// forget is best effort; leftovers are unreachable once the token is gone.
func (s *Service) forget(ctx context.Context, sessionID string) {
	for _, owner := range s.owners {
		if err := owner.Forget(ctx, sessionID); err != nil {
			s.logger.Printf("session: forget session=%s error=%v", sessionID, err)
		}
	}
}

func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}
