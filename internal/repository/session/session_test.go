package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"xoned-commerce/internal/domain"
	"xoned-commerce/internal/repository/repotest"
)

func TestPostgres_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(repotest.Pool(t))

	s := Session{Token: "tok-1", SessionID: uuid.NewString(), ExpiresAt: time.Now().Add(time.Hour).UTC()}
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, s); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	got, err := repo.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SessionID != s.SessionID {
		t.Fatalf("unexpected session %+v", got)
	}

	if err := repo.Delete(ctx, "tok-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "tok-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgres_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(repotest.Pool(t))
	now := time.Now().UTC()

	expired := uuid.NewString()
	_ = repo.Create(ctx, Session{Token: "old", SessionID: expired, ExpiresAt: now.Add(-time.Minute)})
	_ = repo.Create(ctx, Session{Token: "new", SessionID: uuid.NewString(), ExpiresAt: now.Add(time.Hour)})

	ids, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if len(ids) != 1 || ids[0] != expired {
		t.Fatalf("expected expired session %s removed, got %v", expired, ids)
	}
	if _, err := repo.Get(ctx, "new"); err != nil {
		t.Fatalf("expected live session kept: %v", err)
	}
}
