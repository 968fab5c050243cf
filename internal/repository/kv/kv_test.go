package kv

import (
	"context"
	"errors"
	"testing"

	"xoned-commerce/internal/cart"
	"xoned-commerce/internal/domain"
	"xoned-commerce/internal/repository/repotest"
)

func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	if _, err := repo.Get(ctx, "session/a/xoned-cart"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := repo.Put(ctx, "session/a/xoned-cart", []byte(`[{"id":"1","quantity":2}]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := repo.Put(ctx, "session/a/xoned-cart", []byte(`[]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := repo.Get(ctx, "session/a/xoned-cart")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "[]" {
		t.Fatalf("expected overwritten value, got %s", got)
	}
	if err := repo.Delete(ctx, "session/a/xoned-cart"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "session/a/xoned-cart"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestMemory(t *testing.T) {
	exerciseRepository(t, NewMemory())
}

func TestMemoryBacksCartStore(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	store, err := cart.Load(ctx, repo, "session/s1/"+cart.StorageKey, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := store.AddItem(ctx, domain.CartLineItem{ProductID: "1", UnitPrice: 2499, Size: "M", Color: "black"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	again, err := cart.Load(ctx, repo, "session/s1/"+cart.StorageKey, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.ItemCount() != 1 || again.Subtotal() != 2499 {
		t.Fatalf("unexpected reloaded cart %+v", again.Items())
	}
}

func TestPostgres(t *testing.T) {
	pool := repotest.Pool(t)
	exerciseRepository(t, NewPostgres(pool))
}
