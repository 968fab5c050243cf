package kv

import "context"

// Repository stores opaque JSON documents by key. Get returns
// domain.ErrNotFound for unknown keys.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
