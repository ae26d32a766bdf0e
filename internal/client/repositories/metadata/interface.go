// Package metadata is the raw key/value table behind the credential store.
// Values are opaque bytes; typing and defaults live in the store package.
package metadata

import (
	"context"
)

type Repository interface {
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}
