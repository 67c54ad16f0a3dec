// Package metadata stores small key-value records of local client state:
// the signed-in user, the session credential and the interface language.
package metadata

import (
	"context"
)

// Repository is a byte-valued key-value store. Get returns (nil, nil) for an
// absent key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	DeleteKeys(ctx context.Context, keys ...string) error
}
