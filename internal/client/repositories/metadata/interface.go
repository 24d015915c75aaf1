// Package metadata is the client's durable key/value store: a single sqlite
// table of (key, value) pairs. The session mirror lives here.
package metadata

import (
	"context"
)

// Repository reads and writes raw values by key.
//
// Get returns (nil, nil) for a key that does not exist; Delete of a missing
// key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
