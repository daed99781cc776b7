// Package metadata stores the CLI's key/value session cache in SQLite.
package metadata

import (
	"context"
)

// Repository is a flat key/value table. Get reports common.ErrorNotFound
// for missing keys.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
