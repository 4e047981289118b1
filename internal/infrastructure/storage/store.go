// internal/infrastructure/storage/store.go
package storage

import (
	"context"
	"errors"
)

// Keys persisted by the client
const (
	KeyAuthToken    = "authToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// ErrNotFound is returned by Get when the key is not stored
var ErrNotFound = errors.New("storage: key not found")

// Store is a durable key-value capability surviving process restarts
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// Lookup reads key and folds ErrNotFound into ok=false
func Lookup(ctx context.Context, s Store, key string) (value string, ok bool, err error) {
	value, err = s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Pinger is implemented by stores backed by a network service
type Pinger interface {
	Ping(ctx context.Context) error
}
