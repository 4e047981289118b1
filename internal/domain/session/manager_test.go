package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-client/internal/domain/cart"
	"github.com/your-org/storefront-client/internal/domain/product"
	"github.com/your-org/storefront-client/internal/domain/user"
	"github.com/your-org/storefront-client/internal/infrastructure/storage"
	"github.com/your-org/storefront-client/internal/pkg/auth"
	"github.com/your-org/storefront-client/internal/pkg/logger"
	"github.com/your-org/storefront-client/internal/state"
)

func newManager(t *testing.T) (*Manager, *state.Container, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	container := state.New(store, logger.Discard(), "storefront-state")
	return NewManager(container, auth.NewInspector(), logger.Discard()), container, store
}

func seed(t *testing.T, store storage.Store, values map[string]string) {
	t.Helper()
	for k, v := range values {
		require.NoError(t, store.Set(context.Background(), k, v))
	}
}

func assertCredentialsCleared(t *testing.T, store storage.Store) {
	t.Helper()
	for _, key := range []string{storage.KeyAuthToken, storage.KeyRefreshToken, storage.KeyUser} {
		_, ok, err := storage.Lookup(context.Background(), store, key)
		require.NoError(t, err)
		assert.False(t, ok, "key %s should be removed", key)
	}
}

func TestManager_RestoreNothingStored(t *testing.T) {
	m, _, _ := newManager(t)

	require.NoError(t, m.Restore(context.Background()))
	assert.Equal(t, Anonymous, m.State())
	assert.Nil(t, m.Current().User)
}

func TestManager_RestoreValid(t *testing.T) {
	m, container, store := newManager(t)
	seed(t, store, map[string]string{
		storage.KeyAuthToken: "opaque-token",
		storage.KeyUser:      `{"id":3,"username":"grace","email":"grace@example.com"}`,
	})

	require.NoError(t, m.Restore(context.Background()))

	current := m.Current()
	assert.Equal(t, Authenticated, m.State())
	assert.Equal(t, "opaque-token", current.Token)
	require.NotNil(t, current.User)
	assert.Equal(t, "grace", current.User.Username)

	uid, remote := container.Cart().Source.UserID()
	assert.True(t, remote)
	assert.Equal(t, uint(3), uid)
}

func TestManager_RestoreCorruptUser(t *testing.T) {
	m, _, store := newManager(t)
	seed(t, store, map[string]string{
		storage.KeyAuthToken:    "tok",
		storage.KeyRefreshToken: "refresh",
		storage.KeyUser:         "{bad json",
	})

	require.NoError(t, m.Restore(context.Background()))
	assert.Equal(t, Anonymous, m.State())
	assertCredentialsCleared(t, store)
}

func TestManager_RestoreUserWithoutID(t *testing.T) {
	for _, raw := range []string{"null", "{}", `{"username":"ghost"}`} {
		t.Run(raw, func(t *testing.T) {
			m, container, store := newManager(t)
			seed(t, store, map[string]string{
				storage.KeyAuthToken:    "tok",
				storage.KeyRefreshToken: "refresh",
				storage.KeyUser:         raw,
			})

			require.NoError(t, m.Restore(context.Background()))
			assert.Equal(t, Anonymous, m.State())
			assert.Nil(t, m.Current().User)
			_, remote := container.Cart().Source.UserID()
			assert.False(t, remote)
			assertCredentialsCleared(t, store)
		})
	}
}

func TestManager_RestorePartialState(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
	}{
		{"token without user", map[string]string{storage.KeyAuthToken: "tok"}},
		{"user without token", map[string]string{storage.KeyUser: `{"id":1}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, store := newManager(t)
			seed(t, store, tt.values)

			require.NoError(t, m.Restore(context.Background()))
			assert.Equal(t, Anonymous, m.State())
			assertCredentialsCleared(t, store)
		})
	}
}

func TestManager_RestoreExpiredToken(t *testing.T) {
	m, _, store := newManager(t)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		UserID:    1,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	seed(t, store, map[string]string{
		storage.KeyAuthToken: expired,
		storage.KeyUser:      `{"id":1,"username":"ada"}`,
	})

	require.NoError(t, m.Restore(context.Background()))
	assert.Equal(t, Anonymous, m.State())
	assertCredentialsCleared(t, store)
}

func TestManager_RestoreDropsStaleMirror(t *testing.T) {
	ctx := context.Background()
	m, container, store := newManager(t)

	require.NoError(t, m.Login(ctx, user.User{ID: 1, Username: "ada"}, "tok", ""))
	_, err := container.UpdateCart(ctx, func(c *cart.Cart) error {
		c.Upsert(product.Product{ID: 9, Price: decimal.NewFromInt(1)}, 1)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, storage.KeyUser))
	require.NoError(t, m.Restore(ctx))

	assert.Equal(t, Anonymous, m.State())
	assert.True(t, container.Cart().IsEmpty())
}

func TestManager_Login(t *testing.T) {
	ctx := context.Background()
	m, _, store := newManager(t)
	m.SetError("Invalid credentials")

	u := user.User{ID: 5, Username: "linus", Email: "linus@example.com"}
	require.NoError(t, m.Login(ctx, u, "access", "refresh"))

	assert.Equal(t, Authenticated, m.State())
	assert.Empty(t, m.LastError())

	token, err := store.Get(ctx, storage.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "access", token)

	refresh, err := store.Get(ctx, storage.KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refresh)

	raw, err := store.Get(ctx, storage.KeyUser)
	require.NoError(t, err)
	var stored user.User
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, u, stored)
}

func TestManager_LoginWithoutToken(t *testing.T) {
	m, _, _ := newManager(t)

	err := m.Login(context.Background(), user.User{ID: 1}, "", "")
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.Equal(t, Anonymous, m.State())
}

func TestManager_LogoutRunsHooks(t *testing.T) {
	ctx := context.Background()
	m, container, store := newManager(t)

	var calls int
	m.OnLogout(func(ctx context.Context) error {
		calls++
		_, err := container.UpdateCart(ctx, func(c *cart.Cart) error {
			c.Lines = nil
			return nil
		})
		return err
	})

	require.NoError(t, m.Login(ctx, user.User{ID: 1, Username: "ada"}, "tok", "refresh"))
	_, err := container.UpdateCart(ctx, func(c *cart.Cart) error {
		c.Upsert(product.Product{ID: 2, Price: decimal.NewFromInt(5)}, 2)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx))
	assert.Equal(t, 1, calls)
	assert.Equal(t, Anonymous, m.State())
	assertCredentialsCleared(t, store)

	// simulated restart
	reloaded := state.New(store, logger.Discard(), "storefront-state")
	require.NoError(t, reloaded.Load(ctx))
	restored := NewManager(reloaded, auth.NewInspector(), logger.Discard())
	require.NoError(t, restored.Restore(ctx))

	assert.Equal(t, Anonymous, restored.State())
	assert.True(t, reloaded.Cart().IsEmpty())
}

func TestManager_LogoutHookError(t *testing.T) {
	m, _, _ := newManager(t)
	boom := errors.New("boom")
	m.OnLogout(func(ctx context.Context) error { return boom })

	err := m.Logout(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Anonymous, m.State())
}
