// internal/state/container.go
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-client/internal/domain/cart"
	"github.com/your-org/storefront-client/internal/domain/user"
	"github.com/your-org/storefront-client/internal/infrastructure/storage"
)

// Session describes who is logged in
type Session struct {
	User            *user.User
	Token           string
	IsAuthenticated bool
}

// snapshot is the persisted form of the container, kept under one key so a
// restart restores the cart exactly as it was left.
type snapshot struct {
	User            *user.User  `json:"user"`
	Token           string      `json:"token"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	CartItems       []cart.Line `json:"cartItems"`
}

// Container holds the session and the active cart and writes a snapshot to
// the store after every change.
type Container struct {
	mu          sync.RWMutex
	store       storage.Store
	log         *logrus.Logger
	snapshotKey string

	session Session
	cart    cart.Cart
}

// New creates an empty container
func New(store storage.Store, log *logrus.Logger, snapshotKey string) *Container {
	return &Container{
		store:       store,
		log:         log,
		snapshotKey: snapshotKey,
		cart:        cart.Cart{Source: cart.Local()},
	}
}

// Store returns the backing key-value store
func (c *Container) Store() storage.Store {
	return c.store
}

// Load restores the last snapshot. A missing snapshot leaves the container
// empty; an unreadable one is dropped.
func (c *Container) Load(ctx context.Context) error {
	raw, err := c.store.Get(ctx, c.snapshotKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load state snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		c.log.WithError(err).Warn("Discarding corrupt state snapshot")
		if err := c.store.Remove(ctx, c.snapshotKey); err != nil {
			return fmt.Errorf("failed to discard state snapshot: %w", err)
		}
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = Session{
		User:            snap.User,
		Token:           snap.Token,
		IsAuthenticated: snap.IsAuthenticated && snap.User != nil && snap.Token != "",
	}

	restored := cart.Cart{Source: sourceFor(c.session)}
	for _, line := range snap.CartItems {
		restored.Upsert(line.Product, line.Quantity)
	}
	c.cart = restored

	return nil
}

// Session returns a copy of the current session
func (c *Container) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copySession(c.session)
}

// Cart returns a copy of the active cart
func (c *Container) Cart() cart.Cart {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cart.Clone()
}

// SetSession replaces the session and switches the cart source to match it.
// Lines are kept; the reconciler decides what happens to them.
func (c *Container) SetSession(ctx context.Context, s Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = copySession(s)
	c.cart.Source = sourceFor(c.session)

	return c.persistLocked(ctx)
}

// UpdateCart applies fn to a copy of the cart and commits the copy when fn
// returns nil. The returned cart is the committed state.
func (c *Container) UpdateCart(ctx context.Context, fn func(*cart.Cart) error) (cart.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.cart.Clone()
	if err := fn(&next); err != nil {
		return c.cart.Clone(), err
	}

	prev := c.cart
	c.cart = next
	if err := c.persistLocked(ctx); err != nil {
		c.cart = prev
		return prev.Clone(), err
	}

	return next.Clone(), nil
}

// Reset drops the session and the cart
func (c *Container) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = Session{}
	c.cart = cart.Cart{Source: cart.Local()}

	return c.persistLocked(ctx)
}

func (c *Container) persistLocked(ctx context.Context) error {
	lines := c.cart.Lines
	if lines == nil {
		lines = []cart.Line{}
	}

	raw, err := json.Marshal(snapshot{
		User:            c.session.User,
		Token:           c.session.Token,
		IsAuthenticated: c.session.IsAuthenticated,
		CartItems:       lines,
	})
	if err != nil {
		return fmt.Errorf("failed to encode state snapshot: %w", err)
	}

	if err := c.store.Set(ctx, c.snapshotKey, string(raw)); err != nil {
		return fmt.Errorf("failed to save state snapshot: %w", err)
	}
	return nil
}

func sourceFor(s Session) cart.Source {
	if s.IsAuthenticated && s.User != nil {
		return cart.Remote(s.User.ID)
	}
	return cart.Local()
}

func copySession(s Session) Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
