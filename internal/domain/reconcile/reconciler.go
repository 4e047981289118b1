// internal/domain/reconcile/reconciler.go
package reconcile

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-client/internal/domain/cart"
	"github.com/your-org/storefront-client/internal/domain/order"
	"github.com/your-org/storefront-client/internal/domain/product"
	"github.com/your-org/storefront-client/internal/state"
)

// RemoteCart is the server-side cart of the logged in user
type RemoteCart interface {
	GetCart(ctx context.Context) (*cart.RemoteCart, error)
	AddItem(ctx context.Context, productID uint, quantity int) error
	RemoveItem(ctx context.Context, productID uint) error
	Checkout(ctx context.Context, req order.CheckoutRequest) (*order.Order, error)
}

// Options toggles reconciliation behavior
type Options struct {
	// MergeGuestCart pushes guest lines to the remote cart on Activate
	MergeGuestCart bool
	// RemoteRemove sends removals of mirrored lines to the API
	RemoteRemove bool
}

// Reconciler presents one cart across the anonymous and authenticated
// states. The guest cart is edited in place; once a user is logged in the
// remote cart is authoritative and the local copy only mirrors it.
type Reconciler struct {
	container *state.Container
	remote    RemoteCart
	log       *logrus.Logger
	opts      Options

	checkoutMu  sync.Mutex
	checkingOut bool
}

// New creates a reconciler
func New(container *state.Container, remote RemoteCart, log *logrus.Logger, opts Options) *Reconciler {
	return &Reconciler{
		container: container,
		remote:    remote,
		log:       log,
		opts:      opts,
	}
}

// Cart returns a copy of the active cart
func (r *Reconciler) Cart() cart.Cart {
	return r.container.Cart()
}

// Totals returns totals derived from the active cart
func (r *Reconciler) Totals() cart.Totals {
	return r.container.Cart().Totals()
}

// AddLocal adds one unit of p to the guest cart
func (r *Reconciler) AddLocal(ctx context.Context, p product.Product) error {
	_, err := r.container.UpdateCart(ctx, func(c *cart.Cart) error {
		if c.Source.Kind() != cart.SourceLocal {
			return ErrRemoteCartActive
		}
		c.Upsert(p, 1)
		return nil
	})
	return err
}

// AddRemote adds quantity units through the API and then re-reads the remote
// cart. On failure the mirror is left as it was.
func (r *Reconciler) AddRemote(ctx context.Context, productID uint, quantity int) error {
	if _, ok := r.container.Cart().Source.UserID(); !ok {
		return ErrNotAuthenticated
	}
	if quantity < 1 {
		return &ValidationError{Fields: map[string]string{"quantity": "must be at least 1"}}
	}

	if err := r.remote.AddItem(ctx, productID, quantity); err != nil {
		return fmt.Errorf("failed to add item to cart: %w", err)
	}

	return r.Sync(ctx)
}

// Add routes to the active cart: quantity units into the guest cart, or
// through the API when a user is logged in.
func (r *Reconciler) Add(ctx context.Context, p product.Product, quantity int) error {
	if quantity < 1 {
		return &ValidationError{Fields: map[string]string{"quantity": "must be at least 1"}}
	}

	switch r.container.Cart().Source.Kind() {
	case cart.SourceRemote:
		return r.AddRemote(ctx, p.ID, quantity)
	case cart.SourceLocal:
		_, err := r.container.UpdateCart(ctx, func(c *cart.Cart) error {
			if c.Source.Kind() != cart.SourceLocal {
				return ErrRemoteCartActive
			}
			c.Upsert(p, quantity)
			return nil
		})
		return err
	default:
		return fmt.Errorf("unknown cart source %s", r.container.Cart().Source)
	}
}

// RemoveItem drops the line for productID from the active cart
func (r *Reconciler) RemoveItem(ctx context.Context, productID uint) error {
	current := r.container.Cart()

	switch current.Source.Kind() {
	case cart.SourceLocal:
		return r.mutate(ctx, current.Source, func(c *cart.Cart) { c.Remove(productID) })
	case cart.SourceRemote:
		if r.opts.RemoteRemove {
			if err := r.remote.RemoveItem(ctx, productID); err != nil {
				return fmt.Errorf("failed to remove item from cart: %w", err)
			}
			return r.Sync(ctx)
		}
		r.log.WithField("product_id", productID).Debug("Removing item from mirrored cart only")
		return r.mutate(ctx, current.Source, func(c *cart.Cart) { c.Remove(productID) })
	default:
		return fmt.Errorf("unknown cart source %s", current.Source)
	}
}

// UpdateQuantity sets the quantity of productID; qty <= 0 removes the line
func (r *Reconciler) UpdateQuantity(ctx context.Context, productID uint, qty int) error {
	if qty <= 0 {
		return r.RemoveItem(ctx, productID)
	}

	current := r.container.Cart()
	switch current.Source.Kind() {
	case cart.SourceLocal, cart.SourceRemote:
		return r.mutate(ctx, current.Source, func(c *cart.Cart) { c.SetQuantity(productID, qty) })
	default:
		return fmt.Errorf("unknown cart source %s", current.Source)
	}
}

// Sync replaces the mirror with the server's cart. Calling it twice in a row
// yields the same state.
func (r *Reconciler) Sync(ctx context.Context) error {
	source := r.container.Cart().Source
	userID, ok := source.UserID()
	if !ok {
		return ErrNotAuthenticated
	}

	remote, err := r.remote.GetCart(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch cart: %w", err)
	}

	lines := remote.Lines()
	err = r.mutate(ctx, source, func(c *cart.Cart) {
		c.Lines = lines
	})
	if err != nil {
		return err
	}

	r.log.WithFields(logrus.Fields{
		"user_id": userID,
		"lines":   len(lines),
	}).Debug("Cart synced")
	return nil
}

// Activate is called once a session becomes authenticated. With
// MergeGuestCart the guest lines are pushed first; either way the server's
// cart then replaces the local one. Guest lines never stay in the mirror,
// even when the sync fails.
func (r *Reconciler) Activate(ctx context.Context) error {
	current := r.container.Cart()
	if _, ok := current.Source.UserID(); !ok {
		return ErrNotAuthenticated
	}

	guestLines := current.Lines
	if err := r.mutate(ctx, current.Source, func(c *cart.Cart) { c.Lines = nil }); err != nil {
		return err
	}

	if r.opts.MergeGuestCart {
		for _, line := range guestLines {
			if err := r.remote.AddItem(ctx, line.ID, line.Quantity); err != nil {
				r.log.WithError(err).WithField("product_id", line.ID).Warn("Failed to merge guest cart line")
			}
		}
	}

	return r.Sync(ctx)
}

// Clear empties the active cart
func (r *Reconciler) Clear(ctx context.Context) error {
	_, err := r.container.UpdateCart(ctx, func(c *cart.Cart) error {
		c.Lines = nil
		return nil
	})
	return err
}

// Checkout places an order for the remote cart. Both fields are validated
// before any request is made. The cart is never modified here; callers clear
// it once they have the order.
func (r *Reconciler) Checkout(ctx context.Context, shippingAddress string, paymentMethod order.PaymentMethod) (*order.Order, error) {
	current := r.container.Cart()
	if _, ok := current.Source.UserID(); !ok {
		return nil, ErrNotAuthenticated
	}
	if current.IsEmpty() {
		return nil, ErrEmptyCart
	}

	req := order.CheckoutRequest{
		ShippingAddress: strings.TrimSpace(shippingAddress),
		PaymentMethod:   order.PaymentMethod(strings.TrimSpace(string(paymentMethod))),
	}

	fields := make(map[string]string)
	if req.ShippingAddress == "" {
		fields["shipping_address"] = "is required"
	}
	if req.PaymentMethod == "" {
		fields["payment_method"] = "is required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	r.checkoutMu.Lock()
	if r.checkingOut {
		r.checkoutMu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	r.checkingOut = true
	r.checkoutMu.Unlock()

	defer func() {
		r.checkoutMu.Lock()
		r.checkingOut = false
		r.checkoutMu.Unlock()
	}()

	placed, err := r.remote.Checkout(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("checkout failed: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"order_id":       placed.ID,
		"total_amount":   placed.TotalAmount.StringFixed(2),
		"payment_method": req.PaymentMethod,
	}).Info("Order placed")

	return placed, nil
}

// mutate applies fn only while the cart still belongs to source, so a result
// computed for one user never lands in another user's cart.
func (r *Reconciler) mutate(ctx context.Context, source cart.Source, fn func(*cart.Cart)) error {
	_, err := r.container.UpdateCart(ctx, func(c *cart.Cart) error {
		if c.Source != source {
			return fmt.Errorf("cart changed from %s to %s during update", source, c.Source)
		}
		fn(c)
		return nil
	})
	return err
}
