// internal/storefront/app.go
package storefront

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-client/internal/config"
	"github.com/your-org/storefront-client/internal/domain/cart"
	"github.com/your-org/storefront-client/internal/domain/order"
	"github.com/your-org/storefront-client/internal/domain/product"
	"github.com/your-org/storefront-client/internal/domain/reconcile"
	"github.com/your-org/storefront-client/internal/domain/session"
	"github.com/your-org/storefront-client/internal/domain/user"
	"github.com/your-org/storefront-client/internal/infrastructure/api"
	"github.com/your-org/storefront-client/internal/infrastructure/storage"
	"github.com/your-org/storefront-client/internal/pkg/auth"
	"github.com/your-org/storefront-client/internal/pkg/pdf"
	"github.com/your-org/storefront-client/internal/state"
)

// App is the storefront client: catalog, session, cart and orders on top of
// the remote API. The HTTP shell and the CLI both drive one App.
type App struct {
	log      *logrus.Logger
	client   *api.Client
	state    *state.Container
	sessions *session.Manager
	cart     *reconcile.Reconciler
	receipts *pdf.Service
}

// New wires the client state, session manager and reconciler
func New(cfg *config.Config, store storage.Store, client *api.Client, log *logrus.Logger) *App {
	container := state.New(store, log, cfg.Storage.SnapshotKey)
	sessions := session.NewManager(container, auth.NewInspector(), log)
	reconciler := reconcile.New(container, client, log, reconcile.Options{
		MergeGuestCart: cfg.Cart.MergeGuestCart,
		RemoteRemove:   cfg.Cart.RemoteRemove,
	})

	// a cart under one identity must not survive into the next session
	sessions.OnLogout(reconciler.Clear)

	client.OnUnauthorized(func(ctx context.Context) {
		if sessions.State() != session.Authenticated {
			return
		}
		log.Warn("Session rejected by the API, logging out")
		if err := sessions.Logout(ctx); err != nil {
			log.WithError(err).Error("Forced logout failed")
		}
	})

	return &App{
		log:      log,
		client:   client,
		state:    container,
		sessions: sessions,
		cart:     reconciler,
		receipts: pdf.NewService(cfg),
	}
}

// Bootstrap restores the last snapshot and session, then refreshes the
// mirrored cart of a restored user.
func (a *App) Bootstrap(ctx context.Context) error {
	if err := a.state.Load(ctx); err != nil {
		return err
	}
	if err := a.sessions.Restore(ctx); err != nil {
		return err
	}

	if a.sessions.State() == session.Authenticated {
		if err := a.cart.Sync(ctx); err != nil {
			a.log.WithError(err).Warn("Failed to sync cart on startup")
		}
	}

	a.log.WithFields(logrus.Fields{
		"state":  a.sessions.State().String(),
		"source": a.state.Cart().Source.String(),
	}).Info("Storefront client ready")
	return nil
}

// Session returns the current session
func (a *App) Session() state.Session {
	return a.sessions.Current()
}

// SessionState returns Anonymous or Authenticated
func (a *App) SessionState() session.State {
	return a.sessions.State()
}

// LastAuthError returns the message of the last failed login or registration
func (a *App) LastAuthError() string {
	return a.sessions.LastError()
}

// Login authenticates against the API and activates the user's remote cart
func (a *App) Login(ctx context.Context, creds user.Credentials) (*user.User, error) {
	if err := creds.Validate(); err != nil {
		return nil, &reconcile.ValidationError{Fields: map[string]string{"credentials": err.Error()}}
	}

	resp, err := a.client.Login(ctx, creds)
	if err != nil {
		a.sessions.SetError(err.Error())
		return nil, err
	}

	return a.establish(ctx, resp)
}

// Register creates an account and logs it in
func (a *App) Register(ctx context.Context, req user.RegisterRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, &reconcile.ValidationError{Fields: map[string]string{"registration": err.Error()}}
	}

	resp, err := a.client.Register(ctx, req)
	if err != nil {
		a.sessions.SetError(err.Error())
		return nil, err
	}

	return a.establish(ctx, resp)
}

func (a *App) establish(ctx context.Context, resp *user.AuthResponse) (*user.User, error) {
	if err := a.sessions.Login(ctx, resp.User, resp.Access, resp.Refresh); err != nil {
		return nil, err
	}

	if err := a.cart.Activate(ctx); err != nil {
		a.log.WithError(err).Warn("Failed to activate remote cart")
	}

	u := resp.User
	return &u, nil
}

// Profile fetches the logged in user's account from the API
func (a *App) Profile(ctx context.Context) (*user.User, error) {
	if a.sessions.State() != session.Authenticated {
		return nil, reconcile.ErrNotAuthenticated
	}
	return a.client.Me(ctx)
}

// Logout blacklists the refresh token when possible and drops the session
func (a *App) Logout(ctx context.Context) error {
	refresh, ok, err := storage.Lookup(ctx, a.state.Store(), storage.KeyRefreshToken)
	if err != nil {
		a.log.WithError(err).Warn("Failed to read refresh token")
	}
	if ok && refresh != "" {
		if err := a.client.Logout(ctx, refresh); err != nil {
			a.log.WithError(err).Warn("Remote logout failed")
		}
	}

	return a.sessions.Logout(ctx)
}

// Products lists the catalog
func (a *App) Products(ctx context.Context, filter product.ListFilter) ([]product.Product, error) {
	return a.client.ListProducts(ctx, filter)
}

// SearchProducts finds products by name
func (a *App) SearchProducts(ctx context.Context, q string) ([]product.Product, error) {
	return a.client.SearchProducts(ctx, q)
}

// Product retrieves one product
func (a *App) Product(ctx context.Context, id uint) (*product.Product, error) {
	return a.client.GetProduct(ctx, id)
}

// Categories lists categories
func (a *App) Categories(ctx context.Context) ([]product.Category, error) {
	return a.client.ListCategories(ctx)
}

// Category retrieves one category
func (a *App) Category(ctx context.Context, id uint) (*product.Category, error) {
	return a.client.GetCategory(ctx, id)
}

// CategoryProducts lists the products of one category
func (a *App) CategoryProducts(ctx context.Context, id uint) ([]product.Product, error) {
	return a.client.CategoryProducts(ctx, id)
}

// Cart returns the active cart
func (a *App) Cart() cart.Cart {
	return a.cart.Cart()
}

// CartTotals returns the totals of the active cart
func (a *App) CartTotals() cart.Totals {
	return a.cart.Totals()
}

// AddToCart adds quantity units of a product to the active cart. Guest adds
// are checked against the product's stock here since no server sees them.
func (a *App) AddToCart(ctx context.Context, productID uint, quantity int) error {
	if quantity < 1 {
		return &reconcile.ValidationError{Fields: map[string]string{"quantity": "must be at least 1"}}
	}

	if a.state.Cart().Source.Kind() == cart.SourceRemote {
		return a.cart.AddRemote(ctx, productID, quantity)
	}

	p, err := a.client.GetProduct(ctx, productID)
	if err != nil {
		return err
	}

	wanted := quantity
	if line, ok := a.cart.Cart().Find(productID); ok {
		wanted += line.Quantity
	}
	if !p.InStock(wanted) {
		return &reconcile.ValidationError{Fields: map[string]string{
			"quantity": fmt.Sprintf("only %d of %s in stock", p.Stock, p.Name),
		}}
	}

	return a.cart.Add(ctx, *p, quantity)
}

// RemoveFromCart drops a product from the active cart
func (a *App) RemoveFromCart(ctx context.Context, productID uint) error {
	return a.cart.RemoveItem(ctx, productID)
}

// UpdateCartQuantity sets a product's quantity; zero or less removes it
func (a *App) UpdateCartQuantity(ctx context.Context, productID uint, quantity int) error {
	return a.cart.UpdateQuantity(ctx, productID, quantity)
}

// SyncCart refreshes the mirrored remote cart
func (a *App) SyncCart(ctx context.Context) error {
	return a.cart.Sync(ctx)
}

// ClearCart empties the active cart
func (a *App) ClearCart(ctx context.Context) error {
	return a.cart.Clear(ctx)
}

// PlaceOrder checks out the remote cart and clears it once the order exists
func (a *App) PlaceOrder(ctx context.Context, shippingAddress string, method order.PaymentMethod) (*order.Order, error) {
	placed, err := a.cart.Checkout(ctx, shippingAddress, method)
	if err != nil {
		return nil, err
	}

	if err := a.cart.Clear(ctx); err != nil {
		a.log.WithError(err).WithField("order_id", placed.ID).Error("Failed to clear cart after checkout")
	}

	return placed, nil
}

// Orders lists the order history of the logged in user
func (a *App) Orders(ctx context.Context) ([]order.Order, error) {
	if a.sessions.State() != session.Authenticated {
		return nil, reconcile.ErrNotAuthenticated
	}
	return a.client.ListOrders(ctx)
}

// Order retrieves one order of the logged in user
func (a *App) Order(ctx context.Context, id uint) (*order.Order, error) {
	if a.sessions.State() != session.Authenticated {
		return nil, reconcile.ErrNotAuthenticated
	}
	return a.client.GetOrder(ctx, id)
}

// Receipt renders a PDF receipt for an order
func (a *App) Receipt(ctx context.Context, id uint) (*bytes.Buffer, error) {
	o, err := a.Order(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.receipts.GenerateReceipt(o, a.sessions.Current().User)
}

// ReceiptHTML renders the receipt markup for an order
func (a *App) ReceiptHTML(ctx context.Context, id uint) (string, error) {
	o, err := a.Order(ctx, id)
	if err != nil {
		return "", err
	}
	return a.receipts.RenderHTML(o, a.sessions.Current().User)
}
