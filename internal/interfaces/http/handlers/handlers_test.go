package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-client/internal/domain/cart"
	"github.com/your-org/storefront-client/internal/domain/order"
	"github.com/your-org/storefront-client/internal/domain/product"
	"github.com/your-org/storefront-client/internal/domain/reconcile"
	"github.com/your-org/storefront-client/internal/domain/session"
	"github.com/your-org/storefront-client/internal/domain/user"
	"github.com/your-org/storefront-client/internal/infrastructure/api"
	"github.com/your-org/storefront-client/internal/pkg/logger"
	"github.com/your-org/storefront-client/internal/state"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubApp struct {
	products []product.Product
	current  cart.Cart
	err      error

	added       map[uint]int
	quantity    *int
	placedAddr  string
	placedVia   order.PaymentMethod
	loggedOut   bool
	receiptHTML string
}

func newStubApp() *stubApp {
	return &stubApp{added: make(map[uint]int)}
}

func (s *stubApp) Products(ctx context.Context, filter product.ListFilter) ([]product.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []product.Product
	for _, p := range s.products {
		if filter.CategoryID == 0 || p.Category.ID == filter.CategoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubApp) SearchProducts(ctx context.Context, q string) ([]product.Product, error) {
	return s.products, s.err
}

func (s *stubApp) Product(ctx context.Context, id uint) (*product.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &s.products[0], nil
}

func (s *stubApp) Categories(ctx context.Context) ([]product.Category, error) {
	return []product.Category{{ID: 1, Name: "Kitchen"}}, s.err
}

func (s *stubApp) Category(ctx context.Context, id uint) (*product.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &product.Category{ID: id, Name: "Kitchen"}, nil
}

func (s *stubApp) CategoryProducts(ctx context.Context, id uint) ([]product.Product, error) {
	return s.Products(ctx, product.ListFilter{CategoryID: id})
}

func (s *stubApp) Login(ctx context.Context, creds user.Credentials) (*user.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &user.User{ID: 7, Username: creds.Username}, nil
}

func (s *stubApp) Register(ctx context.Context, req user.RegisterRequest) (*user.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &user.User{ID: 8, Username: req.Username, Email: req.Email}, nil
}

func (s *stubApp) Logout(ctx context.Context) error {
	s.loggedOut = true
	return s.err
}

func (s *stubApp) Profile(ctx context.Context) (*user.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &user.User{ID: 7, Username: "alice", Email: "alice@example.com"}, nil
}

func (s *stubApp) Session() state.Session {
	return state.Session{}
}

func (s *stubApp) SessionState() session.State {
	return session.Anonymous
}

func (s *stubApp) LastAuthError() string {
	return ""
}

func (s *stubApp) Cart() cart.Cart {
	return s.current
}

func (s *stubApp) AddToCart(ctx context.Context, productID uint, quantity int) error {
	if s.err != nil {
		return s.err
	}
	s.added[productID] += quantity
	s.current.Upsert(product.Product{ID: productID, Name: "Mug", Price: decimal.RequireFromString("12.50")}, quantity)
	return nil
}

func (s *stubApp) RemoveFromCart(ctx context.Context, productID uint) error {
	s.current.Remove(productID)
	return s.err
}

func (s *stubApp) UpdateCartQuantity(ctx context.Context, productID uint, quantity int) error {
	s.quantity = &quantity
	return s.err
}

func (s *stubApp) SyncCart(ctx context.Context) error {
	return s.err
}

func (s *stubApp) ClearCart(ctx context.Context) error {
	s.current.Lines = nil
	return s.err
}

func (s *stubApp) PlaceOrder(ctx context.Context, shippingAddress string, method order.PaymentMethod) (*order.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.placedAddr = shippingAddress
	s.placedVia = method
	return &order.Order{ID: 42, ShippingAddress: shippingAddress, PaymentMethod: method, Status: order.OrderStatusPending}, nil
}

func (s *stubApp) Orders(ctx context.Context) ([]order.Order, error) {
	return []order.Order{{ID: 42}}, s.err
}

func (s *stubApp) Order(ctx context.Context, id uint) (*order.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &order.Order{ID: id}, nil
}

func (s *stubApp) Receipt(ctx context.Context, id uint) (*bytes.Buffer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return bytes.NewBufferString("%PDF-1.4"), nil
}

func (s *stubApp) ReceiptHTML(ctx context.Context, id uint) (string, error) {
	return s.receiptHTML, s.err
}

func setupRouter(app *stubApp) *gin.Engine {
	log := logger.Discard()
	r := gin.New()

	products := NewProductHandler(app, log)
	r.GET("/products", products.GetProducts)
	r.GET("/products/search", products.SearchProducts)
	r.GET("/products/:id", products.GetProduct)
	r.GET("/categories/:id", products.GetCategory)
	r.GET("/categories/:id/products", products.GetCategoryProducts)

	auth := NewAuthHandler(app, log)
	r.POST("/auth/login", auth.Login)
	r.POST("/auth/register", auth.Register)
	r.POST("/auth/logout", auth.Logout)
	r.GET("/auth/session", auth.GetSession)
	r.GET("/auth/me", auth.GetProfile)

	carts := NewCartHandler(app, log)
	r.GET("/cart", carts.GetCart)
	r.POST("/cart/items", carts.AddToCart)
	r.PUT("/cart/items/:id", carts.UpdateCartItem)
	r.DELETE("/cart/items/:id", carts.RemoveFromCart)
	r.POST("/cart/sync", carts.SyncCart)

	checkout := NewCheckoutHandler(app, log)
	r.POST("/checkout", checkout.Checkout)
	r.GET("/checkout/payment-methods", checkout.GetPaymentMethods)

	orders := NewOrderHandler(app, log)
	r.GET("/orders", orders.GetOrders)
	r.GET("/orders/:id/receipt", orders.GetReceipt)

	return r
}

func perform(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestProductHandler_GetProducts(t *testing.T) {
	app := newStubApp()
	app.products = []product.Product{
		{ID: 1, Name: "Mug", Category: product.Category{ID: 1}},
		{ID: 2, Name: "Pen", Category: product.Category{ID: 2}},
	}
	r := setupRouter(app)

	w := perform(r, http.MethodGet, "/products?category=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "Pen", data[0].(map[string]interface{})["name"])

	w = perform(r, http.MethodGet, "/products?category=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodGet, "/products/search?q=%20", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodGet, "/products/0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_UpstreamErrors(t *testing.T) {
	app := newStubApp()
	app.products = []product.Product{{ID: 1}}
	r := setupRouter(app)

	app.err = &api.APIError{StatusCode: http.StatusNotFound, Message: "Not found."}
	w := perform(r, http.MethodGet, "/products/9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found.", decodeBody(t, w)["error"])

	app.err = &api.APIError{StatusCode: http.StatusInternalServerError, Message: "boom"}
	w = perform(r, http.MethodGet, "/products/9", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	app.err = &api.TransportError{Op: "GET /products/9/", Err: errors.New("connection refused")}
	w = perform(r, http.MethodGet, "/products/9", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Storefront API is unavailable", decodeBody(t, w)["error"])

	app.err = errors.New("unexpected")
	w = perform(r, http.MethodGet, "/products/9", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	app := newStubApp()
	r := setupRouter(app)

	w := perform(r, http.MethodPost, "/auth/login", `{"username":"alice","password":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "alice", data["username"])

	w = perform(r, http.MethodPost, "/auth/login", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	app.err = &api.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	w = perform(r, http.MethodPost, "/auth/login", `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Invalid credentials", body["error"])
	assert.Equal(t, "/login", body["redirect"])
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	app := newStubApp()
	app.err = &reconcile.ValidationError{Fields: map[string]string{"password": "passwords do not match"}}
	r := setupRouter(app)

	w := perform(r, http.MethodPost, "/auth/register", `{"username":"bob","email":"bob@example.com","password":"12345678","password_confirm":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Validation failed", body["error"])
	assert.Equal(t, "passwords do not match", body["details"].(map[string]interface{})["password"])
}

func TestAuthHandler_SessionAndLogout(t *testing.T) {
	app := newStubApp()
	r := setupRouter(app)

	w := perform(r, http.MethodGet, "/auth/session", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "anonymous", data["state"])
	assert.Equal(t, false, data["is_authenticated"])

	w = perform(r, http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, app.loggedOut)
}

func TestCartHandler_AddAndRender(t *testing.T) {
	app := newStubApp()
	app.current = cart.Cart{Source: cart.Local()}
	r := setupRouter(app)

	w := perform(r, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, data["items"])

	w = perform(r, http.MethodPost, "/cart/items", `{"product_id":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, app.added[1], "quantity defaults to one")

	w = perform(r, http.MethodPost, "/cart/items", `{"product_id":1,"quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, app.current.Source.String(), data["source"])
	items := data["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, float64(3), items[0].(map[string]interface{})["quantity"])
	totals := data["totals"].(map[string]interface{})
	assert.Equal(t, float64(3), totals["total_items"])
	assert.Equal(t, "37.5", totals["total_price"])

	w = perform(r, http.MethodPost, "/cart/items", `{"quantity":2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartHandler_UpdateAndConflicts(t *testing.T) {
	app := newStubApp()
	r := setupRouter(app)

	w := perform(r, http.MethodPut, "/cart/items/1", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, app.quantity)
	assert.Equal(t, 0, *app.quantity)

	w = perform(r, http.MethodPut, "/cart/items/1", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	app.err = reconcile.ErrRemoteCartActive
	w = perform(r, http.MethodDelete, "/cart/items/1", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	app.err = reconcile.ErrNotAuthenticated
	w = perform(r, http.MethodPost, "/cart/sync", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", decodeBody(t, w)["redirect"])
}

func TestCheckoutHandler(t *testing.T) {
	app := newStubApp()
	r := setupRouter(app)

	w := perform(r, http.MethodPost, "/checkout", `{"shipping_address":"1 Main St","payment_method":"paypal"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "1 Main St", app.placedAddr)
	assert.Equal(t, order.PaymentMethodPayPal, app.placedVia)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(42), data["id"])

	app.err = reconcile.ErrEmptyCart
	w = perform(r, http.MethodPost, "/checkout", `{"shipping_address":"1 Main St","payment_method":"paypal"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cart is empty", decodeBody(t, w)["error"])

	app.err = reconcile.ErrCheckoutInProgress
	w = perform(r, http.MethodPost, "/checkout", `{"shipping_address":"1 Main St","payment_method":"paypal"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	app.err = &api.APIError{StatusCode: http.StatusOK, Message: "Cart is empty"}
	w = perform(r, http.MethodPost, "/checkout", `{"shipping_address":"1 Main St","payment_method":"paypal"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCheckoutHandler_PaymentMethods(t *testing.T) {
	r := setupRouter(newStubApp())

	w := perform(r, http.MethodGet, "/checkout/payment-methods", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, data, len(order.PaymentMethods))
	first := data[0].(map[string]interface{})
	assert.Equal(t, "credit_card", first["value"])
	assert.Equal(t, "Credit card", first["label"])
}

func TestOrderHandler_Receipt(t *testing.T) {
	app := newStubApp()
	app.receiptHTML = "<html>RCPT-000042</html>"
	r := setupRouter(app)

	w := perform(r, http.MethodGet, "/orders/42/receipt", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=RCPT-000042.pdf", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "8", w.Header().Get("Content-Length"))

	w = perform(r, http.MethodGet, "/orders/42/receipt?format=html", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "RCPT-000042")

	app.err = reconcile.ErrNotAuthenticated
	w = perform(r, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProductHandler_GetCategory(t *testing.T) {
	app := newStubApp()
	r := setupRouter(app)

	w := perform(r, http.MethodGet, "/categories/4", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(4), data["id"])
	assert.Equal(t, "Kitchen", data["name"])

	app.err = &api.APIError{StatusCode: http.StatusNotFound, Message: "Not found."}
	w = perform(r, http.MethodGet, "/categories/5", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_GetProfile(t *testing.T) {
	app := newStubApp()
	r := setupRouter(app)

	w := perform(r, http.MethodGet, "/auth/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "alice@example.com", data["email"])

	app.err = reconcile.ErrNotAuthenticated
	w = perform(r, http.MethodGet, "/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
