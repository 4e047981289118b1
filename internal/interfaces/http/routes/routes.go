// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-client/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-client/internal/interfaces/http/middleware"
)

// Storefront is everything the HTTP shell drives
type Storefront interface {
	handlers.Catalog
	handlers.Accounts
	handlers.Carts
	handlers.Checkouts
	handlers.Orders
}

// SetupRoutes registers all API routes
func SetupRoutes(rg *gin.RouterGroup, app Storefront, log *logrus.Logger) {
	SetupCatalogRoutes(rg, app, log)
	SetupAuthRoutes(rg, app, log)
	SetupCartRoutes(rg, app, log)
	SetupCheckoutRoutes(rg, app, log)
	SetupOrderRoutes(rg, app, log)
}

// SetupCatalogRoutes sets up product and category routes
func SetupCatalogRoutes(rg *gin.RouterGroup, catalog handlers.Catalog, log *logrus.Logger) {
	productHandler := handlers.NewProductHandler(catalog, log)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/search", productHandler.SearchProducts)
		products.GET("/:id", productHandler.GetProduct)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", productHandler.GetCategories)
		categories.GET("/:id", productHandler.GetCategory)
		categories.GET("/:id/products", productHandler.GetCategoryProducts)
	}
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, accounts handlers.Accounts, log *logrus.Logger) {
	authHandler := handlers.NewAuthHandler(accounts, log)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/session", authHandler.GetSession)

		protected := auth.Group("")
		protected.Use(middleware.RequireSession(accounts))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/me", authHandler.GetProfile)
		}
	}
}

// SetupCartRoutes sets up cart routes. Guests get a local cart, so none of
// these require a session.
func SetupCartRoutes(rg *gin.RouterGroup, carts handlers.Carts, log *logrus.Logger) {
	cartHandler := handlers.NewCartHandler(carts, log)

	cart := rg.Group("/cart")
	{
		cart.GET("", cartHandler.GetCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cart.POST("/sync", cartHandler.SyncCart)
	}
}

// SetupCheckoutRoutes sets up checkout routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, app interface {
	handlers.Checkouts
	middleware.SessionChecker
}, log *logrus.Logger) {
	checkoutHandler := handlers.NewCheckoutHandler(app, log)

	checkout := rg.Group("/checkout")
	{
		checkout.GET("/payment-methods", checkoutHandler.GetPaymentMethods)
		checkout.POST("", middleware.RequireSession(app), checkoutHandler.Checkout)
	}
}

// SetupOrderRoutes sets up order history routes
func SetupOrderRoutes(rg *gin.RouterGroup, app interface {
	handlers.Orders
	middleware.SessionChecker
}, log *logrus.Logger) {
	orderHandler := handlers.NewOrderHandler(app, log)

	orders := rg.Group("/orders")
	orders.Use(middleware.RequireSession(app))
	{
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/receipt", orderHandler.GetReceipt)
	}
}
