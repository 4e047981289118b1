// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-client/internal/domain/session"
	"github.com/your-org/storefront-client/internal/domain/user"
	"github.com/your-org/storefront-client/internal/state"
)

// Accounts drives the session
type Accounts interface {
	Login(ctx context.Context, creds user.Credentials) (*user.User, error)
	Register(ctx context.Context, req user.RegisterRequest) (*user.User, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*user.User, error)
	Session() state.Session
	SessionState() session.State
	LastAuthError() string
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	accounts Accounts
	log      *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts Accounts, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		log:      log,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	u, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"data":    u,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var creds user.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	u, err := h.accounts.Login(c.Request.Context(), creds)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    u,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.accounts.Logout(c.Request.Context()); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logout successful",
	})
}

// GetSession handles GET /auth/session
func (h *AuthHandler) GetSession(c *gin.Context) {
	current := h.accounts.Session()

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"state":            h.accounts.SessionState().String(),
			"is_authenticated": current.IsAuthenticated,
			"user":             current.User,
			"error":            h.accounts.LastAuthError(),
		},
	})
}

// GetProfile handles GET /auth/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	u, err := h.accounts.Profile(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    u,
	})
}
