// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-client/internal/domain/reconcile"
	"github.com/your-org/storefront-client/internal/infrastructure/api"
)

const loginRedirect = "/login"

// respondError maps client errors onto HTTP responses
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	var validationErr *reconcile.ValidationError
	var apiErr *api.APIError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": validationErr.Fields,
		})

	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, reconcile.ErrNotAuthenticated):
		message := "Authentication required"
		if errors.As(err, &apiErr) {
			message = apiErr.Message
		}
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":    message,
			"redirect": loginRedirect,
		})

	case errors.Is(err, reconcile.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})

	case errors.Is(err, reconcile.ErrRemoteCartActive), errors.Is(err, reconcile.ErrCheckoutInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < 400 {
			status = http.StatusUnprocessableEntity
		} else if status >= 500 {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": apiErr.Message})

	case api.IsTransport(err):
		log.WithError(err).Warn("Storefront API unreachable")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Storefront API is unavailable"})

	default:
		log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}
