// internal/domain/reconcile/errors.go
package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotAuthenticated is returned by operations that need the remote cart
	ErrNotAuthenticated = errors.New("authentication required")
	// ErrRemoteCartActive is returned by AddLocal once a user is logged in
	ErrRemoteCartActive = errors.New("remote cart is active, add through the API")
	// ErrEmptyCart is returned by Checkout on an empty cart
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCheckoutInProgress is returned while another checkout is pending
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

// ValidationError reports fields rejected before any request was made
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
