// internal/infrastructure/api/errors.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnauthorized is matched by every 401 response. Stored tokens are already
// cleared and the unauthorized hook has run by the time it is returned.
var ErrUnauthorized = errors.New("unauthorized")

// TransportError is a network level failure: the request never produced an HTTP response
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a rejection reported by the API, either a non-2xx status or a
// {"success": false} envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap lets 401 responses match ErrUnauthorized
func (e *APIError) Unwrap() error {
	if e.StatusCode == 401 {
		return ErrUnauthorized
	}
	return nil
}

// IsTransport reports whether err is a network failure
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsRejection reports whether err is a business rejection from the API
func IsRejection(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode != 401
}

// errorMessage extracts a human readable message from an error body.
// It understands {"error": ...}, {"message": ...}, {"detail": ...} and
// per-field validation maps such as {"username": ["already taken"]}.
func errorMessage(body []byte, fallback string) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 {
			return text
		}
		return fallback
	}

	for _, key := range []string{"error", "message", "detail"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}

	fields := make([]string, 0, len(payload))
	for field, value := range payload {
		switch v := value.(type) {
		case string:
			fields = append(fields, fmt.Sprintf("%s: %s", field, v))
		case []interface{}:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, fmt.Sprint(item))
			}
			fields = append(fields, fmt.Sprintf("%s: %s", field, strings.Join(parts, ", ")))
		}
	}
	if len(fields) == 0 {
		return fallback
	}
	sort.Strings(fields)
	return strings.Join(fields, "; ")
}
