// internal/infrastructure/api/users.go
package api

import (
	"context"

	"github.com/your-org/storefront-client/internal/domain/user"
)

// Login exchanges credentials for a token pair and the user
func (c *Client) Login(ctx context.Context, creds user.Credentials) (*user.AuthResponse, error) {
	var resp user.AuthResponse
	if err := c.post(ctx, "/users/login/", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns a token pair for it
func (c *Client) Register(ctx context.Context, req user.RegisterRequest) (*user.AuthResponse, error) {
	var resp user.AuthResponse
	if err := c.post(ctx, "/users/register/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout blacklists the refresh token on the server
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.post(ctx, "/users/logout/", map[string]string{"refresh": refreshToken}, nil)
}

// Me returns the logged in user
func (c *Client) Me(ctx context.Context) (*user.User, error) {
	var u user.User
	if err := c.get(ctx, "/users/me/", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
