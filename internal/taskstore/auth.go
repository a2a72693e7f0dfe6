package taskstore

import (
	"context"
	"net/http"

	"taskdesk/internal/models"
)

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.doJSON(ctx, "login", http.MethodPost, "/auth/login", nil,
		models.LoginRequest{Email: email, Password: password}, &resp)
	return resp, err
}

// Register creates an account and returns its first token.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.doJSON(ctx, "register", http.MethodPost, "/auth/register", nil, req, &resp)
	return resp, err
}
