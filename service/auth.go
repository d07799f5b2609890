package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"cineclic-tui/model"
)

// Login authenticates with email and password and returns the bearer token
// plus the user's profile. The token is not installed on the client; callers
// decide when to adopt it.
func (c *Client) Login(ctx context.Context, email string, password string) (model.LoginResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.LoginResponse{}, errors.New("email and password are required")
	}

	body := map[string]string{"email": email, "password": password}
	var out model.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("/auth/login"), body, &out); err != nil {
		return model.LoginResponse{}, err
	}
	if out.Token == "" {
		return model.LoginResponse{}, errors.New("login failed: no token in response")
	}
	return out, nil
}

// Register creates a new customer account.
func (c *Client) Register(ctx context.Context, name string, email string, password string) error {
	body := map[string]string{
		"name":     strings.TrimSpace(name),
		"email":    strings.TrimSpace(email),
		"password": password,
	}
	return c.doJSON(ctx, http.MethodPost, c.endpoint("/auth/createAccount"), body, nil)
}

// RequestPasswordReset asks the backend to send a reset code to the address.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}
	body := map[string]string{"email": email}
	return c.doJSON(ctx, http.MethodPost, c.endpoint("/auth/forgotPassword"), body, nil)
}

// ResetPassword exchanges a reset code for a new password.
func (c *Client) ResetPassword(ctx context.Context, code string, password string) error {
	code = strings.TrimSpace(code)
	if code == "" || password == "" {
		return errors.New("reset code and new password are required")
	}
	body := map[string]string{"token": code, "password": password}
	return c.doJSON(ctx, http.MethodPost, c.endpoint("/auth/resetPassword"), body, nil)
}
