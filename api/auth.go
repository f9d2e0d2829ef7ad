package api

import (
	"context"
	"net/http"
)

// User is the authenticated account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userData struct {
	User User `json:"user"`
}

// Login authenticates with email and password. The session cookie set by
// the backend is captured and persisted.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return User{}, err
	}
	var data userData
	if err := decodeData(env, &data); err != nil {
		return User{}, err
	}
	return data.User, nil
}

// Signup registers a new account and logs it in.
func (c *Client) Signup(ctx context.Context, name, email, password string) (User, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/auth/signup", signupRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return User{}, err
	}
	var data userData
	if err := decodeData(env, &data); err != nil {
		return User{}, err
	}
	return data.User, nil
}

// Logout invalidates the session server-side and drops the persisted
// cookie. The local cookie is cleared even when the backend call fails.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil)
	c.clearSession()
	if apiErr, ok := err.(*Error); ok && apiErr.StatusCode == http.StatusUnauthorized {
		return nil
	}
	return err
}

// CheckSession reports whether the persisted session is still honored by
// the backend.
func (c *Client) CheckSession(ctx context.Context) (bool, error) {
	if !c.HasSession() {
		return false, nil
	}
	_, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil)
	if err == nil {
		return true, nil
	}
	if apiErr, ok := err.(*Error); ok && apiErr.StatusCode == http.StatusUnauthorized {
		c.clearSession()
		return false, nil
	}
	return false, err
}

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context) (User, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return User{}, err
	}
	var data userData
	if err := decodeData(env, &data); err != nil {
		return User{}, err
	}
	return data.User, nil
}
