// Package api is the HTTP client for the Madhav.AI backend. All endpoints
// share a JSON envelope and cookie-based session auth; the session cookie is
// persisted to disk so that CLI invocations stay logged in.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/nextunitech/madhav/internal/file"
)

const sessionCookieName = "session"

// Error is a request failure. StatusCode is 0 when the request never
// reached the backend.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.NetworkFailure() {
		return fmt.Sprintf("backend unreachable: %s", e.Message)
	}
	return fmt.Sprintf("backend error (%d): %s", e.StatusCode, e.Message)
}

// NetworkFailure reports whether the failure happened before any response
// was received.
func (e *Error) NetworkFailure() bool {
	return e.StatusCode == 0
}

// envelope is the backend's uniform response shape. Error payloads carry
// either an "error"/"message" pair or, for validation failures, a "detail"
// field.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Detail  string          `json:"detail"`
}

func (e *envelope) errorMessage() string {
	for _, candidate := range []string{e.Error, e.Detail, e.Message} {
		if candidate != "" {
			return candidate
		}
	}
	return "request failed"
}

// Client talks to a Madhav.AI backend.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	sessionFile string
	session     string
}

// NewClient instantiates a client against baseURL. The session cookie, if
// previously persisted at sessionFile, is loaded eagerly.
func NewClient(baseURL string, timeout time.Duration, sessionFile string) *Client {
	c := &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		sessionFile: sessionFile,
	}
	if data, err := os.ReadFile(sessionFile); err == nil {
		c.session = strings.TrimSpace(string(data))
	}
	return c
}

// HasSession reports whether a session cookie is loaded. It says nothing
// about whether the backend still honors it; use CheckSession for that.
func (c *Client) HasSession() bool {
	return c.session != ""
}

// do runs one round trip and decodes the envelope. A nil payload sends no
// body. Transport failures and non-2xx statuses both surface as *Error.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*envelope, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "marshaling request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.session})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	c.captureSession(resp)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}

	var env envelope
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &env); err != nil {
			if resp.StatusCode >= 400 {
				return nil, &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
			}
			return nil, errors.Wrap(err, "decoding response")
		}
	}

	if resp.StatusCode >= 400 {
		return nil, &Error{StatusCode: resp.StatusCode, Message: env.errorMessage()}
	}
	return &env, nil
}

// captureSession persists a refreshed session cookie. The backend rotates
// the cookie on login and on any authenticated request nearing expiry.
func (c *Client) captureSession(resp *http.Response) {
	for _, cookie := range resp.Cookies() {
		if cookie.Name != sessionCookieName {
			continue
		}
		if cookie.Value == "" || cookie.MaxAge < 0 {
			c.clearSession()
			return
		}
		c.session = cookie.Value
		c.persistSession()
		return
	}
}

func (c *Client) persistSession() {
	if c.sessionFile == "" {
		return
	}
	if err := file.CreateDirectoryIfNotExist(filepath.Dir(c.sessionFile)); err != nil {
		return
	}
	_ = os.WriteFile(c.sessionFile, []byte(c.session), 0o600)
}

func (c *Client) clearSession() {
	c.session = ""
	if c.sessionFile != "" {
		_ = os.Remove(c.sessionFile)
	}
}

// decodeData unmarshals the envelope's data field into out.
func decodeData(env *envelope, out any) error {
	if len(env.Data) == 0 {
		return errors.New("response carried no data")
	}
	return errors.Wrap(json.Unmarshal(env.Data, out), "decoding response data")
}
