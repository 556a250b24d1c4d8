// Package adminclient is the Tax-e admin API client used by the console.
//
// The client is an explicit dependency: callers inject the base URL, an
// http.Client, a TokenStore and an auth-failure handler. There is no
// package-level singleton and no hidden global state; when the server
// answers 401/403 the stored token is cleared and the injected handler
// fires, and the composing application decides what "back to login" means.
package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tax-e/taxe-admin/internal/models"
)

// ErrUnauthorized is returned when the server rejects the session token.
// By the time the caller sees it the stored token is already cleared.
var ErrUnauthorized = errors.New("adminclient: session is invalid or expired")

// APIError is a non-auth failure reported by the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("adminclient: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("adminclient: request failed with status %d", e.StatusCode)
}

// TokenStore holds the bearer session token between calls.
type TokenStore interface {
	Token() string
	SetToken(token string) error
	Clear() error
}

// MemoryTokenStore keeps the token in memory only.
type MemoryTokenStore struct {
	token string
}

func (s *MemoryTokenStore) Token() string { return s.token }

func (s *MemoryTokenStore) SetToken(token string) error {
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.token = ""
	return nil
}

// Client talks to the Tax-e admin API.
type Client struct {
	baseURL       string
	http          *http.Client
	tokens        TokenStore
	onAuthFailure func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTokenStore replaces the default in-memory token store.
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.tokens = s }
}

// WithAuthFailureHandler sets the callback fired when the server rejects
// the session token.
func WithAuthFailureHandler(fn func()) Option {
	return func(c *Client) { c.onAuthFailure = fn }
}

// New creates a client for the given base URL, e.g.
// "https://api.tax-e.live/api/admin".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  &MemoryTokenStore{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorEnvelope is the server's standard failure shape.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// do runs one request. A nil body sends no payload; a nil out discards the
// response body. 401/403 clears the stored token and fires the auth-failure
// handler before returning ErrUnauthorized.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		_ = c.tokens.Clear()
		if c.onAuthFailure != nil {
			c.onAuthFailure()
		}
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// AdminUser is the signed-in operator identity returned by Login.
type AdminUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type loginResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    AdminUser `json:"user"`
}

// Login authenticates and stores the returned session token.
func (c *Client) Login(ctx context.Context, email, password string) (AdminUser, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return AdminUser{}, err
	}
	if !resp.Success || resp.Token == "" {
		return AdminUser{}, &APIError{StatusCode: http.StatusOK, Message: resp.Message}
	}
	if err := c.tokens.SetToken(resp.Token); err != nil {
		return AdminUser{}, err
	}
	return resp.User, nil
}

// Logout invalidates the session server-side and clears the stored token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/logout", nil, nil)
	_ = c.tokens.Clear()
	if errors.Is(err, ErrUnauthorized) {
		// Token was already dead; logged out either way.
		return nil
	}
	return err
}

// Stats mirrors the dashboard cards.
type Stats struct {
	TotalUsers      int64   `json:"totalUsers"`
	TotalReceipts   int64   `json:"totalReceipts"`
	TotalRevenue    float64 `json:"totalRevenue"`
	PendingPayments int64   `json:"pendingPayments"`
}

// GetStats fetches the dashboard statistics.
func (c *Client) GetStats(ctx context.Context) (Stats, error) {
	var resp struct {
		Success bool  `json:"success"`
		Data    Stats `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &resp); err != nil {
		return Stats{}, err
	}
	return resp.Data, nil
}

// ListUsers fetches the full user collection, the authoritative listing
// the console re-reads after every successful lifecycle mutation.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var resp struct {
		Success bool          `json:"success"`
		Data    []models.User `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SuspendUser suspends a user with the operator's justification.
func (c *Client) SuspendUser(ctx context.Context, userID, reason string) error {
	return c.do(ctx, http.MethodPatch, "/users/"+userID+"/suspend", map[string]string{"reason": reason}, nil)
}

// UnsuspendUser lifts a suspension.
func (c *Client) UnsuspendUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPatch, "/users/"+userID+"/unsuspend", nil, nil)
}

// RequestUserDeletion starts the deletion grace period.
func (c *Client) RequestUserDeletion(ctx context.Context, userID, reason string) error {
	return c.do(ctx, http.MethodPost, "/users/"+userID+"/delete-request", map[string]string{"reason": reason}, nil)
}

// DeleteUserNow permanently deletes a user already in the grace period.
// The reason travels in the DELETE body.
func (c *Client) DeleteUserNow(ctx context.Context, userID, reason string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+userID, map[string]string{"reason": reason}, nil)
}

// GetReceipts fetches the receipts listing.
func (c *Client) GetReceipts(ctx context.Context) ([]models.Receipt, error) {
	var resp struct {
		Success bool             `json:"success"`
		Data    []models.Receipt `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/receipts", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetPayments fetches the payments listing.
func (c *Client) GetPayments(ctx context.Context) ([]models.Payment, error) {
	var resp struct {
		Success bool             `json:"success"`
		Data    []models.Payment `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/payments", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// UpdateProfile updates the signed-in admin's name and/or password.
// Empty fields are left untouched.
func (c *Client) UpdateProfile(ctx context.Context, name, password string) error {
	payload := map[string]string{}
	if name != "" {
		payload["name"] = name
	}
	if password != "" {
		payload["password"] = password
	}
	return c.do(ctx, http.MethodPut, "/profile", payload, nil)
}

// CreateAdmin creates a new console operator account.
func (c *Client) CreateAdmin(ctx context.Context, name, email, password string) error {
	return c.do(ctx, http.MethodPost, "/create-admin", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, nil)
}

// Chat sends one assistant message with trailing history for context.
func (c *Client) Chat(ctx context.Context, message string, history []models.ChatTurn) (models.ChatTurn, error) {
	var resp struct {
		Success bool            `json:"success"`
		Message models.ChatTurn `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/chat", map[string]interface{}{
		"message": message,
		"history": history,
	}, &resp)
	if err != nil {
		return models.ChatTurn{}, err
	}
	return resp.Message, nil
}

// HasSession reports whether a token is currently stored. It says nothing
// about server-side validity; the first 401 settles that.
func (c *Client) HasSession() bool {
	return c.tokens.Token() != ""
}
