// Package api is the HTTP client for the EverBite backend. The backend owns
// all persistent data; this client only moves JSON.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/everbite/storefront/model"
)

// Client talks to the backend REST API. A single Client is shared process-wide;
// the bearer token set on it applies to every subsequent request from any
// caller, mirroring how the session gates the rest of the system.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (used by tests and by
// callers that need custom transports).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout on the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Client for the API rooted at baseURL (e.g.
// "http://localhost:5000/api").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetToken installs tok as the default bearer credential for all subsequent
// requests.
func (c *Client) SetToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

// ClearToken removes the default bearer credential; subsequent requests go
// out unauthenticated.
func (c *Client) ClearToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// do issues one JSON request and decodes the response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, header http.Header) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage pulls a human-readable message out of an error body. Backends
// answer either {"error": "..."} or {"message": "..."}; anything else is
// returned raw, truncated.
func errorMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &e); err == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	msg := strings.TrimSpace(string(b))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// Products lists the full menu.
func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// FeaturedProducts lists the menu items flagged as featured. The backend has
// no dedicated endpoint; the filter runs client-side over Products.
func (c *Client) FeaturedProducts(ctx context.Context) ([]model.Product, error) {
	all, err := c.Products(ctx)
	if err != nil {
		return nil, err
	}
	featured := make([]model.Product, 0, len(all))
	for _, p := range all {
		if p.IsFeatured {
			featured = append(featured, p)
		}
	}
	return featured, nil
}

// Categories lists the menu categories.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// Banners lists the promotional banners.
func (c *Client) Banners(ctx context.Context) ([]model.Banner, error) {
	var out []model.Banner
	if err := c.do(ctx, http.MethodGet, "/banners", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// Registration is the payload for creating an account.
type Registration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Password  string `json:"password"`
}

// Login authenticates and returns the identity plus its bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, string, error) {
	body := map[string]string{"email": email, "password": password}
	var out struct {
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out, nil); err != nil {
		return model.User{}, "", err
	}
	return out.User, out.Token, nil
}

// Register creates an account. It does not authenticate the caller; a login
// must follow.
func (c *Client) Register(ctx context.Context, r Registration) error {
	return c.do(ctx, http.MethodPost, "/auth/register", r, nil, nil)
}

// Orders returns the global order list. The backend does not scope it per
// user; callers filter by email themselves.
func (c *Client) Orders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// OrderRequest is the payload submitted at checkout.
type OrderRequest struct {
	CustomerName  string            `json:"customerName"`
	CustomerEmail string            `json:"customerEmail"`
	TotalAmount   float64           `json:"totalAmount"`
	Items         []model.CartLine  `json:"items"`
	Status        model.OrderStatus `json:"status"`
}

// CreateOrder submits an order. Each submission carries a fresh X-Request-Id
// so a retried submission is identifiable in backend logs.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (model.Order, error) {
	var out model.Order
	h := http.Header{"X-Request-Id": []string{uuid.NewString()}}
	if err := c.do(ctx, http.MethodPost, "/orders", req, &out, h); err != nil {
		return model.Order{}, err
	}
	return out, nil
}

// Users returns the backend's user list.
func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var out []model.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}
