// Package client talks to the SwapSpace API and tracks the local login session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ayush/swapspace/internal/models"
)

var (
	// ErrUnreachable means no HTTP response was received at all.
	ErrUnreachable = errors.New("backend unreachable")
	// ErrBadPayload means a response did not have the expected shape.
	ErrBadPayload = errors.New("unexpected response payload")
)

// APIError is a non-2xx response. Message is the server's error text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Profile is the decoded GET /api/users/profile body.
type Profile struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p *Profile) validate() error {
	var missing []string
	if p.ID == "" {
		missing = append(missing, "_id")
	}
	if p.Username == "" {
		missing = append(missing, "username")
	}
	if p.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: profile missing %s", ErrBadPayload, strings.Join(missing, ", "))
	}
	return nil
}

// User returns the identity shape the session holds.
func (p *Profile) User() models.PublicUser {
	return models.PublicUser{ID: p.ID, Username: p.Username, Email: p.Email}
}

// API calls the SwapSpace REST endpoints. Every call is attempted once.
type API struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPI builds a client for baseURL. A zero timeout leaves the transport
// default in place.
func NewAPI(baseURL string, timeout time.Duration) *API {
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Login calls POST /api/auth/login.
func (a *API) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := a.do(ctx, http.MethodPost, "/api/auth/login", "",
		models.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, checkAuth(&out)
}

// Register calls POST /api/auth/register.
func (a *API) Register(ctx context.Context, username, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := a.do(ctx, http.MethodPost, "/api/auth/register", "",
		models.RegisterRequest{Username: username, Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, checkAuth(&out)
}

func checkAuth(r *models.AuthResponse) error {
	if r.Token == "" || r.User.ID == "" {
		return fmt.Errorf("%w: auth response without token or user", ErrBadPayload)
	}
	return nil
}

// Profile calls GET /api/users/profile and validates the result.
func (a *API) Profile(ctx context.Context, token string) (*Profile, error) {
	var p Profile
	if err := a.do(ctx, http.MethodGet, "/api/users/profile", token, nil, &p); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListItems calls GET /api/items with optional filters.
func (a *API) ListItems(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	q := url.Values{}
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	path := "/api/items"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []models.Item
	if err := a.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetItem calls GET /api/items/{id}.
func (a *API) GetItem(ctx context.Context, id string) (*models.Item, error) {
	var out models.Item
	if err := a.do(ctx, http.MethodGet, "/api/items/"+url.PathEscape(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyItems calls GET /api/users/items.
func (a *API) MyItems(ctx context.Context, token string) ([]models.Item, error) {
	var out []models.Item
	if err := a.do(ctx, http.MethodGet, "/api/users/items", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Categories calls GET /api/items/categories.
func (a *API) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := a.do(ctx, http.MethodGet, "/api/items/categories", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateItem calls POST /api/items.
func (a *API) CreateItem(ctx context.Context, token string, fields models.ItemFields) (*models.ItemResponse, error) {
	var out models.ItemResponse
	if err := a.do(ctx, http.MethodPost, "/api/items", token, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateItem calls PUT /api/items/{id}.
func (a *API) UpdateItem(ctx context.Context, token, id string, fields models.ItemFields) (*models.ItemResponse, error) {
	var out models.ItemResponse
	if err := a.do(ctx, http.MethodPut, "/api/items/"+url.PathEscape(id), token, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteItem calls DELETE /api/items/{id}.
func (a *API) DeleteItem(ctx context.Context, token, id string) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := a.do(ctx, http.MethodDelete, "/api/items/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s %s: %v", ErrUnreachable, method, path, err)
	}
	defer resp.Body.Close()

	if err := checkResp(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrBadPayload, method, path, err)
	}
	return nil
}

// checkResp turns a non-2xx response into an *APIError carrying the
// server's {"error"} message, or the status text when there is none.
func checkResp(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var e struct {
		Error string `json:"error"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(b, &e) != nil || e.Error == "" {
		e.Error = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: e.Error}
}
