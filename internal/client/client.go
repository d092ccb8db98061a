// Package client is a Go client for the DevLink HTTP API. The caller holds the
// Session and passes it to every authenticated call; the client keeps no
// credentials of its own.
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

	"github.com/isdelr/devlink/internal/models"
)

// ErrNoSession is returned when an authenticated call is made without a token.
var ErrNoSession = errors.New("client: not logged in")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("devlink: %d %s", e.Status, e.Message)
}

// Client talks to a DevLink server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for baseURL. A nil httpClient uses a client with a
// 15 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Register creates an account and returns the resulting session.
func (c *Client) Register(ctx context.Context, username, email, password string) (Session, error) {
	var res models.AuthResult
	in := models.RegisterInput{Username: username, Email: email, Password: password}
	if err := c.do(ctx, nil, http.MethodPost, "/auth/register", in, &res); err != nil {
		return Session{}, err
	}
	return sessionFrom(res), nil
}

// Login signs in and returns the resulting session.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var res models.AuthResult
	in := models.LoginInput{Email: email, Password: password}
	if err := c.do(ctx, nil, http.MethodPost, "/auth/login", in, &res); err != nil {
		return Session{}, err
	}
	return sessionFrom(res), nil
}

// Me returns the account the session belongs to.
func (c *Client) Me(ctx context.Context, s Session) (models.User, error) {
	var user models.User
	err := c.do(ctx, &s, http.MethodGet, "/auth/me", nil, &user)
	return user, err
}

// ListDevelopers lists the session owner's developers. Empty filter fields
// are omitted from the query.
func (c *Client) ListDevelopers(ctx context.Context, s Session, f models.DeveloperFilter) ([]models.Developer, error) {
	q := url.Values{}
	if f.Domain != "" {
		q.Set("domain", f.Domain)
	}
	if len(f.TechStack) > 0 {
		q.Set("techstack", strings.Join(f.TechStack, ","))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	path := "/developers"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var devs []models.Developer
	err := c.do(ctx, &s, http.MethodGet, path, nil, &devs)
	return devs, err
}

// Stats returns the dashboard summary.
func (c *Client) Stats(ctx context.Context, s Session) (models.DeveloperStats, error) {
	var stats models.DeveloperStats
	err := c.do(ctx, &s, http.MethodGet, "/developers/stats", nil, &stats)
	return stats, err
}

// GetDeveloper fetches one developer.
func (c *Client) GetDeveloper(ctx context.Context, s Session, id string) (models.Developer, error) {
	var dev models.Developer
	err := c.do(ctx, &s, http.MethodGet, "/developers/"+url.PathEscape(id), nil, &dev)
	return dev, err
}

// CreateDeveloper adds a developer.
func (c *Client) CreateDeveloper(ctx context.Context, s Session, in models.DeveloperInput) (models.Developer, error) {
	var dev models.Developer
	err := c.do(ctx, &s, http.MethodPost, "/developers", in, &dev)
	return dev, err
}

// UpdateDeveloper replaces a developer's fields.
func (c *Client) UpdateDeveloper(ctx context.Context, s Session, id string, in models.DeveloperInput) (models.Developer, error) {
	var dev models.Developer
	err := c.do(ctx, &s, http.MethodPut, "/developers/"+url.PathEscape(id), in, &dev)
	return dev, err
}

// DeleteDeveloper removes a developer.
func (c *Client) DeleteDeveloper(ctx context.Context, s Session, id string) error {
	return c.do(ctx, &s, http.MethodDelete, "/developers/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, s *Session, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s != nil {
		if s.Token == "" {
			return ErrNoSession
		}
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
