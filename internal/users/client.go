// Package users wraps the users-management REST service. Responses are
// rendered as markdown code blocks so a language model can read the
// structured user data verbatim.
//
// Service contract: GET returns 200, POST and PUT return 201, DELETE returns
// 204 with no body. Any other status is an error carrying the status code and
// response body.
package users

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// defaultTimeout bounds a single REST call when the caller's context has no
// deadline of its own.
const defaultTimeout = 15 * time.Second

// Client is an HTTP client for the users-management service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClientLogger overrides the default slog logger.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client for the service at baseURL
// (e.g., "http://localhost:8041").
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("users: baseURL must not be empty")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetUser retrieves a single user by ID and renders it as a code block.
func (c *Client) GetUser(ctx context.Context, userID int) (string, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/users/%d", userID), nil, nil, http.StatusOK)
	if err != nil {
		return "", err
	}

	var user map[string]any
	if err := json.Unmarshal(body, &user); err != nil {
		return "", fmt.Errorf("users: decode user: %w", err)
	}
	return formatUser(user), nil
}

// SearchUsers finds users matching the query and renders each match as a
// code block. An empty query returns all users.
func (c *Client) SearchUsers(ctx context.Context, q SearchQuery) (string, error) {
	params := url.Values{}
	if q.Name != "" {
		params.Set("name", q.Name)
	}
	if q.Surname != "" {
		params.Set("surname", q.Surname)
	}
	if q.Email != "" {
		params.Set("email", q.Email)
	}
	if q.Gender != "" {
		params.Set("gender", q.Gender)
	}

	body, err := c.do(ctx, http.MethodGet, "/v1/users/search", params, nil, http.StatusOK)
	if err != nil {
		return "", err
	}

	var matches []map[string]any
	if err := json.Unmarshal(body, &matches); err != nil {
		return "", fmt.Errorf("users: decode search result: %w", err)
	}
	c.logger.Debug("user search completed", "matches", len(matches))

	var sb strings.Builder
	for _, user := range matches {
		sb.WriteString(formatUser(user))
	}
	sb.WriteString("\n")
	return sb.String(), nil
}

// AddUser creates a new user and returns a confirmation with the created
// record.
func (c *Client) AddUser(ctx context.Context, user UserCreate) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/v1/users", nil, user, http.StatusCreated)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("User successfully added: %s", body), nil
}

// UpdateUser applies a partial update to the user with the given ID and
// returns a confirmation with the updated record.
func (c *Client) UpdateUser(ctx context.Context, userID int, update UserUpdate) (string, error) {
	body, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/v1/users/%d", userID), nil, update, http.StatusCreated)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("User successfully updated: %s", body), nil
}

// DeleteUser removes the user with the given ID.
func (c *Client) DeleteUser(ctx context.Context, userID int) (string, error) {
	if _, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/users/%d", userID), nil, nil, http.StatusNoContent); err != nil {
		return "", err
	}
	return "User successfully deleted", nil
}

// do performs one request and returns the response body. Any status other
// than wantStatus is an error carrying the status code and body.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload any, wantStatus int) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("users: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("users: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("users: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("users: read response body: %w", err)
	}

	if resp.StatusCode != wantStatus {
		return nil, fmt.Errorf("users: HTTP %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

// formatUser renders one user record as a markdown code block with one
// "key: value" line per field. Keys are sorted so output is deterministic;
// nested objects are rendered as compact JSON.
func formatUser(user map[string]any) string {
	keys := make([]string, 0, len(user))
	for k := range user {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("```\n")
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", k, formatValue(user[k])))
	}
	sb.WriteString("```\n")
	return sb.String()
}

// formatValue renders scalars plainly and composites as compact JSON.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; print integers without a decimal.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
