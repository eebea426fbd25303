// Package client talks to a running issues API and exposes it as a store.Store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joescharf/issues/internal/api"
	"github.com/joescharf/issues/internal/models"
	"github.com/joescharf/issues/internal/store"
)

var _ store.Store = (*Client)(nil)

// APIError is returned for error responses that do not map onto a store error.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// Client is an HTTP client for the issues API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Client for the API at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) issuesURL(project string) string {
	return c.baseURL + "/api/issues/" + url.PathEscape(project)
}

// ListIssues calls GET /api/issues/{project} with filter as query parameters.
func (c *Client) ListIssues(ctx context.Context, project string, filter map[string]string) ([]*models.Issue, error) {
	u := c.issuesURL(project)
	if len(filter) > 0 {
		q := url.Values{}
		for k, v := range filter {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}

	var issues []*models.Issue
	if err := c.do(ctx, http.MethodGet, u, nil, &issues); err != nil {
		return nil, err
	}
	if issues == nil {
		issues = []*models.Issue{}
	}
	return issues, nil
}

// CreateIssue calls POST /api/issues/{project}. Optional fields are sent only
// when non-empty.
func (c *Client) CreateIssue(ctx context.Context, project string, in models.NewIssue) (*models.Issue, error) {
	body := map[string]any{
		"issue_title": in.IssueTitle,
		"issue_text":  in.IssueText,
		"created_by":  in.CreatedBy,
	}
	if in.AssignedTo != "" {
		body["assigned_to"] = in.AssignedTo
	}
	if in.StatusText != "" {
		body["status_text"] = in.StatusText
	}

	var issue models.Issue
	if err := c.do(ctx, http.MethodPost, c.issuesURL(project), body, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// UpdateIssue calls PUT /api/issues/{project} with only the supplied fields.
func (c *Client) UpdateIssue(ctx context.Context, project, id string, upd models.IssueUpdate) (*models.Issue, error) {
	body := map[string]any{"_id": id}
	setString(body, "issue_title", upd.IssueTitle)
	setString(body, "issue_text", upd.IssueText)
	setString(body, "created_by", upd.CreatedBy)
	setString(body, "assigned_to", upd.AssignedTo)
	setString(body, "status_text", upd.StatusText)
	if upd.Open != nil {
		body["open"] = *upd.Open
	}

	var resp api.UpdateResponse
	if err := c.do(ctx, http.MethodPut, c.issuesURL(project), body, &resp); err != nil {
		return nil, err
	}
	return resp.Issue, nil
}

// DeleteIssue calls DELETE /api/issues/{project}.
func (c *Client) DeleteIssue(ctx context.Context, project, id string) error {
	var resp api.DeleteResponse
	return c.do(ctx, http.MethodDelete, c.issuesURL(project), map[string]any{"_id": id}, &resp)
}

// Health calls GET /healthz and reports whether the server answered ok.
func (c *Client) Health(ctx context.Context) error {
	var resp map[string]string
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/healthz", nil, &resp); err != nil {
		return err
	}
	if resp["status"] != "ok" {
		return fmt.Errorf("unexpected health status %q", resp["status"])
	}
	return nil
}

func setString(body map[string]any, key string, v *string) {
	if v != nil {
		body[key] = *v
	}
}

// do sends a JSON request and decodes a 200 response into out.
func (c *Client) do(ctx context.Context, method, u string, body any, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError maps an error response back onto the store's error values.
func decodeError(resp *http.Response) error {
	var e api.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(data, &e); err != nil || e.Error == "" {
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return store.ErrIssueNotFound
	case e.Error == store.ErrMissingRequiredFields.Error():
		return store.ErrMissingRequiredFields
	case e.Error == store.ErrMissingID.Error():
		return store.ErrMissingID
	case e.Error == store.ErrNoUpdateFields.Error():
		return store.ErrNoUpdateFields
	}
	return &APIError{Status: resp.StatusCode, Message: e.Error}
}
