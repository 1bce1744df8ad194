// Package remote is an HTTP client for an upstream review service. It
// implements the data-source contract the dashboard engine consumes, so the
// engine never knows whether records come from the network or a database.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/courierlens/courierlens/internal/model"
)

// Config holds the settings needed to construct a Client.
type Config struct {
	// BaseURL is the root URL of the upstream review service.
	BaseURL string

	// HTTPClient is an optional custom HTTP client. If nil, a default client
	// with a 30-second timeout is used.
	HTTPClient *http.Client

	// Timeout applies to individual requests. Defaults to 30 seconds.
	Timeout time.Duration
}

// Client fetches and mutates reviews over HTTP. All methods are safe for
// concurrent use. Credentials are passed per call rather than held on the
// client, so one Client can serve sessions with different tokens.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client from the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote: BaseURL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpClient,
	}, nil
}

// FetchPage retrieves one page of reviews along with the unfiltered total.
func (c *Client) FetchPage(ctx context.Context, cred model.Credential, page, pageSize int) (model.Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))

	var resp model.Page
	if err := c.get(ctx, cred, "/reviews?"+params.Encode(), &resp); err != nil {
		return model.Page{}, err
	}
	return resp, nil
}

// FetchAll retrieves the entire review collection.
func (c *Client) FetchAll(ctx context.Context, cred model.Credential) ([]model.Review, error) {
	var resp []model.Review
	if err := c.get(ctx, cred, "/reviews/all", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// FetchSummary retrieves the service-computed summary statistics.
func (c *Client) FetchSummary(ctx context.Context, cred model.Credential) (model.ExternalSummary, error) {
	var resp model.ExternalSummary
	if err := c.get(ctx, cred, "/reviews/summary", &resp); err != nil {
		return model.ExternalSummary{}, err
	}
	return resp, nil
}

// UpdateTags patches the classification tags on a single review and returns
// the canonical updated record as the service stored it.
func (c *Client) UpdateTags(ctx context.Context, cred model.Credential, reviewID string, patch model.TagPatch) (model.Review, error) {
	var resp model.Review
	if err := c.patch(ctx, cred, "/reviews/"+url.PathEscape(reviewID)+"/tags", patch, &resp); err != nil {
		return model.Review{}, err
	}
	return resp, nil
}

// Error represents an error response from the review service with the HTTP
// status code and the server's error message.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("remote: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// IsNotFound returns true if the error is a 404.
func IsNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// ---------------------------------------------------------------------------
// HTTP transport
// ---------------------------------------------------------------------------

// apiEnvelope is the service's standard response wrapper.
type apiEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type apiErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) get(ctx context.Context, cred model.Credential, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("remote: create request: %w", err)
	}

	return c.doRequest(req, cred, dest)
}

func (c *Client) patch(ctx context.Context, cred model.Credential, path string, body any, dest any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("remote: marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("remote: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doRequest(req, cred, dest)
}

func (c *Client) doRequest(req *http.Request, cred model.Credential, dest any) error {
	if cred.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return handleResponse(resp, dest)
}

func handleResponse(resp *http.Response, dest any) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("remote: read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return errorFromResponse(resp.StatusCode, bodyBytes)
	}

	if resp.StatusCode == http.StatusNoContent || dest == nil {
		return nil
	}

	// Unwrap the service's { "data": ... } envelope.
	var envelope apiEnvelope
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		return fmt.Errorf("remote: decode response envelope: %w", err)
	}

	if envelope.Data == nil {
		// Fallback: some deployments respond without the envelope.
		return json.Unmarshal(bodyBytes, dest)
	}

	return json.Unmarshal(envelope.Data, dest)
}

func errorFromResponse(statusCode int, body []byte) error {
	apiErr := &Error{StatusCode: statusCode}

	var envelope apiErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	} else {
		apiErr.Code = http.StatusText(statusCode)
		apiErr.Message = string(body)
	}

	// A 401 means the session token is no longer accepted upstream. Callers
	// key session invalidation off this sentinel.
	if statusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", model.ErrSessionExpired, apiErr.Message)
	}

	return apiErr
}
