// Package client is a typed HTTP client for the share-mal bill API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kyawswar87/share-mal/pkg/api"
)

// DefaultBaseURL is the API root of a locally running server.
const DefaultBaseURL = "http://localhost:8080/api/v1"

// RequestIDHeader carries the correlation ID of every request.
const RequestIDHeader = "X-Request-Id"

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// ServerMessage returns the message the server put in the error body, if err
// carries one.
func ServerMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

// Client talks to the bill API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// New creates a Client for the API rooted at baseURL, for example
// "http://localhost:8080/api/v1". An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListBills fetches every bill.
func (c *Client) ListBills(ctx context.Context) ([]api.BillDto, error) {
	var bills []api.BillDto
	err := c.do(ctx, http.MethodGet, "/bills", nil, &bills)
	return bills, err
}

// GetBill fetches one bill.
func (c *Client) GetBill(ctx context.Context, id int64) (api.BillDto, error) {
	var bill api.BillDto
	err := c.do(ctx, http.MethodGet, billPath(id), nil, &bill)
	return bill, err
}

// CreateBill creates a bill.
func (c *Client) CreateBill(ctx context.Context, req api.BillCreateRequest) (api.BillDto, error) {
	var bill api.BillDto
	err := c.do(ctx, http.MethodPost, "/bills", req, &bill)
	return bill, err
}

// UpdateBill applies a partial update to a bill.
func (c *Client) UpdateBill(ctx context.Context, id int64, req api.BillUpdateRequest) (api.BillDto, error) {
	var bill api.BillDto
	err := c.do(ctx, http.MethodPut, billPath(id), req, &bill)
	return bill, err
}

// DeleteBill deletes a bill.
func (c *Client) DeleteBill(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, billPath(id), nil, nil)
}

// ListBillsByStatus fetches the bills with the given status.
func (c *Client) ListBillsByStatus(ctx context.Context, status api.BillStatus) ([]api.BillDto, error) {
	var bills []api.BillDto
	err := c.do(ctx, http.MethodGet, "/bills/status/"+url.PathEscape(string(status)), nil, &bills)
	return bills, err
}

// SearchBills fetches the bills whose title contains title.
func (c *Client) SearchBills(ctx context.Context, title string) ([]api.BillDto, error) {
	var bills []api.BillDto
	err := c.do(ctx, http.MethodGet, "/bills/search?"+url.Values{"title": {title}}.Encode(), nil, &bills)
	return bills, err
}

// PayBill toggles the payment status of one person of a bill.
func (c *Client) PayBill(ctx context.Context, billID, personID int64) (api.BillDto, error) {
	var bill api.BillDto
	path := billPath(billID) + "/pay?" + url.Values{"personId": {strconv.FormatInt(personID, 10)}}.Encode()
	err := c.do(ctx, http.MethodPatch, path, nil, &bill)
	return bill, err
}

// RefreshBillStatus asks the server to derive the bill status again.
func (c *Client) RefreshBillStatus(ctx context.Context, billID int64) (api.BillDto, error) {
	var bill api.BillDto
	err := c.do(ctx, http.MethodPut, billPath(billID)+"/status", nil, &bill)
	return bill, err
}

func billPath(id int64) string {
	return "/bills/" + strconv.FormatInt(id, 10)
}

// do sends one request and decodes the data of the success envelope into
// out, which may be nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	slog.Debug("API call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var env api.ErrorResponse
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	env := api.Response[json.RawMessage]{}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
