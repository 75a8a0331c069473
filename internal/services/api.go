// HTTP [Store] implementation for the /todos collection endpoint
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultStoreURL string = "http://localhost:8000"
	collectionPath  string = "/todos"
)

var _ Store = (*StoreClient)(nil)

// StatusError records a non-2xx response from the store.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// StoreClient implements [Store] over HTTP.
type StoreClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// StoreOption configures a [StoreClient].
type StoreOption func(*StoreClient)

// WithRateLimit paces outgoing requests to rps requests per second. Zero or less disables pacing.
func WithRateLimit(rps float64) StoreOption {
	return func(c *StoreClient) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewStoreClient creates a new store client for the collection under baseURL.
func NewStoreClient(baseURL string, client *http.Client, opts ...StoreOption) *StoreClient {
	if baseURL == "" {
		baseURL = defaultStoreURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	c := &StoreClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListPath returns the request path for a list call scoped by filter.
func ListPath(filter models.Filter) string {
	if q := filter.Query(); q != "" {
		return collectionPath + "?" + q
	}
	return collectionPath
}

func itemPath(id int) string {
	return collectionPath + "/" + strconv.Itoa(id)
}

// List retrieves items, calling GET /todos, /todos?completed=1 or /todos?completed=0.
func (c *StoreClient) List(ctx context.Context, filter models.Filter) ([]models.Item, error) {
	var items []models.Item
	if err := c.doRequest(ctx, http.MethodGet, ListPath(filter), nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Item{}
	}
	return items, nil
}

// Create calls POST /todos/ with {name, completed:false}.
func (c *StoreClient) Create(ctx context.Context, name string) (*models.Item, error) {
	var created models.Item
	body := models.ItemBody{Name: name, Completed: false}
	if err := c.doRequest(ctx, http.MethodPost, collectionPath+"/", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update calls PUT /todos/{id} with the full record. The response body is ignored.
func (c *StoreClient) Update(ctx context.Context, item models.Item) error {
	if !item.Addressable() {
		return fmt.Errorf("%w: %w: item has no store id", shared.ErrStoreRequest, shared.ErrInvalidArgument)
	}
	return c.doRequest(ctx, http.MethodPut, itemPath(item.ID), item.Body(), nil)
}

// Delete calls DELETE /todos/{id}. The response body is ignored.
func (c *StoreClient) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: %w: invalid id %d", shared.ErrStoreRequest, shared.ErrInvalidArgument, id)
	}
	return c.doRequest(ctx, http.MethodDelete, itemPath(id), nil, nil)
}

// doRequest sends one JSON request and decodes a success body into result when result is non-nil.
//
// All failures wrap [shared.ErrStoreRequest].
func (c *StoreClient) doRequest(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: failed to encode body: %w", shared.ErrStoreRequest, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", shared.ErrStoreRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %w", shared.ErrStoreRequest, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", shared.ErrStoreRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			statusErr.Detail = errResp.Detail
		}
		return fmt.Errorf("%w: %w", shared.ErrStoreRequest, statusErr)
	}

	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", shared.ErrStoreRequest, err)
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", shared.ErrStoreRequest, err)
	}

	return nil
}
