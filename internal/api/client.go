// Package api implements the client side of the expense backend's REST
// contract: GET/POST /expenses, PUT/DELETE /expenses/{id}.
package api

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

	"outgo/internal/core"
	applog "outgo/internal/log"
)

// Client talks to the expense backend over HTTP. All state lives on the
// backend; the client holds nothing but the connection settings.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *applog.Logger
}

// New creates a client for the backend at baseURL. A nil logger
// disables request logging.
func New(baseURL string, timeout time.Duration, logger *applog.Logger) *Client {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.WithComponent(applog.ComponentAPI),
	}
}

// List fetches all expense records.
func (c *Client) List(ctx context.Context) ([]core.Expense, error) {
	var out []wireExpense
	if err := c.do(ctx, http.MethodGet, "/expenses", nil, &out); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	records := make([]core.Expense, 0, len(out))
	for _, w := range out {
		records = append(records, w.toDomain())
	}
	return records, nil
}

// Create submits a new expense and returns the created record with its
// backend-assigned id.
func (c *Client) Create(ctx context.Context, draft core.Draft) (core.Expense, error) {
	var out wireExpense
	if err := c.do(ctx, http.MethodPost, "/expenses", wireDraft(draft), &out); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return out.toDomain(), nil
}

// Update replaces the record with the given id and returns the updated
// record as the backend stored it.
func (c *Client) Update(ctx context.Context, id string, draft core.Draft) (core.Expense, error) {
	var out wireExpense
	path := "/expenses/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPut, path, wireDraft(draft), &out); err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	return out.toDomain(), nil
}

// Delete removes the record with the given id. The response body, if
// any, is ignored.
func (c *Client) Delete(ctx context.Context, id string) error {
	path := "/expenses/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// do performs one request. Any non-2xx response becomes a *StatusError;
// transport errors come back as-is from net/http.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "request failed",
			applog.FieldMethod, method,
			applog.FieldPath, path,
			applog.FieldError, err)
		return err
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "request completed",
		applog.FieldMethod, method,
		applog.FieldPath, path,
		applog.FieldStatusCode, resp.StatusCode,
		applog.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
