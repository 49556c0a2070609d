package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gookit/goutil"

	"github.com/meshwatch/meshwatch/pkg/api"
	"github.com/meshwatch/meshwatch/pkg/logger"
)

// DefaultRequestTimeout bounds a single fetch when no timeout is configured.
const DefaultRequestTimeout = 5 * time.Second

// Client fetches node telemetry from the mesh backend.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logger.Logger
}

// New creates a new telemetry client for the given endpoint.
func New(endpoint string, timeout time.Duration, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &Client{
		endpoint: endpoint,
		timeout:  timeout,
		// Per-request deadlines come from the context; the http.Client
		// itself carries no timeout so the context stays authoritative.
		httpClient: &http.Client{},
		logger:     log,
	}
}

// Endpoint returns the configured backend URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch performs one GET against the endpoint and returns the complete,
// authoritative node list. The response replaces any previous snapshot;
// records are never merged across polls.
func (c *Client) Fetch(ctx context.Context) ([]api.NodeRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug("fetching node telemetry", "url", c.endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Surface the context error so Timeout() can tell the deadline
		// apart from other transport failures.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &RequestError{URL: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{URL: c.endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Status: resp.StatusCode}
		if retryHeader := resp.Header.Get("Retry-After"); retryHeader != "" {
			if val, err := goutil.ToInt(retryHeader); err == nil {
				statusErr.RetryAfter = val
			}
		}
		c.logger.Error("unexpected backend response", "status", resp.StatusCode, "body", string(body))
		return nil, statusErr
	}

	// A 2xx body may still carry the backend's error marker.
	if env, ok := api.IsError(body); ok {
		return nil, &BackendError{Message: env.Error, Details: env.Details}
	}

	var nodes []api.NodeRecord
	if err := json.Unmarshal(body, &nodes); err != nil {
		return nil, &DecodeError{Err: err}
	}

	c.logger.Debug("fetched node telemetry", "nodes", len(nodes))
	return nodes, nil
}
