// Package client provides an HTTP client for the layout server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Ekats/mycelica-layout/internal/layout"
	"github.com/Ekats/mycelica-layout/internal/metrics"
	"github.com/Ekats/mycelica-layout/internal/models"
)

// Client talks to the layout server's JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new layout API client.
// If endpoint is empty, uses MYCELICA_SERVER_URL env var or defaults to localhost:8487.
// Timeout can be configured via MYCELICA_CLIENT_TIMEOUT env var (default 30s).
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("MYCELICA_SERVER_URL")
	}
	if endpoint == "" {
		endpoint = "http://localhost:8487"
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	timeout := 30 * time.Second
	if t := os.Getenv("MYCELICA_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// apiError is the server's error response shape.
type apiError struct {
	Error string `json:"error"`
}

// do issues a request and decodes the JSON response into result.
func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server error: %s - %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("server error: %s - %s", resp.Status, string(data))
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// GetLayout fetches the current layout, computing one if none is published.
func (c *Client) GetLayout(ctx context.Context) (*layout.Result, error) {
	var result layout.Result
	if err := c.do(ctx, http.MethodGet, "/api/layout", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Recompute triggers a fresh layout pass and returns the result.
func (c *Client) Recompute(ctx context.Context) (*layout.Result, error) {
	var result layout.Result
	if err := c.do(ctx, http.MethodPost, "/api/recompute", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPositions fetches the published position map.
func (c *Client) GetPositions(ctx context.Context) (map[string]models.Position, error) {
	positions := map[string]models.Position{}
	if err := c.do(ctx, http.MethodGet, "/api/positions", nil, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// SavePosition pins a node at the given coordinates.
func (c *Client) SavePosition(ctx context.Context, nodeID string, pos models.Position) error {
	return c.do(ctx, http.MethodPost, "/api/positions/"+nodeID, pos, nil)
}

// DeletePosition clears a node's pinned coordinates.
// Returns false without error if no position was pinned.
func (c *Client) DeletePosition(ctx context.Context, nodeID string) (bool, error) {
	err := c.do(ctx, http.MethodDelete, "/api/positions/"+nodeID, nil, nil)
	if err != nil {
		if strings.Contains(err.Error(), "404") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetStats fetches server runtime statistics.
func (c *Client) GetStats(ctx context.Context) (*metrics.Snapshot, error) {
	var snap metrics.Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: %s", resp.Status)
	}
	return nil
}

// Subscribe connects to the layout feed and invokes onResult for every
// published layout. Blocks until the connection drops, onResult returns an
// error, or ctx is cancelled.
func (c *Client) Subscribe(ctx context.Context, onResult func(layout.Result) error) error {
	wsEndpoint := c.baseURL
	wsEndpoint = strings.Replace(wsEndpoint, "http://", "ws://", 1)
	wsEndpoint = strings.Replace(wsEndpoint, "https://", "wss://", 1)
	wsEndpoint += "/ws"

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, wsEndpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket connect: %w", err)
	}
	defer conn.Close()

	// Close the connection when ctx ends so ReadMessage unblocks
	var mu sync.Mutex
	closed := false
	closeConn := func() {
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			conn.Close()
		}
	}
	defer closeConn()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			closeConn()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read message: %w", err)
		}

		var result layout.Result
		if err := json.Unmarshal(payload, &result); err != nil {
			return fmt.Errorf("unmarshal layout: %w", err)
		}
		if err := onResult(result); err != nil {
			return err
		}
	}
}
