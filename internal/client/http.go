package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ezDecode/SortVisualiser/internal/stats"
	"github.com/ezDecode/SortVisualiser/internal/ws"
)

// HTTPClient makes REST calls to the step server.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a client targeting baseURL (e.g. "http://127.0.0.1:3000").
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// Algorithms fetches /api/algorithms.
func (c *HTTPClient) Algorithms(ctx context.Context) (*ws.AlgorithmsResponse, error) {
	var out ws.AlgorithmsResponse
	if err := c.get(ctx, "/api/algorithms", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats fetches /api/stats.
func (c *HTTPClient) Stats(ctx context.Context) (*stats.Stats, error) {
	var out stats.Stats
	if err := c.get(ctx, "/api/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health fetches /api/health.
func (c *HTTPClient) Health(ctx context.Context) (*ws.Health, error) {
	var out ws.Health
	if err := c.get(ctx, "/api/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("GET %s: %d %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// DeriveHTTPBase converts ws://host:port/ws to http://host:port.
func DeriveHTTPBase(wsURL string) string {
	u, err := url.Parse(wsURL)
	if err != nil || u.Host == "" {
		return "http://127.0.0.1:3000"
	}
	scheme := "http"
	if u.Scheme == "wss" || u.Scheme == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, u.Host)
}
