// Package statsclient talks to the stats service over HTTP.
package statsclient

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

	"github.com/Shivanand-hulikatti/explore-with-me/internal/logging"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/metrics"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// RequestIDHeader carries the inbound request id to the stats service.
const RequestIDHeader = "X-Request-ID"

// Client records hits and reads view counts.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the stats service at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// StatusError is returned when the stats service answers with a non-2xx code.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("stats service returned %d: %s", e.Code, e.Body)
}

// RecordHit stores one endpoint hit.
func (c *Client) RecordHit(ctx context.Context, hit model.EndpointHit) error {
	body, err := json.Marshal(hit)
	if err != nil {
		return fmt.Errorf("failed to marshal hit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build hit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(ctx, req, nil); err != nil {
		metrics.RecordStatsClientError("hit")
		return err
	}
	return nil
}

// Stats returns hit counts per uri between start and end. An empty uris
// asks for every uri.
func (c *Client) Stats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]model.ViewStats, error) {
	q := url.Values{}
	q.Set("start", model.FormatTime(start))
	q.Set("end", model.FormatTime(end))
	for _, u := range uris {
		q.Add("uris", u)
	}
	if unique {
		q.Set("unique", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build stats request: %w", err)
	}

	var out []model.ViewStats
	if err := c.do(ctx, req, &out); err != nil {
		metrics.RecordStatsClientError("stats")
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if id := logging.RequestID(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stats request %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode stats response: %w", err)
	}
	return nil
}
