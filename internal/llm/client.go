package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmorey/pagechat/internal/chat"
)

// Client talks to an OpenAI-compatible chat-completions endpoint in
// streaming mode. It implements chat.Transport: it opens the request and
// hands the raw byte stream back; line framing and payload decoding happen
// in the session.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	stats      *Stats
}

func NewClient(baseURL, apiKey string, stats *Stats) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		// No overall timeout: streamed responses are open-ended and are
		// bounded by per-turn cancellation instead.
		httpClient: &http.Client{},
		stats:      stats,
	}
}

// Stream issues one streamed completion request. The returned body delivers
// the raw protocol bytes; the caller must close it.
func (c *Client) Stream(ctx context.Context, req chat.Request) (io.ReadCloser, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat api: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	c.stats.StreamStarted()
	return &meteredBody{rc: resp.Body, stats: c.stats, start: time.Now()}, nil
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// APIError is a non-200 response from the upstream API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat api status %d: %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// meteredBody counts streamed bytes and records the stream duration once,
// when the body is closed.
type meteredBody struct {
	rc       io.ReadCloser
	stats    *Stats
	start    time.Time
	bytes    int64
	recorded bool
}

func (m *meteredBody) Read(p []byte) (int, error) {
	n, err := m.rc.Read(p)
	m.bytes += int64(n)
	return n, err
}

func (m *meteredBody) Close() error {
	if !m.recorded {
		m.recorded = true
		m.stats.StreamFinished(time.Since(m.start), m.bytes)
	}
	return m.rc.Close()
}
