package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"restaurant_pos/internal/apperrors"
	"restaurant_pos/internal/client/queue"
)

// Client is the POS device's HTTP transport to the order API. It carries the
// actor headers on every request and the Idempotency-Key header on replayed
// mutations.
type Client struct {
	BaseURL    string
	ActorID    uint
	ActorPIN   string
	HTTPClient *http.Client
}

func NewClient(baseURL string, actorID uint, actorPIN string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:  baseURL,
		ActorID:  actorID,
		ActorPIN: actorPIN,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Do implements queue.Transport. Any response from the server, including a
// rejection, comes back as a Response; only transport-level failures return
// an error, and those wrap ErrNetwork so the queue knows to retry.
func (c *Client) Do(ctx context.Context, method, endpoint string, payload []byte, idempotencyKey string) (*queue.Response, error) {
	url := c.BaseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", strconv.FormatUint(uint64(c.ActorID), 10))
	if c.ActorPIN != "" {
		req.Header.Set("X-Actor-PIN", c.ActorPIN)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", apperrors.ErrNetwork, err)
	}

	return &queue.Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// Get fetches a read resource, for the cache-first read path.
func (c *Client) Get(ctx context.Context, endpoint string) ([]byte, error) {
	resp, err := c.Do(ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, endpoint)
	}
	return resp.Body, nil
}
