// Package refineclient calls a remote refine endpoint (POST /api/refine) and
// implements the Refiner input port, so a front end can run against a server
// instead of a local generator.
package refineclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/noterefiner/internal/domain/refine"
)

// RefinePath is the endpoint path appended to the base URL
const RefinePath = "/api/refine"

// Client is a Refiner backed by HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration // per-call deadline, 0 leaves it to ctx and httpClient
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each Refine call. A hit deadline is reported as a timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for the server at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type refineRequest struct {
	Note string `json:"note"`
	Mode string `json:"mode"`
}

type refineResponse struct {
	Output string `json:"output"`
	Error  string `json:"error"`
}

// Refine posts the note and returns the refined output. Any non-2xx status or
// any body carrying an error field is a failure.
func (c *Client) Refine(ctx context.Context, note, mode string) (string, error) {
	if strings.TrimSpace(note) == "" {
		return "", refine.Validation(refine.MsgNoteRequired)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(refineRequest{Note: note, Mode: mode})
	if err != nil {
		return "", refine.Upstream(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RefinePath, bytes.NewReader(body))
	if err != nil {
		return "", refine.Upstream(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", refine.Timeout(err)
		}
		return "", refine.Upstream(fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", refine.Upstream(fmt.Errorf("read response: %w", err))
	}

	var decoded refineResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		msg := decoded.Error
		if msg == "" {
			msg = refine.MsgNoteRequired
		}
		return "", refine.Validation(msg)
	case resp.StatusCode == http.StatusGatewayTimeout:
		return "", refine.Timeout(fmt.Errorf("server status %d: %s", resp.StatusCode, decoded.Error))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", refine.Upstream(fmt.Errorf("server status %d: %s", resp.StatusCode, decoded.Error))
	case decodeErr != nil:
		return "", refine.Upstream(fmt.Errorf("decode response: %w", decodeErr))
	case decoded.Error != "":
		return "", refine.Upstream(fmt.Errorf("server error: %s", decoded.Error))
	case strings.TrimSpace(decoded.Output) == "":
		return "", refine.Upstream(errors.New("server returned empty output"))
	}
	return decoded.Output, nil
}
