package procedures

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marketplace-console/internal/config"
)

// RemoteError is a failure reported by the backend procedure itself
type RemoteError struct {
	Procedure  string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("procedure %s failed with status %d: %s", e.Procedure, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("procedure %s failed: %s", e.Procedure, e.Message)
}

// Invoker calls a named server-side procedure
type Invoker interface {
	Invoke(ctx context.Context, name string, body, out interface{}) error
}

// Client invokes the hosted backend's server-side functions over HTTP
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates a client for cfg.FunctionsURL
func NewClient(cfg config.BackendConfig) *Client {
	timeout := cfg.GetTimeout()
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.FunctionsURL, "/"),
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Invoke posts body as JSON to the procedure and decodes the response into out.
// Non-2xx responses become *RemoteError.
func (c *Client) Invoke(ctx context.Context, name string, body, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("backend functions URL is not configured")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+name, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.serviceKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceKey)
		req.Header.Set("apikey", c.serviceKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to invoke %s: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RemoteError{Procedure: name, StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", name, err)
	}
	return nil
}

func errorMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
