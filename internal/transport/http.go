package transport

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
)

// DefaultSendPath is the agent endpoint that accepts user messages.
const DefaultSendPath = "/api/chat"

// StatusError reports a non-2xx response from the agent backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("agent responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("agent responded with status %d: %s", e.StatusCode, e.Body)
}

// HTTPSender posts send requests as JSON to the agent backend.
type HTTPSender struct {
	BaseURL string
	Path    string
	UserID  string
	Client  *http.Client
}

// Send posts the request and waits for the backend to accept it.
func (h *HTTPSender) Send(ctx context.Context, req SendRequest) error {
	if h == nil {
		return ErrNoSender
	}
	if strings.TrimSpace(h.BaseURL) == "" {
		return errors.New("transport: base url is required")
	}
	if req.UserID == "" {
		req.UserID = h.UserID
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode send request: %w", err)
	}
	path := h.Path
	if path == "" {
		path = DefaultSendPath
	}
	url := strings.TrimRight(h.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
