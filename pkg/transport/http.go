package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTP is the cloud-deployment transport: a one-shot POST per Send, and
// a streaming body for the SSE path via Write/Read. Ownership: an HTTP
// value is owned by the LLM client for the duration of a single request.
type HTTP struct {
	URL     string
	Headers map[string]string
	Client  *http.Client

	body   io.ReadCloser
	closed bool
}

// NewHTTP returns an HTTP transport posting to url with the given
// headers. A nil client defaults to a new http.Client with no timeout,
// matching the teacher's provider clients (streaming reads are bounded
// by the peer closing the connection, per spec §5).
func NewHTTP(url string, headers map[string]string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 0}
	}
	return &HTTP{URL: url, Headers: headers, Client: client}
}

func (h *HTTP) newRequest(ctx context.Context, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionRefused, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// Send performs a single POST and returns the full response body.
func (h *HTTP) Send(ctx context.Context, body []byte) ([]byte, error) {
	req, err := h.newRequest(ctx, body)
	if err != nil {
		return nil, err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionRefused, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return respBody, &StatusError{Code: resp.StatusCode, Body: respBody}
	}
	return respBody, nil
}

// Write opens a streaming POST and keeps the response body open for
// subsequent Read calls, used by the SSE decode path.
func (h *HTTP) Write(ctx context.Context, body []byte) error {
	req, err := h.newRequest(ctx, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionRefused, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return &StatusError{Code: resp.StatusCode, Body: body}
	}
	h.body = resp.Body
	return nil
}

// Read pulls the next chunk of the streaming response body opened by Write.
func (h *HTTP) Read(ctx context.Context, buf []byte) (int, error) {
	if h.body == nil {
		return 0, ErrConnectionClosed
	}
	n, err := h.body.Read(buf)
	if err == io.EOF {
		return n, ErrConnectionClosed
	}
	return n, err
}

// Close releases the streaming body, if any. Idempotent.
func (h *HTTP) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	if h.body != nil {
		return h.body.Close()
	}
	return nil
}
