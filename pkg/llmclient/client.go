package llmclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/bhardwajRahul/KrillClaw/pkg/content"
	"github.com/bhardwajRahul/KrillClaw/pkg/transport"
)

// Client builds provider-specific requests, opens a transport, and
// parses either a full JSON response or an SSE stream into the common
// content-block model (spec §4.4).
type Client struct {
	Provider  Provider
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int

	// NewTransport constructs a fresh Transport for one request. The
	// transport is owned by the client for the duration of that
	// request (spec §9) and closed before Send/SendStreaming return.
	NewTransport func(ctx context.Context) (transport.Transport, error)

	HTTPClient *http.Client
}

// defaultBaseURL returns c.BaseURL if set, else the provider default.
func (c *Client) defaultBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return c.Provider.DefaultBaseURL()
}

// authHeaders returns the provider's auth header plus an x-request-id
// carrying a fresh UUID, the same per-request tracing header the
// teacher's pkg/auth/qwen_oauth.go attaches to its OAuth calls —
// useful here for correlating a single model call across client logs
// and whatever the provider's own request logs show.
func (c *Client) authHeaders() map[string]string {
	headers := map[string]string{"x-request-id": uuid.New().String()}
	switch c.Provider {
	case Claude:
		headers["x-api-key"] = c.APIKey
		headers["anthropic-version"] = "2023-06-01"
	case OpenAIStyle:
		headers["Authorization"] = "Bearer " + c.APIKey
	}
	return headers
}

func (c *Client) openTransport(ctx context.Context) (transport.Transport, error) {
	if c.NewTransport != nil {
		return c.NewTransport(ctx)
	}
	url := c.defaultBaseURL() + c.Provider.MessagesPath()
	return transport.NewHTTP(url, c.authHeaders(), c.HTTPClient), nil
}

// Send performs one non-streaming model call.
func (c *Client) Send(ctx context.Context, messages []content.Message, tools []ToolDef, systemPrompt string) (*content.ApiResponse, error) {
	tr, err := c.openTransport(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionRefused, err)
	}
	defer tr.Close()

	body := BuildRequest(messages, tools, RequestOptions{
		Provider:     c.Provider,
		Model:        c.Model,
		MaxTokens:    c.MaxTokens,
		SystemPrompt: systemPrompt,
		Stream:       false,
	})

	respBody, err := tr.Send(ctx, body)
	if err != nil {
		var statusErr *transport.StatusError
		if errors.As(err, &statusErr) {
			if classified := classifyStatus(statusErr.Code); classified != nil {
				return nil, classified
			}
		}
		return nil, err
	}
	resp, err := ParseResponse(c.Provider, respBody)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// SendStreaming performs a streaming model call, invoking onTextDelta as
// text fragments arrive. Ollama clients must use Send: the streaming
// path is declared out of contract for that provider (spec §9).
func (c *Client) SendStreaming(ctx context.Context, messages []content.Message, tools []ToolDef, systemPrompt string, onTextDelta func(string)) (*content.ApiResponse, error) {
	if !c.Provider.SupportsStreaming() {
		return nil, ErrStreamingUnsupported
	}

	tr, err := c.openTransport(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionRefused, err)
	}
	defer tr.Close()

	body := BuildRequest(messages, tools, RequestOptions{
		Provider:     c.Provider,
		Model:        c.Model,
		MaxTokens:    c.MaxTokens,
		SystemPrompt: systemPrompt,
		Stream:       true,
	})

	if err := tr.Write(ctx, body); err != nil {
		var statusErr *transport.StatusError
		if errors.As(err, &statusErr) {
			if classified := classifyStatus(statusErr.Code); classified != nil {
				return nil, classified
			}
		}
		return nil, err
	}

	decoder := NewSSEDecoder(onTextDelta)
	buf := make([]byte, 4096)
	for !decoder.Done() {
		n, err := tr.Read(ctx, buf)
		if n > 0 {
			// The event buffer (buf) is reused across Read calls, so
			// Feed must copy out everything it retains before this
			// loop iterates again — see SSEDecoder's doc comment.
			if ferr := decoder.Feed(buf[:n]); ferr != nil {
				return nil, ferr
			}
		}
		if err != nil {
			if err == transport.ErrConnectionClosed || err == io.EOF {
				break
			}
			return nil, err
		}
	}
	if decoder.Err() != nil {
		return nil, decoder.Err()
	}
	return decoder.Response(), nil
}
