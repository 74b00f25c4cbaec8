// Package llm implements a streaming client for OpenAI-compatible
// chat-completion endpoints (Ollama, llama.cpp server, vLLM).
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Message is one chat message in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one streaming chat-completion call.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int

	// Backend-specific options forwarded in the request body. NumCtx bounds
	// the context window; DisableThink asks reasoning models to skip their
	// thinking phase (Ollama extension, ignored by other backends).
	NumCtx       int
	DisableThink bool
}

// Client drives streaming completions against an OpenAI-compatible server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a Client for the given base URL (without the /v1 suffix).
// The timeout covers the whole streamed response; model cold-start can be
// slow on small hardware, so callers should be generous.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type wireRequest struct {
	Model       string                 `json:"model"`
	Messages    []Message              `json:"messages"`
	Temperature float64                `json:"temperature"`
	MaxTokens   int                    `json:"max_tokens,omitempty"`
	Stream      bool                   `json:"stream"`
	Think       *bool                  `json:"think,omitempty"`
	Options     map[string]interface{} `json:"options,omitempty"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Complete issues a streaming chat-completion request and returns the
// concatenation of all streamed content deltas.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	wire := wireRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	}
	if req.DisableThink {
		f := false
		wire.Think = &f
	}
	if req.NumCtx > 0 {
		wire.Options = map[string]interface{}{"num_ctx": req.NumCtx}
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)
	}

	return readStream(resp.Body)
}

// readStream accumulates content deltas from an SSE token stream. Each event
// is a "data: {json}" line; the stream ends with "data: [DONE]" or EOF.
func readStream(body io.Reader) (string, error) {
	var sb strings.Builder

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return "", fmt.Errorf("decode stream chunk: %w", err)
		}
		if len(chunk.Choices) > 0 {
			sb.WriteString(chunk.Choices[0].Delta.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}

	return sb.String(), nil
}
