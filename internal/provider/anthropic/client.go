package anthropic

import (
	"bufio"
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

// Client wraps the HTTP client for Anthropic messages API calls.
type Client struct {
	apiKey     string
	baseURL    string
	version    string
	httpClient *http.Client
}

// NewClient creates a new Anthropic HTTP client.
func NewClient(config Config) *Client {
	return &Client{
		apiKey:  config.APIKey,
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		version: config.Version,
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
	}
}

// Anthropic messages API request/response structures.
type messagesRequest struct {
	Model         string        `json:"model"`
	System        string        `json:"system,omitempty"`
	Messages      []wireMessage `json:"messages"`
	MaxTokens     int           `json:"max_tokens"`
	Temperature   float64       `json:"temperature,omitempty"`
	TopP          float64       `json:"top_p,omitempty"`
	StopSequences []string      `json:"stop_sequences,omitempty"`
	Stream        bool          `json:"stream,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Response represents a non-streaming messages API response.
type Response struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Text concatenates the text content blocks of a response.
func (r *Response) Text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// streamEvent is a single SSE payload from the messages API.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

// StreamResult represents a single result from the streaming API.
type StreamResult struct {
	Delta string
	Done  bool
	Error error
}

// Complete sends a non-streaming messages request.
func (c *Client) Complete(ctx context.Context, req messagesRequest) (*Response, error) {
	if c.apiKey == "" {
		return nil, errors.New("API key is not configured")
	}

	resp, err := c.execute(ctx, req, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var wireResp Response
	if decodeErr := json.NewDecoder(resp.Body).Decode(&wireResp); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}

	return &wireResp, nil
}

// Stream sends a streaming messages request.
func (c *Client) Stream(ctx context.Context, req messagesRequest) (<-chan StreamResult, error) {
	if c.apiKey == "" {
		return nil, errors.New("API key is not configured")
	}

	req.Stream = true

	//nolint:bodyclose // Response body is closed in processStream goroutine
	resp, err := c.execute(ctx, req, "text/event-stream")
	if err != nil {
		return nil, err
	}

	results := make(chan StreamResult)
	go c.processStream(ctx, resp, results)

	return results, nil
}

// execute creates and executes the HTTP request.
func (c *Client) execute(ctx context.Context, req messagesRequest, accept string) (*http.Response, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v1/messages",
		bytes.NewReader(reqBody),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", c.version)
	if accept != "" {
		httpReq.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	return resp, nil
}

// processStream reads SSE lines and forwards text deltas. Every send
// selects on ctx.Done so a consumer that stops reading mid-stream cannot
// strand the goroutine; returning runs the deferred body close either way.
func (c *Client) processStream(ctx context.Context, resp *http.Response, results chan<- StreamResult) {
	defer close(results)
	defer resp.Body.Close()

	send := func(result StreamResult) bool {
		select {
		case results <- result:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			send(StreamResult{Error: fmt.Errorf("failed to decode stream event: %w", err)})
			return
		}

		switch event.Type {
		case "content_block_delta":
			if event.Delta.Text != "" {
				if !send(StreamResult{Delta: event.Delta.Text}) {
					return
				}
			}
		case "message_stop":
			send(StreamResult{Done: true})
			return
		}
	}

	if err := scanner.Err(); err != nil {
		send(StreamResult{Error: fmt.Errorf("stream read failed: %w", err)})
		return
	}

	// Upstream ended without a message_stop event.
	send(StreamResult{Done: true})
}
