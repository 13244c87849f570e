// Package local provides a deterministic, offline provider used for
// development and tests. It replays canned responses when queued and
// otherwise echoes the conversation back, without any external API call.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/davidbz/porco/internal/domain"
	"github.com/davidbz/porco/internal/observability"
	"github.com/davidbz/porco/internal/provider/jsontext"
)

const chunkDelay = 10 * time.Millisecond

// Provider implements the domain.Provider interface without network access.
type Provider struct {
	mu     sync.Mutex
	canned []string
	usage  *domain.UsageAccumulator
}

// NewProvider creates a new local provider. No configuration is required.
func NewProvider() *Provider {
	return &Provider{
		usage: domain.NewUsageAccumulator(),
	}
}

// EnqueueResponse queues a canned response returned by the next call, in
// FIFO order. With an empty queue the provider echoes its input.
func (p *Provider) EnqueueResponse(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.canned = append(p.canned, content)
}

// Name returns the provider tag.
func (p *Provider) Name() domain.ProviderType {
	return domain.ProviderLocal
}

// Complete sends a single-turn completion request.
func (p *Provider) Complete(ctx context.Context, prompt string, opts domain.GenerationOptions) (*domain.CompletionResult, error) {
	messages := []domain.ChatMessage{{Role: domain.RoleUser, Content: prompt}}
	return p.Chat(ctx, messages, opts)
}

// Chat sends a multi-turn completion request.
func (p *Provider) Chat(ctx context.Context, messages []domain.ChatMessage, opts domain.GenerationOptions) (*domain.CompletionResult, error) {
	opts = opts.WithDefaults()

	logger := observability.FromContext(ctx)
	logger.Debug("local provider responding")

	content := p.nextContent(messages)

	promptTokens := countTokens(joinContents(messages))
	completionTokens := countTokens(content)
	usage := domain.TokenUsage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}

	// Offline responses carry no cost.
	p.usage.Record(usage, 0)

	return &domain.CompletionResult{
		Content:      content,
		Model:        opts.Model,
		Usage:        usage,
		FinishReason: "stop",
		Metadata:     map[string]any{"id": fmt.Sprintf("local-%d", time.Now().UnixNano())},
	}, nil
}

// GenerateJSON replays the next canned response as JSON.
func (p *Provider) GenerateJSON(ctx context.Context, messages []domain.ChatMessage, opts domain.GenerationOptions) (json.RawMessage, error) {
	result, err := p.Chat(ctx, jsontext.AppendInstruction(messages), opts)
	if err != nil {
		return nil, err
	}

	cleaned := jsontext.Clean(result.Content)
	if !json.Valid([]byte(cleaned)) {
		return nil, &domain.MalformedOutputError{
			Provider: domain.ProviderLocal,
			Raw:      result.Content,
			Err:      errors.New("response is not valid JSON"),
		}
	}

	return json.RawMessage(cleaned), nil
}

// Stream replays the response word by word and terminates with the
// explicit completion marker.
func (p *Provider) Stream(ctx context.Context, messages []domain.ChatMessage, opts domain.GenerationOptions) (<-chan domain.StreamChunk, error) {
	content := p.nextContent(messages)
	chunks := make(chan domain.StreamChunk)

	go func() {
		defer close(chunks)

		words := strings.Fields(content)
		for i, word := range words {
			delta := word
			if i < len(words)-1 {
				delta += " "
			}

			select {
			case chunks <- domain.StreamChunk{Content: delta}:
				time.Sleep(chunkDelay)
			case <-ctx.Done():
				return
			}
		}

		select {
		case chunks <- domain.StreamChunk{IsComplete: true}:
		case <-ctx.Done():
		}
	}()

	return chunks, nil
}

// IsAvailable always reports true; there is nothing to probe.
func (p *Provider) IsAvailable(_ context.Context) bool {
	return true
}

// UsageStats returns the running totals for this provider instance.
func (p *Provider) UsageStats() domain.UsageStats {
	return p.usage.Stats()
}

// ResetUsageStats zeroes the running totals.
func (p *Provider) ResetUsageStats() {
	p.usage.Reset()
}

// nextContent pops the canned queue, falling back to echoing the input.
func (p *Provider) nextContent(messages []domain.ChatMessage) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.canned) > 0 {
		content := p.canned[0]
		p.canned = p.canned[1:]
		return content
	}

	return joinContents(messages)
}

func joinContents(messages []domain.ChatMessage) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, msg.Content)
	}
	return strings.Join(parts, "\n")
}

// countTokens approximates token usage by word count.
func countTokens(content string) int {
	return len(strings.Fields(content))
}
