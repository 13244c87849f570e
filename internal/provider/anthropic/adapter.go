// Package anthropic provides a provider adapter for the Anthropic messages
// API over a hand-rolled HTTPS client. The messages API takes a single
// isolated system channel, so all system-role messages are concatenated in
// order into one preamble before dispatch.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/davidbz/porco/internal/domain"
	"github.com/davidbz/porco/internal/observability"
	"github.com/davidbz/porco/internal/provider/jsontext"
)

const availabilityProbeTokens = 1

// Provider implements the domain.Provider interface for Anthropic.
type Provider struct {
	client         *Client
	usage          *domain.UsageAccumulator
	costCalculator domain.CostCalculator
}

// NewProvider creates a new Anthropic provider.
func NewProvider(config Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}

	return &Provider{
		client:         NewClient(config),
		usage:          domain.NewUsageAccumulator(),
		costCalculator: domain.NewStandardCostCalculator(NewPricingRegistry()),
	}, nil
}

// Name returns the provider tag.
func (p *Provider) Name() domain.ProviderType {
	return domain.ProviderAnthropic
}

// Complete sends a single-turn completion request.
func (p *Provider) Complete(ctx context.Context, prompt string, opts domain.GenerationOptions) (*domain.CompletionResult, error) {
	messages := []domain.ChatMessage{{Role: domain.RoleUser, Content: prompt}}
	return p.dispatch(ctx, "complete", messages, opts)
}

// Chat sends a multi-turn completion request.
func (p *Provider) Chat(ctx context.Context, messages []domain.ChatMessage, opts domain.GenerationOptions) (*domain.CompletionResult, error) {
	return p.dispatch(ctx, "chat", messages, opts)
}

// GenerateJSON appends the JSON-only instruction and parses the response.
// The messages API has no native JSON mode; fence stripping plus the
// instruction carry the contract.
func (p *Provider) GenerateJSON(ctx context.Context, messages []domain.ChatMessage, opts domain.GenerationOptions) (json.RawMessage, error) {
	result, err := p.dispatch(ctx, "generateJSON", jsontext.AppendInstruction(messages), opts)
	if err != nil {
		return nil, err
	}

	cleaned := jsontext.Clean(result.Content)
	if !json.Valid([]byte(cleaned)) {
		return nil, &domain.MalformedOutputError{
			Provider: domain.ProviderAnthropic,
			Raw:      result.Content,
			Err:      errors.New("response is not valid JSON"),
		}
	}

	return json.RawMessage(cleaned), nil
}

// Stream sends a chat request and returns a finite chunk stream terminated
// by an explicit completion marker.
func (p *Provider) Stream(ctx context.Context, messages []domain.ChatMessage, opts domain.GenerationOptions) (<-chan domain.StreamChunk, error) {
	logger := observability.FromContext(ctx)
	logger.Debug("calling Anthropic streaming API")

	results, err := p.client.Stream(ctx, p.toWireRequest(messages, opts.WithDefaults()))
	if err != nil {
		return nil, &domain.ProviderError{Provider: domain.ProviderAnthropic, Op: "stream", Err: err}
	}

	chunks := make(chan domain.StreamChunk)

	go func() {
		defer close(chunks)
		defer logger.Debug("Anthropic stream completed")

		for result := range results {
			if result.Error != nil {
				select {
				case chunks <- domain.StreamChunk{
					IsComplete: true,
					Metadata:   map[string]any{"error": result.Error.Error()},
				}:
				case <-ctx.Done():
				}
				return
			}

			if result.Done {
				break
			}

			select {
			case chunks <- domain.StreamChunk{Content: result.Delta}:
			case <-ctx.Done():
				return
			}
		}

		// Explicit completion marker.
		select {
		case chunks <- domain.StreamChunk{IsComplete: true}:
		case <-ctx.Done():
		}
	}()

	return chunks, nil
}

// IsAvailable performs a minimal round-trip request. Any failure yields
// false.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req := messagesRequest{
		Model:     domain.DefaultAnthropicModel,
		Messages:  []wireMessage{{Role: "user", Content: "ping"}},
		MaxTokens: availabilityProbeTokens,
	}

	_, err := p.client.Complete(ctx, req)
	return err == nil
}

// UsageStats returns the running totals for this provider instance.
func (p *Provider) UsageStats() domain.UsageStats {
	return p.usage.Stats()
}

// ResetUsageStats zeroes the running totals.
func (p *Provider) ResetUsageStats() {
	p.usage.Reset()
}

func (p *Provider) dispatch(
	ctx context.Context,
	op string,
	messages []domain.ChatMessage,
	opts domain.GenerationOptions,
) (*domain.CompletionResult, error) {
	opts = opts.WithDefaults()

	logger := observability.FromContext(ctx)
	logger.Debug("calling Anthropic API", observability.String("op", op))

	resp, err := p.client.Complete(ctx, p.toWireRequest(messages, opts))
	if err != nil {
		logger.Error("Anthropic API call failed", observability.Error(err))
		return nil, &domain.ProviderError{Provider: domain.ProviderAnthropic, Op: op, Err: err}
	}

	usage := domain.TokenUsage{
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}

	cost, _ := p.costCalculator.Calculate(resp.Model, usage)
	p.usage.Record(usage, cost)

	logger.Debug("Anthropic API call succeeded",
		observability.Int("prompt_tokens", usage.PromptTokens),
		observability.Int("completion_tokens", usage.CompletionTokens),
	)

	return &domain.CompletionResult{
		Content:      resp.Text(),
		Model:        resp.Model,
		Usage:        usage,
		FinishReason: resp.StopReason,
		Metadata:     map[string]any{"id": resp.ID},
	}, nil
}

// toWireRequest converts domain messages to the messages API shape. All
// system-role messages are concatenated in order into the single system
// preamble; function-role messages are folded into user turns.
func (p *Provider) toWireRequest(messages []domain.ChatMessage, opts domain.GenerationOptions) messagesRequest {
	var systemParts []string
	wire := make([]wireMessage, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleSystem:
			systemParts = append(systemParts, msg.Content)
		case domain.RoleAssistant:
			wire = append(wire, wireMessage{Role: "assistant", Content: msg.Content})
		default:
			wire = append(wire, wireMessage{Role: "user", Content: msg.Content})
		}
	}

	return messagesRequest{
		Model:         opts.Model,
		System:        strings.Join(systemParts, "\n\n"),
		Messages:      wire,
		MaxTokens:     opts.MaxTokens,
		Temperature:   opts.Temperature,
		TopP:          opts.TopP,
		StopSequences: opts.Stop,
	}
}
