// Package openai provides a provider adapter for the OpenAI API using the
// official SDK. It implements the domain.Provider interface and handles
// conversion between domain types and SDK types while keeping usage
// accounting and pricing in the adapter.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/davidbz/porco/internal/domain"
	"github.com/davidbz/porco/internal/observability"
	"github.com/davidbz/porco/internal/provider/jsontext"
)

const availabilityProbeTokens = 1

// Provider implements the domain.Provider interface for OpenAI.
type Provider struct {
	client         openai.Client
	usage          *domain.UsageAccumulator
	costCalculator domain.CostCalculator
}

// NewProvider creates a new OpenAI provider.
func NewProvider(config Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	opts = append(opts, option.WithMaxRetries(config.MaxRetries))

	return &Provider{
		client:         openai.NewClient(opts...),
		usage:          domain.NewUsageAccumulator(),
		costCalculator: domain.NewStandardCostCalculator(NewPricingRegistry()),
	}, nil
}

// Name returns the provider tag.
func (p *Provider) Name() domain.ProviderType {
	return domain.ProviderOpenAI
}

// Complete sends a single-turn completion request.
func (p *Provider) Complete(ctx context.Context, prompt string, opts domain.GenerationOptions) (*domain.CompletionResult, error) {
	messages := []domain.ChatMessage{{Role: domain.RoleUser, Content: prompt}}
	return p.dispatch(ctx, "complete", messages, opts, false)
}

// Chat sends a multi-turn completion request.
func (p *Provider) Chat(ctx context.Context, messages []domain.ChatMessage, opts domain.GenerationOptions) (*domain.CompletionResult, error) {
	return p.dispatch(ctx, "chat", messages, opts, false)
}

// GenerateJSON appends the JSON-only instruction, requests the SDK's JSON
// response format, and parses the response content.
func (p *Provider) GenerateJSON(ctx context.Context, messages []domain.ChatMessage, opts domain.GenerationOptions) (json.RawMessage, error) {
	result, err := p.dispatch(ctx, "generateJSON", jsontext.AppendInstruction(messages), opts, true)
	if err != nil {
		return nil, err
	}

	cleaned := jsontext.Clean(result.Content)
	if !json.Valid([]byte(cleaned)) {
		return nil, &domain.MalformedOutputError{
			Provider: domain.ProviderOpenAI,
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
	logger.Debug("calling OpenAI streaming API")

	params := p.toSDKParams(messages, opts.WithDefaults(), false)
	stream := p.client.Chat.Completions.NewStreaming(ctx, params)

	chunks := make(chan domain.StreamChunk)

	go func() {
		defer close(chunks)
		defer stream.Close()
		defer logger.Debug("OpenAI stream completed")

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}

			delta := chunk.Choices[0].Delta.Content
			finished := chunk.Choices[0].FinishReason != ""

			if delta != "" {
				select {
				case chunks <- domain.StreamChunk{Content: delta}:
				case <-ctx.Done():
					return
				}
			}

			if finished {
				break
			}
		}

		if err := stream.Err(); err != nil && !errors.Is(err, io.EOF) {
			select {
			case chunks <- domain.StreamChunk{
				IsComplete: true,
				Metadata:   map[string]any{"error": err.Error()},
			}:
			case <-ctx.Done():
			}
			return
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
	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(domain.DefaultOpenAIModel),
		Messages:  []openai.ChatCompletionMessageParamUnion{openai.UserMessage("ping")},
		MaxTokens: openai.Int(availabilityProbeTokens),
	}

	_, err := p.client.Chat.Completions.New(ctx, params)
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

// dispatch executes a non-streaming SDK call, records usage once on
// success, and converts the response.
func (p *Provider) dispatch(
	ctx context.Context,
	op string,
	messages []domain.ChatMessage,
	opts domain.GenerationOptions,
	jsonMode bool,
) (*domain.CompletionResult, error) {
	opts = opts.WithDefaults()

	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI API", observability.String("op", op))

	resp, err := p.client.Chat.Completions.New(ctx, p.toSDKParams(messages, opts, jsonMode))
	if err != nil {
		logger.Error("OpenAI API call failed", observability.Error(err))
		return nil, &domain.ProviderError{Provider: domain.ProviderOpenAI, Op: op, Err: err}
	}

	result := p.toDomainResult(resp)

	cost, _ := p.costCalculator.Calculate(result.Model, result.Usage)
	p.usage.Record(result.Usage, cost)

	logger.Debug("OpenAI API call succeeded",
		observability.Int("prompt_tokens", result.Usage.PromptTokens),
		observability.Int("completion_tokens", result.Usage.CompletionTokens),
	)

	return result, nil
}

// toSDKParams converts domain messages and options to SDK parameters.
func (p *Provider) toSDKParams(messages []domain.ChatMessage, opts domain.GenerationOptions, jsonMode bool) openai.ChatCompletionNewParams {
	sdkMessages := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case domain.RoleAssistant:
			sdkMessages[i] = openai.AssistantMessage(msg.Content)
		case domain.RoleSystem:
			sdkMessages[i] = openai.SystemMessage(msg.Content)
		default:
			// User, function and unknown roles all dispatch as user turns.
			sdkMessages[i] = openai.UserMessage(msg.Content)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(opts.Model),
		Messages:    sdkMessages,
		Temperature: openai.Float(opts.Temperature),
		MaxTokens:   openai.Int(int64(opts.MaxTokens)),
		TopP:        openai.Float(opts.TopP),
	}

	if opts.FrequencyPenalty != 0 {
		params.FrequencyPenalty = openai.Float(opts.FrequencyPenalty)
	}

	if opts.PresencePenalty != 0 {
		params.PresencePenalty = openai.Float(opts.PresencePenalty)
	}

	if len(opts.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: opts.Stop}
	}

	if jsonMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	return params
}

// toDomainResult converts an SDK response to the unified result.
func (p *Provider) toDomainResult(resp *openai.ChatCompletion) *domain.CompletionResult {
	content := ""
	finishReason := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		finishReason = string(resp.Choices[0].FinishReason)
	}

	return &domain.CompletionResult{
		Content:      content,
		Model:        string(resp.Model),
		FinishReason: finishReason,
		Usage: domain.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
		Metadata: map[string]any{"id": resp.ID},
	}
}
