package domain

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleFunction  = "function"
)

// ProviderType identifies a backend implementation behind the Provider
// contract. The set is closed; the orchestrator resolves providers by tag.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderLocal     ProviderType = "local"
)

// Generation defaults applied by providers when an option is unset.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
	DefaultTopP        = 1.0
)

// ChatMessage is a single turn in a conversation. Ordering is caller-defined;
// the core never reorders messages.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// GenerationOptions control a single model call. Zero-valued fields receive
// provider defaults at dispatch; the struct is not mutated after construction.
type GenerationOptions struct {
	Model            string   `json:"model"`
	Temperature      float64  `json:"temperature,omitempty"`
	MaxTokens        int      `json:"max_tokens,omitempty"`
	TopP             float64  `json:"top_p,omitempty"`
	FrequencyPenalty float64  `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64  `json:"presence_penalty,omitempty"`
	Stop             []string `json:"stop,omitempty"`
	Stream           bool     `json:"stream,omitempty"`
}

// WithDefaults returns a copy with unset fields replaced by provider-level
// defaults. Explicitly supplied values are preserved.
func (o GenerationOptions) WithDefaults() GenerationOptions {
	if o.Temperature == 0 {
		o.Temperature = DefaultTemperature
	}
	if o.MaxTokens == 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.TopP == 0 {
		o.TopP = DefaultTopP
	}
	return o
}

// TokenUsage tracks token consumption reported by a backend for one call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResult is the unified response of a non-streaming call. It is
// produced exactly once per call and is the authoritative source of usage
// data for billing.
type CompletionResult struct {
	Content      string         `json:"content"`
	Model        string         `json:"model"`
	Usage        TokenUsage     `json:"usage"`
	FinishReason string         `json:"finish_reason"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// StreamChunk is a single element of a streaming response. Streams are finite
// and always terminate with an explicit marker chunk (empty content,
// IsComplete true) so consumers can distinguish normal completion from
// abrupt termination.
type StreamChunk struct {
	Content    string         `json:"content"`
	IsComplete bool           `json:"is_complete"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
