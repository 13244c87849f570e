// Package chain implements the task-specific orchestration pipelines that
// compose prompt rendering, model invocation and validation into single
// operations.
package chain

import (
	"context"
	"errors"
	"sync"

	"github.com/davidbz/porco/internal/cache/redis"
	"github.com/davidbz/porco/internal/domain"
	"github.com/davidbz/porco/internal/observability"
	"github.com/davidbz/porco/internal/prompt"
	"github.com/davidbz/porco/internal/schema"
)

const (
	intentChainName   = "intent_extraction"
	intentTemperature = 0.3
	intentMaxTokens   = 1000

	fallbackConfidence   = 0.5
	actionableConfidence = 0.7
)

// IntentChain turns a free-text user query into a validated IntentResult.
// Validation failure is locally recoverable: the chain returns a fallback
// intent rather than an error. Only transport-level failures propagate.
type IntentChain struct {
	orchestrator *domain.Orchestrator
	prompts      *prompt.Store
	validator    *schema.Validator
	cache        domain.Cache // nil disables memoization
	events       observability.EventPublisher
}

// NewIntentChain creates the intent extraction chain.
func NewIntentChain(
	orchestrator *domain.Orchestrator,
	prompts *prompt.Store,
	validator *schema.Validator,
	cache domain.Cache,
	events observability.EventPublisher,
) *IntentChain {
	return &IntentChain{
		orchestrator: orchestrator,
		prompts:      prompts,
		validator:    validator,
		cache:        cache,
		events:       events,
	}
}

// Extract classifies a query into an intent. An empty locale is detected
// from the query text; conversation is optional prior context passed to the
// model verbatim.
func (c *IntentChain) Extract(
	ctx context.Context,
	query string,
	locale string,
	conversation []domain.ChatMessage,
) (*domain.IntentResult, error) {
	locale = ResolveLocale(locale, query)
	ctx = observability.WithChain(ctx, intentChainName)
	ctx = observability.WithLocale(ctx, locale)
	logger := observability.FromContext(ctx)

	// Memoize only context-free extractions: prior conversation changes
	// the answer but is not part of the key.
	cacheKey := redis.Key(intentChainName, locale, normalizeQuery(query))
	if c.cache != nil && len(conversation) == 0 {
		var cached domain.IntentResult
		err := c.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			logger.Debug("intent cache hit")
			return &cached, nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Warn("intent cache get failed, continuing without cache",
				observability.Error(err))
		}
	}

	messages := c.composeMessages(query, locale, conversation)

	raw, err := c.orchestrator.GenerateJSON(ctx, "", messages, domain.GenerationOptions{
		Temperature: intentTemperature,
		MaxTokens:   intentMaxTokens,
	})
	if err != nil {
		var malformed *domain.MalformedOutputError
		if errors.As(err, &malformed) {
			logger.Warn("model returned malformed intent JSON, using fallback",
				observability.Error(err))
			return c.fallbackIntent(ctx, query, locale), nil
		}
		return nil, err
	}

	result := c.validator.ValidateIntent(raw)
	if !result.Valid {
		logger.Warn("intent validation failed, using fallback",
			observability.Int("error_count", len(result.Errors)))
		return c.fallbackIntent(ctx, query, locale), nil
	}

	intent := result.Data
	intent.DetectedLanguage = locale

	logger.Info("intent extracted",
		observability.String("intent_type", string(intent.Type)),
		observability.Float64("confidence", intent.Confidence),
	)

	if c.cache != nil && len(conversation) == 0 {
		if setErr := c.cache.Set(ctx, cacheKey, intent, redis.TTLShort); setErr != nil {
			logger.Warn("failed to cache intent", observability.Error(setErr))
		}
	}

	return intent, nil
}

// ExtractBatch runs Extract independently per query. Output order matches
// input order regardless of completion order.
func (c *IntentChain) ExtractBatch(
	ctx context.Context,
	queries []string,
	locale string,
) ([]*domain.IntentResult, error) {
	results := make([]*domain.IntentResult, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, query := range queries {
		wg.Add(1)
		go func(slot int, q string) {
			defer wg.Done()
			results[slot], errs[slot] = c.Extract(ctx, q, locale, nil)
		}(i, query)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// IsActionable reports whether an intent carries enough signal to act on.
// The confidence gate is global; type-specific parameter checks come
// second.
func (c *IntentChain) IsActionable(intent *domain.IntentResult) bool {
	if intent == nil || intent.Confidence < actionableConfidence {
		return false
	}

	switch intent.Type {
	case domain.IntentCreateItinerary, domain.IntentModifyItinerary:
		return hasParameter(intent, "destination") || hasParameter(intent, "duration")
	case domain.IntentRecommendRestaurant, domain.IntentRecommendRental,
		domain.IntentCheckWeather, domain.IntentCheckTraffic:
		return hasParameter(intent, "destination")
	default:
		// Greetings, help and general queries need no parameters.
		return true
	}
}

// SuggestedFollowUps returns the configured follow-up prompts for an
// intent type and locale. Types without configured follow-ups yield an
// empty sequence. No model call is made.
func (c *IntentChain) SuggestedFollowUps(intent *domain.IntentResult) []string {
	if intent == nil {
		return []string{}
	}

	byLocale, ok := followUps[intent.Type]
	if !ok {
		return []string{}
	}

	if suggestions, ok := byLocale[intent.Locale]; ok {
		return suggestions
	}

	return []string{}
}

func (c *IntentChain) composeMessages(query, locale string, conversation []domain.ChatMessage) []domain.ChatMessage {
	intentTypes := make([]string, 0, len(domain.IntentTypes()))
	for _, intentType := range domain.IntentTypes() {
		intentTypes = append(intentTypes, string(intentType))
	}

	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: c.prompts.Template(prompt.SystemPreamble, locale)},
		{Role: domain.RoleSystem, Content: c.prompts.Render(prompt.IntentExtraction, map[string]any{
			"intent_types": intentTypes,
			"locale":       locale,
		}, locale)},
	}
	messages = append(messages, conversation...)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: query})

	return messages
}

// fallbackIntent is the deterministic, always-valid default returned when
// model output fails validation.
func (c *IntentChain) fallbackIntent(ctx context.Context, query, locale string) *domain.IntentResult {
	c.events.Publish(ctx, "intent_fallback", map[string]any{
		"locale": locale,
	})

	return &domain.IntentResult{
		Type:       domain.IntentGeneralQuery,
		Confidence: fallbackConfidence,
		Locale:     locale,
		Parameters: map[string]any{},
		Metadata: map[string]any{
			"fallback":      true,
			"originalQuery": query,
		},
	}
}

func hasParameter(intent *domain.IntentResult, key string) bool {
	value, ok := intent.Parameters[key]
	if !ok || value == nil {
		return false
	}
	if s, isString := value.(string); isString && s == "" {
		return false
	}
	return true
}

// followUps is the static follow-up table keyed by intent type and locale.
//
//nolint:gochecknoglobals // Static lookup table
var followUps = map[domain.IntentType]map[string][]string{
	domain.IntentCreateItinerary: {
		domain.LocaleEN: {
			"Would you like me to adjust the pace of this trip?",
			"Should I suggest restaurants along the way?",
			"Do you want accommodation recommendations?",
		},
		domain.LocaleZH: {
			"需要我调整这次行程的节奏吗？",
			"要不要推荐沿途的餐厅？",
			"需要住宿建议吗？",
		},
	},
	domain.IntentRecommendRestaurant: {
		domain.LocaleEN: {
			"Any cuisine you prefer?",
			"What budget range works for you?",
		},
		domain.LocaleZH: {
			"有偏好的菜系吗？",
			"预算范围大概是多少？",
		},
	},
	domain.IntentCheckWeather: {
		domain.LocaleEN: {
			"Would you like packing suggestions for this weather?",
		},
		domain.LocaleZH: {
			"需要根据天气给出行李建议吗？",
		},
	},
	domain.IntentGreeting: {
		domain.LocaleEN: {
			"Where would you like to travel?",
			"I can plan a multi-day itinerary for you.",
		},
		domain.LocaleZH: {
			"你想去哪里旅行？",
			"我可以为你规划多日行程。",
		},
	},
}
