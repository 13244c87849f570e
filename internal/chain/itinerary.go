package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davidbz/porco/internal/cache/redis"
	"github.com/davidbz/porco/internal/domain"
	"github.com/davidbz/porco/internal/observability"
	"github.com/davidbz/porco/internal/prompt"
	"github.com/davidbz/porco/internal/schema"
)

const (
	itineraryChainName   = "itinerary_generation"
	itineraryTemperature = 0.7
	itineraryMaxTokens   = 4000

	dateLayout = "2006-01-02"
)

// ItineraryChain turns an ItineraryRequest into a validated, post-processed
// GeneratedItinerary. Unlike the intent chain, validation failure is not
// recoverable: an itinerary has no safe default, so failures propagate as
// typed errors.
type ItineraryChain struct {
	orchestrator *domain.Orchestrator
	prompts      *prompt.Store
	validator    *schema.Validator
	cache        domain.Cache // nil disables memoization
	events       observability.EventPublisher
}

// NewItineraryChain creates the itinerary generation chain.
func NewItineraryChain(
	orchestrator *domain.Orchestrator,
	prompts *prompt.Store,
	validator *schema.Validator,
	cache domain.Cache,
	events observability.EventPublisher,
) *ItineraryChain {
	return &ItineraryChain{
		orchestrator: orchestrator,
		prompts:      prompts,
		validator:    validator,
		cache:        cache,
		events:       events,
	}
}

// Generate produces a day-by-day itinerary for the request. The date range
// is validated before any paid model call; the caller-supplied day count is
// advisory only.
func (c *ItineraryChain) Generate(ctx context.Context, req *domain.ItineraryRequest) (*domain.GeneratedItinerary, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	locale := ResolveLocale(req.Locale, req.SpecialRequests)
	ctx = observability.WithChain(ctx, itineraryChainName)
	ctx = observability.WithLocale(ctx, locale)
	logger := observability.FromContext(ctx)

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid startDate %q: %w", req.StartDate, err)
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid endDate %q: %w", req.EndDate, err)
	}

	if !start.Before(end) {
		return nil, &domain.InvalidDateRangeError{StartDate: req.StartDate, EndDate: req.EndDate}
	}

	expectedDays := int(end.Sub(start).Hours()/24) + 1
	if req.Days != 0 && req.Days != expectedDays {
		// The date range is authoritative; a disagreeing day count is a
		// discrepancy, not an error.
		logger.Warn("requested day count disagrees with date range",
			observability.Int("requested_days", req.Days),
			observability.Int("date_range_days", expectedDays),
		)
	}

	cacheKey := redis.Key(itineraryChainName, locale, normalizedRequest(req))
	if c.cache != nil {
		var cached domain.GeneratedItinerary
		cacheErr := c.cache.Get(ctx, cacheKey, &cached)
		if cacheErr == nil {
			logger.Debug("itinerary cache hit")
			return &cached, nil
		}
		if !errors.Is(cacheErr, domain.ErrCacheMiss) {
			logger.Warn("itinerary cache get failed, continuing without cache",
				observability.Error(cacheErr))
		}
	}

	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: c.prompts.Template(prompt.SystemPreamble, locale)},
		{Role: domain.RoleSystem, Content: c.prompts.Template(prompt.ItineraryGeneration, locale)},
		{Role: domain.RoleUser, Content: c.buildContextBlock(req, expectedDays, locale)},
	}

	raw, err := c.orchestrator.GenerateJSON(ctx, "", messages, domain.GenerationOptions{
		Temperature: itineraryTemperature,
		MaxTokens:   itineraryMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	result := c.validator.ValidateItinerary(raw)
	if !result.Valid {
		logger.Warn("generated itinerary failed validation",
			observability.Int("error_count", len(result.Errors)))
		return nil, &domain.InvalidItineraryResponseError{Errors: result.Errors}
	}

	itinerary := result.Data
	c.postProcess(ctx, itinerary)

	c.events.Publish(ctx, "itinerary_generated", map[string]any{
		"destination": itinerary.Destination,
		"days":        len(itinerary.Days),
	})

	if c.cache != nil {
		if setErr := c.cache.Set(ctx, cacheKey, itinerary, redis.TTLShort); setErr != nil {
			logger.Warn("failed to cache itinerary", observability.Error(setErr))
		}
	}

	return itinerary, nil
}

// buildContextBlock renders the request as a locale-specific block, one
// line per populated field. Absent fields contribute nothing.
func (c *ItineraryChain) buildContextBlock(req *domain.ItineraryRequest, expectedDays int, locale string) string {
	labels := contextLabels[domain.LocaleEN]
	if locale == domain.LocaleZH {
		labels = contextLabels[domain.LocaleZH]
	}

	lines := []string{
		fmt.Sprintf("%s: %s", labels.destination, req.Destination),
		fmt.Sprintf("%s: %s - %s (%d %s)", labels.dates, req.StartDate, req.EndDate, expectedDays, labels.daysUnit),
	}

	if req.Travelers > 0 {
		lines = append(lines, fmt.Sprintf("%s: %d", labels.travelers, req.Travelers))
	}
	if len(req.Preferences.Interests) > 0 {
		lines = append(lines, fmt.Sprintf("%s: %s", labels.interests, strings.Join(req.Preferences.Interests, ", ")))
	}
	if req.Preferences.Budget != "" {
		lines = append(lines, fmt.Sprintf("%s: %s", labels.budget, req.Preferences.Budget))
	}
	if req.Preferences.Pace != "" {
		lines = append(lines, fmt.Sprintf("%s: %s", labels.pace, req.Preferences.Pace))
	}
	if req.Preferences.Accommodation != "" {
		lines = append(lines, fmt.Sprintf("%s: %s", labels.accommodation, req.Preferences.Accommodation))
	}
	if req.Preferences.Transportation != "" {
		lines = append(lines, fmt.Sprintf("%s: %s", labels.transportation, req.Preferences.Transportation))
	}
	if req.SpecialRequests != "" {
		lines = append(lines, fmt.Sprintf("%s: %s", labels.specialRequests, req.SpecialRequests))
	}

	return strings.Join(lines, "\n")
}

type contextLabelSet struct {
	destination     string
	dates           string
	daysUnit        string
	travelers       string
	interests       string
	budget          string
	pace            string
	accommodation   string
	transportation  string
	specialRequests string
}

//nolint:gochecknoglobals // Static label table
var contextLabels = map[string]contextLabelSet{
	domain.LocaleEN: {
		destination:     "Destination",
		dates:           "Dates",
		daysUnit:        "days",
		travelers:       "Travelers",
		interests:       "Interests",
		budget:          "Budget",
		pace:            "Pace",
		accommodation:   "Accommodation",
		transportation:  "Transportation",
		specialRequests: "Special requests",
	},
	domain.LocaleZH: {
		destination:     "目的地",
		dates:           "日期",
		daysUnit:        "天",
		travelers:       "出行人数",
		interests:       "兴趣",
		budget:          "预算",
		pace:            "节奏",
		accommodation:   "住宿",
		transportation:  "交通",
		specialRequests: "特殊要求",
	},
}

// normalizedRequest canonicalizes the request fields for cache keying.
func normalizedRequest(req *domain.ItineraryRequest) string {
	parts := []string{
		normalizeQuery(req.Destination),
		req.StartDate,
		req.EndDate,
		fmt.Sprint(req.Travelers),
		normalizeQuery(strings.Join(req.Preferences.Interests, ",")),
		normalizeQuery(req.Preferences.Budget),
		normalizeQuery(req.Preferences.Pace),
		normalizeQuery(req.Preferences.Accommodation),
		normalizeQuery(req.Preferences.Transportation),
		normalizeQuery(req.SpecialRequests),
	}
	return strings.Join(parts, "|")
}
