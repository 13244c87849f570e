package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/davidbz/porco/internal/chain"
	"github.com/davidbz/porco/internal/domain"
	"github.com/davidbz/porco/internal/observability"
)

// Handler handles HTTP requests.
type Handler struct {
	orchestrator *domain.Orchestrator
	intents      *chain.IntentChain
	itineraries  *chain.ItineraryChain
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(
	orchestrator *domain.Orchestrator,
	intents *chain.IntentChain,
	itineraries *chain.ItineraryChain,
) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		intents:      intents,
		itineraries:  itineraries,
	}
}

// IntentRequest is the body of an intent extraction request.
type IntentRequest struct {
	Query        string               `json:"query"`
	Locale       string               `json:"locale,omitempty"`
	Conversation []domain.ChatMessage `json:"conversation,omitempty"`
}

// IntentResponse wraps the extracted intent with derived hints.
type IntentResponse struct {
	Intent     *domain.IntentResult `json:"intent"`
	Actionable bool                 `json:"actionable"`
	FollowUps  []string             `json:"follow_ups,omitempty"`
}

// ItineraryResponse wraps the generated itinerary with derived metrics.
type ItineraryResponse struct {
	Itinerary    *domain.GeneratedItinerary `json:"itinerary"`
	QualityScore int                        `json:"quality_score"`
	Statistics   domain.ItineraryStatistics `json:"statistics"`
}

// HandleIntent processes intent extraction requests.
func (h *Handler) HandleIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req IntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	logger := observability.FromContext(ctx)
	logger.Info("intent request received",
		zap.String("locale", req.Locale),
		zap.Int("conversation_length", len(req.Conversation)),
	)

	intent, err := h.intents.Extract(ctx, req.Query, req.Locale, req.Conversation)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	logger.Info("intent extracted",
		zap.String("type", string(intent.Type)),
		zap.Float64("confidence", intent.Confidence),
	)

	h.writeJSON(ctx, w, http.StatusOK, IntentResponse{
		Intent:     intent,
		Actionable: h.intents.IsActionable(intent),
		FollowUps:  h.intents.SuggestedFollowUps(intent),
	})
}

// HandleItinerary processes itinerary generation requests.
func (h *Handler) HandleItinerary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.ItineraryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.Destination == "" || req.StartDate == "" || req.EndDate == "" {
		http.Error(w, "destination, startDate and endDate are required", http.StatusBadRequest)
		return
	}

	logger := observability.FromContext(ctx)
	logger.Info("itinerary request received",
		zap.String("destination", req.Destination),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	itinerary, err := h.itineraries.Generate(ctx, &req)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	logger.Info("itinerary generated", zap.Int("days", len(itinerary.Days)))

	h.writeJSON(ctx, w, http.StatusOK, ItineraryResponse{
		Itinerary:    itinerary,
		QualityScore: h.itineraries.EstimateQuality(itinerary),
		Statistics:   h.itineraries.Statistics(itinerary),
	})
}

// HandleUsage reports accumulated per-provider usage statistics.
func (h *Handler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(r.Context(), w, http.StatusOK, h.orchestrator.AllUsageStats())
}

// HandleHealth handles health check requests, probing provider availability.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	providers := h.orchestrator.AvailableProviders(r.Context())

	h.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"providers": providers,
	})
}

// writeError maps chain and provider errors to HTTP statuses.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := observability.FromContext(ctx)

	var (
		dateErr      *domain.InvalidDateRangeError
		itineraryErr *domain.InvalidItineraryResponseError
		notRegErr    *domain.ProviderNotRegisteredError
		malformedErr *domain.MalformedOutputError
		providerErr  *domain.ProviderError
	)

	switch {
	case errors.As(err, &dateErr):
		h.writeJSON(ctx, w, http.StatusBadRequest, map[string]any{"error": dateErr.Error()})
	case errors.As(err, &itineraryErr):
		logger.Warn("itinerary validation failed", zap.Int("error_count", len(itineraryErr.Errors)))
		h.writeJSON(ctx, w, http.StatusUnprocessableEntity, map[string]any{
			"error":  itineraryErr.Error(),
			"fields": itineraryErr.Errors,
		})
	case errors.As(err, &notRegErr):
		logger.Error("provider not registered", zap.Error(err))
		h.writeJSON(ctx, w, http.StatusServiceUnavailable, map[string]any{"error": err.Error()})
	case errors.As(err, &malformedErr), errors.As(err, &providerErr):
		logger.Error("upstream provider failure", zap.Error(err))
		h.writeJSON(ctx, w, http.StatusBadGateway, map[string]any{"error": err.Error()})
	default:
		logger.Error("request failed", zap.Error(err))
		h.writeJSON(ctx, w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
}

func (h *Handler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Status already written, just log.
		observability.FromContext(ctx).Error("failed to encode response", zap.Error(err))
	}
}
