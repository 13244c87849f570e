package domain

import "sync"

// UsageStats holds the running totals for a provider instance: tokens,
// request count and an estimated monetary cost in USD.
type UsageStats struct {
	RequestCount     int     `json:"request_count"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	EstimatedCost    float64 `json:"estimated_cost"`
}

// UsageAccumulator owns a provider's usage totals. It is mutated only from
// the provider's own response-handling path: Record once per successful
// call, Reset on explicit request. Safe for concurrent callers.
type UsageAccumulator struct {
	mu    sync.Mutex
	stats UsageStats
}

// NewUsageAccumulator creates an empty accumulator.
func NewUsageAccumulator() *UsageAccumulator {
	return &UsageAccumulator{}
}

// Record adds one completed call's token usage and estimated cost.
func (a *UsageAccumulator) Record(usage TokenUsage, cost float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.RequestCount++
	a.stats.PromptTokens += usage.PromptTokens
	a.stats.CompletionTokens += usage.CompletionTokens
	a.stats.TotalTokens += usage.TotalTokens
	a.stats.EstimatedCost += cost
}

// Stats returns a snapshot of the running totals.
func (a *UsageAccumulator) Stats() UsageStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.stats
}

// Reset zeroes the running totals.
func (a *UsageAccumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats = UsageStats{}
}
