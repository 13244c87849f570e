package chain

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/davidbz/porco/internal/domain"
	"github.com/davidbz/porco/internal/observability"
)

const (
	qualityBase           = 100
	maxDayMinutes         = 720
	minDayMinutes         = 240
	mealCoverageThreshold = 0.8
	varianceThreshold     = 4.0
	unevenDaysPenalty     = 10
	overpackedDayPenalty  = 15
	sparseDayPenalty      = 10
	missingMealsPenalty   = 5
)

// postProcess normalizes a validated itinerary in place: activities are
// ordered by time of day, and a missing total cost is derived from the
// activity costs.
func (c *ItineraryChain) postProcess(ctx context.Context, itinerary *domain.GeneratedItinerary) {
	for i := range itinerary.Days {
		activities := itinerary.Days[i].Activities
		sort.SliceStable(activities, func(a, b int) bool {
			return timeOfDayMinutes(activities[a].Time) < timeOfDayMinutes(activities[b].Time)
		})
	}

	if itinerary.TotalCost == nil {
		itinerary.TotalCost = c.aggregateCost(ctx, itinerary)
	}
}

// aggregateCost sums every activity cost across all days, rounded to the
// nearest whole unit. The first non-empty currency encountered wins; the
// default currency applies when no activity declares one.
func (c *ItineraryChain) aggregateCost(ctx context.Context, itinerary *domain.GeneratedItinerary) *domain.Money {
	var sum float64
	currency := ""
	mixed := false

	for _, day := range itinerary.Days {
		for _, activity := range day.Activities {
			if activity.Cost == nil {
				continue
			}
			sum += activity.Cost.Amount
			if activity.Cost.Currency == "" {
				continue
			}
			if currency == "" {
				currency = activity.Cost.Currency
			} else if currency != activity.Cost.Currency {
				mixed = true
			}
		}
	}

	if currency == "" {
		currency = domain.DefaultCurrency
	}
	if mixed {
		observability.FromContext(ctx).Warn("itinerary activities use mixed currencies",
			observability.String("chosen_currency", currency))
	}

	return &domain.Money{
		Amount:   math.Round(sum),
		Currency: currency,
	}
}

// EstimateQuality scores an itinerary from 0 to 100 using fixed pacing
// heuristics. It is pure: no model calls, no mutation, stable output for
// the same input.
func (c *ItineraryChain) EstimateQuality(itinerary *domain.GeneratedItinerary) int {
	score := qualityBase
	if len(itinerary.Days) == 0 {
		return score
	}

	counts := make([]float64, len(itinerary.Days))
	overpacked := false
	sparse := false
	daysWithMeals := 0

	for i, day := range itinerary.Days {
		counts[i] = float64(len(day.Activities))

		minutes := 0
		for _, activity := range day.Activities {
			minutes += activity.Duration
		}
		if minutes > maxDayMinutes {
			overpacked = true
		}
		if minutes < minDayMinutes {
			sparse = true
		}
		if day.Meals.Lunch != nil || day.Meals.Dinner != nil {
			daysWithMeals++
		}
	}

	if variance(counts) > varianceThreshold {
		score -= unevenDaysPenalty
	}
	if overpacked {
		score -= overpackedDayPenalty
	}
	if sparse {
		score -= sparseDayPenalty
	}
	if float64(daysWithMeals)/float64(len(itinerary.Days)) < mealCoverageThreshold {
		score -= missingMealsPenalty
	}

	if score < 0 {
		score = 0
	}
	if score > qualityBase {
		score = qualityBase
	}
	return score
}

// Statistics aggregates deterministic totals and rounded averages. A
// zero-day itinerary yields an all-zero result rather than dividing by
// zero.
func (c *ItineraryChain) Statistics(itinerary *domain.GeneratedItinerary) domain.ItineraryStatistics {
	days := len(itinerary.Days)
	if days == 0 {
		return domain.ItineraryStatistics{}
	}

	activities := 0
	for _, day := range itinerary.Days {
		activities += len(day.Activities)
	}

	totalCost := 0.0
	if itinerary.TotalCost != nil {
		totalCost = itinerary.TotalCost.Amount
	} else {
		for _, day := range itinerary.Days {
			for _, activity := range day.Activities {
				if activity.Cost != nil {
					totalCost += activity.Cost.Amount
				}
			}
		}
	}

	return domain.ItineraryStatistics{
		TotalDays:           days,
		TotalActivities:     activities,
		TotalCost:           totalCost,
		AvgActivitiesPerDay: int(math.Round(float64(activities) / float64(days))),
		AvgDailyBudget:      int(math.Round(totalCost / float64(days))),
	}
}

// timeOfDayMinutes parses "HH:MM" into minutes since midnight. Malformed
// values sort first.
func timeOfDayMinutes(value string) int {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return -1
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return -1
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return -1
	}
	return hours*60 + minutes
}

// variance is the population variance of the sample.
func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	total := 0.0
	for _, v := range values {
		d := v - mean
		total += d * d
	}
	return total / float64(len(values))
}
