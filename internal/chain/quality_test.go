package chain_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/porco/internal/domain"
)

func TestItineraryChain_EstimateQuality(t *testing.T) {
	itineraries := newTestItineraryChain(t, &scriptedProvider{})

	t.Run("balanced itinerary scores full marks", func(t *testing.T) {
		itinerary := builtItinerary(
			builtDay(1, 4, 90, true), // 360 minutes
			builtDay(2, 4, 90, true),
		)

		score := itineraries.EstimateQuality(itinerary)
		require.Equal(t, 100, score)
	})

	t.Run("unbalanced itinerary is penalized", func(t *testing.T) {
		// Day 1: a single 60-minute activity (sparse). Day 2: ten
		// activities (high count variance). No meals anywhere.
		itinerary := builtItinerary(
			builtDay(1, 1, 60, false),
			builtDay(2, 10, 60, false),
		)

		score := itineraries.EstimateQuality(itinerary)
		require.Equal(t, 75, score)
		require.Less(t, score, 80)
	})

	t.Run("overpacked day is penalized", func(t *testing.T) {
		itinerary := builtItinerary(
			builtDay(1, 4, 200, true), // 800 minutes
			builtDay(2, 4, 90, true),
		)

		score := itineraries.EstimateQuality(itinerary)
		require.Equal(t, 85, score)
	})

	t.Run("sparse meal coverage is penalized", func(t *testing.T) {
		itinerary := builtItinerary(
			builtDay(1, 4, 90, true),
			builtDay(2, 4, 90, false),
		)

		// 50% of days with a main meal is below the 80% threshold.
		score := itineraries.EstimateQuality(itinerary)
		require.Equal(t, 95, score)
	})

	t.Run("scoring is idempotent", func(t *testing.T) {
		itinerary := builtItinerary(
			builtDay(1, 1, 60, false),
			builtDay(2, 10, 60, false),
		)

		first := itineraries.EstimateQuality(itinerary)
		second := itineraries.EstimateQuality(itinerary)
		require.Equal(t, first, second)
	})

	t.Run("empty itinerary keeps the base score", func(t *testing.T) {
		require.Equal(t, 100, itineraries.EstimateQuality(&domain.GeneratedItinerary{}))
	})
}

func TestItineraryChain_Statistics(t *testing.T) {
	itineraries := newTestItineraryChain(t, &scriptedProvider{})

	t.Run("zero days yields zeroed aggregate", func(t *testing.T) {
		stats := itineraries.Statistics(&domain.GeneratedItinerary{})
		require.Equal(t, domain.ItineraryStatistics{}, stats)
	})

	t.Run("totals and rounded averages", func(t *testing.T) {
		itinerary := builtItinerary(
			builtDay(1, 3, 90, true),
			builtDay(2, 4, 90, true),
		)
		itinerary.TotalCost = &domain.Money{Amount: 301, Currency: "NZD"}

		stats := itineraries.Statistics(itinerary)
		require.Equal(t, 2, stats.TotalDays)
		require.Equal(t, 7, stats.TotalActivities)
		require.Equal(t, 301.0, stats.TotalCost)
		require.Equal(t, 4, stats.AvgActivitiesPerDay) // 3.5 rounds up
		require.Equal(t, 151, stats.AvgDailyBudget)    // 150.5 rounds up
	})

	t.Run("missing total cost is summed from activities", func(t *testing.T) {
		itinerary := builtItinerary(builtDay(1, 2, 60, false))

		stats := itineraries.Statistics(itinerary)
		require.Equal(t, 20.0, stats.TotalCost) // 10 per activity
		require.Equal(t, 20, stats.AvgDailyBudget)
	})
}

// builtDay creates a day with n identical activities of the given duration,
// each costing 10 NZD, optionally with lunch and dinner set.
func builtDay(day, n, duration int, meals bool) domain.ItineraryDay {
	activities := make([]domain.ItineraryActivity, 0, n)
	for i := 0; i < n; i++ {
		activities = append(activities, domain.ItineraryActivity{
			Time:        fmt.Sprintf("%02d:%02d", 8+i, 0),
			Name:        domain.BilingualText{EN: "Stop", ZH: "景点"},
			Description: domain.BilingualText{EN: "A stop", ZH: "一个景点"},
			Location: domain.Location{
				Name: domain.BilingualText{EN: "Somewhere", ZH: "某处"},
			},
			Duration: duration,
			Cost:     &domain.Money{Amount: 10, Currency: "NZD"},
		})
	}

	result := domain.ItineraryDay{
		Day:        day,
		Date:       fmt.Sprintf("2025-12-%02d", day),
		Activities: activities,
	}
	if meals {
		result.Meals = domain.DayMeals{
			Lunch:  &domain.BilingualText{EN: "Lunch", ZH: "午餐"},
			Dinner: &domain.BilingualText{EN: "Dinner", ZH: "晚餐"},
		}
	}
	return result
}

func builtItinerary(days ...domain.ItineraryDay) *domain.GeneratedItinerary {
	return &domain.GeneratedItinerary{
		Title:       domain.BilingualText{EN: "Trip", ZH: "旅程"},
		Summary:     domain.BilingualText{EN: "A trip", ZH: "一次旅程"},
		Destination: "Auckland",
		StartDate:   "2025-12-01",
		EndDate:     fmt.Sprintf("2025-12-%02d", len(days)),
		Days:        days,
	}
}
