package domain

// DefaultCurrency is used when cost aggregation finds no activity currency.
const DefaultCurrency = "NZD"

// BilingualText carries user-facing text in both supported locales. Both
// fields are always present; never one without the other.
type BilingualText struct {
	EN string `json:"en" validate:"required"`
	ZH string `json:"zh" validate:"required"`
}

// Money is an amount in a named currency.
type Money struct {
	Amount   float64 `json:"amount" validate:"gte=0"`
	Currency string  `json:"currency"`
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location describes where an activity takes place.
type Location struct {
	Name        BilingualText `json:"name" validate:"required"`
	Address     string        `json:"address,omitempty"`
	Coordinates *Coordinates  `json:"coordinates,omitempty"`
}

// ItineraryActivity is a single scheduled entry within a day.
type ItineraryActivity struct {
	Time        string        `json:"time" validate:"required,hhmm"`
	Name        BilingualText `json:"name" validate:"required"`
	Description BilingualText `json:"description" validate:"required"`
	Location    Location      `json:"location" validate:"required"`
	Duration    int           `json:"duration" validate:"required,gt=0"`
	Cost        *Money        `json:"cost,omitempty"`
	Category    string        `json:"category"`
}

// DayMeals holds the optional meal suggestions for a day.
type DayMeals struct {
	Breakfast *BilingualText `json:"breakfast,omitempty"`
	Lunch     *BilingualText `json:"lunch,omitempty"`
	Dinner    *BilingualText `json:"dinner,omitempty"`
}

// ItineraryDay is one day of a generated plan. Activities are ordered by
// time ascending after post-processing.
type ItineraryDay struct {
	Day           int                 `json:"day" validate:"gte=1"`
	Date          string              `json:"date" validate:"required"`
	Activities    []ItineraryActivity `json:"activities" validate:"dive"`
	Meals         DayMeals            `json:"meals"`
	Accommodation *BilingualText      `json:"accommodation,omitempty"`
	Notes         *BilingualText      `json:"notes,omitempty"`
}

// GeneratedItinerary is a multi-day, activity-level travel plan with
// bilingual text fields. TotalCost, when absent from the generated payload,
// is computed by the core as the sum of all activity costs.
type GeneratedItinerary struct {
	Title           BilingualText   `json:"title" validate:"required"`
	Summary         BilingualText   `json:"summary" validate:"required"`
	Destination     string          `json:"destination" validate:"required"`
	StartDate       string          `json:"startDate" validate:"required"`
	EndDate         string          `json:"endDate" validate:"required"`
	Days            []ItineraryDay  `json:"days" validate:"required,min=1,dive"`
	TotalCost       *Money          `json:"totalCost,omitempty"`
	Recommendations []BilingualText `json:"recommendations" validate:"dive"`
}

// TravelPreferences are the optional planning preferences of a request.
// Absent fields contribute nothing to the generation context.
type TravelPreferences struct {
	Interests      []string `json:"interests,omitempty"`
	Budget         string   `json:"budget,omitempty"`
	Pace           string   `json:"pace,omitempty"`
	Accommodation  string   `json:"accommodation,omitempty"`
	Transportation string   `json:"transportation,omitempty"`
}

// ItineraryRequest is the caller input to the itinerary generation chain.
// Dates are YYYY-MM-DD strings; the date range is authoritative over Days.
type ItineraryRequest struct {
	Destination     string            `json:"destination"`
	StartDate       string            `json:"startDate"`
	EndDate         string            `json:"endDate"`
	Days            int               `json:"days,omitempty"`
	Travelers       int               `json:"travelers,omitempty"`
	Preferences     TravelPreferences `json:"preferences"`
	SpecialRequests string            `json:"specialRequests,omitempty"`
	Locale          string            `json:"locale,omitempty"`
}

// ItineraryStatistics is a deterministic aggregate over a generated
// itinerary. A zero-day itinerary yields an all-zero result.
type ItineraryStatistics struct {
	TotalDays           int     `json:"total_days"`
	TotalActivities     int     `json:"total_activities"`
	TotalCost           float64 `json:"total_cost"`
	AvgActivitiesPerDay int     `json:"avg_activities_per_day"`
	AvgDailyBudget      int     `json:"avg_daily_budget"`
}
