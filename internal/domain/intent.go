package domain

// IntentType is the closed enumeration of classifications the intent
// extraction chain can produce.
type IntentType string

const (
	IntentCreateItinerary     IntentType = "create_itinerary"
	IntentModifyItinerary     IntentType = "modify_itinerary"
	IntentRecommendRestaurant IntentType = "recommend_restaurant"
	IntentRecommendRental     IntentType = "recommend_rental"
	IntentCheckWeather        IntentType = "check_weather"
	IntentCheckTraffic        IntentType = "check_traffic"
	IntentGreeting            IntentType = "greeting"
	IntentHelp                IntentType = "help"
	IntentGeneralQuery        IntentType = "general_query"
)

// IntentTypes lists every valid intent type.
func IntentTypes() []IntentType {
	return []IntentType{
		IntentCreateItinerary,
		IntentModifyItinerary,
		IntentRecommendRestaurant,
		IntentRecommendRental,
		IntentCheckWeather,
		IntentCheckTraffic,
		IntentGreeting,
		IntentHelp,
		IntentGeneralQuery,
	}
}

// Supported conversation locales.
const (
	LocaleEN = "en"
	LocaleZH = "zh"
)

// IntentResult is the structured classification and extracted slots derived
// from a free-text user query. Immutable after validation.
type IntentResult struct {
	Type             IntentType     `json:"type" validate:"required,intenttype"`
	Confidence       float64        `json:"confidence" validate:"gte=0,lte=1"`
	Locale           string         `json:"locale" validate:"required,oneof=en zh"`
	Parameters       map[string]any `json:"parameters" validate:"-"`
	DetectedLanguage string         `json:"detectedLanguage,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}
