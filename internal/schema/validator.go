// Package schema validates untrusted model output against the strict
// structural schemas of the domain. Validation reports a result with two
// variants (canonicalized data or a flat error-path list); it never panics
// on malformed input, and Strict variants exist for callers that want
// failure to propagate as an error.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/davidbz/porco/internal/domain"
)

var hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Result is the outcome of a validation: either canonicalized Data (Valid
// true) or a flat list of Errors (Valid false). Ephemeral; produced and
// consumed within a single chain invocation.
type Result[T any] struct {
	Valid  bool
	Data   *T
	Errors []domain.FieldError
}

// Validator validates raw JSON payloads against the domain schemas.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the domain's custom rules
// registered. Error paths use JSON field names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})

	_ = v.RegisterValidation("intenttype", func(fl validator.FieldLevel) bool {
		value := domain.IntentType(fl.Field().String())
		for _, intentType := range domain.IntentTypes() {
			if value == intentType {
				return true
			}
		}
		return false
	})

	return &Validator{validate: v}
}

// ValidateIntent validates a raw intent payload.
func (v *Validator) ValidateIntent(raw json.RawMessage) Result[domain.IntentResult] {
	result := validate[domain.IntentResult](v, raw)
	if result.Valid && result.Data.Parameters == nil {
		result.Data.Parameters = map[string]any{}
	}
	return result
}

// ValidateItinerary validates a raw generated-itinerary payload.
func (v *Validator) ValidateItinerary(raw json.RawMessage) Result[domain.GeneratedItinerary] {
	result := validate[domain.GeneratedItinerary](v, raw)
	if result.Valid {
		if result.Data.Recommendations == nil {
			result.Data.Recommendations = []domain.BilingualText{}
		}
		for i := range result.Data.Days {
			if result.Data.Days[i].Activities == nil {
				result.Data.Days[i].Activities = []domain.ItineraryActivity{}
			}
		}
	}
	return result
}

// ValidateIntentStrict validates a raw intent payload, propagating failure
// as an error.
func (v *Validator) ValidateIntentStrict(raw json.RawMessage) (*domain.IntentResult, error) {
	result := v.ValidateIntent(raw)
	if !result.Valid {
		return nil, validationError(result.Errors)
	}
	return result.Data, nil
}

// ValidateItineraryStrict validates a raw itinerary payload, propagating
// failure as an error.
func (v *Validator) ValidateItineraryStrict(raw json.RawMessage) (*domain.GeneratedItinerary, error) {
	result := v.ValidateItinerary(raw)
	if !result.Valid {
		return nil, &domain.InvalidItineraryResponseError{Errors: result.Errors}
	}
	return result.Data, nil
}

func validate[T any](v *Validator, raw json.RawMessage) Result[T] {
	var data T

	if err := json.Unmarshal(raw, &data); err != nil {
		return Result[T]{Errors: []domain.FieldError{{
			Path:    "$",
			Message: fmt.Sprintf("payload is not valid JSON for the schema: %v", err),
		}}}
	}

	if err := v.validate.Struct(&data); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fieldErrors := make([]domain.FieldError, 0, len(verrs))
			for _, fe := range verrs {
				fieldErrors = append(fieldErrors, domain.FieldError{
					Path:    fieldPath(fe),
					Message: fieldMessage(fe),
				})
			}
			return Result[T]{Errors: fieldErrors}
		}

		return Result[T]{Errors: []domain.FieldError{{Path: "$", Message: err.Error()}}}
	}

	return Result[T]{Valid: true, Data: &data}
}

// fieldPath converts the validator namespace to a dotted path within the
// payload, e.g. "days[0].activities[1].duration".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "intenttype":
		return "must be a valid intent type"
	case "hhmm":
		return "must be a time in HH:MM format"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must contain at least %s items", fe.Param())
	default:
		return fmt.Sprintf("failed validation rule %q", fe.Tag())
	}
}

func validationError(fieldErrors []domain.FieldError) error {
	parts := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Path, fe.Message))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(parts, "; "))
}
