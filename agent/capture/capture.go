// Package capture is the slot extractor/capturer boundary. Every slot or
// itinerary payload, whether supplied by a specialist tool call or by the
// regex fallback, is validated here before it may touch the trip context.
package capture

import (
	"fmt"
	"math"
	"strings"
	"time"

	contractx "github.com/wanderplan/wanderplan/agent/contract"
	statex "github.com/wanderplan/wanderplan/agent/state"
)

// DecodeSlotPatch validates a sparse argument object against the capture tool
// schema. Absent and null fields are no-ops; a present field of the wrong
// type is rejected before any mutation happens.
func DecodeSlotPatch(args map[string]any) (statex.SlotPatch, error) {
	var patch statex.SlotPatch

	origin, err := stringField(args, "originCity")
	if err != nil {
		return statex.SlotPatch{}, err
	}
	patch.OriginCity = origin

	destination, err := stringField(args, "destinationCity")
	if err != nil {
		return statex.SlotPatch{}, err
	}
	patch.DestinationCity = destination

	start, err := dateField(args, "startDate")
	if err != nil {
		return statex.SlotPatch{}, err
	}
	patch.StartDate = start

	end, err := dateField(args, "endDate")
	if err != nil {
		return statex.SlotPatch{}, err
	}
	patch.EndDate = end

	adults, err := positiveIntField(args, "adults")
	if err != nil {
		return statex.SlotPatch{}, err
	}
	patch.Adults = adults

	budget, err := positiveNumberField(args, "budgetAmount")
	if err != nil {
		return statex.SlotPatch{}, err
	}
	patch.BudgetAmount = budget

	currency, err := stringField(args, "currency")
	if err != nil {
		return statex.SlotPatch{}, err
	}
	if currency != nil {
		upper := strings.ToUpper(*currency)
		patch.Currency = &upper
	}

	return patch, nil
}

// Apply overlays the patch on the trip and applies it, recomputing staleness.
// An end date that would precede the start date is a correctable user error:
// the patch is rejected whole and the caller asks for confirmation instead of
// swapping values.
func Apply(trip *statex.TripContext, patch statex.SlotPatch) (string, bool, error) {
	if trip == nil {
		return "", false, fmt.Errorf("%w: nil trip context", contractx.ErrValidation)
	}
	if patch.IsZero() {
		return trip.Signature(), false, nil
	}

	start := trip.StartDate
	if patch.StartDate != nil {
		start = *patch.StartDate
	}
	end := trip.EndDate
	if patch.EndDate != nil {
		end = *patch.EndDate
	}
	if err := checkDateOrder(start, end); err != nil {
		return "", false, err
	}

	sig, changed := trip.ApplyUpdate(patch)
	return sig, changed, nil
}

// DecodeItinerary validates the itinerary capture payload {days: [...]} and
// returns normalized days.
func DecodeItinerary(args map[string]any) ([]statex.Day, error) {
	raw, ok := args["days"]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: days is required", contractx.ErrSchemaViolation)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: days must be an array", contractx.ErrSchemaViolation)
	}

	days := make([]statex.Day, 0, len(list))
	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: days[%d] must be an object", contractx.ErrSchemaViolation, i)
		}

		var day statex.Day
		if ordinal, err := positiveIntField(entry, "day"); err != nil {
			return nil, fmt.Errorf("days[%d]: %w", i, err)
		} else if ordinal != nil {
			day.Day = *ordinal
		}
		if date, err := dateField(entry, "date"); err != nil {
			return nil, fmt.Errorf("days[%d]: %w", i, err)
		} else if date != nil {
			day.Date = *date
		}

		for _, segment := range []struct {
			key  string
			dest *[]string
		}{
			{"morning", &day.Morning},
			{"afternoon", &day.Afternoon},
			{"evening", &day.Evening},
		} {
			activities, err := stringListField(entry, segment.key)
			if err != nil {
				return nil, fmt.Errorf("days[%d]: %w", i, err)
			}
			*segment.dest = activities
		}

		day.Normalize()
		days = append(days, day)
	}
	return days, nil
}

func checkDateOrder(start, end string) error {
	if start == "" || end == "" {
		return nil
	}
	startDate, err := time.Parse(statex.DateLayout, start)
	if err != nil {
		return nil
	}
	endDate, err := time.Parse(statex.DateLayout, end)
	if err != nil {
		return nil
	}
	if endDate.Before(startDate) {
		return fmt.Errorf("%w: start=%s end=%s", statex.ErrInconsistentDates, start, end)
	}
	return nil
}

func stringField(args map[string]any, key string) (*string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	value, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string, got %T", contractx.ErrSchemaViolation, key, raw)
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	return &trimmed, nil
}

func dateField(args map[string]any, key string) (*string, error) {
	value, err := stringField(args, key)
	if err != nil || value == nil {
		return nil, err
	}
	if _, err := time.Parse(statex.DateLayout, *value); err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD, got %q", contractx.ErrSchemaViolation, key, *value)
	}
	return value, nil
}

func positiveIntField(args map[string]any, key string) (*int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	var value float64
	switch n := raw.(type) {
	case float64:
		value = n
	case int:
		value = float64(n)
	case int64:
		value = float64(n)
	default:
		return nil, fmt.Errorf("%w: %s must be a number, got %T", contractx.ErrSchemaViolation, key, raw)
	}

	if value != math.Trunc(value) {
		return nil, fmt.Errorf("%w: %s must be an integer, got %v", contractx.ErrSchemaViolation, key, value)
	}
	if value <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive, got %v", contractx.ErrValidation, key, value)
	}
	result := int(value)
	return &result, nil
}

func positiveNumberField(args map[string]any, key string) (*float64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	var value float64
	switch n := raw.(type) {
	case float64:
		value = n
	case int:
		value = float64(n)
	case int64:
		value = float64(n)
	default:
		return nil, fmt.Errorf("%w: %s must be a number, got %T", contractx.ErrSchemaViolation, key, raw)
	}

	if value <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive, got %v", contractx.ErrValidation, key, value)
	}
	return &value, nil
}

func stringListField(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}

	switch list := raw.(type) {
	case []string:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			value, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] must be a string, got %T", contractx.ErrSchemaViolation, key, i, item)
			}
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s must be an array of strings, got %T", contractx.ErrSchemaViolation, key, raw)
	}
}
