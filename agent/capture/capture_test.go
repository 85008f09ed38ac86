package capture

import (
	"errors"
	"testing"

	contractx "github.com/wanderplan/wanderplan/agent/contract"
	statex "github.com/wanderplan/wanderplan/agent/state"
)

func TestDecodeSlotPatchFull(t *testing.T) {
	t.Parallel()

	patch, err := DecodeSlotPatch(map[string]any{
		"originCity":      "Porto",
		"destinationCity": "Lisbon",
		"startDate":       "2026-09-10",
		"endDate":         "2026-09-14",
		"adults":          float64(2),
		"budgetAmount":    float64(3000),
		"currency":        "eur",
	})
	if err != nil {
		t.Fatalf("DecodeSlotPatch() error = %v", err)
	}

	if patch.DestinationCity == nil || *patch.DestinationCity != "Lisbon" {
		t.Fatalf("destination = %v", patch.DestinationCity)
	}
	if patch.Adults == nil || *patch.Adults != 2 {
		t.Fatalf("adults = %v", patch.Adults)
	}
	if patch.Currency == nil || *patch.Currency != "EUR" {
		t.Fatalf("currency should be uppercased, got %v", patch.Currency)
	}
}

func TestDecodeSlotPatchAbsentFieldsAreNoOps(t *testing.T) {
	t.Parallel()

	patch, err := DecodeSlotPatch(map[string]any{
		"destinationCity": "Lisbon",
	})
	if err != nil {
		t.Fatalf("DecodeSlotPatch() error = %v", err)
	}
	if patch.OriginCity != nil || patch.StartDate != nil || patch.Adults != nil {
		t.Fatalf("absent fields must stay nil: %+v", patch)
	}
}

func TestDecodeSlotPatchTypeViolations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args map[string]any
		want error
	}{
		{"string adults", map[string]any{"adults": "two"}, contractx.ErrSchemaViolation},
		{"fractional adults", map[string]any{"adults": 2.5}, contractx.ErrSchemaViolation},
		{"zero adults", map[string]any{"adults": float64(0)}, contractx.ErrValidation},
		{"negative budget", map[string]any{"budgetAmount": float64(-10)}, contractx.ErrValidation},
		{"numeric destination", map[string]any{"destinationCity": 42}, contractx.ErrSchemaViolation},
		{"bad date format", map[string]any{"startDate": "10/09/2026"}, contractx.ErrSchemaViolation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeSlotPatch(tc.args)
			if !errors.Is(err, tc.want) {
				t.Fatalf("DecodeSlotPatch() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestApplyRejectsInconsistentDatesWhole(t *testing.T) {
	t.Parallel()

	trip := statex.NewTripContext()
	trip.ApplyUpdate(statex.SlotPatch{StartDate: strPtr("2026-09-10")})

	patch, err := DecodeSlotPatch(map[string]any{
		"destinationCity": "Lisbon",
		"endDate":         "2026-09-01",
	})
	if err != nil {
		t.Fatalf("DecodeSlotPatch() error = %v", err)
	}

	_, _, err = Apply(trip, patch)
	if !errors.Is(err, statex.ErrInconsistentDates) {
		t.Fatalf("Apply() error = %v, want ErrInconsistentDates", err)
	}
	// The whole patch is rejected, including the valid destination.
	if trip.DestinationCity != "" {
		t.Fatalf("rejected patch must not partially apply, destination = %q", trip.DestinationCity)
	}
}

func TestApplyEmptyPatchIsNoOp(t *testing.T) {
	t.Parallel()

	trip := statex.NewTripContext()
	sig, changed, err := Apply(trip, statex.SlotPatch{})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if changed {
		t.Fatal("empty patch must not report change")
	}
	if sig != trip.Signature() {
		t.Fatalf("signature mismatch: %q vs %q", sig, trip.Signature())
	}
}

func TestDecodeItinerary(t *testing.T) {
	t.Parallel()

	days, err := DecodeItinerary(map[string]any{
		"days": []any{
			map[string]any{
				"day":     float64(1),
				"date":    "2026-09-10",
				"morning": []any{"Visit museum", "  "},
				"evening": []any{"Dinner cruise"},
			},
		},
	})
	if err != nil {
		t.Fatalf("DecodeItinerary() error = %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	if len(days[0].Morning) != 1 || days[0].Morning[0] != "Visit museum" {
		t.Fatalf("morning = %#v", days[0].Morning)
	}
	if days[0].Afternoon == nil {
		t.Fatal("segments must be normalized to non-nil")
	}
}

func TestDecodeItineraryRejectsMalformedDays(t *testing.T) {
	t.Parallel()

	if _, err := DecodeItinerary(map[string]any{}); !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("missing days: error = %v", err)
	}
	if _, err := DecodeItinerary(map[string]any{"days": "Day 1"}); !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("non-array days: error = %v", err)
	}
	_, err := DecodeItinerary(map[string]any{
		"days": []any{map[string]any{"morning": []any{42}}},
	})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("non-string activity: error = %v", err)
	}
}

func strPtr(s string) *string { return &s }
