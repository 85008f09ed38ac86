package recovery

import (
	"reflect"
	"testing"
)

const sampleItinerary = `Here's a plan for your stay:

Day 1 (2026-09-10):
Morning: Visit museum
- Walk the old town
Afternoon: Beach time
Evening: Dinner cruise

Day 2:
Morning:
- Day trip to the valley
Evening: Rooftop bar`

func TestLooksLikeItinerary(t *testing.T) {
	t.Parallel()

	if !LooksLikeItinerary(sampleItinerary) {
		t.Fatal("sample should look like an itinerary")
	}
	if !LooksLikeItinerary("Day 1: Morning: Visit museum") {
		t.Fatal("inline segment on the day header should count")
	}
	if LooksLikeItinerary("Have a great day! Morning flights are cheaper.") {
		t.Fatal("prose mentioning day and morning is not an itinerary")
	}
	if LooksLikeItinerary("A day trip to Sintra is lovely in spring.") {
		t.Fatal("day trip prose is not an itinerary")
	}
	if LooksLikeItinerary("") {
		t.Fatal("empty text is not an itinerary")
	}
}

func TestParseSample(t *testing.T) {
	t.Parallel()

	days := Parse(sampleItinerary)
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d: %#v", len(days), days)
	}

	first := days[0]
	if first.Day != 1 || first.Date != "2026-09-10" {
		t.Fatalf("day 1 header = %+v", first)
	}
	wantMorning := []string{"Visit museum", "Walk the old town"}
	if !reflect.DeepEqual(first.Morning, wantMorning) {
		t.Fatalf("day 1 morning = %#v", first.Morning)
	}
	if len(first.Afternoon) != 1 || first.Afternoon[0] != "Beach time" {
		t.Fatalf("day 1 afternoon = %#v", first.Afternoon)
	}

	second := days[1]
	if second.Day != 2 || second.Date != "" {
		t.Fatalf("day 2 header = %+v", second)
	}
	if len(second.Morning) != 1 || second.Morning[0] != "Day trip to the valley" {
		t.Fatalf("day 2 morning = %#v", second.Morning)
	}
	if len(second.Afternoon) != 0 {
		t.Fatalf("day 2 afternoon should be empty, got %#v", second.Afternoon)
	}
	if len(second.Evening) != 1 || second.Evening[0] != "Rooftop bar" {
		t.Fatalf("day 2 evening = %#v", second.Evening)
	}
}

func TestParseInlineHeaderSegment(t *testing.T) {
	t.Parallel()

	days := Parse("Day 1: Morning: Visit museum")
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	if len(days[0].Morning) != 1 || days[0].Morning[0] != "Visit museum" {
		t.Fatalf("morning = %#v", days[0].Morning)
	}
}

func TestParseDiscardsEmptyDays(t *testing.T) {
	t.Parallel()

	days := Parse("Day 1:\nDay 2:\nDay 3: Evening: Dinner")
	if len(days) != 1 {
		t.Fatalf("headers without activities must be discarded, got %#v", days)
	}
	if days[0].Day != 3 {
		t.Fatalf("surviving day = %+v", days[0])
	}
}

func TestParseDropsAmbiguousDates(t *testing.T) {
	t.Parallel()

	days := Parse("Day 1 (next Tuesday): Morning: Market visit")
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	if days[0].Date != "" {
		t.Fatalf("ambiguous date must be dropped, got %q", days[0].Date)
	}
}

func TestParseIdempotent(t *testing.T) {
	t.Parallel()

	first := Parse(sampleItinerary)
	second := Parse(sampleItinerary)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("parsing twice diverged:\n%#v\n%#v", first, second)
	}
}

func TestParseIgnoresTextOutsideSegments(t *testing.T) {
	t.Parallel()

	days := Parse("Some intro prose.\n- a stray bullet\nDay 1:\nstray line\nMorning: Museum")
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %#v", days)
	}
	if len(days[0].Morning) != 1 {
		t.Fatalf("morning = %#v", days[0].Morning)
	}
}
