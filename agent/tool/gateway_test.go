package tool

import (
	"context"
	"strings"
	"testing"

	contractx "github.com/wanderplan/wanderplan/agent/contract"
	statex "github.com/wanderplan/wanderplan/agent/state"
)

func strPtr(s string) *string { return &s }

func readyTrip() *statex.TripContext {
	trip := statex.NewTripContext()
	trip.ApplyUpdate(statex.SlotPatch{
		DestinationCity: strPtr("Lisbon"),
		StartDate:       strPtr("2026-09-10"),
		EndDate:         strPtr("2026-09-14"),
	})
	return trip
}

func TestGatewayCaptureSlots(t *testing.T) {
	t.Parallel()

	trip := statex.NewTripContext()
	gateway := NewSessionGateway(trip, nil)

	results, err := gateway.Execute(context.Background(), contractx.AgentTypeItinerary, []contractx.ToolRequest{
		{Tool: ToolCaptureSlots, Args: map[string]any{"destinationCity": "Lisbon", "adults": float64(2)}},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(results) != 1 || results[0].Error != "" {
		t.Fatalf("unexpected results: %#v", results)
	}

	out, ok := results[0].Result.(captureSlotsOutput)
	if !ok {
		t.Fatalf("unexpected result type: %T", results[0].Result)
	}
	if !out.Changed {
		t.Fatal("expected signature change")
	}
	if trip.DestinationCity != "Lisbon" || trip.Adults != 2 {
		t.Fatalf("trip not mutated: %+v", trip)
	}
}

func TestGatewayCaptureSlotsBadArgsIsToolError(t *testing.T) {
	t.Parallel()

	trip := statex.NewTripContext()
	gateway := NewSessionGateway(trip, nil)

	results, err := gateway.Execute(context.Background(), contractx.AgentTypeItinerary, []contractx.ToolRequest{
		{Tool: ToolCaptureSlots, Args: map[string]any{"adults": "two"}},
	})
	if err != nil {
		t.Fatalf("decode failures must surface as tool errors, got %v", err)
	}
	if results[0].Error == "" {
		t.Fatal("expected error on the tool result")
	}
	if trip.Adults != 0 {
		t.Fatalf("rejected patch must not mutate the trip: %+v", trip)
	}
}

func TestGatewayConfirmBookingRequiresBookingAgent(t *testing.T) {
	t.Parallel()

	gateway := NewSessionGateway(readyTrip(), nil)
	results, err := gateway.Execute(context.Background(), contractx.AgentTypeItinerary, []contractx.ToolRequest{
		{Tool: ToolConfirmBooking, Args: map[string]any{"confirmed": true}},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if results[0].Error == "" {
		t.Fatal("non-booking agent must not confirm bookings")
	}
}

func TestGatewayConfirmBookingGatedOnPrerequisites(t *testing.T) {
	t.Parallel()

	trip := statex.NewTripContext()
	trip.ApplyUpdate(statex.SlotPatch{DestinationCity: strPtr("Lisbon")})
	gateway := NewSessionGateway(trip, nil)

	results, err := gateway.Execute(context.Background(), contractx.AgentTypeBooking, []contractx.ToolRequest{
		{Tool: ToolConfirmBooking, Args: map[string]any{"confirmed": true}},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if results[0].Error == "" || !strings.Contains(results[0].Error, "destination and dates") {
		t.Fatalf("expected prerequisite error, got %#v", results[0])
	}
	if trip.BookingConfirmed {
		t.Fatal("booking must not confirm without dates")
	}
}

func TestGatewayConfirmBookingSuccess(t *testing.T) {
	t.Parallel()

	trip := readyTrip()
	gateway := NewSessionGateway(trip, nil)

	results, err := gateway.Execute(context.Background(), contractx.AgentTypeBooking, []contractx.ToolRequest{
		{Tool: ToolConfirmBooking, Args: map[string]any{"confirmed": true}},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if results[0].Error != "" {
		t.Fatalf("unexpected tool error: %s", results[0].Error)
	}
	if !trip.BookingConfirmed {
		t.Fatal("expected booking confirmed")
	}
}

func TestGatewayConsultDepthGuard(t *testing.T) {
	t.Parallel()

	consults := 0
	gateway := NewSessionGateway(readyTrip(), func(ctx context.Context, target contractx.AgentType, question string) (string, error) {
		consults++
		return "hotels near Alfama", nil
	})

	reqs := []contractx.ToolRequest{
		{Tool: ToolConsult, Args: map[string]any{"specialist": "hotel", "question": "where to stay?"}},
		{Tool: ToolConsult, Args: map[string]any{"specialist": "flight", "question": "best arrival time?"}},
	}
	results, err := gateway.Execute(context.Background(), contractx.AgentTypeItinerary, reqs)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if consults != 1 {
		t.Fatalf("expected exactly one consult, got %d", consults)
	}
	if results[0].Error != "" {
		t.Fatalf("first consult should pass: %#v", results[0])
	}
	if results[1].Error == "" {
		t.Fatal("second consult in the same turn must be refused")
	}
}

func TestGatewayConsultRejectsSelfAndUnknown(t *testing.T) {
	t.Parallel()

	gateway := NewSessionGateway(readyTrip(), func(ctx context.Context, target contractx.AgentType, question string) (string, error) {
		t.Fatal("consult func must not run for invalid targets")
		return "", nil
	})

	results, err := gateway.Execute(context.Background(), contractx.AgentTypeHotel, []contractx.ToolRequest{
		{Tool: ToolConsult, Args: map[string]any{"specialist": "hotel", "question": "hi"}},
		{Tool: ToolConsult, Args: map[string]any{"specialist": "astrologer", "question": "hi"}},
		{Tool: ToolConsult, Args: map[string]any{"specialist": "flight"}},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for i, res := range results {
		if res.Error == "" {
			t.Fatalf("results[%d] should carry an error: %#v", i, res)
		}
	}
}

func TestGatewayUnknownToolIsResultError(t *testing.T) {
	t.Parallel()

	gateway := NewSessionGateway(readyTrip(), nil)
	results, err := gateway.Execute(context.Background(), contractx.AgentTypeLocal, []contractx.ToolRequest{
		{Tool: "weather.lookup"},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if results[0].Error == "" {
		t.Fatal("unknown tool should produce a result error")
	}
}
