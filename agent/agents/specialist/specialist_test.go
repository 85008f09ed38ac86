package specialist

import (
	"context"
	"errors"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/wanderplan/wanderplan/agent/contract"
	statex "github.com/wanderplan/wanderplan/agent/state"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	err       error
	idx       int
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

func emptyTrip() *statex.TripContext {
	return statex.NewTripContext()
}

func TestClassifierAllowWithMissingSlots(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"decision":"allow","category":"travel","reason":"trip planning","missingSlots":["destination","startDate"]}`},
		},
	}

	classifier, err := newClassifier(context.Background(), fake, "classifier prompt")
	if err != nil {
		t.Fatalf("newClassifier() error = %v", err)
	}

	out, err := classifier.Classify(context.Background(), contractx.ClassifierRequest{
		UserMessage: "plan me a trip",
		Trip:        emptyTrip(),
		Now:         time.Now(),
	})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if out.Decision != contractx.DecisionAllow || out.Category != contractx.CategoryTravel {
		t.Fatalf("unexpected decision: %+v", out)
	}
	if len(out.MissingSlots) != 2 {
		t.Fatalf("missing slots = %#v", out.MissingSlots)
	}
	if out.Tripwire() {
		t.Fatal("allow/travel must not trip the wire")
	}
}

func TestClassifierBlockRequiresViolationCategory(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"decision":"block","category":"travel","reason":"?"}`},
		},
	}

	classifier, err := newClassifier(context.Background(), fake, "classifier prompt")
	if err != nil {
		t.Fatalf("newClassifier() error = %v", err)
	}

	_, err = classifier.Classify(context.Background(), contractx.ClassifierRequest{
		UserMessage: "hello",
		Trip:        emptyTrip(),
	})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("Classify() error = %v, want ErrSchemaViolation", err)
	}
}

func TestClassifierBlockClearsSlotHints(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"decision":"block","category":"harmful","reason":"unsafe request","missingSlots":["destination"]}`},
		},
	}

	classifier, err := newClassifier(context.Background(), fake, "classifier prompt")
	if err != nil {
		t.Fatalf("newClassifier() error = %v", err)
	}

	out, err := classifier.Classify(context.Background(), contractx.ClassifierRequest{
		UserMessage: "do something unsafe",
		Trip:        emptyTrip(),
	})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if !out.Tripwire() {
		t.Fatal("block/harmful must trip the wire")
	}
	if len(out.MissingSlots) != 0 {
		t.Fatalf("blocked decisions must not carry slot hints: %#v", out.MissingSlots)
	}
}

func TestClassifierFailOpen(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{err: errors.New("model down")}
	classifier, err := newClassifier(context.Background(), fake, "classifier prompt")
	if err != nil {
		t.Fatalf("newClassifier() error = %v", err)
	}

	wrapped := NewFailOpen(classifier)
	out, err := wrapped.Classify(context.Background(), contractx.ClassifierRequest{
		UserMessage: "plan a trip to Lisbon",
		Trip:        emptyTrip(),
	})
	if err != nil {
		t.Fatalf("fail-open Classify() error = %v", err)
	}
	if out.Decision != contractx.DecisionAllow || out.Category != contractx.CategoryTravel {
		t.Fatalf("fail-open should allow travel, got %+v", out)
	}
	if out.Tripwire() {
		t.Fatal("fail-open decision must not block the turn")
	}
}

func TestRouterRouteSuccess(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"specialist":"itinerary","reason":"asked for a day plan"}`},
		},
	}

	router, err := newRouter(context.Background(), fake, "router prompt")
	if err != nil {
		t.Fatalf("newRouter() error = %v", err)
	}

	out, err := router.Route(context.Background(), contractx.RouteRequest{
		UserMessage: "plan my 5 days in Lisbon",
		Trip:        emptyTrip(),
		Now:         time.Now(),
	})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if out.Specialist != contractx.AgentTypeItinerary {
		t.Fatalf("specialist = %s", out.Specialist)
	}
}

func TestRouterAmbiguousNeedsQuestion(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"ambiguous":true}`},
		},
	}

	router, err := newRouter(context.Background(), fake, "router prompt")
	if err != nil {
		t.Fatalf("newRouter() error = %v", err)
	}

	_, err = router.Route(context.Background(), contractx.RouteRequest{
		UserMessage: "help",
		Trip:        emptyTrip(),
	})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("Route() error = %v, want ErrSchemaViolation", err)
	}
}

func TestRouterRejectsUnknownSpecialist(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"specialist":"classifier"}`},
		},
	}

	router, err := newRouter(context.Background(), fake, "router prompt")
	if err != nil {
		t.Fatalf("newRouter() error = %v", err)
	}

	_, err = router.Route(context.Background(), contractx.RouteRequest{
		UserMessage: "hello",
		Trip:        emptyTrip(),
	})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("Route() error = %v, want ErrSchemaViolation", err)
	}
}

func TestSpecialistFirstPassPlansTools(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{
				ToolCalls: []schema.ToolCall{
					{
						Function: schema.FunctionCall{
							Name:      "trip.capture_slots",
							Arguments: `{"destinationCity":"Lisbon"}`,
						},
					},
				},
			},
		},
	}

	spec, err := newSpecialist(context.Background(), contractx.AgentTypeItinerary, fake, "itinerary prompt")
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	resp, err := spec.Run(context.Background(), contractx.SpecialistRequest{
		UserMessage: "plan Lisbon",
		Trip:        emptyTrip(),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(resp.ToolRequests) != 1 || resp.ToolRequests[0].Tool != "trip.capture_slots" {
		t.Fatalf("tool requests = %#v", resp.ToolRequests)
	}
	if resp.ToolRequests[0].Args["destinationCity"] != "Lisbon" {
		t.Fatalf("tool args = %#v", resp.ToolRequests[0].Args)
	}
}

func TestSpecialistRejectsDisallowedTool(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{
				ToolCalls: []schema.ToolCall{
					{
						Function: schema.FunctionCall{
							Name:      "booking.confirm",
							Arguments: `{"confirmed":true}`,
						},
					},
				},
			},
		},
	}

	spec, err := newSpecialist(context.Background(), contractx.AgentTypeItinerary, fake, "itinerary prompt")
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	_, err = spec.Run(context.Background(), contractx.SpecialistRequest{
		UserMessage: "book it",
		Trip:        emptyTrip(),
	})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("Run() error = %v, want ErrSchemaViolation", err)
	}
}

func TestSpecialistFinalizesAfterToolResults(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"message":"Here is your plan.","state_updates":{"memory_update":"prefers museums"}}`},
		},
	}

	spec, err := newSpecialist(context.Background(), contractx.AgentTypeItinerary, fake, "itinerary prompt")
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	resp, err := spec.Run(context.Background(), contractx.SpecialistRequest{
		UserMessage: "plan Lisbon",
		Trip:        emptyTrip(),
		ToolResults: []contractx.ToolResult{
			{Tool: "trip.capture_slots", Result: map[string]any{"changed": true}},
		},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if resp.Message != "Here is your plan." {
		t.Fatalf("message = %q", resp.Message)
	}
	if len(resp.ToolRequests) != 0 {
		t.Fatalf("finalize pass must not request tools: %#v", resp.ToolRequests)
	}
	if resp.StateUpdates.MemoryUpdate != "prefers museums" {
		t.Fatalf("state updates = %+v", resp.StateUpdates)
	}
}

func TestSpecialistFinalizeOnlySkipsToolsAndUpdates(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"message":"Stay near Alfama.","state_updates":{"slots_patch":{"destinationCity":"Porto"}}}`},
		},
	}

	spec, err := newSpecialist(context.Background(), contractx.AgentTypeHotel, fake, "hotel prompt")
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	resp, err := spec.Run(context.Background(), contractx.SpecialistRequest{
		UserMessage:  "where should my traveler stay in Lisbon?",
		Trip:         emptyTrip(),
		FinalizeOnly: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if resp.Message != "Stay near Alfama." {
		t.Fatalf("message = %q", resp.Message)
	}
	if len(resp.StateUpdates.SlotsPatch) != 0 {
		t.Fatalf("consulted specialist must not mutate state: %+v", resp.StateUpdates)
	}
}

func TestSpecialistConfirmBookingOnlyFromBookingAgent(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"message":"Booked!","state_updates":{"confirm_booking":true}}`},
		},
	}

	spec, err := newSpecialist(context.Background(), contractx.AgentTypeItinerary, fake, "itinerary prompt")
	if err != nil {
		t.Fatalf("newSpecialist() error = %v", err)
	}

	_, err = spec.Run(context.Background(), contractx.SpecialistRequest{
		UserMessage: "book it now",
		Trip:        emptyTrip(),
		ToolResults: []contractx.ToolResult{{Tool: "trip.capture_slots"}},
	})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("Run() error = %v, want ErrSchemaViolation", err)
	}
}
