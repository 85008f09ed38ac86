package contract

import (
	"time"

	statex "github.com/wanderplan/wanderplan/agent/state"
)

type AgentType string

const (
	AgentTypeClassifier  AgentType = "classifier"
	AgentTypeRouter      AgentType = "router"
	AgentTypeDestination AgentType = "destination"
	AgentTypeItinerary   AgentType = "itinerary"
	AgentTypeBooking     AgentType = "booking"
	AgentTypeFlight      AgentType = "flight"
	AgentTypeHotel       AgentType = "hotel"
	AgentTypeLocal       AgentType = "local"
	AgentTypeOptimizer   AgentType = "optimizer"
)

// SpecialistTypes lists the agent types the router may hand a turn to.
func SpecialistTypes() []AgentType {
	return []AgentType{
		AgentTypeDestination,
		AgentTypeItinerary,
		AgentTypeBooking,
		AgentTypeFlight,
		AgentTypeHotel,
		AgentTypeLocal,
		AgentTypeOptimizer,
	}
}

func IsSpecialist(t AgentType) bool {
	for _, s := range SpecialistTypes() {
		if s == t {
			return true
		}
	}
	return false
}

type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionWarn  Decision = "warn"
	DecisionBlock Decision = "block"
)

type Category string

const (
	CategoryTravel     Category = "travel"
	CategoryNonTravel  Category = "non_travel"
	CategoryCompetitor Category = "competitor"
	CategoryHarmful    Category = "harmful"
	CategoryInjection  Category = "injection"
	CategoryIllicit    Category = "illicit"
	CategoryExplicit   Category = "explicit"
)

// ViolationCategories are the only categories that may accompany a block.
func ViolationCategories() map[Category]bool {
	return map[Category]bool{
		CategoryHarmful:   true,
		CategoryInjection: true,
		CategoryIllicit:   true,
		CategoryExplicit:  true,
	}
}

// SafetyDecision is the classifier output every downstream component depends
// on. Field names are part of the wire contract; do not rename.
type SafetyDecision struct {
	Decision     Decision `json:"decision"`
	Category     Category `json:"category"`
	Reason       string   `json:"reason"`
	MissingSlots []string `json:"missingSlots,omitempty"`
	Suggestion   string   `json:"suggestion,omitempty"`
}

// Tripwire reports whether the turn must stop before any specialist runs.
func (d SafetyDecision) Tripwire() bool {
	return d.Decision == DecisionBlock || ViolationCategories()[d.Category]
}

type ClassifierRequest struct {
	UserMessage   string              `json:"user_message"`
	MemorySummary string              `json:"memory_summary"`
	Trip          *statex.TripContext `json:"trip"`
	Now           time.Time           `json:"now"`
}

type RouteRequest struct {
	UserMessage   string              `json:"user_message"`
	MemorySummary string              `json:"memory_summary"`
	Trip          *statex.TripContext `json:"trip"`
	MissingSlots  []string            `json:"missing_slots,omitempty"`
	Now           time.Time           `json:"now"`
}

// RouteDecision selects exactly one specialist for the turn. When the intent
// is genuinely ambiguous the router asks ClarifyingQuestion instead, at most
// once per exchange.
type RouteDecision struct {
	Specialist         AgentType `json:"specialist"`
	Ambiguous          bool      `json:"ambiguous,omitempty"`
	ClarifyingQuestion string    `json:"clarifying_question,omitempty"`
	Reason             string    `json:"reason,omitempty"`
}

type SpecialistRequest struct {
	UserMessage   string              `json:"user_message"`
	MemorySummary string              `json:"memory_summary"`
	Trip          *statex.TripContext `json:"trip"`
	MissingSlots  []string            `json:"missing_slots,omitempty"`
	ToolResults   []ToolResult        `json:"tool_results,omitempty"`

	// FinalizeOnly skips the tool-planning pass. Set for delegated consults
	// so a specialist called as a tool can never call tools itself.
	FinalizeOnly bool `json:"finalize_only,omitempty"`
}

type SpecialistResponse struct {
	Message      string        `json:"message"`
	ToolRequests []ToolRequest `json:"tool_requests,omitempty"`
	StateUpdates StateUpdates  `json:"state_updates,omitempty"`
}

// StateUpdates carries the structured side effects of a specialist turn.
// SlotsPatch and Itinerary are raw model output and must pass the capture
// boundary before they reach the trip context.
type StateUpdates struct {
	SlotsPatch     map[string]any `json:"slots_patch,omitempty"`
	Itinerary      map[string]any `json:"itinerary,omitempty"`
	ConfirmBooking bool           `json:"confirm_booking,omitempty"`
	MemoryUpdate   string         `json:"memory_update,omitempty"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// TurnEvent is published after a turn has been persisted.
type TurnEvent struct {
	SessionID  string    `json:"session_id"`
	Specialist AgentType `json:"specialist,omitempty"`
	Blocked    bool      `json:"blocked"`
	At         time.Time `json:"at"`
}
