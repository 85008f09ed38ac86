package tool

import (
	"context"
	"fmt"
	"strings"

	capturex "github.com/wanderplan/wanderplan/agent/capture"
	contractx "github.com/wanderplan/wanderplan/agent/contract"
	statex "github.com/wanderplan/wanderplan/agent/state"
)

// ConsultFunc runs a delegated question against another specialist and
// returns its answer. The gateway enforces the depth guard; the function
// itself must not allow further delegation.
type ConsultFunc func(ctx context.Context, target contractx.AgentType, question string) (string, error)

const maxConsultsPerTurn = 1

// SessionGateway executes tool requests against one session's trip context.
// It is created per turn; the trip is mutated in place, which is safe because
// a session processes one turn at a time.
type SessionGateway struct {
	trip         *statex.TripContext
	consult      ConsultFunc
	consultsUsed int
}

func NewSessionGateway(trip *statex.TripContext, consult ConsultFunc) *SessionGateway {
	return &SessionGateway{
		trip:    trip,
		consult: consult,
	}
}

func (g *SessionGateway) Execute(
	ctx context.Context,
	agentType contractx.AgentType,
	reqs []contractx.ToolRequest,
) ([]contractx.ToolResult, error) {
	if g == nil || g.trip == nil {
		return nil, fmt.Errorf("%w: gateway has no trip context", contractx.ErrValidation)
	}

	results := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		switch req.Tool {
		case ToolCaptureSlots:
			results = append(results, g.executeCaptureSlots(req))
		case ToolCaptureItinerary:
			results = append(results, g.executeCaptureItinerary(req))
		case ToolConfirmBooking:
			results = append(results, g.executeConfirmBooking(agentType, req))
		case ToolConsult:
			result, err := g.executeConsult(ctx, agentType, req)
			if err != nil {
				return nil, err
			}
			results = append(results, result)
		default:
			results = append(results, contractx.ToolResult{
				Tool:  req.Tool,
				Error: fmt.Sprintf("tool=%s is unavailable for agent=%s", req.Tool, agentType),
			})
		}
	}
	return results, nil
}

type captureSlotsOutput struct {
	Signature    string   `json:"signature"`
	Changed      bool     `json:"changed"`
	MissingSlots []string `json:"missing_slots,omitempty"`
	Stale        bool     `json:"itinerary_stale,omitempty"`
}

func (g *SessionGateway) executeCaptureSlots(req contractx.ToolRequest) contractx.ToolResult {
	patch, err := capturex.DecodeSlotPatch(req.Args)
	if err != nil {
		return contractx.ToolResult{Tool: req.Tool, Error: err.Error()}
	}

	sig, changed, err := capturex.Apply(g.trip, patch)
	if err != nil {
		return contractx.ToolResult{Tool: req.Tool, Error: err.Error()}
	}

	return contractx.ToolResult{
		Tool: req.Tool,
		Result: captureSlotsOutput{
			Signature:    sig,
			Changed:      changed,
			MissingSlots: g.trip.MissingCriticalSlots(),
			Stale:        g.trip.ItineraryStatus == statex.ItineraryStale,
		},
	}
}

type captureItineraryOutput struct {
	Days   int                    `json:"days"`
	Status statex.ItineraryStatus `json:"status"`
}

func (g *SessionGateway) executeCaptureItinerary(req contractx.ToolRequest) contractx.ToolResult {
	days, err := capturex.DecodeItinerary(req.Args)
	if err != nil {
		return contractx.ToolResult{Tool: req.Tool, Error: err.Error()}
	}

	g.trip.MarkItinerary(days)
	return contractx.ToolResult{
		Tool: req.Tool,
		Result: captureItineraryOutput{
			Days:   len(g.trip.Itinerary),
			Status: g.trip.ItineraryStatus,
		},
	}
}

func (g *SessionGateway) executeConfirmBooking(agentType contractx.AgentType, req contractx.ToolRequest) contractx.ToolResult {
	if agentType != contractx.AgentTypeBooking {
		return contractx.ToolResult{
			Tool:  req.Tool,
			Error: fmt.Sprintf("booking confirmation is not available to agent=%s", agentType),
		}
	}

	confirmed, ok := req.Args["confirmed"].(bool)
	if !ok {
		return contractx.ToolResult{Tool: req.Tool, Error: "confirmed must be a boolean"}
	}
	if !confirmed {
		return contractx.ToolResult{Tool: req.Tool, Result: map[string]any{"confirmed": false}}
	}

	if !g.trip.BookingPrerequisitesMet() {
		return contractx.ToolResult{
			Tool:  req.Tool,
			Error: fmt.Sprintf("booking needs destination and dates first; missing: %s", strings.Join(g.trip.MissingCriticalSlots(), ", ")),
		}
	}

	g.trip.ConfirmBooking(true)
	return contractx.ToolResult{Tool: req.Tool, Result: map[string]any{"confirmed": true}}
}

func (g *SessionGateway) executeConsult(
	ctx context.Context,
	caller contractx.AgentType,
	req contractx.ToolRequest,
) (contractx.ToolResult, error) {
	if g.consult == nil {
		return contractx.ToolResult{Tool: req.Tool, Error: "delegation is not available"}, nil
	}
	if g.consultsUsed >= maxConsultsPerTurn {
		return contractx.ToolResult{Tool: req.Tool, Error: "only one delegated consult is allowed per turn"}, nil
	}

	rawTarget, _ := req.Args["specialist"].(string)
	target := contractx.AgentType(strings.ToLower(strings.TrimSpace(rawTarget)))
	if !contractx.IsSpecialist(target) {
		return contractx.ToolResult{Tool: req.Tool, Error: fmt.Sprintf("unknown specialist %q", rawTarget)}, nil
	}
	if target == caller {
		return contractx.ToolResult{Tool: req.Tool, Error: "a specialist cannot consult itself"}, nil
	}

	question, _ := req.Args["question"].(string)
	if strings.TrimSpace(question) == "" {
		return contractx.ToolResult{Tool: req.Tool, Error: "question is required"}, nil
	}

	g.consultsUsed++
	answer, err := g.consult(ctx, target, question)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("consult %s: %w", target, err)
	}
	return contractx.ToolResult{Tool: req.Tool, Result: map[string]any{"answer": answer}}, nil
}
