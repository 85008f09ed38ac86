package routernode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/wanderplan/wanderplan/agent/contract"
	toolx "github.com/wanderplan/wanderplan/agent/tool"
)

// DispatchSpecialist runs the selected specialist with a fresh per-turn tool
// gateway. Tool requests get exactly one execution round; the follow-up run
// must finalize with text.
func DispatchSpecialist(
	ctx context.Context,
	in *GraphState,
	models contractx.Registry,
) (*GraphState, error) {
	if in == nil || in.Session == nil || in.Session.Trip == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if !contractx.IsSpecialist(in.ActiveSpecialist) {
		return nil, ErrNoSpecialist
	}

	specialist, ok := models.Specialist(in.ActiveSpecialist)
	if !ok {
		return nil, fmt.Errorf("%w: no specialist registered for %s", contractx.ErrValidation, in.ActiveSpecialist)
	}

	trip := in.Session.Trip
	gateway := toolx.NewSessionGateway(trip, consultFunc(in, models))

	req := contractx.SpecialistRequest{
		UserMessage:   in.Text,
		MemorySummary: in.MemorySummary,
		Trip:          trip,
		MissingSlots:  trip.MissingCriticalSlots(),
	}

	resp, err := specialist.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(resp.ToolRequests) > 0 {
		results, err := gateway.Execute(ctx, in.ActiveSpecialist, resp.ToolRequests)
		if err != nil {
			return nil, err
		}

		req.MissingSlots = trip.MissingCriticalSlots()
		req.ToolResults = results
		resp, err = specialist.Run(ctx, req)
		if err != nil {
			return nil, err
		}
		if len(resp.ToolRequests) > 0 {
			return nil, fmt.Errorf("%w: specialist requested tools after its tool round", contractx.ErrSchemaViolation)
		}
	}

	in.Reply = strings.TrimSpace(resp.Message)
	in.StateUpdates = resp.StateUpdates
	return in, nil
}

// consultFunc lets one specialist ask another a question as a tool call. The
// consulted agent runs finalize-only, so it cannot call tools or mutate the
// trip, and the gateway caps the turn at a single consult.
func consultFunc(in *GraphState, models contractx.Registry) toolx.ConsultFunc {
	return func(ctx context.Context, target contractx.AgentType, question string) (string, error) {
		specialist, ok := models.Specialist(target)
		if !ok {
			return "", fmt.Errorf("%w: no specialist registered for %s", contractx.ErrValidation, target)
		}

		resp, err := specialist.Run(ctx, contractx.SpecialistRequest{
			UserMessage:   question,
			MemorySummary: in.MemorySummary,
			Trip:          in.Session.Trip,
			FinalizeOnly:  true,
		})
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(resp.Message), nil
	}
}
