package routernode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/wanderplan/wanderplan/agent/contract"
)

const defaultRedirectReply = "I'm a trip-planning assistant, so that's outside what I can help with. Where are you thinking of traveling?"

// RouteIntent picks the specialist for the turn. Warned off-topic turns are
// redirected without dispatch. Ambiguous intent asks one clarifying question
// at most; if the previous turn already asked, the router's answer is taken
// as-is and a default specialist handles it.
func RouteIntent(
	ctx context.Context,
	in *GraphState,
	router contractx.IntentRouter,
) (*GraphState, error) {
	if in == nil || in.Session == nil || in.Session.Trip == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	if in.Safety.Decision == contractx.DecisionWarn &&
		(in.Safety.Category == contractx.CategoryNonTravel || in.Safety.Category == contractx.CategoryCompetitor) {
		in.Reply = redirectReply(in.Safety)
		return in, nil
	}

	decision, err := router.Route(ctx, contractx.RouteRequest{
		UserMessage:   in.Text,
		MemorySummary: in.MemorySummary,
		Trip:          in.Session.Trip,
		MissingSlots:  in.Session.Trip.MissingCriticalSlots(),
		Now:           in.Now,
	})
	if err != nil {
		return nil, err
	}
	in.Route = decision

	if decision.Ambiguous {
		if !in.Session.PendingClarification {
			in.Session.PendingClarification = true
			in.Reply = decision.ClarifyingQuestion
			return in, nil
		}
		// Already asked once this exchange. Stop stalling and take the
		// broadest specialist.
		in.Session.PendingClarification = false
		in.ActiveSpecialist = contractx.AgentTypeDestination
		return in, nil
	}

	in.Session.PendingClarification = false
	in.ActiveSpecialist = decision.Specialist
	return in, nil
}

func redirectReply(d contractx.SafetyDecision) string {
	if s := strings.TrimSpace(d.Suggestion); s != "" {
		return s
	}
	return defaultRedirectReply
}
