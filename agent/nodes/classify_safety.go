package routernode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/wanderplan/wanderplan/agent/contract"
)

const defaultBlockedReply = "I can't help with that. I'm happy to keep planning your trip, though."

// ClassifySafety gates every turn. A tripwire decision produces the final
// reply here; the graph skips routing and dispatch entirely.
func ClassifySafety(
	ctx context.Context,
	in *GraphState,
	classifier contractx.Classifier,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	decision, err := classifier.Classify(ctx, contractx.ClassifierRequest{
		UserMessage:   in.Text,
		MemorySummary: in.MemorySummary,
		Trip:          in.Session.Trip,
		Now:           in.Now,
	})
	if err != nil {
		return nil, err
	}

	in.Safety = decision
	if decision.Tripwire() {
		in.Blocked = true
		in.Reply = blockedReply(decision)
	}
	return in, nil
}

func blockedReply(d contractx.SafetyDecision) string {
	if s := strings.TrimSpace(d.Suggestion); s != "" {
		return s
	}
	return defaultBlockedReply
}
