package routernode

import (
	"context"
	"fmt"

	contractx "github.com/wanderplan/wanderplan/agent/contract"
)

func WriteMemory(
	ctx context.Context,
	in *GraphState,
	memory contractx.MemoryStore,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	if err := memory.WriteSummary(ctx, in.Session.TravelerID, in.StateUpdates.MemoryUpdate); err != nil {
		return nil, err
	}
	return in, nil
}
