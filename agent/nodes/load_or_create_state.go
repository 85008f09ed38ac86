package routernode

import (
	"context"
	"errors"
	"fmt"
	"time"

	contractx "github.com/wanderplan/wanderplan/agent/contract"
	statex "github.com/wanderplan/wanderplan/agent/state"
)

func LoadOrCreateState(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	travelerID string,
	channelType string,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := loadOrCreateState(ctx, store, in.SessionID, travelerID, channelType, in.Now)
	if err != nil {
		return nil, err
	}
	in.Session = st
	return in, nil
}

func loadOrCreateState(
	ctx context.Context,
	store statex.Store,
	sessionID string,
	travelerID string,
	channelType string,
	now time.Time,
) (*statex.TripSession, error) {
	st, err := store.Load(ctx, sessionID)
	if err == nil {
		st.EnsureTrip()
		return st, nil
	}
	if !errors.Is(err, statex.ErrStateNotFound) {
		return nil, err
	}

	return statex.NewTripSession(sessionID, travelerID, channelType, now), nil
}
