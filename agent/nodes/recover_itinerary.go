package routernode

import (
	"fmt"

	contractx "github.com/wanderplan/wanderplan/agent/contract"
	recoveryx "github.com/wanderplan/wanderplan/agent/recovery"
	statex "github.com/wanderplan/wanderplan/agent/state"
)

// RecoverItinerary captures an itinerary the specialist wrote into its reply
// without calling the capture tool. It only fires when the text is clearly
// itinerary-shaped and the trip does not already hold a fresh itinerary.
func RecoverItinerary(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil || in.Session.Trip == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	trip := in.Session.Trip

	if trip.ItineraryStatus == statex.ItineraryFresh {
		return in, nil
	}
	if !recoveryx.LooksLikeItinerary(in.Reply) {
		return in, nil
	}

	days := recoveryx.Parse(in.Reply)
	if len(days) == 0 {
		return in, nil
	}
	trip.MarkItinerary(days)
	return in, nil
}
