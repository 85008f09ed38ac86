package routernode

import (
	"fmt"

	"github.com/rs/zerolog/log"
	capturex "github.com/wanderplan/wanderplan/agent/capture"
	contractx "github.com/wanderplan/wanderplan/agent/contract"
)

// ApplyStateUpdates pushes the specialist's structured side effects through
// the capture boundary, then sweeps the raw user text for slots the model
// missed. Fallback extraction never overwrites captured values.
//
// Malformed structured output is dropped here, never surfaced: the turn keeps
// the specialist's reply, the fallback sweep still runs, and the session still
// saves whatever the tool path captured earlier in the turn.
func ApplyStateUpdates(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil || in.Session.Trip == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	trip := in.Session.Trip

	if len(in.StateUpdates.SlotsPatch) > 0 {
		patch, err := capturex.DecodeSlotPatch(in.StateUpdates.SlotsPatch)
		if err == nil {
			_, _, err = capturex.Apply(trip, patch)
		}
		if err != nil {
			log.Warn().Err(err).Str("session_id", in.SessionID).Msg("structured slot patch dropped")
		}
	}

	if len(in.StateUpdates.Itinerary) > 0 {
		if days, err := capturex.DecodeItinerary(in.StateUpdates.Itinerary); err != nil {
			log.Warn().Err(err).Str("session_id", in.SessionID).Msg("structured itinerary dropped")
		} else {
			trip.MarkItinerary(days)
		}
	}

	if in.StateUpdates.ConfirmBooking {
		switch {
		case in.ActiveSpecialist != contractx.AgentTypeBooking:
			log.Warn().Str("session_id", in.SessionID).Str("agent", string(in.ActiveSpecialist)).Msg("booking confirmation dropped, not the booking specialist")
		case !trip.BookingPrerequisitesMet():
			log.Warn().Str("session_id", in.SessionID).Msg("booking confirmation dropped, prerequisites unmet")
		default:
			trip.ConfirmBooking(true)
		}
	}

	if fallback := capturex.Extract(in.Text); !fallback.IsZero() {
		if _, _, err := capturex.ApplyFallback(trip, fallback); err != nil {
			log.Debug().Err(err).Str("session_id", in.SessionID).Msg("fallback slot patch rejected")
		}
	}

	return in, nil
}
