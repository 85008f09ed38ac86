package state

import (
	"errors"
	"fmt"
	"time"
)

// TripSession is the persistent aggregate for one conversation. It owns the
// TripContext for the session's lifetime; nothing is ever reconstructed from
// transcript replay mid-session, only on (re)load from the store.
type TripSession struct {
	// Identity
	SessionID   string `json:"session_id"`
	TravelerID  string `json:"traveler_id"`
	ChannelType string `json:"channel_type"`

	Trip *TripContext `json:"trip"`

	// PendingClarification records that the previous turn already spent the
	// single allowed clarifying question, so the next ambiguous turn routes a
	// best guess instead of asking again.
	PendingClarification bool `json:"pending_clarification,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

var ErrNilTrip = errors.New("session has no trip context")

func NewTripSession(sessionID, travelerID, channelType string, now time.Time) *TripSession {
	return &TripSession{
		SessionID:   sessionID,
		TravelerID:  travelerID,
		ChannelType: channelType,
		Trip:        NewTripContext(),
		UpdatedAt:   now.UTC(),
	}
}

func (s *TripSession) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// EnsureTrip makes sure s.Trip is initialized, for sessions deserialized from
// older payloads.
func (s *TripSession) EnsureTrip() {
	if s.Trip == nil {
		s.Trip = NewTripContext()
	}
	if s.Trip.ItineraryStatus == "" {
		s.Trip.ItineraryStatus = ItineraryAbsent
	}
	for i := range s.Trip.Itinerary {
		s.Trip.Itinerary[i].Normalize()
	}
}

func (s *TripSession) Validate() error {
	if s == nil {
		return errors.New("nil session")
	}
	if s.Trip == nil {
		return ErrNilTrip
	}
	if err := s.Trip.Validate(); err != nil {
		return fmt.Errorf("trip context: %w", err)
	}
	return nil
}
