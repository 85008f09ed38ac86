package prompt

import (
	_ "embed"
	"strings"

	contractx "github.com/wanderplan/wanderplan/agent/contract"
)

var (
	//go:embed template/classifier.txt
	classifierRaw string

	//go:embed template/router.txt
	routerRaw string

	//go:embed template/destination.txt
	destinationRaw string

	//go:embed template/itinerary.txt
	itineraryRaw string

	//go:embed template/booking.txt
	bookingRaw string

	//go:embed template/flight.txt
	flightRaw string

	//go:embed template/hotel.txt
	hotelRaw string

	//go:embed template/local.txt
	localRaw string

	//go:embed template/optimizer.txt
	optimizerRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Classifier string
	Router     string

	specialists map[contractx.AgentType]string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming
// is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Classifier: strings.TrimSpace(classifierRaw),
		Router:     strings.TrimSpace(routerRaw),
		specialists: map[contractx.AgentType]string{
			contractx.AgentTypeDestination: strings.TrimSpace(destinationRaw),
			contractx.AgentTypeItinerary:   strings.TrimSpace(itineraryRaw),
			contractx.AgentTypeBooking:     strings.TrimSpace(bookingRaw),
			contractx.AgentTypeFlight:      strings.TrimSpace(flightRaw),
			contractx.AgentTypeHotel:       strings.TrimSpace(hotelRaw),
			contractx.AgentTypeLocal:       strings.TrimSpace(localRaw),
			contractx.AgentTypeOptimizer:   strings.TrimSpace(optimizerRaw),
		},
	}
}

// Specialist returns the prompt for a specialist agent type.
func (p PromptSet) Specialist(t contractx.AgentType) (string, bool) {
	text, ok := p.specialists[t]
	return text, ok && text != ""
}
