package tool

import (
	"github.com/cloudwego/eino/schema"
	contractx "github.com/wanderplan/wanderplan/agent/contract"
)

const (
	ToolCaptureSlots     = "trip.capture_slots"
	ToolCaptureItinerary = "trip.capture_itinerary"
	ToolConfirmBooking   = "booking.confirm"
	ToolConsult          = "agent.consult"
)

func captureSlotsInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolCaptureSlots,
		Desc: "Persist trip details extracted from the user's message. Call before answering whenever the message mentions origin, destination, dates, travelers, or budget.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"originCity":      {Type: schema.String, Desc: "Departure city"},
			"destinationCity": {Type: schema.String, Desc: "Destination city"},
			"startDate":       {Type: schema.String, Desc: "Trip start date, YYYY-MM-DD"},
			"endDate":         {Type: schema.String, Desc: "Trip end date, YYYY-MM-DD"},
			"adults":          {Type: schema.Integer, Desc: "Number of adult travelers"},
			"budgetAmount":    {Type: schema.Number, Desc: "Total budget amount"},
			"currency":        {Type: schema.String, Desc: "ISO currency code for the budget"},
		}),
	}
}

func captureItineraryInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolCaptureItinerary,
		Desc: "Persist a finalized day-by-day itinerary. Call whenever you present a day-wise plan, never leave a plan only in prose.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"days": {
				Type:     schema.Array,
				Desc:     "Ordered day records with morning/afternoon/evening activity lists",
				Required: true,
				ElemInfo: &schema.ParameterInfo{Type: schema.Object},
			},
		}),
	}
}

func confirmBookingInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolConfirmBooking,
		Desc: "Record the user's explicit booking confirmation. Only call after the user clearly confirmed.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"confirmed": {Type: schema.Boolean, Desc: "True only for an explicit user confirmation", Required: true},
		}),
	}
}

func consultInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolConsult,
		Desc: "Ask another specialist a focused question and use its answer before finalizing your own. The user never sees this exchange.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"specialist": {Type: schema.String, Desc: "Target specialist: destination, itinerary, booking, flight, hotel, local, or optimizer", Required: true},
			"question":   {Type: schema.String, Desc: "The question to delegate", Required: true},
		}),
	}
}

// InfosForAgent returns the tool surface a specialist is allowed to call.
// Every specialist carries the slot capturer; the itinerary-producing ones
// additionally carry the itinerary capturer, and only the booking specialist
// may record a confirmation.
func InfosForAgent(agentType contractx.AgentType) []*schema.ToolInfo {
	switch agentType {
	case contractx.AgentTypeItinerary, contractx.AgentTypeOptimizer:
		return []*schema.ToolInfo{
			captureSlotsInfo(),
			captureItineraryInfo(),
			consultInfo(),
		}
	case contractx.AgentTypeBooking:
		return []*schema.ToolInfo{
			captureSlotsInfo(),
			confirmBookingInfo(),
			consultInfo(),
		}
	case contractx.AgentTypeDestination,
		contractx.AgentTypeFlight,
		contractx.AgentTypeHotel,
		contractx.AgentTypeLocal:
		return []*schema.ToolInfo{
			captureSlotsInfo(),
			consultInfo(),
		}
	default:
		return nil
	}
}
