package routernode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/wanderplan/wanderplan/agent/contract"
	statex "github.com/wanderplan/wanderplan/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
	ErrNoSpecialist   = errors.New("no specialist selected")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply      string
	Specialist contractx.AgentType
	Blocked    bool
}

type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session       *statex.TripSession
	MemorySummary string
	Safety        contractx.SafetyDecision
	Route         contractx.RouteDecision

	ActiveSpecialist contractx.AgentType
	Blocked          bool

	Reply        string
	StateUpdates contractx.StateUpdates
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}
