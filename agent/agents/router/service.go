package router

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/wanderplan/wanderplan/agent/contract"
	nodex "github.com/wanderplan/wanderplan/agent/nodes"
	statex "github.com/wanderplan/wanderplan/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
	ErrNoSpecialist   = nodex.ErrNoSpecialist
)

type Config struct {
	TravelerID  string
	ChannelType string
}

// Router owns one conversation turn end to end: safety gate, intent routing,
// specialist dispatch, state capture, persistence.
type Router struct {
	store  statex.Store
	models contractx.Registry
	memory contractx.MemoryStore
	events contractx.EventPublisher

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	travelerID  string
	channelType string

	now func() time.Time
}

func New(
	store statex.Store,
	models contractx.Registry,
	memory contractx.MemoryStore,
	events contractx.EventPublisher,
	cfg Config,
) (*Router, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if memory == nil {
		memory = noopMemoryStore{}
	}

	travelerID := strings.TrimSpace(cfg.TravelerID)
	if travelerID == "" {
		travelerID = "default-traveler"
	}
	channelType := strings.TrimSpace(cfg.ChannelType)
	if channelType == "" {
		channelType = "chat"
	}

	r := &Router{
		store:       store,
		models:      models,
		memory:      memory,
		events:      events,
		travelerID:  travelerID,
		channelType: channelType,
		now:         time.Now,
	}

	graphRunner, err := r.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	r.graphRunner = graphRunner

	return r, nil
}

func (r *Router) HandleMessage(ctx context.Context, sessionID string, text string) (string, error) {
	out, err := r.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return "", err
	}

	r.publishTurn(ctx, sessionID, out)
	return out.Reply, nil
}

// publishTurn is best-effort. A broker outage must not fail a turn that is
// already persisted.
func (r *Router) publishTurn(ctx context.Context, sessionID string, out nodex.GraphOutput) {
	if r.events == nil {
		return
	}
	event := contractx.TurnEvent{
		SessionID:  sessionID,
		Specialist: out.Specialist,
		Blocked:    out.Blocked,
		At:         r.now().UTC(),
	}
	if err := r.events.PublishTurn(ctx, event); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("publish turn event failed")
	}
}

type noopMemoryStore struct{}

func (noopMemoryStore) ReadSummary(context.Context, string) (string, error) {
	return "", nil
}

func (noopMemoryStore) WriteSummary(context.Context, string, string) error {
	return nil
}
