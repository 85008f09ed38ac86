package contract

import "context"

type Classifier interface {
	Classify(ctx context.Context, req ClassifierRequest) (SafetyDecision, error)
}

type IntentRouter interface {
	Route(ctx context.Context, req RouteRequest) (RouteDecision, error)
}

type Specialist interface {
	Run(ctx context.Context, req SpecialistRequest) (SpecialistResponse, error)
}

type Registry interface {
	Classifier() Classifier
	Router() IntentRouter
	Specialist(t AgentType) (Specialist, bool)
}

type ToolGateway interface {
	Execute(ctx context.Context, agentType AgentType, reqs []ToolRequest) ([]ToolResult, error)
}

type MemoryStore interface {
	ReadSummary(ctx context.Context, travelerID string) (string, error)
	WriteSummary(ctx context.Context, travelerID string, update string) error
}

type EventPublisher interface {
	PublishTurn(ctx context.Context, event TurnEvent) error
}
