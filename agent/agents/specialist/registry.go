package specialist

import (
	"context"
	"fmt"

	contractx "github.com/wanderplan/wanderplan/agent/contract"
	llmx "github.com/wanderplan/wanderplan/agent/llm"
	promptx "github.com/wanderplan/wanderplan/agent/prompt"
)

type registryImpl struct {
	classifier  contractx.Classifier
	router      contractx.IntentRouter
	specialists map[contractx.AgentType]contractx.Specialist
}

func (r *registryImpl) Classifier() contractx.Classifier {
	return r.classifier
}

func (r *registryImpl) Router() contractx.IntentRouter {
	return r.router
}

func (r *registryImpl) Specialist(t contractx.AgentType) (contractx.Specialist, bool) {
	s, ok := r.specialists[t]
	return s, ok
}

func NewRegistry(ctx context.Context, cfg llmx.Config) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	classifierModelCfg := cfg.OpenRouterFor(contractx.AgentTypeClassifier)
	classifierModel, err := classifierModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create classifier model: %v", contractx.ErrModelInvoke, err)
	}
	routerModelCfg := cfg.OpenRouterFor(contractx.AgentTypeRouter)
	routerModel, err := routerModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create router model: %v", contractx.ErrModelInvoke, err)
	}

	classifier, err := newClassifier(ctx, classifierModel, prompts.Classifier)
	if err != nil {
		return nil, err
	}
	router, err := newRouter(ctx, routerModel, prompts.Router)
	if err != nil {
		return nil, err
	}

	specialists := make(map[contractx.AgentType]contractx.Specialist, len(contractx.SpecialistTypes()))
	for _, agentType := range contractx.SpecialistTypes() {
		systemPrompt, ok := prompts.Specialist(agentType)
		if !ok {
			return nil, fmt.Errorf("%w: no prompt for specialist=%s", contractx.ErrPromptMissing, agentType)
		}

		modelCfg := cfg.OpenRouterFor(agentType)
		chatModel, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create model for specialist=%s: %v", contractx.ErrModelInvoke, agentType, err)
		}

		spec, err := newSpecialist(ctx, agentType, chatModel, systemPrompt)
		if err != nil {
			return nil, err
		}
		specialists[agentType] = spec
	}

	return &registryImpl{
		classifier:  NewFailOpen(classifier),
		router:      router,
		specialists: specialists,
	}, nil
}
