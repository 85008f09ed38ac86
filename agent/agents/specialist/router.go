package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	contractx "github.com/wanderplan/wanderplan/agent/contract"
)

type routerImpl struct {
	runner compose.Runnable[map[string]any, routerLLMOutput]
}

type routerLLMOutput struct {
	Specialist         string `json:"specialist,omitempty"`
	Ambiguous          bool   `json:"ambiguous,omitempty"`
	ClarifyingQuestion string `json:"clarifying_question,omitempty"`
	Reason             string `json:"reason,omitempty"`
}

func newRouter(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*routerImpl, error) {
	runner, err := compileRouterGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile router graph: %v", contractx.ErrModelInvoke, err)
	}
	return &routerImpl{runner: runner}, nil
}

func (r *routerImpl) Route(ctx context.Context, req contractx.RouteRequest) (contractx.RouteDecision, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return contractx.RouteDecision{}, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"user_message":   req.UserMessage,
		"memory_summary": req.MemorySummary,
		"trip":           summarizeTrip(req.Trip),
		"missing_slots":  req.MissingSlots,
		"now":            req.Now.Format(time.RFC3339),
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.RouteDecision{}, fmt.Errorf("%w: marshal router payload: %v", contractx.ErrValidation, err)
	}

	out, err := r.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.RouteDecision{}, fmt.Errorf("%w: router invoke: %v", contractx.ErrModelInvoke, err)
	}

	decision := contractx.RouteDecision{
		Specialist:         contractx.AgentType(strings.ToLower(strings.TrimSpace(out.Specialist))),
		Ambiguous:          out.Ambiguous,
		ClarifyingQuestion: strings.TrimSpace(out.ClarifyingQuestion),
		Reason:             strings.TrimSpace(out.Reason),
	}

	if err := validateRouteDecision(decision); err != nil {
		return contractx.RouteDecision{}, err
	}
	return decision, nil
}

func validateRouteDecision(d contractx.RouteDecision) error {
	if d.Ambiguous {
		if d.ClarifyingQuestion == "" {
			return fmt.Errorf("%w: ambiguous route must include clarifying_question", contractx.ErrSchemaViolation)
		}
		return nil
	}
	if !contractx.IsSpecialist(d.Specialist) {
		return fmt.Errorf("%w: unsupported specialist=%q", contractx.ErrSchemaViolation, d.Specialist)
	}
	return nil
}
