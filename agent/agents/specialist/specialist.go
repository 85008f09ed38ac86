package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/wanderplan/wanderplan/agent/contract"
	statex "github.com/wanderplan/wanderplan/agent/state"
	toolx "github.com/wanderplan/wanderplan/agent/tool"
)

type specialistImpl struct {
	agentType        contractx.AgentType
	structuredRunner compose.Runnable[map[string]any, specialistLLMOutput]
	toolRunner       compose.Runnable[map[string]any, *schema.Message]
	runtimeRunner    compose.Runnable[contractx.SpecialistRequest, contractx.SpecialistResponse]
	allowedTools     map[string]struct{}
}

type specialistLLMOutput struct {
	Message      string                 `json:"message"`
	StateUpdates contractx.StateUpdates `json:"state_updates,omitempty"`
}

func newSpecialist(
	ctx context.Context,
	agentType contractx.AgentType,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
) (*specialistImpl, error) {
	structuredRunner, err := compileSpecialistStructuredGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile structured specialist graph: %v", contractx.ErrModelInvoke, err)
	}

	tools := toolx.InfosForAgent(agentType)
	toolModel, err := chatModel.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for specialist=%s: %v", contractx.ErrModelInvoke, agentType, err)
	}
	toolRunner, err := compileSpecialistToolPlanningGraph(ctx, toolModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile tool planner graph: %v", contractx.ErrModelInvoke, err)
	}

	allowedTools := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if t == nil || strings.TrimSpace(t.Name) == "" {
			continue
		}
		allowedTools[t.Name] = struct{}{}
	}

	spec := &specialistImpl{
		agentType:        agentType,
		structuredRunner: structuredRunner,
		toolRunner:       toolRunner,
		allowedTools:     allowedTools,
	}

	runtimeRunner, err := compileSpecialistRuntimeGraph(ctx, spec.runToolPlanning, spec.runStructured)
	if err != nil {
		return nil, fmt.Errorf("%w: compile specialist runtime graph: %v", contractx.ErrModelInvoke, err)
	}
	spec.runtimeRunner = runtimeRunner

	return spec, nil
}

func (s *specialistImpl) Run(ctx context.Context, req contractx.SpecialistRequest) (contractx.SpecialistResponse, error) {
	out, err := s.runtimeRunner.Invoke(ctx, req)
	if err != nil {
		return contractx.SpecialistResponse{}, err
	}
	return out, nil
}

func (s *specialistImpl) runStructured(
	ctx context.Context,
	req contractx.SpecialistRequest,
) (contractx.SpecialistResponse, error) {
	mode := "finalize"
	switch {
	case req.FinalizeOnly:
		mode = "consult"
	case len(req.ToolResults) == 0 && len(req.MissingSlots) > 0:
		mode = "ask"
	}

	payload := map[string]any{
		"mode":           mode,
		"user_message":   req.UserMessage,
		"memory_summary": req.MemorySummary,
		"trip":           summarizeTrip(req.Trip),
		"missing_slots":  req.MissingSlots,
		"tool_results":   req.ToolResults,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return contractx.SpecialistResponse{}, fmt.Errorf("%w: marshal specialist payload: %v", contractx.ErrValidation, err)
	}

	out, err := s.structuredRunner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return contractx.SpecialistResponse{}, fmt.Errorf("%w: specialist invoke: %v", contractx.ErrModelInvoke, err)
	}

	message := strings.TrimSpace(out.Message)
	if message == "" {
		return contractx.SpecialistResponse{}, fmt.Errorf("%w: specialist message is empty", contractx.ErrSchemaViolation)
	}

	updates := out.StateUpdates
	if req.FinalizeOnly {
		// Consulted agents answer, they do not mutate the trip.
		updates = contractx.StateUpdates{}
	}
	if updates.ConfirmBooking && s.agentType != contractx.AgentTypeBooking {
		return contractx.SpecialistResponse{}, fmt.Errorf("%w: confirm_booking from agent=%s", contractx.ErrSchemaViolation, s.agentType)
	}

	return contractx.SpecialistResponse{
		Message:      message,
		ToolRequests: nil,
		StateUpdates: updates,
	}, nil
}

func (s *specialistImpl) runToolPlanning(ctx context.Context, req contractx.SpecialistRequest) (contractx.SpecialistResponse, error) {
	payload := map[string]any{
		"mode":           "act",
		"user_message":   req.UserMessage,
		"memory_summary": req.MemorySummary,
		"trip":           summarizeTrip(req.Trip),
		"missing_slots":  req.MissingSlots,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return contractx.SpecialistResponse{}, fmt.Errorf("%w: marshal tool planning payload: %v", contractx.ErrValidation, err)
	}

	msg, err := s.toolRunner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return contractx.SpecialistResponse{}, fmt.Errorf("%w: tool planning invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return contractx.SpecialistResponse{}, fmt.Errorf("%w: empty tool planning response", contractx.ErrSchemaViolation)
	}

	toolRequests, err := toToolRequests(msg.ToolCalls)
	if err != nil {
		return contractx.SpecialistResponse{}, err
	}

	if len(toolRequests) == 0 {
		// The model may answer directly when no capture is needed.
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			return contractx.SpecialistResponse{}, fmt.Errorf("%w: act mode returned neither tools nor text", contractx.ErrSchemaViolation)
		}
		return contractx.SpecialistResponse{
			Message: content,
		}, nil
	}

	for _, tr := range toolRequests {
		if _, ok := s.allowedTools[tr.Tool]; !ok {
			return contractx.SpecialistResponse{}, fmt.Errorf("%w: tool=%s is not allowed for agent=%s", contractx.ErrSchemaViolation, tr.Tool, s.agentType)
		}
	}

	return contractx.SpecialistResponse{
		ToolRequests: toolRequests,
	}, nil
}

func toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		tool := strings.TrimSpace(call.Function.Name)
		if tool == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
			}
		}

		reqs = append(reqs, contractx.ToolRequest{
			Tool: tool,
			Args: args,
		})
	}
	return reqs, nil
}

func summarizeTrip(t *statex.TripContext) map[string]any {
	if t == nil {
		return map[string]any{}
	}
	return map[string]any{
		"origin":            t.Origin,
		"destination_city":  t.DestinationCity,
		"start_date":        t.StartDate,
		"end_date":          t.EndDate,
		"adults":            t.Adults,
		"budget_amount":     t.BudgetAmount,
		"currency":          t.Currency,
		"booking_confirmed": t.BookingConfirmed,
		"itinerary_status":  t.ItineraryStatus,
		"itinerary_days":    len(t.Itinerary),
		"missing_slots":     t.MissingCriticalSlots(),
	}
}
