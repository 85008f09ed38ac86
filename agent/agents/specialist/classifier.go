package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/wanderplan/wanderplan/agent/contract"
)

type classifierImpl struct {
	runner compose.Runnable[map[string]any, classifierLLMOutput]
}

type classifierLLMOutput struct {
	Decision     string   `json:"decision"`
	Category     string   `json:"category"`
	Reason       string   `json:"reason,omitempty"`
	MissingSlots []string `json:"missingSlots,omitempty"`
	Suggestion   string   `json:"suggestion,omitempty"`
}

func newClassifier(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*classifierImpl, error) {
	runner, err := compileClassifierGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile classifier graph: %v", contractx.ErrModelInvoke, err)
	}
	return &classifierImpl{runner: runner}, nil
}

func (c *classifierImpl) Classify(ctx context.Context, req contractx.ClassifierRequest) (contractx.SafetyDecision, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return contractx.SafetyDecision{}, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"user_message":   req.UserMessage,
		"memory_summary": req.MemorySummary,
		"trip":           summarizeTrip(req.Trip),
		"now":            req.Now.Format(time.RFC3339),
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.SafetyDecision{}, fmt.Errorf("%w: marshal classifier payload: %v", contractx.ErrValidation, err)
	}

	out, err := c.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.SafetyDecision{}, fmt.Errorf("%w: classifier invoke: %v", contractx.ErrModelInvoke, err)
	}

	decision := contractx.SafetyDecision{
		Decision:     contractx.Decision(strings.ToLower(strings.TrimSpace(out.Decision))),
		Category:     contractx.Category(strings.ToLower(strings.TrimSpace(out.Category))),
		Reason:       strings.TrimSpace(out.Reason),
		MissingSlots: out.MissingSlots,
		Suggestion:   strings.TrimSpace(out.Suggestion),
	}

	if err := validateSafetyDecision(&decision); err != nil {
		return contractx.SafetyDecision{}, err
	}
	return decision, nil
}

func validateSafetyDecision(d *contractx.SafetyDecision) error {
	switch d.Decision {
	case contractx.DecisionAllow, contractx.DecisionWarn, contractx.DecisionBlock:
	default:
		return fmt.Errorf("%w: unsupported decision=%q", contractx.ErrSchemaViolation, d.Decision)
	}

	switch d.Category {
	case contractx.CategoryTravel, contractx.CategoryNonTravel, contractx.CategoryCompetitor,
		contractx.CategoryHarmful, contractx.CategoryInjection, contractx.CategoryIllicit,
		contractx.CategoryExplicit:
	default:
		return fmt.Errorf("%w: unsupported category=%q", contractx.ErrSchemaViolation, d.Category)
	}

	if d.Decision == contractx.DecisionBlock && !contractx.ViolationCategories()[d.Category] {
		return fmt.Errorf("%w: block requires a violation category, got %q", contractx.ErrSchemaViolation, d.Category)
	}
	if d.Tripwire() {
		// Slot hints must never leak out of a blocked turn.
		d.MissingSlots = nil
	}
	return nil
}

// failOpenClassifier degrades to allow/travel when the inner classifier
// cannot produce a valid decision. A broken safety model must not take the
// assistant offline.
type failOpenClassifier struct {
	inner contractx.Classifier
}

func NewFailOpen(inner contractx.Classifier) contractx.Classifier {
	return &failOpenClassifier{inner: inner}
}

func (f *failOpenClassifier) Classify(ctx context.Context, req contractx.ClassifierRequest) (contractx.SafetyDecision, error) {
	decision, err := f.inner.Classify(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("classifier failed, proceeding fail-open")
		return contractx.SafetyDecision{
			Decision:   contractx.DecisionAllow,
			Category:   contractx.CategoryTravel,
			Reason:     "classifier unavailable",
			Suggestion: "How can I help plan your trip?",
		}, nil
	}
	return decision, nil
}
