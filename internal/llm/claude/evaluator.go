package claude

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/linnemanlabs/acuity/internal/criteria"
	"github.com/linnemanlabs/acuity/internal/triage"
)

// evaluationPayload mirrors the evaluation tool's input schema.
type evaluationPayload struct {
	Matches []struct {
		CriterionID   int     `json:"criterion_id"`
		Confidence    float64 `json:"confidence"`
		TriggerReason string  `json:"trigger_reason"`
	} `json:"matches"`
	HybridConfirmations []int  `json:"hybrid_confirmations"`
	ReasoningNarrative  string `json:"reasoning_narrative"`
}

// Evaluate asks the evaluation model to judge the llm-method criteria and
// confirm or deny the pending hybrid criteria.
func (c *Client) Evaluate(ctx context.Context, fields triage.ExtractedFields, llmOnly, hybridPending []criteria.Criterion) (*triage.EvaluationOutcome, error) {
	all := make([]criteria.Criterion, 0, len(llmOnly)+len(hybridPending))
	all = append(all, llmOnly...)
	all = append(all, hybridPending...)
	if len(all) == 0 {
		return &triage.EvaluationOutcome{Reasoning: "No criteria to evaluate."}, nil
	}

	hybridIDs := make([]int, len(hybridPending))
	for i, c := range hybridPending {
		hybridIDs[i] = c.ID
	}

	user := "Evaluate the following extracted patient data against the criteria:\n\n" + describeFields(fields)

	raw, err := c.callWithTool(ctx, c.evaluationModel, evaluationSystemPrompt(all), user,
		evaluationMaxTokens, evaluationTool(hybridIDs))
	if err != nil {
		return nil, err
	}

	var payload evaluationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("invalid evaluation payload: %w", err)
	}

	return c.toOutcome(&payload), nil
}

// toOutcome resolves model match ids against the criteria set. Ids the
// model invented are dropped.
func (c *Client) toOutcome(payload *evaluationPayload) *triage.EvaluationOutcome {
	var matches []triage.CriterionMatch
	for _, m := range payload.Matches {
		crit, ok := c.criteria.ByID(m.CriterionID)
		if !ok {
			continue
		}
		confidence := m.Confidence
		matches = append(matches, triage.CriterionMatch{
			CriterionID:     crit.ID,
			Description:     crit.Description,
			ActivationLevel: crit.ActivationLevel,
			Category:        crit.Category,
			AgeRangeLabel:   crit.AgeRangeLabel,
			Source:          triage.SourceLLM,
			Confidence:      &confidence,
			TriggerReason:   m.TriggerReason,
		})
	}

	return &triage.EvaluationOutcome{
		Matches:             matches,
		HybridConfirmations: payload.HybridConfirmations,
		Reasoning:           payload.ReasoningNarrative,
	}
}
