package mock

import (
	"context"
	"time"

	"github.com/linnemanlabs/acuity/internal/criteria"
	"github.com/linnemanlabs/acuity/internal/triage"
)

// MockReasoning is the fixed note returned in place of a real narrative.
const MockReasoning = "[MOCK MODE] LLM evaluation was not performed. In production, the evaluation model would analyze mechanism of injury, anatomical injuries, and other qualitative criteria here."

// Evaluator is a no-op triage.Evaluator: zero matches, zero confirmations,
// a fixed explanatory note.
type Evaluator struct {
	// Latency delays each call. Zero disables the delay.
	Latency time.Duration
}

// NewEvaluator returns an Evaluator with the default simulated latency.
func NewEvaluator() *Evaluator {
	return &Evaluator{Latency: DefaultLatency}
}

// Evaluate returns the fixed mock outcome.
func (e *Evaluator) Evaluate(ctx context.Context, _ triage.ExtractedFields, _, _ []criteria.Criterion) (*triage.EvaluationOutcome, error) {
	if e.Latency > 0 {
		select {
		case <-time.After(e.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &triage.EvaluationOutcome{
		Matches:             nil,
		HybridConfirmations: nil,
		Reasoning:           MockReasoning,
	}, nil
}
