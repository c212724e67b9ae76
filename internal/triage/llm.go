package triage

import (
	"context"

	"github.com/linnemanlabs/acuity/internal/criteria"
)

// ExtractionResult is the extractor's verdict on one report.
// IsTraumaReport=false is a valid classification, not an error.
type ExtractionResult struct {
	Fields         ExtractedFields
	IsTraumaReport bool
}

// Extractor turns unstructured report text into structured clinical fields.
// Implementations may call an LLM or run locally; the pipeline does not care
// which is wired in.
type Extractor interface {
	Extract(ctx context.Context, report string) (*ExtractionResult, error)
}

// EvaluationOutcome is the semantic evaluator's output: matches for
// llm-method criteria, the ids of pending hybrid criteria whose qualitative
// condition was affirmed, and a reasoning narrative.
type EvaluationOutcome struct {
	Matches             []CriterionMatch
	HybridConfirmations []int
	Reasoning           string
}

// Evaluator judges qualitative criteria against extracted fields and
// confirms or denies pending hybrid criteria.
type Evaluator interface {
	Evaluate(ctx context.Context, fields ExtractedFields, llmOnly, hybridPending []criteria.Criterion) (*EvaluationOutcome, error)
}
