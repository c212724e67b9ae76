package triage

import (
	"github.com/linnemanlabs/acuity/internal/criteria"
)

// ExtractedFields is the structured view of one report produced by the
// extractor. A nil field means "not determinable from the report" - values
// are never guessed.
type ExtractedFields struct {
	Age               *int     `json:"age"`
	SBP               *float64 `json:"sbp"`
	HR                *float64 `json:"hr"`
	RR                *float64 `json:"rr"`
	GCS               *float64 `json:"gcs"`
	AirwayStatus      *string  `json:"airwayStatus"`
	BreathingStatus   *string  `json:"breathingStatus"`
	Mechanism         *string  `json:"mechanism"`
	Injuries          []string `json:"injuries"`
	AdditionalContext *string  `json:"additionalContext"`
}

// Vital returns the extracted value for a rule field, or nil if the report
// did not yield one.
func (f *ExtractedFields) Vital(field criteria.VitalField) *float64 {
	switch field {
	case criteria.GCS:
		return f.GCS
	case criteria.SBP:
		return f.SBP
	case criteria.RR:
		return f.RR
	case criteria.HR:
		return f.HR
	}
	return nil
}

// MatchSource records which evaluator produced a match.
type MatchSource string

const (
	SourceDeterministic MatchSource = "deterministic"
	SourceLLM           MatchSource = "llm"
)

// CriterionMatch is one triggered criterion. Created by an evaluator,
// consumed by the merger, never mutated after creation. Confidence is set on
// llm-sourced matches only.
type CriterionMatch struct {
	CriterionID     int                      `json:"criterionId"`
	Description     string                   `json:"description"`
	ActivationLevel criteria.ActivationLevel `json:"activationLevel"`
	Category        criteria.Category        `json:"category"`
	AgeRangeLabel   string                   `json:"ageRangeLabel"`
	Source          MatchSource              `json:"source"`
	Confidence      *float64                 `json:"confidence,omitempty"`
	TriggerReason   string                   `json:"triggerReason"`
}

// PlausibilityWarning flags an extracted vital outside its physiologic range.
// Advisory only; it never affects matching.
type PlausibilityWarning struct {
	Field   string  `json:"field"`
	Value   float64 `json:"value"`
	Message string  `json:"message"`
}

// FinalLevel is the pipeline's verdict: an activation level or standard
// triage when no criterion was met.
type FinalLevel string

const (
	FinalLevel1    FinalLevel = FinalLevel(criteria.Level1)
	FinalLevel2    FinalLevel = FinalLevel(criteria.Level2)
	FinalLevel3    FinalLevel = FinalLevel(criteria.Level3)
	StandardTriage FinalLevel = "Standard Triage"
)

// EvaluationResult is the terminal payload of one pipeline run.
// AgentReasoning is empty exactly when the semantic evaluation phase failed.
type EvaluationResult struct {
	ExtractedFields      ExtractedFields       `json:"extractedFields"`
	PlausibilityWarnings []PlausibilityWarning `json:"plausibilityWarnings"`
	CriteriaMatches      []CriterionMatch      `json:"criteriaMatches"`
	ActivationLevel      FinalLevel            `json:"activationLevel"`
	Justification        string                `json:"justification"`
	AgentReasoning       string                `json:"agentReasoning"`
	MissingFieldWarnings []string              `json:"missingFieldWarnings"`
}
