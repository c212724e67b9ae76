package claude

import (
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/linnemanlabs/acuity/internal/criteria"
	"github.com/linnemanlabs/acuity/internal/triage"
)

const extractionSystemPrompt = `You are a medical data extraction assistant for a trauma triage system. Your job is to extract structured clinical fields from free-text EMS trauma reports.

Rules:
- Extract numeric values as integers where applicable (age, SBP, HR, RR, GCS)
- If a value is not mentioned or cannot be determined, return null
- For injuries, return an array of strings describing each injury
- Determine if the input is actually a trauma/EMS report (isTraumaReport)
- Be generous in interpretation - EMS reports come in many formats (MIST, SOAP, free-form narrative)
- Input may be raw speech-to-text transcription with recognition mistakes, missing punctuation, and broken phrasing
- Treat common spoken EMS shorthand/slang (e.g., GCS, SBP/BP, EtOH, GSW, MVC, MCC, peds/pedestrian struck) as high-signal context
- Correct likely transcription mistakes only when context makes the meaning clear
- If a value remains ambiguous after contextual interpretation, return null (do not guess)
- Preserve uncertain but clinically relevant clues in additionalContext`

const (
	extractionToolName = "extract_trauma_fields"
	evaluationToolName = "evaluate_criteria"
)

// extractionTool is the forced tool schema for field extraction.
func extractionTool() anthropic.ToolParam {
	return anthropic.ToolParam{
		Name:        extractionToolName,
		Description: anthropic.String("Extract structured clinical fields from a free-text EMS trauma report."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]any{
				"isTraumaReport": map[string]any{
					"type":        "boolean",
					"description": "Whether the input appears to be a trauma/EMS report",
				},
				"age": map[string]any{
					"type":        []string{"integer", "null"},
					"description": "Patient age in years",
				},
				"sbp": map[string]any{
					"type":        []string{"integer", "null"},
					"description": "Systolic Blood Pressure in mmHg",
				},
				"hr": map[string]any{
					"type":        []string{"integer", "null"},
					"description": "Heart Rate in bpm",
				},
				"rr": map[string]any{
					"type":        []string{"integer", "null"},
					"description": "Respiratory Rate in breaths/min",
				},
				"gcs": map[string]any{
					"type":        []string{"integer", "null"},
					"description": "Glasgow Coma Scale score (3-15)",
				},
				"airwayStatus": map[string]any{
					"type":        []string{"string", "null"},
					"description": `Airway status description (e.g., "Intubated", "Patent")`,
				},
				"breathingStatus": map[string]any{
					"type":        []string{"string", "null"},
					"description": "Breathing status description",
				},
				"mechanism": map[string]any{
					"type":        []string{"string", "null"},
					"description": "Mechanism of injury description",
				},
				"injuries": map[string]any{
					"type":        []string{"array", "null"},
					"items":       map[string]any{"type": "string"},
					"description": "List of identified injuries",
				},
				"additionalContext": map[string]any{
					"type":        []string{"string", "null"},
					"description": "Other relevant clinical context",
				},
			},
			Required: []string{
				"isTraumaReport", "age", "sbp", "hr", "rr", "gcs",
				"airwayStatus", "breathingStatus", "mechanism", "injuries",
				"additionalContext",
			},
		},
	}
}

// evaluationSystemPrompt lists every criterion the model must judge.
func evaluationSystemPrompt(crits []criteria.Criterion) string {
	var list strings.Builder
	for _, c := range crits {
		fmt.Fprintf(&list, "- [ID %d] (%s, %s) %s\n", c.ID, c.ActivationLevel, c.Category, c.Description)
	}

	return fmt.Sprintf(`You are a trauma triage evaluation assistant. Given extracted clinical information from an EMS report, evaluate each of the following criteria and determine which ones are met.

CRITERIA TO EVALUATE:
%s
Rules:
- Only match criteria that are clearly supported by the clinical information
- Assign a confidence score (0-1) to each match: 1.0 = definitive, 0.7-0.9 = highly likely, 0.5-0.7 = possible
- For hybrid criteria (marked with qualitative conditions), evaluate the qualitative condition (e.g., "poor perfusion")
- Provide a clear trigger_reason explaining why each criterion was matched
- Provide a reasoning_narrative explaining your overall evaluation logic`, list.String())
}

// evaluationTool is the forced tool schema for criteria evaluation. The
// hybrid ids under consideration are named in the schema so the model
// confirms only those.
func evaluationTool(hybridIDs []int) anthropic.ToolParam {
	ids := make([]string, len(hybridIDs))
	for i, id := range hybridIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}

	return anthropic.ToolParam{
		Name:        evaluationToolName,
		Description: anthropic.String("Evaluate trauma triage criteria against extracted patient data and return matches."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]any{
				"matches": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"criterion_id":   map[string]any{"type": "integer", "description": "The criterion ID that was matched"},
							"confidence":     map[string]any{"type": "number", "description": "Confidence score 0-1"},
							"trigger_reason": map[string]any{"type": "string", "description": "Why this criterion was triggered"},
						},
						"required": []string{"criterion_id", "confidence", "trigger_reason"},
					},
					"description": "List of matched criteria",
				},
				"hybrid_confirmations": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "integer"},
					"description": fmt.Sprintf(
						"Criterion IDs from the hybrid list where the qualitative condition is confirmed. Hybrid IDs to evaluate: [%s]",
						strings.Join(ids, ", ")),
				},
				"reasoning_narrative": map[string]any{
					"type":        "string",
					"description": "Step-by-step explanation of evaluation logic",
				},
			},
			Required: []string{"matches", "hybrid_confirmations", "reasoning_narrative"},
		},
	}
}

// describeFields renders the extracted fields as the evaluator's user
// message, skipping absent values.
func describeFields(f triage.ExtractedFields) string {
	var lines []string
	if f.Age != nil {
		lines = append(lines, fmt.Sprintf("Age: %d", *f.Age))
	}
	if f.SBP != nil {
		lines = append(lines, fmt.Sprintf("SBP: %g mmHg", *f.SBP))
	}
	if f.HR != nil {
		lines = append(lines, fmt.Sprintf("HR: %g bpm", *f.HR))
	}
	if f.RR != nil {
		lines = append(lines, fmt.Sprintf("RR: %g breaths/min", *f.RR))
	}
	if f.GCS != nil {
		lines = append(lines, fmt.Sprintf("GCS: %g", *f.GCS))
	}
	if f.AirwayStatus != nil && *f.AirwayStatus != "" {
		lines = append(lines, "Airway: "+*f.AirwayStatus)
	}
	if f.BreathingStatus != nil && *f.BreathingStatus != "" {
		lines = append(lines, "Breathing: "+*f.BreathingStatus)
	}
	if f.Mechanism != nil && *f.Mechanism != "" {
		lines = append(lines, "Mechanism: "+*f.Mechanism)
	}
	if len(f.Injuries) > 0 {
		lines = append(lines, "Injuries: "+strings.Join(f.Injuries, ", "))
	}
	if f.AdditionalContext != nil && *f.AdditionalContext != "" {
		lines = append(lines, "Additional: "+*f.AdditionalContext)
	}
	return strings.Join(lines, "\n")
}
