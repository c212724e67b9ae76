package claude

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/linnemanlabs/acuity/internal/criteria"
	"github.com/linnemanlabs/acuity/internal/triage"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }
func strp(s string) *string     { return &s }

func testClient(t *testing.T) *Client {
	t.Helper()
	set, err := criteria.Load()
	if err != nil {
		t.Fatalf("load criteria: %v", err)
	}
	return New("sk-test", "extraction-model", "evaluation-model", set)
}

func TestExtractionPayload_Decode(t *testing.T) {
	t.Parallel()

	raw := `{
		"isTraumaReport": true,
		"age": 45,
		"sbp": 82,
		"hr": 128,
		"rr": null,
		"gcs": 7,
		"airwayStatus": "Intubated",
		"breathingStatus": null,
		"mechanism": "MVC with ejection",
		"injuries": ["open femur fracture"],
		"additionalContext": null
	}`

	var payload extractionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !payload.IsTraumaReport {
		t.Error("isTraumaReport = false")
	}
	if payload.Age == nil || *payload.Age != 45 {
		t.Errorf("age = %v, want 45", payload.Age)
	}
	if payload.RR != nil {
		t.Errorf("rr = %v, want nil for explicit null", payload.RR)
	}
	if len(payload.Injuries) != 1 || payload.Injuries[0] != "open femur fracture" {
		t.Errorf("injuries = %v", payload.Injuries)
	}
}

func TestToOutcome_ResolvesCriteria(t *testing.T) {
	t.Parallel()

	c := testClient(t)
	payload := &evaluationPayload{
		HybridConfirmations: []int{21},
		ReasoningNarrative:  "penetrating injury noted",
	}
	payload.Matches = []struct {
		CriterionID   int     `json:"criterion_id"`
		Confidence    float64 `json:"confidence"`
		TriggerReason string  `json:"trigger_reason"`
	}{
		{CriterionID: 23, Confidence: 0.9, TriggerReason: "stab wound to chest"},
	}

	outcome := c.toOutcome(payload)

	if len(outcome.Matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(outcome.Matches))
	}
	m := outcome.Matches[0]
	if m.CriterionID != 23 {
		t.Errorf("criterion id = %d, want 23", m.CriterionID)
	}
	if m.Source != triage.SourceLLM {
		t.Errorf("source = %q, want llm", m.Source)
	}
	if m.Confidence == nil || *m.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", m.Confidence)
	}
	if m.Description == "" || m.ActivationLevel == "" {
		t.Errorf("match not enriched from criteria set: %+v", m)
	}
	if m.TriggerReason != "stab wound to chest" {
		t.Errorf("triggerReason = %q", m.TriggerReason)
	}
	if len(outcome.HybridConfirmations) != 1 || outcome.HybridConfirmations[0] != 21 {
		t.Errorf("hybridConfirmations = %v", outcome.HybridConfirmations)
	}
	if outcome.Reasoning != "penetrating injury noted" {
		t.Errorf("reasoning = %q", outcome.Reasoning)
	}
}

func TestToOutcome_DropsInventedIDs(t *testing.T) {
	t.Parallel()

	c := testClient(t)
	payload := &evaluationPayload{}
	payload.Matches = []struct {
		CriterionID   int     `json:"criterion_id"`
		Confidence    float64 `json:"confidence"`
		TriggerReason string  `json:"trigger_reason"`
	}{
		{CriterionID: 9999, Confidence: 1, TriggerReason: "hallucinated"},
		{CriterionID: 23, Confidence: 0.8, TriggerReason: "real"},
	}

	outcome := c.toOutcome(payload)
	if len(outcome.Matches) != 1 || outcome.Matches[0].CriterionID != 23 {
		t.Errorf("matches = %+v, want only criterion 23", outcome.Matches)
	}
}

func TestEvaluationSystemPrompt_ListsCriteria(t *testing.T) {
	t.Parallel()

	crits := []criteria.Criterion{
		{ID: 23, Description: "Penetrating injury to the torso", ActivationLevel: criteria.Level1, Category: criteria.Adult},
		{ID: 21, Description: "HR above 120 with poor perfusion", ActivationLevel: criteria.Level2, Category: criteria.Adult},
	}

	prompt := evaluationSystemPrompt(crits)
	for _, want := range []string{
		"- [ID 23] (Level 1, Adult) Penetrating injury to the torso",
		"- [ID 21] (Level 2, Adult) HR above 120 with poor perfusion",
		"confidence score",
		"reasoning_narrative",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestEvaluationTool_NamesHybridIDs(t *testing.T) {
	t.Parallel()

	tool := evaluationTool([]int{21, 22})
	props, ok := tool.InputSchema.Properties.(map[string]any)
	if !ok {
		t.Fatalf("properties is %T, want map[string]any", tool.InputSchema.Properties)
	}
	hybrid, ok := props["hybrid_confirmations"].(map[string]any)
	if !ok {
		t.Fatal("missing hybrid_confirmations property")
	}
	desc, _ := hybrid["description"].(string)
	if !strings.Contains(desc, "[21, 22]") {
		t.Errorf("description = %q, want hybrid ids listed", desc)
	}
}

func TestExtractionTool_RequiredFields(t *testing.T) {
	t.Parallel()

	tool := extractionTool()
	if tool.Name != extractionToolName {
		t.Errorf("name = %q", tool.Name)
	}
	required := map[string]bool{}
	for _, f := range tool.InputSchema.Required {
		required[f] = true
	}
	for _, f := range []string{"isTraumaReport", "age", "sbp", "hr", "rr", "gcs", "injuries"} {
		if !required[f] {
			t.Errorf("required fields missing %q", f)
		}
	}
	props, ok := tool.InputSchema.Properties.(map[string]any)
	if !ok {
		t.Fatalf("properties is %T, want map[string]any", tool.InputSchema.Properties)
	}
	for _, f := range tool.InputSchema.Required {
		if _, ok := props[f]; !ok {
			t.Errorf("required field %q has no property definition", f)
		}
	}
}

func TestDescribeFields(t *testing.T) {
	t.Parallel()

	fields := triage.ExtractedFields{
		Age:          intp(45),
		SBP:          floatp(82),
		GCS:          floatp(7),
		AirwayStatus: strp("Intubated"),
		Injuries:     []string{"open femur fracture", "chest contusion"},
	}

	got := describeFields(fields)
	wantLines := []string{
		"Age: 45",
		"SBP: 82 mmHg",
		"GCS: 7",
		"Airway: Intubated",
		"Injuries: open femur fracture, chest contusion",
	}
	for _, line := range wantLines {
		if !strings.Contains(got, line) {
			t.Errorf("describeFields missing %q in:\n%s", line, got)
		}
	}
	if strings.Contains(got, "HR:") || strings.Contains(got, "RR:") {
		t.Errorf("absent vitals should be skipped:\n%s", got)
	}
}
