package pgcriteria

import (
	"strings"
	"testing"

	"github.com/linnemanlabs/acuity/internal/criteria"
)

func intp(v int) *int { return &v }

func TestToCriterion_PlainLLMCriterion(t *testing.T) {
	t.Parallel()

	crit, err := toCriterion(row{
		ID:          42,
		Description: "Crush injury to torso",
		Level:       "Level 1",
		Category:    "Adult",
		AgeLabel:    "15+ yrs",
		AgeMin:      intp(15),
		Method:      "llm",
	})
	if err != nil {
		t.Fatalf("toCriterion: %v", err)
	}
	if crit.ID != 42 || crit.Method != criteria.MethodLLM {
		t.Errorf("got id=%d method=%q", crit.ID, crit.Method)
	}
	if crit.VitalRule != nil {
		t.Error("expected nil vital rule for llm criterion")
	}
	if crit.AgeMin != 15 || crit.AgeMax != nil {
		t.Errorf("age bounds = %d, %v", crit.AgeMin, crit.AgeMax)
	}
}

func TestToCriterion_DecodesVitalRule(t *testing.T) {
	t.Parallel()

	crit, err := toCriterion(row{
		ID:          3,
		Description: "GCS 9-12",
		Level:       "Level 2",
		Category:    "Adult",
		AgeLabel:    "15+ yrs",
		AgeMin:      intp(15),
		Method:      "deterministic",
		VitalRule:   []byte(`{"field":"gcs","operator":"range","threshold":9,"thresholdHigh":12}`),
	})
	if err != nil {
		t.Fatalf("toCriterion: %v", err)
	}
	if crit.VitalRule == nil {
		t.Fatal("expected vital rule")
	}
	if crit.VitalRule.Operator != criteria.OpRange {
		t.Errorf("operator = %q, want range", crit.VitalRule.Operator)
	}
	if crit.VitalRule.ThresholdHigh == nil || *crit.VitalRule.ThresholdHigh != 12 {
		t.Errorf("thresholdHigh = %v, want 12", crit.VitalRule.ThresholdHigh)
	}
}

func TestToCriterion_MalformedVitalRule(t *testing.T) {
	t.Parallel()

	_, err := toCriterion(row{
		ID:        7,
		AgeMin:    intp(15),
		Method:    "deterministic",
		VitalRule: []byte(`{not json`),
	})
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func TestToCriterion_NullAgeMin(t *testing.T) {
	t.Parallel()

	_, err := toCriterion(row{
		ID:     7,
		Level:  "Level 1",
		Method: "llm",
	})
	if err == nil {
		t.Fatal("expected error for null age_min")
	}
	if got := err.Error(); !strings.Contains(got, "age_min") {
		t.Errorf("error = %q, want mention of age_min", got)
	}
}
