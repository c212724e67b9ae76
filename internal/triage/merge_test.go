package triage

import (
	"strings"
	"testing"

	"github.com/linnemanlabs/acuity/internal/criteria"
)

func match(id int, level criteria.ActivationLevel, source MatchSource, reason string) CriterionMatch {
	return CriterionMatch{
		CriterionID:     id,
		Description:     "test criterion",
		ActivationLevel: level,
		Category:        criteria.Adult,
		AgeRangeLabel:   "15+ yrs",
		Source:          source,
		TriggerReason:   reason,
	}
}

func TestMergeMatches_DeterministicBeatsLLM(t *testing.T) {
	t.Parallel()

	det := match(1, criteria.Level1, SourceDeterministic, "GCS = 7 <= 8")
	llm := match(1, criteria.Level1, SourceLLM, "patient unresponsive")

	// Either argument order must keep the deterministic entry.
	for name, lists := range map[string][][]CriterionMatch{
		"deterministic first": {{det}, {llm}},
		"llm first":           {{llm}, {det}},
	} {
		merged := MergeMatches(lists...)
		if len(merged) != 1 {
			t.Fatalf("%s: merged = %d entries, want 1", name, len(merged))
		}
		if merged[0].Source != SourceDeterministic {
			t.Errorf("%s: kept source = %q, want deterministic", name, merged[0].Source)
		}
	}
}

func TestMergeMatches_PreservesFirstSeenPosition(t *testing.T) {
	t.Parallel()

	merged := MergeMatches(
		[]CriterionMatch{
			match(5, criteria.Level2, SourceLLM, "a"),
			match(9, criteria.Level1, SourceLLM, "b"),
		},
		[]CriterionMatch{
			match(5, criteria.Level2, SourceDeterministic, "c"),
			match(3, criteria.Level3, SourceLLM, "d"),
		},
	)

	wantIDs := []int{5, 9, 3}
	if len(merged) != len(wantIDs) {
		t.Fatalf("merged = %d entries, want %d", len(merged), len(wantIDs))
	}
	for i, id := range wantIDs {
		if merged[i].CriterionID != id {
			t.Errorf("merged[%d].CriterionID = %d, want %d", i, merged[i].CriterionID, id)
		}
	}
	// The displaced entry keeps its original slot.
	if merged[0].Source != SourceDeterministic {
		t.Errorf("merged[0].Source = %q, want deterministic after displacement", merged[0].Source)
	}
}

func TestMergeMatches_DuplicateSameSourceKeepsFirst(t *testing.T) {
	t.Parallel()

	merged := MergeMatches(
		[]CriterionMatch{match(7, criteria.Level2, SourceLLM, "first")},
		[]CriterionMatch{match(7, criteria.Level2, SourceLLM, "second")},
	)
	if len(merged) != 1 {
		t.Fatalf("merged = %d entries, want 1", len(merged))
	}
	if merged[0].TriggerReason != "first" {
		t.Errorf("kept reason = %q, want first occurrence", merged[0].TriggerReason)
	}
}

func TestMergeMatches_Empty(t *testing.T) {
	t.Parallel()

	if merged := MergeMatches(nil, nil, nil); len(merged) != 0 {
		t.Errorf("merged = %v, want empty", merged)
	}
}

func TestDetermineActivationLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		matches []CriterionMatch
		want    FinalLevel
	}{
		{"no matches", nil, StandardTriage},
		{
			"single level 3",
			[]CriterionMatch{match(1, criteria.Level3, SourceLLM, "")},
			FinalLevel3,
		},
		{
			"level 1 wins over 2 and 3",
			[]CriterionMatch{
				match(1, criteria.Level3, SourceLLM, ""),
				match(2, criteria.Level1, SourceDeterministic, ""),
				match(3, criteria.Level2, SourceLLM, ""),
			},
			FinalLevel1,
		},
		{
			"level 2 wins over 3",
			[]CriterionMatch{
				match(1, criteria.Level3, SourceLLM, ""),
				match(2, criteria.Level2, SourceLLM, ""),
			},
			FinalLevel2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DetermineActivationLevel(tt.matches); got != tt.want {
				t.Errorf("DetermineActivationLevel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildJustification_StandardTriage(t *testing.T) {
	t.Parallel()

	got := BuildJustification(StandardTriage, nil)
	want := "No trauma activation criteria were met based on the provided information."
	if got != want {
		t.Errorf("justification = %q, want %q", got, want)
	}
}

func TestBuildJustification_WinningLevelOnly(t *testing.T) {
	t.Parallel()

	matches := []CriterionMatch{
		match(1, criteria.Level1, SourceDeterministic, "GCS = 7 <= 8"),
		match(2, criteria.Level1, SourceDeterministic, "SBP = 75 < 90"),
		match(3, criteria.Level2, SourceLLM, "fall from height"),
	}

	got := BuildJustification(FinalLevel1, matches)
	want := "Level 1 activation recommended based on: GCS = 7 <= 8; SBP = 75 < 90."
	if got != want {
		t.Errorf("justification = %q, want %q", got, want)
	}
	if strings.Contains(got, "fall from height") {
		t.Error("justification should not include reasons from other levels")
	}
}

func TestPromoteConfirmedHybrids(t *testing.T) {
	t.Parallel()

	pending := []criteria.Criterion{
		{
			ID: 21, Description: "HR > 120 with poor perfusion",
			ActivationLevel: criteria.Level2, Category: criteria.Adult,
			AgeRangeLabel: "15+ yrs", AgeMin: 15, Method: criteria.MethodHybrid,
			VitalRule: &criteria.VitalRule{
				Field: criteria.HR, Operator: criteria.OpGreater, Threshold: 120,
				RequiresLLMConfirmation: "signs of poor perfusion (cool, mottled, or diaphoretic skin)",
			},
		},
		{
			ID: 22, Description: "RR > 24 with increased work of breathing",
			ActivationLevel: criteria.Level2, Category: criteria.Geriatric,
			AgeRangeLabel: "65+ yrs", AgeMin: 65, Method: criteria.MethodHybrid,
			VitalRule: &criteria.VitalRule{
				Field: criteria.RR, Operator: criteria.OpGreater, Threshold: 24,
				RequiresLLMConfirmation: "increased work of breathing or accessory muscle use",
			},
		},
	}
	fields := ExtractedFields{HR: floatp(130), RR: floatp(28)}

	got := promoteConfirmedHybrids(fields, pending, []int{21})
	if len(got) != 1 {
		t.Fatalf("promoted = %d, want 1 (unconfirmed criteria dropped)", len(got))
	}
	if got[0].CriterionID != 21 {
		t.Errorf("promoted criterion = %d, want 21", got[0].CriterionID)
	}
	if got[0].Source != SourceDeterministic {
		t.Errorf("promoted source = %q, want deterministic", got[0].Source)
	}
	want := "HR = 130 > 120 AND signs of poor perfusion (cool, mottled, or diaphoretic skin) confirmed"
	if got[0].TriggerReason != want {
		t.Errorf("triggerReason = %q, want %q", got[0].TriggerReason, want)
	}
}

func TestPromoteConfirmedHybrids_NoConfirmations(t *testing.T) {
	t.Parallel()

	pending := []criteria.Criterion{
		{
			ID: 21, Method: criteria.MethodHybrid,
			VitalRule: &criteria.VitalRule{Field: criteria.HR, Operator: criteria.OpGreater, Threshold: 120},
		},
	}
	if got := promoteConfirmedHybrids(ExtractedFields{HR: floatp(130)}, pending, nil); len(got) != 0 {
		t.Errorf("promoted = %v, want none", got)
	}
}
