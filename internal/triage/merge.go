package triage

import (
	"fmt"
	"strings"

	"github.com/linnemanlabs/acuity/internal/criteria"
)

// levelPriority orders activation levels; the lowest number is the most
// urgent.
var levelPriority = map[criteria.ActivationLevel]int{
	criteria.Level1: 1,
	criteria.Level2: 2,
	criteria.Level3: 3,
}

// MergeMatches deduplicates matches from all evaluation phases by criterion
// id, keeping the first seen. A deterministic match always displaces an
// llm match for the same criterion regardless of argument order. First-seen
// positions are preserved.
func MergeMatches(matchLists ...[]CriterionMatch) []CriterionMatch {
	var merged []CriterionMatch
	index := make(map[int]int)

	for _, list := range matchLists {
		for _, m := range list {
			at, ok := index[m.CriterionID]
			if !ok {
				index[m.CriterionID] = len(merged)
				merged = append(merged, m)
				continue
			}
			if merged[at].Source == SourceLLM && m.Source == SourceDeterministic {
				merged[at] = m
			}
		}
	}

	return merged
}

// DetermineActivationLevel picks the most urgent level present among the
// matches, or StandardTriage when none matched.
func DetermineActivationLevel(matches []CriterionMatch) FinalLevel {
	if len(matches) == 0 {
		return StandardTriage
	}

	level := StandardTriage
	best := int(^uint(0) >> 1)
	for _, m := range matches {
		if p, ok := levelPriority[m.ActivationLevel]; ok && p < best {
			best = p
			level = FinalLevel(m.ActivationLevel)
		}
	}
	return level
}

// BuildJustification joins the trigger reasons of all matches at the winning
// level into one explanatory sentence.
func BuildJustification(level FinalLevel, matches []CriterionMatch) string {
	if level == StandardTriage {
		return "No trauma activation criteria were met based on the provided information."
	}

	var reasons []string
	for _, m := range matches {
		if FinalLevel(m.ActivationLevel) == level {
			reasons = append(reasons, m.TriggerReason)
		}
	}
	return fmt.Sprintf("%s activation recommended based on: %s.", level, strings.Join(reasons, "; "))
}

// promoteConfirmedHybrids converts pending hybrid criteria whose qualitative
// condition the evaluator affirmed into synthetic deterministic matches.
// Unconfirmed criteria are silently dropped.
func promoteConfirmedHybrids(fields ExtractedFields, pending []criteria.Criterion, confirmations []int) []CriterionMatch {
	confirmed := make(map[int]bool, len(confirmations))
	for _, id := range confirmations {
		confirmed[id] = true
	}

	var matches []CriterionMatch
	for i := range pending {
		c := &pending[i]
		if !confirmed[c.ID] {
			continue
		}
		rule := c.VitalRule
		value := fields.Vital(rule.Field)
		if value == nil {
			// hybridPending entries always had a value at evaluation time
			continue
		}
		matches = append(matches, CriterionMatch{
			CriterionID:     c.ID,
			Description:     c.Description,
			ActivationLevel: c.ActivationLevel,
			Category:        c.Category,
			AgeRangeLabel:   c.AgeRangeLabel,
			Source:          SourceDeterministic,
			TriggerReason: fmt.Sprintf("%s AND %s confirmed",
				triggerReason(rule.Field, *value, rule), rule.RequiresLLMConfirmation),
		})
	}
	return matches
}
