package triage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/linnemanlabs/acuity/internal/criteria"
)

// DeterministicResult is the outcome of the numeric evaluation pass: firm
// matches, plus hybrid criteria whose numeric half triggered and now await
// qualitative confirmation by the semantic evaluator.
type DeterministicResult struct {
	Matches       []CriterionMatch
	HybridPending []criteria.Criterion
}

// EvaluateDeterministic applies every deterministic and hybrid vital rule in
// the (already age-filtered) criteria list against the extracted fields.
// Criteria whose vital is absent from the report are skipped. Pure and
// order-stable over its input.
func EvaluateDeterministic(fields ExtractedFields, crits []criteria.Criterion) DeterministicResult {
	var result DeterministicResult

	for i := range crits {
		c := &crits[i]
		if c.Method != criteria.MethodDeterministic && c.Method != criteria.MethodHybrid {
			continue
		}
		rule := c.VitalRule
		if rule == nil {
			continue
		}

		value := fields.Vital(rule.Field)
		if value == nil {
			continue
		}
		if !evaluateRule(*value, rule) {
			continue
		}

		if c.Method == criteria.MethodHybrid {
			result.HybridPending = append(result.HybridPending, *c)
			continue
		}

		result.Matches = append(result.Matches, CriterionMatch{
			CriterionID:     c.ID,
			Description:     c.Description,
			ActivationLevel: c.ActivationLevel,
			Category:        c.Category,
			AgeRangeLabel:   c.AgeRangeLabel,
			Source:          SourceDeterministic,
			TriggerReason:   triggerReason(rule.Field, *value, rule),
		})
	}

	return result
}

// evaluateRule decides one numeric comparison. The operator set is closed;
// anything else is a dataset defect and panics.
func evaluateRule(value float64, rule *criteria.VitalRule) bool {
	switch rule.Operator {
	case criteria.OpLess:
		return value < rule.Threshold
	case criteria.OpLessEqual:
		return value <= rule.Threshold
	case criteria.OpGreater:
		return value > rule.Threshold
	case criteria.OpGreaterEqual:
		return value >= rule.Threshold
	case criteria.OpEqual:
		return value == rule.Threshold
	case criteria.OpRange:
		if rule.ThresholdHigh == nil {
			panic("triage: range rule missing thresholdHigh")
		}
		return value >= rule.Threshold && value <= *rule.ThresholdHigh
	default:
		panic(fmt.Sprintf("triage: unknown operator %q", rule.Operator))
	}
}

// triggerReason renders the human-readable explanation for a triggered rule,
// e.g. "GCS = 7 <= 8" or "GCS = 10 (in range 9-12)".
func triggerReason(field criteria.VitalField, value float64, rule *criteria.VitalRule) string {
	label := strings.ToUpper(string(field))
	if rule.Operator == criteria.OpRange {
		if rule.ThresholdHigh == nil {
			panic("triage: range rule missing thresholdHigh")
		}
		return fmt.Sprintf("%s = %s (in range %s-%s)",
			label, formatNumber(value), formatNumber(rule.Threshold), formatNumber(*rule.ThresholdHigh))
	}
	return fmt.Sprintf("%s = %s %s %s",
		label, formatNumber(value), rule.Operator, formatNumber(rule.Threshold))
}

// formatNumber renders a vital value without a trailing fractional part for
// whole numbers.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
