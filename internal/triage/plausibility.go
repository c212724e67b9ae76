package triage

import (
	"fmt"

	"github.com/linnemanlabs/acuity/internal/criteria"
)

// vitalRange is a hardcoded physiologic bound for one extracted numeric
// field.
type vitalRange struct {
	field string
	label string
	min   float64
	max   float64
}

// plausibleRanges is ordered; warnings follow this declaration order.
var plausibleRanges = []vitalRange{
	{"age", "Age", 0, 120},
	{"sbp", "SBP", 20, 300},
	{"hr", "HR", 20, 300},
	{"rr", "RR", 0, 80},
	{"gcs", "GCS", 3, 15},
}

// CheckPlausibility flags extracted values outside plausible clinical ranges.
// Nil fields never warn. Advisory only; never gates downstream evaluation.
func CheckPlausibility(fields ExtractedFields) []PlausibilityWarning {
	var warnings []PlausibilityWarning

	for _, r := range plausibleRanges {
		var value *float64
		if r.field == "age" {
			if fields.Age != nil {
				v := float64(*fields.Age)
				value = &v
			}
		} else {
			value = fields.Vital(criteria.VitalField(r.field))
		}
		if value == nil {
			continue
		}

		if *value < r.min || *value > r.max {
			warnings = append(warnings, PlausibilityWarning{
				Field: r.field,
				Value: *value,
				Message: fmt.Sprintf("%s %s is outside normal clinical range (%s-%s)",
					r.label, formatNumber(*value), formatNumber(r.min), formatNumber(r.max)),
			})
		}
	}

	return warnings
}
