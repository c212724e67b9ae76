// Package criteria holds the trauma activation rule set: 137 clinical
// criteria, age-banded and typed by evaluation method. The dataset is loaded
// once at startup, validated, and immutable for the process lifetime.
package criteria

import (
	"encoding/json"
	"fmt"
)

// ActivationLevel is the severity tier a criterion maps to. Level 1 is the
// highest urgency.
type ActivationLevel string

const (
	Level1 ActivationLevel = "Level 1"
	Level2 ActivationLevel = "Level 2"
	Level3 ActivationLevel = "Level 3"
)

// Category is the patient population a criterion belongs to.
type Category string

const (
	Adult     Category = "Adult"
	Pediatric Category = "Pediatric"
	Geriatric Category = "Geriatric"
)

// Method describes how a criterion is evaluated.
type Method string

const (
	// MethodDeterministic criteria are decided purely by a numeric vital rule.
	MethodDeterministic Method = "deterministic"

	// MethodHybrid criteria need the numeric rule to trigger AND a qualitative
	// condition confirmed by the semantic evaluator.
	MethodHybrid Method = "hybrid"

	// MethodLLM criteria have no numeric component and are decided entirely by
	// semantic evaluation of the narrative.
	MethodLLM Method = "llm"
)

// VitalField names one of the four numeric vitals the rule set keys on.
type VitalField string

const (
	GCS VitalField = "gcs"
	SBP VitalField = "sbp"
	RR  VitalField = "rr"
	HR  VitalField = "hr"
)

// Operator is the comparison kind of a vital rule. The set is closed; an
// operator outside it is a dataset defect.
type Operator string

const (
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpEqual        Operator = "=="
	OpRange        Operator = "range"
)

// VitalRule is the numeric comparison attached to deterministic and hybrid
// criteria. ThresholdHigh is required iff Operator is OpRange.
type VitalRule struct {
	Field                   VitalField `json:"field"`
	Operator                Operator   `json:"operator"`
	Threshold               float64    `json:"threshold"`
	ThresholdHigh           *float64   `json:"thresholdHigh,omitempty"`
	RequiresLLMConfirmation string     `json:"requiresLlmConfirmation,omitempty"`
}

// Criterion is one clinical rule. AgeMax nil means no upper bound.
type Criterion struct {
	ID              int             `json:"id"`
	Description     string          `json:"description"`
	ActivationLevel ActivationLevel `json:"activationLevel"`
	Category        Category        `json:"category"`
	AgeRangeLabel   string          `json:"ageRangeLabel"`
	AgeMin          int             `json:"ageMin"`
	AgeMax          *int            `json:"ageMax"`
	Method          Method          `json:"evaluationMethod"`
	VitalRule       *VitalRule      `json:"vitalRule,omitempty"`
}

// AppliesToAge reports whether the criterion's age band includes the given
// age. Both bounds are inclusive.
func (c *Criterion) AppliesToAge(age int) bool {
	return age >= c.AgeMin && (c.AgeMax == nil || age <= *c.AgeMax)
}

// Set is the full validated rule set with an id-keyed lookup. Read-only after
// construction, safe to share across concurrent evaluations.
type Set struct {
	all  []Criterion
	byID map[int]*Criterion
}

// NewSet validates the criteria and builds the lookup index.
func NewSet(all []Criterion) (*Set, error) {
	if err := validate(all); err != nil {
		return nil, err
	}
	s := &Set{all: all, byID: make(map[int]*Criterion, len(all))}
	for i := range s.all {
		s.byID[s.all[i].ID] = &s.all[i]
	}
	return s, nil
}

// All returns every criterion in id order.
func (s *Set) All() []Criterion { return s.all }

// Len returns the number of criteria in the set.
func (s *Set) Len() int { return len(s.all) }

// ByID looks up a criterion by id.
func (s *Set) ByID(id int) (*Criterion, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// ForAge returns the subset of criteria whose age band includes the given
// age. Pure; the returned slice is freshly allocated.
func (s *Set) ForAge(age int) []Criterion {
	out := make([]Criterion, 0, len(s.all))
	for _, c := range s.all {
		if c.AppliesToAge(age) {
			out = append(out, c)
		}
	}
	return out
}

// validate enforces the dataset invariants. A violation is a defect in the
// shipped data, not a runtime condition.
func validate(all []Criterion) error {
	seen := make(map[int]bool, len(all))
	for i := range all {
		c := &all[i]
		if c.ID <= 0 {
			return fmt.Errorf("criterion %d: non-positive id", c.ID)
		}
		if seen[c.ID] {
			return fmt.Errorf("criterion %d: duplicate id", c.ID)
		}
		seen[c.ID] = true

		if c.AgeMin < 0 {
			return fmt.Errorf("criterion %d: negative ageMin %d", c.ID, c.AgeMin)
		}
		if c.AgeMax != nil && *c.AgeMax < c.AgeMin {
			return fmt.Errorf("criterion %d: ageMax %d below ageMin %d", c.ID, *c.AgeMax, c.AgeMin)
		}
		if c.Category == Geriatric && c.AgeMax != nil {
			return fmt.Errorf("criterion %d: geriatric criteria must be unbounded above", c.ID)
		}

		switch c.Method {
		case MethodDeterministic:
			if c.VitalRule == nil {
				return fmt.Errorf("criterion %d: deterministic without vital rule", c.ID)
			}
		case MethodHybrid:
			if c.VitalRule == nil || c.VitalRule.RequiresLLMConfirmation == "" {
				return fmt.Errorf("criterion %d: hybrid without vital rule and qualitative condition", c.ID)
			}
		case MethodLLM:
			if c.VitalRule != nil {
				return fmt.Errorf("criterion %d: llm criterion carries a vital rule", c.ID)
			}
		default:
			return fmt.Errorf("criterion %d: unknown evaluation method %q", c.ID, c.Method)
		}

		if r := c.VitalRule; r != nil {
			switch r.Field {
			case GCS, SBP, RR, HR:
			default:
				return fmt.Errorf("criterion %d: unknown vital field %q", c.ID, r.Field)
			}
			switch r.Operator {
			case OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpEqual:
			case OpRange:
				if r.ThresholdHigh == nil {
					return fmt.Errorf("criterion %d: range rule missing thresholdHigh", c.ID)
				}
			default:
				return fmt.Errorf("criterion %d: unknown operator %q", c.ID, r.Operator)
			}
		}
	}
	return nil
}

// parse decodes a JSON criteria document and builds a validated Set.
func parse(data []byte) (*Set, error) {
	var all []Criterion
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode criteria: %w", err)
	}
	return NewSet(all)
}
