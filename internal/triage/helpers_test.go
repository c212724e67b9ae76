package triage

import (
	"testing"

	"github.com/linnemanlabs/acuity/internal/criteria"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }
func strp(s string) *string     { return &s }

// loadCriteria returns the embedded production dataset.
func loadCriteria(t *testing.T) *criteria.Set {
	t.Helper()
	set, err := criteria.Load()
	if err != nil {
		t.Fatalf("load criteria: %v", err)
	}
	return set
}
