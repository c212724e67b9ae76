// Package pgcriteria loads the activation criteria dataset from Postgres.
// It is an alternative to the embedded dataset for deployments that manage
// criteria outside the binary.
package pgcriteria

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/acuity/internal/criteria"
)

const selectCriteria = `
SELECT id, description, activation_level, category, age_range_label,
       age_min, age_max, evaluation_method, vital_rule
FROM criteria
ORDER BY id`

// row mirrors one criteria table row. vital_rule is a jsonb column holding
// the same shape as the embedded dataset.
type row struct {
	ID          int
	Description string
	Level       string
	Category    string
	AgeLabel    string
	AgeMin      *int
	AgeMax      *int
	Method      string
	VitalRule   []byte
}

// Load reads all criteria and validates them into a Set.
func Load(ctx context.Context, pool *pgxpool.Pool) (*criteria.Set, error) {
	rows, err := pool.Query(ctx, selectCriteria)
	if err != nil {
		return nil, fmt.Errorf("query criteria: %w", err)
	}

	recs, err := pgx.CollectRows(rows, pgx.RowToStructByPos[row])
	if err != nil {
		return nil, fmt.Errorf("scan criteria rows: %w", err)
	}

	crits := make([]criteria.Criterion, 0, len(recs))
	for _, rec := range recs {
		crit, err := toCriterion(rec)
		if err != nil {
			return nil, err
		}
		crits = append(crits, crit)
	}

	set, err := criteria.NewSet(crits)
	if err != nil {
		return nil, fmt.Errorf("validate criteria from database: %w", err)
	}
	return set, nil
}

func toCriterion(rec row) (criteria.Criterion, error) {
	if rec.AgeMin == nil {
		return criteria.Criterion{}, fmt.Errorf("criterion %d: age_min is null", rec.ID)
	}
	crit := criteria.Criterion{
		ID:              rec.ID,
		Description:     rec.Description,
		ActivationLevel: criteria.ActivationLevel(rec.Level),
		Category:        criteria.Category(rec.Category),
		AgeRangeLabel:   rec.AgeLabel,
		AgeMin:          *rec.AgeMin,
		AgeMax:          rec.AgeMax,
		Method:          criteria.Method(rec.Method),
	}

	if len(rec.VitalRule) > 0 {
		var rule criteria.VitalRule
		if err := json.Unmarshal(rec.VitalRule, &rule); err != nil {
			return criteria.Criterion{}, fmt.Errorf("criterion %d: decode vital_rule: %w", rec.ID, err)
		}
		crit.VitalRule = &rule
	}

	return crit, nil
}
