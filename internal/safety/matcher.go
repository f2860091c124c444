package safety

import "github.com/google/uuid"

// Implication records that an ingredient concerns one of the caller's
// restrictions at a given level.
type Implication struct {
	RestrictionID uuid.UUID `json:"restriction_id"`
	Level         RiskLevel `json:"risk_level"`
}

// Match returns the caller's restrictions implicated by one ingredient.
//
// Only ratings for restrictions present in active are considered, and
// safe-level ratings do not implicate anything. An ingredient with no
// overlapping data yields nil: missing data lowers confidence elsewhere, it
// never raises risk. Duplicate ratings for one restriction keep the worst.
func Match(assessments []IngredientRiskAssessment, active map[uuid.UUID]UserRestriction) []Implication {
	var out []Implication
	index := make(map[uuid.UUID]int)
	for _, a := range assessments {
		if _, ok := active[a.RestrictionID]; !ok || a.Level <= Safe {
			continue
		}
		if i, seen := index[a.RestrictionID]; seen {
			out[i].Level = Worst(out[i].Level, a.Level)
			continue
		}
		index[a.RestrictionID] = len(out)
		out = append(out, Implication{RestrictionID: a.RestrictionID, Level: a.Level})
	}
	return out
}
