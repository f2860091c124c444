package safety

import (
	"strings"

	"github.com/google/uuid"
)

// IngredientRiskAssessment rates one ingredient for one restriction.
type IngredientRiskAssessment struct {
	RestrictionID uuid.UUID `json:"restriction_id" yaml:"restriction_id"`
	Level         RiskLevel `json:"risk_level" yaml:"risk_level"`
}

// Ingredient is a named substance with its known per-restriction ratings.
type Ingredient struct {
	Name        string                     `json:"name" yaml:"name"`
	Assessments []IngredientRiskAssessment `json:"assessments" yaml:"assessments"`
}

// RiskLookup resolves the known ratings for an ingredient name. A nil or
// empty result means nothing is known about the ingredient.
type RiskLookup interface {
	Lookup(ingredient string) []IngredientRiskAssessment
}

// NormalizeIngredientName lowercases and collapses whitespace so that
// "Peanut  Oil" and "peanut oil" resolve to the same entry.
func NormalizeIngredientName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// RiskTable is an in-memory RiskLookup. It is safe for concurrent reads once
// built.
type RiskTable struct {
	entries map[string][]IngredientRiskAssessment
}

// NewRiskTable indexes ingredients by normalized name. Ratings for the same
// name are merged; an invalid level is rejected.
func NewRiskTable(ingredients []Ingredient) (*RiskTable, error) {
	t := &RiskTable{entries: make(map[string][]IngredientRiskAssessment, len(ingredients))}
	for _, ing := range ingredients {
		key := NormalizeIngredientName(ing.Name)
		if key == "" {
			return nil, invalid("ingredient.name", "empty ingredient name")
		}
		for _, a := range ing.Assessments {
			if !a.Level.Valid() {
				return nil, invalid("ingredient.assessments", "%q has invalid risk level %d", ing.Name, int(a.Level))
			}
			if a.RestrictionID == uuid.Nil {
				return nil, invalid("ingredient.assessments", "%q has an assessment without a restriction", ing.Name)
			}
		}
		t.entries[key] = append(t.entries[key], ing.Assessments...)
	}
	return t, nil
}

func (t *RiskTable) Lookup(ingredient string) []IngredientRiskAssessment {
	if t == nil {
		return nil
	}
	return t.entries[NormalizeIngredientName(ingredient)]
}

// Len reports how many distinct ingredient names are indexed.
func (t *RiskTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
