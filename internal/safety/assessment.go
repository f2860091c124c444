package safety

import "github.com/google/uuid"

// Product is the engine's read-only view of a product.
type Product struct {
	ID                uuid.UUID `json:"id" yaml:"id"`
	Name              string    `json:"name" yaml:"name"`
	Brand             string    `json:"brand,omitempty" yaml:"brand"`
	Category          string    `json:"category,omitempty" yaml:"category"`
	Ingredients       []string  `json:"ingredients" yaml:"ingredients"`
	AllergenWarnings  []string  `json:"allergen_warnings,omitempty" yaml:"allergen_warnings"`
	DataQualityScore  int       `json:"data_quality_score" yaml:"data_quality_score"`
	VerificationCount int       `json:"verification_count" yaml:"verification_count"`
}

// RiskFactor explains why one ingredient contributed risk.
type RiskFactor struct {
	IngredientName       string      `json:"ingredient_name"`
	Level                RiskLevel   `json:"risk_level"`
	RestrictionsAffected []uuid.UUID `json:"restrictions_affected"`
	RestrictionNames     []string    `json:"restriction_names,omitempty"`
	HighestSeverity      Severity    `json:"highest_severity"`
	LifeThreatening      bool        `json:"life_threatening"`
}

// SafetyAssessment is the verdict for one product against one restriction
// set. A new value is produced for every call and never mutated afterwards.
type SafetyAssessment struct {
	ProductID                 uuid.UUID    `json:"product_id"`
	OverallSafetyLevel        RiskLevel    `json:"overall_safety_level"`
	RiskFactors               []RiskFactor `json:"risk_factors"`
	SafeIngredientsCount      int          `json:"safe_ingredients_count"`
	WarningIngredientsCount   int          `json:"warning_ingredients_count"`
	DangerousIngredientsCount int          `json:"dangerous_ingredients_count"`
	ConfidenceScore           int          `json:"confidence_score"`
}

// IngredientsEvaluated is the number of ingredients that landed in a bucket.
func (a *SafetyAssessment) IngredientsEvaluated() int {
	return a.SafeIngredientsCount + a.WarningIngredientsCount + a.DangerousIngredientsCount
}

// HasLifeThreateningRisk reports whether any risk factor implicates a
// life-threatening restriction.
func (a *SafetyAssessment) HasLifeThreateningRisk() bool {
	for _, rf := range a.RiskFactors {
		if rf.LifeThreatening {
			return true
		}
	}
	return false
}
