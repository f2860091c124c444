package safety

import "github.com/google/uuid"

// Aggregator folds a product's ingredients and a restriction set into a
// SafetyAssessment. It holds only its read-only lookup and may be shared
// across goroutines.
type Aggregator struct {
	lookup RiskLookup
}

// NewAggregator builds an Aggregator over lookup. A nil lookup knows nothing,
// so every ingredient is evaluated as safe.
func NewAggregator(lookup RiskLookup) *Aggregator {
	return &Aggregator{lookup: lookup}
}

// Assess computes the verdict for product against restrictions.
//
// Restrictions must already be filtered to active ones; an inactive entry is
// rejected rather than ignored. Each ingredient contributes the worst level
// among its own implicated restrictions, and the overall level is the worst
// of those contributions.
func (a *Aggregator) Assess(product *Product, restrictions []UserRestriction) (*SafetyAssessment, error) {
	if product == nil {
		return nil, invalid("product", "product is required")
	}
	active, err := activeSet(restrictions)
	if err != nil {
		return nil, err
	}

	result := &SafetyAssessment{
		ProductID:          product.ID,
		OverallSafetyLevel: Safe,
		RiskFactors:        []RiskFactor{},
	}

	evaluated := 0
	for _, name := range product.Ingredients {
		if NormalizeIngredientName(name) == "" {
			continue
		}
		evaluated++

		var ratings []IngredientRiskAssessment
		if a.lookup != nil {
			ratings = a.lookup.Lookup(name)
		}
		for _, r := range ratings {
			if !r.Level.Valid() {
				return nil, invalid("risk_data", "ingredient %q has invalid risk level %d", name, int(r.Level))
			}
		}

		implicated := Match(ratings, active)
		level := Safe
		for _, imp := range implicated {
			level = Worst(level, imp.Level)
		}

		switch level {
		case Danger:
			result.DangerousIngredientsCount++
			result.RiskFactors = append(result.RiskFactors, newRiskFactor(name, level, implicated, active))
		case Warning:
			result.WarningIngredientsCount++
			result.RiskFactors = append(result.RiskFactors, newRiskFactor(name, level, implicated, active))
		case Caution:
			result.WarningIngredientsCount++
		default:
			result.SafeIngredientsCount++
		}
		result.OverallSafetyLevel = Worst(result.OverallSafetyLevel, level)
	}

	result.ConfidenceScore = ScoreConfidence(evaluated, product.DataQualityScore, product.VerificationCount)
	return result, nil
}

func activeSet(restrictions []UserRestriction) (map[uuid.UUID]UserRestriction, error) {
	active := make(map[uuid.UUID]UserRestriction, len(restrictions))
	for i, r := range restrictions {
		if !r.Active {
			return nil, invalid("restrictions", "restriction %s at index %d is inactive", r.RestrictionID, i)
		}
		if r.RestrictionID == uuid.Nil {
			return nil, invalid("restrictions", "restriction at index %d has no id", i)
		}
		if !r.Severity.Valid() {
			return nil, invalid("restrictions", "restriction %s has invalid severity %d", r.RestrictionID, int(r.Severity))
		}
		if prev, dup := active[r.RestrictionID]; dup && prev.Severity >= r.Severity {
			continue
		}
		active[r.RestrictionID] = r
	}
	return active, nil
}

func newRiskFactor(name string, level RiskLevel, implicated []Implication, active map[uuid.UUID]UserRestriction) RiskFactor {
	rf := RiskFactor{
		IngredientName:       name,
		Level:                level,
		RestrictionsAffected: make([]uuid.UUID, 0, len(implicated)),
		HighestSeverity:      Mild,
	}
	for _, imp := range implicated {
		r := active[imp.RestrictionID]
		rf.RestrictionsAffected = append(rf.RestrictionsAffected, imp.RestrictionID)
		if r.Name != "" {
			rf.RestrictionNames = append(rf.RestrictionNames, r.Name)
		}
		if r.Severity > rf.HighestSeverity {
			rf.HighestSeverity = r.Severity
		}
	}
	rf.LifeThreatening = rf.HighestSeverity == LifeThreatening
	return rf
}
