package safety

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	peanutAllergy = uuid.MustParse("7b0c1f52-3f0e-4a55-9c7e-2f8e1f1c0a01")
	celiac        = uuid.MustParse("7b0c1f52-3f0e-4a55-9c7e-2f8e1f1c0a02")
	lactose       = uuid.MustParse("7b0c1f52-3f0e-4a55-9c7e-2f8e1f1c0a03")
)

func testTable(t *testing.T) *RiskTable {
	t.Helper()
	table, err := NewRiskTable([]Ingredient{
		{Name: "peanut oil", Assessments: []IngredientRiskAssessment{{RestrictionID: peanutAllergy, Level: Danger}}},
		{Name: "wheat flour", Assessments: []IngredientRiskAssessment{{RestrictionID: celiac, Level: Danger}}},
		{Name: "malt extract", Assessments: []IngredientRiskAssessment{{RestrictionID: celiac, Level: Warning}}},
		{Name: "whey", Assessments: []IngredientRiskAssessment{
			{RestrictionID: lactose, Level: Caution},
			{RestrictionID: peanutAllergy, Level: Danger},
		}},
		{Name: "oats", Assessments: []IngredientRiskAssessment{{RestrictionID: celiac, Level: Caution}}},
		{Name: "rice", Assessments: []IngredientRiskAssessment{{RestrictionID: celiac, Level: Safe}}},
	})
	require.NoError(t, err)
	return table
}

func active(id uuid.UUID, severity Severity) UserRestriction {
	return UserRestriction{RestrictionID: id, Severity: severity, Active: true}
}

func TestAssessPeanutOilIsDangerous(t *testing.T) {
	agg := NewAggregator(testTable(t))
	product := &Product{Name: "Snack", Ingredients: []string{"sugar", "peanut oil"}, DataQualityScore: 80}
	restrictions := []UserRestriction{{RestrictionID: peanutAllergy, Name: "Peanut Allergy", Severity: LifeThreatening, Active: true}}

	got, err := agg.Assess(product, restrictions)
	require.NoError(t, err)

	assert.Equal(t, Danger, got.OverallSafetyLevel)
	assert.Equal(t, 1, got.DangerousIngredientsCount)
	assert.Equal(t, 1, got.SafeIngredientsCount)
	assert.Equal(t, 0, got.WarningIngredientsCount)
	require.Len(t, got.RiskFactors, 1)
	rf := got.RiskFactors[0]
	assert.Equal(t, "peanut oil", rf.IngredientName)
	assert.Equal(t, Danger, rf.Level)
	assert.Equal(t, []uuid.UUID{peanutAllergy}, rf.RestrictionsAffected)
	assert.Equal(t, []string{"Peanut Allergy"}, rf.RestrictionNames)
	assert.True(t, rf.LifeThreatening)
	assert.True(t, got.HasLifeThreateningRisk())
}

func TestAssessWithoutRestrictionsIsSafe(t *testing.T) {
	agg := NewAggregator(testTable(t))
	product := &Product{Ingredients: []string{"sugar", "peanut oil"}, DataQualityScore: 80}

	got, err := agg.Assess(product, nil)
	require.NoError(t, err)

	assert.Equal(t, Safe, got.OverallSafetyLevel)
	assert.Equal(t, 2, got.SafeIngredientsCount)
	assert.Empty(t, got.RiskFactors)
	assert.NotNil(t, got.RiskFactors)
}

func TestAssessConfidenceForShortList(t *testing.T) {
	agg := NewAggregator(testTable(t))
	product := &Product{Ingredients: []string{"a", "b", "c", "d", "e"}, DataQualityScore: 80}

	got, err := agg.Assess(product, []UserRestriction{active(celiac, Severe)})
	require.NoError(t, err)

	assert.Equal(t, Safe, got.OverallSafetyLevel)
	assert.Equal(t, 4, got.ConfidenceScore)
}

func TestAssessEmptyIngredientList(t *testing.T) {
	agg := NewAggregator(testTable(t))
	restrictionSets := [][]UserRestriction{
		nil,
		{active(peanutAllergy, LifeThreatening)},
		{active(peanutAllergy, Mild), active(celiac, Severe), active(lactose, Moderate)},
	}
	for i, rs := range restrictionSets {
		got, err := agg.Assess(&Product{DataQualityScore: 35}, rs)
		require.NoError(t, err, "set %d", i)
		assert.Equal(t, Safe, got.OverallSafetyLevel)
		assert.Zero(t, got.SafeIngredientsCount)
		assert.Zero(t, got.WarningIngredientsCount)
		assert.Zero(t, got.DangerousIngredientsCount)
		assert.Equal(t, 35, got.ConfidenceScore)
	}
}

func TestAssessWorstLevelWinsPerIngredient(t *testing.T) {
	agg := NewAggregator(testTable(t))
	product := &Product{Ingredients: []string{"whey"}, DataQualityScore: 100}

	got, err := agg.Assess(product, []UserRestriction{active(lactose, Mild), active(peanutAllergy, Severe)})
	require.NoError(t, err)

	assert.Equal(t, Danger, got.OverallSafetyLevel)
	assert.Equal(t, 1, got.DangerousIngredientsCount)
	assert.Zero(t, got.WarningIngredientsCount)
	require.Len(t, got.RiskFactors, 1)
	assert.ElementsMatch(t, []uuid.UUID{lactose, peanutAllergy}, got.RiskFactors[0].RestrictionsAffected)
	assert.Equal(t, Severe, got.RiskFactors[0].HighestSeverity)
	assert.False(t, got.RiskFactors[0].LifeThreatening)
}

func TestAssessCautionAndWarningShareBucket(t *testing.T) {
	agg := NewAggregator(testTable(t))
	product := &Product{Ingredients: []string{"oats", "malt extract", "rice"}, DataQualityScore: 100}

	got, err := agg.Assess(product, []UserRestriction{active(celiac, Severe)})
	require.NoError(t, err)

	assert.Equal(t, Warning, got.OverallSafetyLevel)
	assert.Equal(t, 2, got.WarningIngredientsCount)
	assert.Equal(t, 1, got.SafeIngredientsCount)
	require.Len(t, got.RiskFactors, 1)
	assert.Equal(t, "malt extract", got.RiskFactors[0].IngredientName)
}

func TestAssessOnlyCautionYieldsCaution(t *testing.T) {
	agg := NewAggregator(testTable(t))
	got, err := agg.Assess(&Product{Ingredients: []string{"Oats"}}, []UserRestriction{active(celiac, Mild)})
	require.NoError(t, err)
	assert.Equal(t, Caution, got.OverallSafetyLevel)
	assert.Empty(t, got.RiskFactors)
}

func TestAssessBucketsSumToEvaluated(t *testing.T) {
	agg := NewAggregator(testTable(t))
	pool := []string{"peanut oil", "wheat flour", "malt extract", "whey", "oats", "rice", "sugar", "salt"}
	restrictions := []UserRestriction{active(peanutAllergy, LifeThreatening), active(celiac, Severe), active(lactose, Mild)}

	for n := 0; n <= 40; n++ {
		ingredients := make([]string, n)
		for i := range ingredients {
			ingredients[i] = pool[(i*7+n)%len(pool)]
		}
		got, err := agg.Assess(&Product{Ingredients: ingredients, DataQualityScore: 60}, restrictions)
		require.NoError(t, err)
		assert.Equal(t, n, got.IngredientsEvaluated(), "n=%d", n)
		assert.Equal(t, n, got.SafeIngredientsCount+got.WarningIngredientsCount+got.DangerousIngredientsCount)
	}
}

func TestAssessSkipsBlankIngredients(t *testing.T) {
	agg := NewAggregator(testTable(t))
	got, err := agg.Assess(&Product{Ingredients: []string{"sugar", "  ", ""}, DataQualityScore: 100}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got.IngredientsEvaluated())
	assert.Equal(t, 1, got.ConfidenceScore)
}

func TestAssessIsDeterministic(t *testing.T) {
	agg := NewAggregator(testTable(t))
	product := &Product{
		ID:                uuid.New(),
		Ingredients:       []string{"whey", "peanut oil", "malt extract", "oats", "sugar"},
		DataQualityScore:  70,
		VerificationCount: 3,
	}
	restrictions := []UserRestriction{active(peanutAllergy, LifeThreatening), active(celiac, Severe), active(lactose, Mild)}

	first, err := agg.Assess(product, restrictions)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := agg.Assess(product, restrictions)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, []string{"whey", "peanut oil", "malt extract", "oats", "sugar"}, product.Ingredients)
}

func TestAssessRejectsInvalidInput(t *testing.T) {
	agg := NewAggregator(testTable(t))

	_, err := agg.Assess(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	inactive := UserRestriction{RestrictionID: peanutAllergy, Severity: Severe, Active: false}
	_, err = agg.Assess(&Product{Ingredients: []string{"sugar"}}, []UserRestriction{inactive})
	assert.ErrorIs(t, err, ErrInvalidInput)
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "restrictions", inputErr.Field)

	_, err = agg.Assess(&Product{}, []UserRestriction{{Active: true}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = agg.Assess(&Product{}, []UserRestriction{{RestrictionID: celiac, Severity: Severity(12), Active: true}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

type badLookup struct{}

func (badLookup) Lookup(string) []IngredientRiskAssessment {
	return []IngredientRiskAssessment{{RestrictionID: celiac, Level: RiskLevel(-1)}}
}

func TestAssessRejectsInvalidRiskData(t *testing.T) {
	_, err := NewAggregator(badLookup{}).Assess(&Product{Ingredients: []string{"x"}}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAssessWithNilLookup(t *testing.T) {
	got, err := NewAggregator(nil).Assess(&Product{Ingredients: []string{"peanut oil"}}, []UserRestriction{active(peanutAllergy, Severe)})
	require.NoError(t, err)
	assert.Equal(t, Safe, got.OverallSafetyLevel)
	assert.Equal(t, 1, got.SafeIngredientsCount)
}

func TestAssessDuplicateRestrictionKeepsHigherSeverity(t *testing.T) {
	agg := NewAggregator(testTable(t))
	got, err := agg.Assess(&Product{Ingredients: []string{"peanut oil"}}, []UserRestriction{
		active(peanutAllergy, LifeThreatening),
		active(peanutAllergy, Mild),
	})
	require.NoError(t, err)
	require.Len(t, got.RiskFactors, 1)
	assert.Equal(t, LifeThreatening, got.RiskFactors[0].HighestSeverity)
}

func ExampleAggregator_Assess() {
	peanut := uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	table, _ := NewRiskTable([]Ingredient{
		{Name: "peanut oil", Assessments: []IngredientRiskAssessment{{RestrictionID: peanut, Level: Danger}}},
	})
	got, _ := NewAggregator(table).Assess(
		&Product{Ingredients: []string{"sugar", "peanut oil"}, DataQualityScore: 80},
		[]UserRestriction{{RestrictionID: peanut, Severity: LifeThreatening, Active: true}},
	)
	fmt.Println(got.OverallSafetyLevel, got.SafeIngredientsCount, got.DangerousIngredientsCount, got.ConfidenceScore)
	// Output: danger 1 1 2
}
