package refdata_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/refdata"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/safety"
)

func loadReference(t *testing.T) *refdata.Offline {
	t.Helper()
	f, err := os.Open("testdata/reference.yaml")
	require.NoError(t, err)
	defer f.Close()

	doc, err := refdata.Decode(f)
	require.NoError(t, err)
	off, err := doc.Offline()
	require.NoError(t, err)
	return off
}

func TestOfflineAssessment(t *testing.T) {
	off := loadReference(t)
	assert.Equal(t, 4, off.Table.Len())
	require.Len(t, off.Products, 2)

	holding, err := off.Holding([]string{"Peanut Allergy=life_threatening", "vegan"})
	require.NoError(t, err)
	require.Len(t, holding, 2)
	assert.Equal(t, safety.Moderate, holding[1].Severity)

	bar, ok := off.Product("peanut crunch bar")
	require.True(t, ok)

	result, err := safety.NewAggregator(off.Table).Assess(bar, holding)
	require.NoError(t, err)
	assert.Equal(t, safety.Danger, result.OverallSafetyLevel)
	assert.True(t, result.HasLifeThreateningRisk())

	alts, err := safety.NewRanker(safety.NewAggregator(off.Table)).Rank(bar, off.Products, holding)
	require.NoError(t, err)
	require.Len(t, alts, 1)
	assert.Equal(t, "Oat Crunch Bar", alts[0].Product.Name)
}

func TestOfflineHoldingErrors(t *testing.T) {
	off := loadReference(t)

	_, err := off.Holding([]string{"Halal=mild"})
	assert.ErrorIs(t, err, safety.ErrInvalidInput)
	_, err = off.Holding([]string{"Vegan=sometimes"})
	assert.ErrorIs(t, err, safety.ErrInvalidInput)

	byCode, ok := off.Product("0001")
	require.True(t, ok)
	assert.Equal(t, "Peanut Crunch Bar", byCode.Name)

	_, ok = off.Product("missing")
	assert.False(t, ok)
}

func TestRestrictionIDIsStable(t *testing.T) {
	assert.Equal(t, refdata.RestrictionID("Vegan"), refdata.RestrictionID(" vegan "))
	assert.NotEqual(t, refdata.RestrictionID("Vegan"), refdata.RestrictionID("Halal"))
}
