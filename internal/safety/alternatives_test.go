package safety

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankOrdersSafestFirstAndDropsDanger(t *testing.T) {
	ranker := NewRanker(NewAggregator(testTable(t)))
	restrictions := []UserRestriction{{RestrictionID: celiac, Name: "Celiac Disease", Severity: Severe, Active: true}}

	original := &Product{ID: uuid.New(), Name: "Wheat Crackers", Category: "snacks", Ingredients: []string{"wheat flour", "salt"}}
	dangerous := &Product{ID: uuid.New(), Name: "Spelt Crackers", Category: "snacks", Ingredients: []string{"wheat flour"}}
	cautious := &Product{ID: uuid.New(), Name: "Oat Crackers", Category: "snacks", Ingredients: []string{"oats", "salt"}}
	safe := &Product{ID: uuid.New(), Name: "Rice Crackers", Category: "snacks", Ingredients: []string{"rice", "salt"}}

	got, err := ranker.Rank(original, []*Product{dangerous, cautious, safe}, restrictions)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, safe, got[0].Product)
	assert.Equal(t, Safe, got[0].Assessment.OverallSafetyLevel)
	assert.Equal(t, cautious, got[1].Product)
	assert.Equal(t, Caution, got[1].Assessment.OverallSafetyLevel)
	assert.Contains(t, got[0].Reasons, "Rated safe instead of danger")
	assert.Contains(t, got[0].Reasons, "Free of wheat flour")
	assert.Contains(t, got[0].Reasons, "No Celiac Disease concerns")
	assert.Contains(t, got[0].Reasons, "Same category")
}

func TestRankHonoursMinimumLevelAndLimit(t *testing.T) {
	ranker := NewRanker(NewAggregator(testTable(t)))
	restrictions := []UserRestriction{active(celiac, Severe)}
	original := &Product{Name: "Bread", Ingredients: []string{"wheat flour"}}
	candidates := []*Product{
		{Name: "Oat Bread", Ingredients: []string{"oats"}},
		{Name: "Malt Bread", Ingredients: []string{"malt extract"}},
		{Name: "Rice Bread", Ingredients: []string{"rice"}},
	}

	strict, err := ranker.Rank(original, candidates, restrictions, WithMinimumLevel(Safe))
	require.NoError(t, err)
	require.Len(t, strict, 1)
	assert.Equal(t, "Rice Bread", strict[0].Product.Name)

	loose, err := ranker.Rank(original, candidates, restrictions, WithMinimumLevel(Warning), WithLimit(2))
	require.NoError(t, err)
	require.Len(t, loose, 2)
	assert.Equal(t, "Rice Bread", loose[0].Product.Name)
	assert.Equal(t, "Oat Bread", loose[1].Product.Name)

	_, err = ranker.Rank(original, candidates, restrictions, WithMinimumLevel(RiskLevel(5)))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRankUsesMatchScoreWithinLevel(t *testing.T) {
	ranker := NewRanker(NewAggregator(testTable(t)))
	original := &Product{ID: uuid.New(), Name: "Honey Oat Granola", Brand: "Acme", Category: "cereal"}
	candidates := []*Product{
		{ID: uuid.New(), Name: "Corn Flakes", Category: "cereal"},
		{ID: uuid.New(), Name: "Honey Oat Granola Bites", Brand: "Acme", Category: "cereal"},
		{ID: original.ID, Name: "Honey Oat Granola", Brand: "Acme", Category: "cereal"},
		nil,
	}

	got, err := ranker.Rank(original, candidates, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Honey Oat Granola Bites", got[0].Product.Name)
	assert.InDelta(t, 40+20+40*0.75, got[0].MatchScore, 1e-9)
	assert.Contains(t, got[0].Reasons, "Same brand")
	assert.InDelta(t, 40.0, got[1].MatchScore, 1e-9)
}

func TestRankRejectsNilOriginal(t *testing.T) {
	_, err := NewRanker(NewAggregator(nil)).Rank(nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMatchScore(t *testing.T) {
	a := &Product{Name: "Dark Chocolate Bar", Brand: "Cocoa Co", Category: "Sweets"}
	b := &Product{Name: "dark chocolate", Brand: "cocoa co", Category: "sweets"}
	assert.InDelta(t, 40+20+40*(2.0/3.0), MatchScore(a, b), 1e-9)
	assert.Zero(t, MatchScore(&Product{}, &Product{}))
}
