package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func TestProductEmbeddingTracksTokenOverlap(t *testing.T) {
	original := ProductEmbedding("Rice Crackers Acme snacks").Slice()
	similar := ProductEmbedding("Rice Crackers Sea Salt Acme snacks").Slice()
	unrelated := ProductEmbedding("Beef Jerky Tins Acme snacks").Slice()

	require.Len(t, original, EmbeddingDimensions)
	assert.Less(t, distance(original, similar), distance(original, unrelated))
}

func TestProductEmbeddingIsNormalised(t *testing.T) {
	v := ProductEmbedding("Oat Milk, Oatly; dairy-alternatives").Slice()
	var norm float64
	for _, x := range v {
		norm += float64(x * x)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)

	assert.Equal(t, v, ProductEmbedding("oatly OAT milk dairy alternatives oat").Slice())
	assert.Equal(t, make([]float32, EmbeddingDimensions), ProductEmbedding("  ").Slice())
}
