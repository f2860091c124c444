package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/refdata"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/safety"
)

const sampleData = `
restrictions:
  - name: Peanut Allergy
    category: allergy
  - name: Vegan
    category: lifestyle
ingredients:
  - name: Peanuts
    ratings:
      - restriction: Peanut Allergy
        level: danger
  - name: Milk
    ratings:
      - restriction: Vegan
        level: danger
products:
  - name: Peanut Bar
    category: snacks
    barcode: "100"
    ingredients: [Peanuts, Sugar]
    data_quality_score: 90
    verification_count: 3
  - name: Oat Bar
    category: snacks
    ingredients: [Oats, Sugar]
    data_quality_score: 70
  - name: Milk Chocolate
    category: candy
    ingredients: [Milk, Sugar]
`

func sampleDoc(t *testing.T) *refdata.Document {
	t.Helper()
	doc, err := refdata.Decode(strings.NewReader(sampleData))
	require.NoError(t, err)
	return doc
}

func TestEvaluateText(t *testing.T) {
	var out bytes.Buffer
	err := evaluate(&out, sampleDoc(t), []string{"Peanut Allergy=life_threatening"}, evalOptions{
		product:      "100",
		alternatives: true,
		minimum:      safety.Caution,
		limit:        5,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Peanut Bar: DANGER")
	assert.Contains(t, text, "! Peanuts: danger for Peanut Allergy LIFE-THREATENING")
	assert.Contains(t, text, "-> Oat Bar [safe")
	assert.Contains(t, text, "-> Milk Chocolate [safe")
}

func TestEvaluateJSONAllProducts(t *testing.T) {
	var out bytes.Buffer
	err := evaluate(&out, sampleDoc(t), []string{"Vegan"}, evalOptions{format: "json"})
	require.NoError(t, err)

	var results []struct {
		Product struct {
			Name string `json:"name"`
		} `json:"product"`
		Assessment struct {
			Level string `json:"overall_safety_level"`
		} `json:"assessment"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 3)

	levels := map[string]string{}
	for _, r := range results {
		levels[r.Product.Name] = r.Assessment.Level
	}
	assert.Equal(t, "safe", levels["Peanut Bar"])
	assert.Equal(t, "danger", levels["Milk Chocolate"])
}

func TestEvaluateErrors(t *testing.T) {
	doc := sampleDoc(t)
	var out bytes.Buffer

	err := evaluate(&out, doc, []string{"Kosher"}, evalOptions{})
	assert.ErrorIs(t, err, safety.ErrInvalidInput)

	err = evaluate(&out, doc, nil, evalOptions{product: "Nope"})
	assert.ErrorContains(t, err, "not found")

	err = evaluate(&out, doc, nil, evalOptions{format: "xml"})
	assert.ErrorContains(t, err, "unknown output format")
}
