package models

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type Product struct {
	Base
	DeletedAt         gorm.DeletedAt   `gorm:"index" json:"-"`
	Name              string           `gorm:"size:255;not null" json:"name"`
	Brand             string           `gorm:"size:100;index" json:"brand"`
	Category          string           `gorm:"size:100;index" json:"category"`
	Barcode           string           `gorm:"size:50;index" json:"barcode,omitempty"`
	IngredientsList   JSONBStringArray `gorm:"type:jsonb;not null" json:"ingredients_list"`
	AllergenWarnings  JSONBStringArray `gorm:"type:jsonb;not null" json:"allergen_warnings"`
	DataQualityScore  int              `gorm:"not null" json:"data_quality_score"`
	VerificationCount int              `gorm:"not null" json:"verification_count"`
	Embedding         pgvector.Vector  `gorm:"type:vector(64)" json:"-"`
	CreatedBy         *uuid.UUID       `gorm:"type:uuid" json:"created_by,omitempty"`
}

// BeforeSave keeps the similarity embedding in step with the descriptive
// fields.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.Embedding = ProductEmbedding(p.Name + " " + p.Brand + " " + p.Category)
	if p.IngredientsList == nil {
		p.IngredientsList = JSONBStringArray{}
	}
	if p.AllergenWarnings == nil {
		p.AllergenWarnings = JSONBStringArray{}
	}
	return nil
}

// EmbeddingDimensions is the width of the product similarity vector.
const EmbeddingDimensions = 64

// ProductEmbedding hashes the distinct lowercase word tokens of text into a
// unit-length bag-of-words vector. Texts sharing more tokens lie closer
// together under euclidean distance. Empty text yields the zero vector.
func ProductEmbedding(text string) pgvector.Vector {
	vec := make([]float32, EmbeddingDimensions)
	seen := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[h.Sum32()%EmbeddingDimensions]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return pgvector.NewVector(vec)
}
