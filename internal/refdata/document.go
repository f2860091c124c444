// Package refdata loads dietary reference data (restrictions, ingredient
// ratings and products) from YAML documents into the database.
package refdata

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/safety"
)

// Document is the YAML layout of a reference data file.
type Document struct {
	Restrictions []RestrictionEntry `yaml:"restrictions"`
	Ingredients  []IngredientEntry  `yaml:"ingredients"`
	Products     []ProductEntry     `yaml:"products"`
}

type RestrictionEntry struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
}

type IngredientEntry struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Ratings     []RatingEntry `yaml:"ratings"`
}

// RatingEntry names its restriction rather than referencing an id, so
// documents stay portable between databases.
type RatingEntry struct {
	Restriction string `yaml:"restriction"`
	Level       string `yaml:"level"`
	Source      string `yaml:"source"`
	Notes       string `yaml:"notes"`
}

type ProductEntry struct {
	Name              string   `yaml:"name"`
	Brand             string   `yaml:"brand"`
	Category          string   `yaml:"category"`
	Barcode           string   `yaml:"barcode"`
	Ingredients       []string `yaml:"ingredients"`
	AllergenWarnings  []string `yaml:"allergen_warnings"`
	DataQualityScore  int      `yaml:"data_quality_score"`
	VerificationCount int      `yaml:"verification_count"`
}

// Decode reads and validates a document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode reference data: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks enum values and required names. Rating restrictions are
// resolved later, against the document and the database together.
func (d *Document) Validate() error {
	for i, r := range d.Restrictions {
		if strings.TrimSpace(r.Name) == "" {
			return &safety.InputError{Field: fmt.Sprintf("restrictions[%d].name", i), Reason: "must not be empty"}
		}
		if _, err := safety.ParseCategory(r.Category); err != nil {
			return &safety.InputError{Field: fmt.Sprintf("restrictions[%d].category", i), Reason: err.Error()}
		}
	}
	for i, ing := range d.Ingredients {
		if safety.NormalizeIngredientName(ing.Name) == "" {
			return &safety.InputError{Field: fmt.Sprintf("ingredients[%d].name", i), Reason: "must not be empty"}
		}
		for j, rt := range ing.Ratings {
			if strings.TrimSpace(rt.Restriction) == "" {
				return &safety.InputError{Field: fmt.Sprintf("ingredients[%d].ratings[%d].restriction", i, j), Reason: "must not be empty"}
			}
			if _, err := safety.ParseRiskLevel(rt.Level); err != nil {
				return &safety.InputError{Field: fmt.Sprintf("ingredients[%d].ratings[%d].level", i, j), Reason: err.Error()}
			}
		}
	}
	for i, p := range d.Products {
		if strings.TrimSpace(p.Name) == "" {
			return &safety.InputError{Field: fmt.Sprintf("products[%d].name", i), Reason: "must not be empty"}
		}
		if p.DataQualityScore < 0 || p.DataQualityScore > 100 {
			return &safety.InputError{Field: fmt.Sprintf("products[%d].data_quality_score", i), Reason: "must be between 0 and 100"}
		}
		if p.VerificationCount < 0 {
			return &safety.InputError{Field: fmt.Sprintf("products[%d].verification_count", i), Reason: "must not be negative"}
		}
	}
	return nil
}
