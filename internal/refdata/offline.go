package refdata

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/safety"
)

// restrictionNamespace seeds the stable ids given to restrictions that are
// evaluated straight from a document.
var restrictionNamespace = uuid.MustParse("6f1c1f1e-8f0a-4b53-9a57-2d6b3c0e8a11")

// RestrictionID is the stable id of a restriction name within documents.
func RestrictionID(name string) uuid.UUID {
	return uuid.NewSHA1(restrictionNamespace, []byte(strings.ToLower(strings.TrimSpace(name))))
}

// Offline is a document prepared for evaluation without a database.
type Offline struct {
	Restrictions map[string]safety.DietaryRestriction
	Table        *safety.RiskTable
	Products     []*safety.Product

	barcodes map[string]int
}

// Offline resolves rating references and builds the engine inputs held in
// the document.
func (d *Document) Offline() (*Offline, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	out := &Offline{
		Restrictions: make(map[string]safety.DietaryRestriction, len(d.Restrictions)),
		barcodes:     make(map[string]int),
	}
	for _, r := range d.Restrictions {
		category, _ := safety.ParseCategory(r.Category)
		key := strings.ToLower(strings.TrimSpace(r.Name))
		out.Restrictions[key] = safety.DietaryRestriction{
			ID:       RestrictionID(r.Name),
			Name:     strings.TrimSpace(r.Name),
			Category: category,
		}
	}

	ingredients := make([]safety.Ingredient, 0, len(d.Ingredients))
	for _, ing := range d.Ingredients {
		entry := safety.Ingredient{Name: ing.Name}
		for _, rt := range ing.Ratings {
			r, ok := out.Restrictions[strings.ToLower(strings.TrimSpace(rt.Restriction))]
			if !ok {
				return nil, &safety.InputError{Field: "restriction", Reason: fmt.Sprintf("unknown restriction %q", rt.Restriction)}
			}
			level, _ := safety.ParseRiskLevel(rt.Level)
			entry.Assessments = append(entry.Assessments, safety.IngredientRiskAssessment{RestrictionID: r.ID, Level: level})
		}
		ingredients = append(ingredients, entry)
	}
	table, err := safety.NewRiskTable(ingredients)
	if err != nil {
		return nil, err
	}
	out.Table = table

	for _, p := range d.Products {
		if p.Barcode != "" {
			out.barcodes[p.Barcode] = len(out.Products)
		}
		out.Products = append(out.Products, &safety.Product{
			ID:                uuid.NewSHA1(restrictionNamespace, []byte("product:"+p.Barcode+":"+p.Brand+":"+p.Name)),
			Name:              p.Name,
			Brand:             p.Brand,
			Category:          p.Category,
			Ingredients:       p.Ingredients,
			AllergenWarnings:  p.AllergenWarnings,
			DataQualityScore:  p.DataQualityScore,
			VerificationCount: p.VerificationCount,
		})
	}
	return out, nil
}

// Holding turns "Name=severity" pairs into active user restrictions.
func (o *Offline) Holding(specs []string) ([]safety.UserRestriction, error) {
	out := make([]safety.UserRestriction, 0, len(specs))
	for _, spec := range specs {
		name, sev, ok := strings.Cut(spec, "=")
		if !ok {
			sev = safety.Moderate.String()
		}
		r, found := o.Restrictions[strings.ToLower(strings.TrimSpace(name))]
		if !found {
			return nil, &safety.InputError{Field: "restriction", Reason: fmt.Sprintf("unknown restriction %q", name)}
		}
		severity, err := safety.ParseSeverity(sev)
		if err != nil {
			return nil, &safety.InputError{Field: "severity", Reason: err.Error()}
		}
		out = append(out, safety.UserRestriction{RestrictionID: r.ID, Name: r.Name, Severity: severity, Active: true})
	}
	return out, nil
}

// Product finds a document product by barcode or case-insensitive name.
func (o *Offline) Product(ref string) (*safety.Product, bool) {
	if i, ok := o.barcodes[ref]; ok {
		return o.Products[i], true
	}
	for i, p := range o.Products {
		if strings.EqualFold(p.Name, ref) {
			return o.Products[i], true
		}
	}
	return nil, false
}
