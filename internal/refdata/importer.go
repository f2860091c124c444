package refdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/steven-d-pennington/restricted-diet-app/backend/config"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/cache"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/logger"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/models"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/safety"
)

// ObjectOpener streams objects from a bucket store such as S3.
type ObjectOpener interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Stats counts what an import touched.
type Stats struct {
	Restrictions int `json:"restrictions"`
	Ingredients  int `json:"ingredients"`
	Ratings      int `json:"ratings"`
	Products     int `json:"products"`
	Purged       int `json:"purged"`
}

type Importer struct {
	db      *gorm.DB
	cache   *cache.AssessmentCache
	objects ObjectOpener
	log     *logger.Logger
}

// NewImporter builds an importer. objects may be nil when only local files
// are imported.
func NewImporter(db *gorm.DB, c *cache.AssessmentCache, objects ObjectOpener, log *logger.Logger) *Importer {
	return &Importer{db: db, cache: c, objects: objects, log: log}
}

// ImportPath imports a local file or an s3://bucket/key object.
func (im *Importer) ImportPath(ctx context.Context, path string) (*Stats, error) {
	rc, err := im.open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	doc, err := Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return im.Import(ctx, doc)
}

func (im *Importer) open(ctx context.Context, path string) (io.ReadCloser, error) {
	if bucket, key, ok := config.ParseS3URI(path); ok {
		if im.objects == nil {
			return nil, fmt.Errorf("cannot read %s: object storage is not configured", path)
		}
		return im.objects.Open(ctx, bucket, key)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference data: %w", err)
	}
	return f, nil
}

// Import upserts the document in one transaction and then drops cached
// assessments, which may have been computed from the old ratings.
func (im *Importer) Import(ctx context.Context, doc *Document) (*Stats, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	stats := &Stats{}
	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		restrictions := make(map[string]*models.DietaryRestriction, len(doc.Restrictions))
		for _, entry := range doc.Restrictions {
			r, err := upsertRestriction(tx, entry)
			if err != nil {
				return err
			}
			restrictions[strings.ToLower(r.Name)] = r
			stats.Restrictions++
		}

		for _, entry := range doc.Ingredients {
			n, err := upsertIngredient(tx, entry, restrictions)
			if err != nil {
				return err
			}
			stats.Ingredients++
			stats.Ratings += n
		}

		for _, entry := range doc.Products {
			if err := upsertProduct(tx, entry); err != nil {
				return err
			}
			stats.Products++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	purged, err := im.cache.Purge(ctx)
	if err != nil {
		// cache keys carry the ratings revision, so a failed purge only wastes space
		im.log.Warn("failed to purge assessment cache after import", "error", err)
	}
	stats.Purged = purged

	im.log.Info("reference data imported",
		"restrictions", stats.Restrictions,
		"ingredients", stats.Ingredients,
		"ratings", stats.Ratings,
		"products", stats.Products,
		"purged", stats.Purged,
	)
	return stats, nil
}

func upsertRestriction(tx *gorm.DB, entry RestrictionEntry) (*models.DietaryRestriction, error) {
	category, _ := safety.ParseCategory(entry.Category)
	var r models.DietaryRestriction
	err := tx.Where(models.DietaryRestriction{Name: strings.TrimSpace(entry.Name)}).
		Assign(map[string]interface{}{
			"category":    string(category),
			"description": entry.Description,
		}).
		FirstOrCreate(&r).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert restriction %q: %w", entry.Name, err)
	}
	return &r, nil
}

func upsertIngredient(tx *gorm.DB, entry IngredientEntry, known map[string]*models.DietaryRestriction) (int, error) {
	name := safety.NormalizeIngredientName(entry.Name)
	var ing models.Ingredient
	err := tx.Where(models.Ingredient{Name: name}).
		Assign(map[string]interface{}{"description": entry.Description}).
		FirstOrCreate(&ing).Error
	if err != nil {
		return 0, fmt.Errorf("failed to upsert ingredient %q: %w", name, err)
	}

	for _, rt := range entry.Ratings {
		restriction, err := resolveRestriction(tx, rt.Restriction, known)
		if err != nil {
			return 0, fmt.Errorf("ingredient %q: %w", name, err)
		}
		level, _ := safety.ParseRiskLevel(rt.Level)

		var ra models.IngredientRiskAssessment
		err = tx.Where(models.IngredientRiskAssessment{IngredientID: ing.ID, RestrictionID: restriction.ID}).
			Assign(map[string]interface{}{
				"risk_level": level.String(),
				"source":     rt.Source,
				"notes":      rt.Notes,
			}).
			FirstOrCreate(&ra).Error
		if err != nil {
			return 0, fmt.Errorf("failed to upsert rating of %q for %q: %w", name, restriction.Name, err)
		}
	}
	return len(entry.Ratings), nil
}

// resolveRestriction finds a restriction named in the document or already
// stored in the database.
func resolveRestriction(tx *gorm.DB, name string, known map[string]*models.DietaryRestriction) (*models.DietaryRestriction, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if r, ok := known[key]; ok {
		return r, nil
	}
	var r models.DietaryRestriction
	err := tx.Where("LOWER(name) = ?", key).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &safety.InputError{Field: "restriction", Reason: fmt.Sprintf("unknown restriction %q", name)}
	}
	if err != nil {
		return nil, err
	}
	known[key] = &r
	return &r, nil
}

// upsertProduct matches existing products by barcode, or by name and brand
// when no barcode is given.
func upsertProduct(tx *gorm.DB, entry ProductEntry) error {
	var p models.Product
	q := tx.Model(&models.Product{})
	if barcode := strings.TrimSpace(entry.Barcode); barcode != "" {
		q = q.Where("barcode = ?", barcode)
	} else {
		q = q.Where("name = ? AND brand = ?", strings.TrimSpace(entry.Name), strings.TrimSpace(entry.Brand))
	}
	err := q.First(&p).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	p.Name = strings.TrimSpace(entry.Name)
	p.Brand = strings.TrimSpace(entry.Brand)
	p.Category = strings.TrimSpace(entry.Category)
	p.Barcode = strings.TrimSpace(entry.Barcode)
	p.IngredientsList = entry.Ingredients
	p.AllergenWarnings = entry.AllergenWarnings
	p.DataQualityScore = entry.DataQualityScore
	p.VerificationCount = entry.VerificationCount

	if err := tx.Save(&p).Error; err != nil {
		return fmt.Errorf("failed to upsert product %q: %w", entry.Name, err)
	}
	return nil
}
