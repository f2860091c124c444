package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/database"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/logger"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/models"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/safety"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/types"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type ProductService struct {
	db  *gorm.DB
	log *logger.Logger
}

var _ IProductService = (*ProductService)(nil)

func NewProductService(db *gorm.DB, log *logger.Logger) *ProductService {
	return &ProductService{db: db, log: log}
}

func (s *ProductService) Create(ctx context.Context, userID *uuid.UUID, req *types.CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &safety.InputError{Field: "name", Reason: "must not be empty"}
	}
	if req.DataQualityScore < 0 || req.DataQualityScore > 100 {
		return nil, &safety.InputError{Field: "data_quality_score", Reason: "must be between 0 and 100"}
	}
	if req.VerificationCount < 0 {
		return nil, &safety.InputError{Field: "verification_count", Reason: "must not be negative"}
	}

	ingredients := cleanList(req.Ingredients)
	if len(ingredients) == 0 && req.IngredientsText != "" {
		ingredients = ParseIngredientList(req.IngredientsText)
	}

	product := &models.Product{
		Name:              name,
		Brand:             strings.TrimSpace(req.Brand),
		Category:          strings.TrimSpace(req.Category),
		Barcode:           strings.TrimSpace(req.Barcode),
		IngredientsList:   ingredients,
		AllergenWarnings:  cleanList(req.AllergenWarnings),
		DataQualityScore:  req.DataQualityScore,
		VerificationCount: req.VerificationCount,
		CreatedBy:         userID,
	}
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	s.log.Info("product created", "id", product.ID, "name", product.Name, "ingredients", len(product.IngredientsList))
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// likeEscaper makes user text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Search matches products by name, brand or barcode. On postgres results are
// ordered by embedding distance to the query.
func (s *ProductService) Search(ctx context.Context, query string, limit int) ([]models.Product, error) {
	limit = clampLimit(limit)
	q := s.db.WithContext(ctx).Model(&models.Product{}).Limit(limit)

	query = strings.TrimSpace(query)
	if query != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(brand) LIKE ? ESCAPE '\' OR barcode = ?`, like, like, query)
		if database.IsPostgres(s.db) {
			q = q.Order(clause.OrderBy{Expression: clause.Expr{
				SQL:  "embedding <-> ?",
				Vars: []interface{}{models.ProductEmbedding(query)},
			}})
		}
	}
	q = q.Order("name ASC")

	var out []models.Product
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Candidates returns products that could replace original: those sharing its
// category or brand, nearest first on postgres.
func (s *ProductService) Candidates(ctx context.Context, original *models.Product, limit int) ([]models.Product, error) {
	limit = clampLimit(limit)
	q := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id <> ?", original.ID).
		Limit(limit)

	switch {
	case original.Category != "" && original.Brand != "":
		q = q.Where("category = ? OR brand = ?", original.Category, original.Brand)
	case original.Category != "":
		q = q.Where("category = ?", original.Category)
	case original.Brand != "":
		q = q.Where("brand = ?", original.Brand)
	}

	if database.IsPostgres(s.db) {
		q = q.Order(clause.OrderBy{Expression: clause.Expr{
			SQL:  "embedding <-> ?",
			Vars: []interface{}{original.Embedding},
		}})
	}
	q = q.Order("name ASC")

	var out []models.Product
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ToSafetyProduct converts a stored product into engine input.
func ToSafetyProduct(p *models.Product) *safety.Product {
	return &safety.Product{
		ID:                p.ID,
		Name:              p.Name,
		Brand:             p.Brand,
		Category:          p.Category,
		Ingredients:       append([]string(nil), p.IngredientsList...),
		AllergenWarnings:  append([]string(nil), p.AllergenWarnings...),
		DataQualityScore:  p.DataQualityScore,
		VerificationCount: p.VerificationCount,
	}
}

// ParseIngredientList splits label text such as
// "Ingredients: Flour (Wheat, Niacin), Sugar; Salt." into individual
// ingredients. Separators inside parentheses or brackets are ignored.
func ParseIngredientList(text string) []string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, ":"); i >= 0 && strings.EqualFold(strings.TrimSpace(text[:i]), "ingredients") {
		text = text[i+1:]
	}

	var (
		out   []string
		depth int
		start int
	)
	flush := func(end int) {
		item := strings.TrimSpace(text[start:end])
		item = strings.TrimRight(item, ". ")
		if item != "" {
			out = append(out, item)
		}
	}
	for i, r := range text {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',', ';':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(text))
	return out
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	return min(limit, maxSearchLimit)
}
