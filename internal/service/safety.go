package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/cache"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/logger"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/models"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/safety"
)

const (
	// MaxBatchSize bounds how many products one batch request may assess.
	MaxBatchSize = 50

	defaultBatchConcurrency = 4
	candidatePoolSize       = 50
	defaultHistoryLimit     = 20
)

// SafetyService loads products, restrictions and reference ratings, runs the
// engine, and records every verdict it hands out.
type SafetyService struct {
	db           *gorm.DB
	restrictions IRestrictionService
	products     IProductService
	cache        VerdictCache
	log          *logger.Logger
	concurrency  int
}

var _ ISafetyService = (*SafetyService)(nil)

func NewSafetyService(db *gorm.DB, restrictions IRestrictionService, products IProductService, c VerdictCache, log *logger.Logger) *SafetyService {
	return &SafetyService{
		db:           db,
		restrictions: restrictions,
		products:     products,
		cache:        c,
		log:          log,
		concurrency:  defaultBatchConcurrency,
	}
}

// SetBatchConcurrency changes how many products AssessBatch evaluates at once.
func (s *SafetyService) SetBatchConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

func (s *SafetyService) Assess(ctx context.Context, userID uuid.UUID, memberID *uuid.UUID, productID uuid.UUID) (*safety.SafetyAssessment, error) {
	restrictions, err := s.restrictions.Active(ctx, userID, memberID)
	if err != nil {
		return nil, err
	}
	return s.assess(ctx, userID, memberID, productID, restrictions)
}

// AssessBatch assesses several products against the same restriction set.
// Results are returned in request order.
func (s *SafetyService) AssessBatch(ctx context.Context, userID uuid.UUID, memberID *uuid.UUID, productIDs []uuid.UUID) ([]*safety.SafetyAssessment, error) {
	if len(productIDs) == 0 {
		return nil, &safety.InputError{Field: "product_ids", Reason: "must not be empty"}
	}
	if len(productIDs) > MaxBatchSize {
		return nil, &safety.InputError{Field: "product_ids", Reason: fmt.Sprintf("at most %d products per batch", MaxBatchSize)}
	}

	restrictions, err := s.restrictions.Active(ctx, userID, memberID)
	if err != nil {
		return nil, err
	}

	results := make([]*safety.SafetyAssessment, len(productIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range productIDs {
		i, id := i, id
		g.Go(func() error {
			a, err := s.assess(gctx, userID, memberID, id, restrictions)
			if err != nil {
				return fmt.Errorf("product %s: %w", id, err)
			}
			results[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Alternatives ranks products in the same category or brand that are at least
// as safe as the chosen minimum level.
func (s *SafetyService) Alternatives(ctx context.Context, userID uuid.UUID, memberID *uuid.UUID, productID uuid.UUID, opts ...safety.RankOption) ([]safety.Alternative, error) {
	original, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	restrictions, err := s.restrictions.Active(ctx, userID, memberID)
	if err != nil {
		return nil, err
	}
	pool, err := s.products.Candidates(ctx, original, candidatePoolSize)
	if err != nil {
		return nil, err
	}

	candidates := make([]*safety.Product, 0, len(pool))
	names := append([]string(nil), original.IngredientsList...)
	for i := range pool {
		candidates = append(candidates, ToSafetyProduct(&pool[i]))
		names = append(names, pool[i].IngredientsList...)
	}

	table, err := s.lookupFor(ctx, names)
	if err != nil {
		return nil, err
	}
	ranker := safety.NewRanker(safety.NewAggregator(table))
	alts, err := ranker.Rank(ToSafetyProduct(original), candidates, restrictions, opts...)
	if err != nil {
		return nil, err
	}
	s.log.Debug("alternatives ranked", "product_id", productID, "pool", len(candidates), "returned", len(alts))
	return alts, nil
}

// History returns recorded assessments for a product, newest first.
func (s *SafetyService) History(ctx context.Context, userID, productID uuid.UUID, limit int) ([]models.SafetyAssessmentRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	var out []models.SafetyAssessmentRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Order("created_at DESC").
		Limit(min(limit, maxSearchLimit)).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SafetyService) assess(ctx context.Context, userID uuid.UUID, memberID *uuid.UUID, productID uuid.UUID, restrictions []safety.UserRestriction) (*safety.SafetyAssessment, error) {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	names := normalizedNames(product.IngredientsList)
	ratings, err := s.ratingsRevision(ctx, names)
	if err != nil {
		return nil, err
	}
	fingerprint := cache.Fingerprint(restrictions, product.UpdatedAt, ratings)

	result, hit, err := s.cache.Get(ctx, product.ID, fingerprint)
	if err != nil {
		s.log.Warn("assessment cache read failed", "product_id", product.ID, "error", err)
	}
	if !hit {
		table, err := s.lookupFor(ctx, names)
		if err != nil {
			return nil, err
		}
		result, err = safety.NewAggregator(table).Assess(ToSafetyProduct(product), restrictions)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, product.ID, fingerprint, result); err != nil {
			s.log.Warn("assessment cache write failed", "product_id", product.ID, "error", err)
		}
	}

	if err := s.record(ctx, userID, memberID, fingerprint, result); err != nil {
		return nil, err
	}
	s.log.Info("product assessed",
		"product_id", product.ID,
		"level", result.OverallSafetyLevel.String(),
		"confidence", result.ConfidenceScore,
		"cached", hit,
	)
	return result, nil
}

func (s *SafetyService) record(ctx context.Context, userID uuid.UUID, memberID *uuid.UUID, fingerprint string, a *safety.SafetyAssessment) error {
	factors, err := json.Marshal(a.RiskFactors)
	if err != nil {
		return fmt.Errorf("failed to encode risk factors: %w", err)
	}
	rec := &models.SafetyAssessmentRecord{
		UserID:                    userID,
		FamilyMemberID:            memberID,
		ProductID:                 a.ProductID,
		OverallSafetyLevel:        a.OverallSafetyLevel.String(),
		SafeIngredientsCount:      a.SafeIngredientsCount,
		WarningIngredientsCount:   a.WarningIngredientsCount,
		DangerousIngredientsCount: a.DangerousIngredientsCount,
		ConfidenceScore:           a.ConfidenceScore,
		RiskFactors:               datatypes.JSON(factors),
		RestrictionFingerprint:    fingerprint,
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to record assessment: %w", err)
	}
	return nil
}

// normalizedNames returns the distinct normalized ingredient names.
func normalizedNames(ingredientNames []string) []string {
	seen := make(map[string]struct{}, len(ingredientNames))
	names := make([]string, 0, len(ingredientNames))
	for _, n := range ingredientNames {
		key := safety.NormalizeIngredientName(n)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, key)
	}
	return names
}

// ratingsRevision summarises the stored ratings of the named ingredients as
// their count and latest change, so cached verdicts go stale with them.
func (s *SafetyService) ratingsRevision(ctx context.Context, names []string) (string, error) {
	if len(names) == 0 {
		return "", nil
	}
	var (
		count  int64
		latest sql.NullString
	)
	err := s.db.WithContext(ctx).Model(&models.IngredientRiskAssessment{}).
		Select("COUNT(*), MAX(ingredient_risk_assessments.updated_at)").
		Joins("JOIN ingredients ON ingredients.id = ingredient_risk_assessments.ingredient_id").
		Where("ingredients.name IN ?", names).
		Row().Scan(&count, &latest)
	if err != nil {
		return "", fmt.Errorf("failed to read ratings revision: %w", err)
	}
	return fmt.Sprintf("%d@%s", count, latest.String), nil
}

// lookupFor loads the reference ratings for the given ingredient names into
// an in-memory table.
func (s *SafetyService) lookupFor(ctx context.Context, ingredientNames []string) (*safety.RiskTable, error) {
	names := normalizedNames(ingredientNames)
	if len(names) == 0 {
		return safety.NewRiskTable(nil)
	}

	var rows []models.Ingredient
	if err := s.db.WithContext(ctx).Preload("RiskAssessments").Where("name IN ?", names).Find(&rows).Error; err != nil {
		return nil, err
	}

	ingredients := make([]safety.Ingredient, 0, len(rows))
	for _, row := range rows {
		ing := safety.Ingredient{Name: row.Name}
		for _, ra := range row.RiskAssessments {
			level, err := safety.ParseRiskLevel(ra.RiskLevel)
			if err != nil {
				s.log.Error("stored ingredient has invalid risk level", "ingredient", row.Name, "risk_level", ra.RiskLevel)
				return nil, err
			}
			ing.Assessments = append(ing.Assessments, safety.IngredientRiskAssessment{
				RestrictionID: ra.RestrictionID,
				Level:         level,
			})
		}
		ingredients = append(ingredients, ing)
	}
	return safety.NewRiskTable(ingredients)
}
