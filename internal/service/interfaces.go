package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/models"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/safety"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IRestrictionService manages the restriction catalog and the restrictions
// users and their family members hold.
type IRestrictionService interface {
	Catalog(ctx context.Context) ([]models.DietaryRestriction, error)
	List(ctx context.Context, userID uuid.UUID, memberID *uuid.UUID) ([]models.UserRestriction, error)
	Add(ctx context.Context, userID uuid.UUID, req *types.AddRestrictionRequest) (*models.UserRestriction, error)
	UpdateSeverity(ctx context.Context, userID, id uuid.UUID, severity string) (*models.UserRestriction, error)
	Deactivate(ctx context.Context, userID, id uuid.UUID) error
	Active(ctx context.Context, userID uuid.UUID, memberID *uuid.UUID) ([]safety.UserRestriction, error)
	AddMember(ctx context.Context, userID uuid.UUID, req *types.AddFamilyMemberRequest) (*models.FamilyMember, error)
	ListMembers(ctx context.Context, userID uuid.UUID) ([]models.FamilyMember, error)
}

// IProductService defines the interface for product operations
type IProductService interface {
	Create(ctx context.Context, userID *uuid.UUID, req *types.CreateProductRequest) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Search(ctx context.Context, query string, limit int) ([]models.Product, error)
	Candidates(ctx context.Context, original *models.Product, limit int) ([]models.Product, error)
}

// VerdictCache stores assessments by product and fingerprint. A miss or an
// error means the verdict is recomputed.
type VerdictCache interface {
	Get(ctx context.Context, productID uuid.UUID, fingerprint string) (*safety.SafetyAssessment, bool, error)
	Set(ctx context.Context, productID uuid.UUID, fingerprint string, a *safety.SafetyAssessment) error
}

// ISafetyService produces and records safety verdicts.
type ISafetyService interface {
	Assess(ctx context.Context, userID uuid.UUID, memberID *uuid.UUID, productID uuid.UUID) (*safety.SafetyAssessment, error)
	AssessBatch(ctx context.Context, userID uuid.UUID, memberID *uuid.UUID, productIDs []uuid.UUID) ([]*safety.SafetyAssessment, error)
	Alternatives(ctx context.Context, userID uuid.UUID, memberID *uuid.UUID, productID uuid.UUID, opts ...safety.RankOption) ([]safety.Alternative, error)
	History(ctx context.Context, userID, productID uuid.UUID, limit int) ([]models.SafetyAssessmentRecord, error)
}
