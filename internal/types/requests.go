package types

import "github.com/google/uuid"

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string    `json:"token"`
	User  UserBrief `json:"user"`
}

type UserBrief struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// AddRestrictionRequest attaches a catalog restriction to the caller or to
// one of their family members.
type AddRestrictionRequest struct {
	RestrictionID  uuid.UUID  `json:"restriction_id" binding:"required"`
	Severity       string     `json:"severity" binding:"required"`
	FamilyMemberID *uuid.UUID `json:"family_member_id"`
}

type UpdateRestrictionRequest struct {
	Severity string `json:"severity" binding:"required"`
}

type AddFamilyMemberRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	Relationship string `json:"relationship" binding:"max=50"`
}

// CreateProductRequest accepts ingredients either as a list or as the free
// text printed on a label.
type CreateProductRequest struct {
	Name              string   `json:"name" binding:"required,max=255"`
	Brand             string   `json:"brand" binding:"max=100"`
	Category          string   `json:"category" binding:"max=100"`
	Barcode           string   `json:"barcode" binding:"max=50"`
	Ingredients       []string `json:"ingredients"`
	IngredientsText   string   `json:"ingredients_text"`
	AllergenWarnings  []string `json:"allergen_warnings"`
	DataQualityScore  int      `json:"data_quality_score"`
	VerificationCount int      `json:"verification_count"`
}

// BatchAssessRequest asks for several product verdicts at once.
type BatchAssessRequest struct {
	ProductIDs     []uuid.UUID `json:"product_ids" binding:"required,min=1"`
	FamilyMemberID *uuid.UUID  `json:"family_member_id"`
}
