package testhelpers

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/models"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/safety"
)

// TestPassword is the plain-text password of users made by CreateTestUser.
const TestPassword = "testpassword123"

// CreateTestUser creates a user with a unique email and TestPassword.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Name:         "Test User",
		Email:        fmt.Sprintf("testuser+%s@example.com", uuid.NewString()),
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateTestMember(t *testing.T, db *gorm.DB, userID uuid.UUID, name string) *models.FamilyMember {
	t.Helper()
	member := &models.FamilyMember{UserID: userID, Name: name, Relationship: "child"}
	require.NoError(t, db.Create(member).Error)
	return member
}

// CreateTestRestriction adds a catalog restriction.
func CreateTestRestriction(t *testing.T, db *gorm.DB, name string, category safety.Category) *models.DietaryRestriction {
	t.Helper()
	r := &models.DietaryRestriction{Name: name, Category: string(category)}
	require.NoError(t, db.Create(r).Error)
	return r
}

// HoldRestriction gives the user an active restriction.
func HoldRestriction(t *testing.T, db *gorm.DB, userID, restrictionID uuid.UUID, severity safety.Severity) *models.UserRestriction {
	t.Helper()
	ur := &models.UserRestriction{
		UserID:        userID,
		RestrictionID: restrictionID,
		Severity:      severity.String(),
		IsActive:      true,
	}
	require.NoError(t, db.Create(ur).Error)
	return ur
}

// CreateTestIngredient stores an ingredient under its normalized name with a
// rating per restriction.
func CreateTestIngredient(t *testing.T, db *gorm.DB, name string, ratings map[uuid.UUID]safety.RiskLevel) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: safety.NormalizeIngredientName(name)}
	require.NoError(t, db.Create(ing).Error)
	for restrictionID, level := range ratings {
		ra := &models.IngredientRiskAssessment{
			IngredientID:  ing.ID,
			RestrictionID: restrictionID,
			RiskLevel:     level.String(),
			Source:        "test",
		}
		require.NoError(t, db.Create(ra).Error)
		ing.RiskAssessments = append(ing.RiskAssessments, *ra)
	}
	return ing
}

func CreateTestProduct(t *testing.T, db *gorm.DB, name, brand, category string, ingredients ...string) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:              name,
		Brand:             brand,
		Category:          category,
		IngredientsList:   ingredients,
		DataQualityScore:  80,
		VerificationCount: 1,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
