package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/models"
)

// Models lists every persisted record in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.FamilyMember{},
		&models.DietaryRestriction{},
		&models.UserRestriction{},
		&models.Ingredient{},
		&models.IngredientRiskAssessment{},
		&models.Product{},
		&models.SafetyAssessmentRecord{},
	}
}

// AutoMigrate brings the schema up to date. On postgres the pgvector
// extension is installed first.
func AutoMigrate(db *gorm.DB) error {
	if IsPostgres(db) {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("failed to install pgvector extension: %w", err)
		}
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
