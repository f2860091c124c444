package models

import "github.com/google/uuid"

type Ingredient struct {
	Base
	Name            string                     `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description     string                     `gorm:"type:text" json:"description"`
	RiskAssessments []IngredientRiskAssessment `gorm:"foreignKey:IngredientID" json:"risk_assessments,omitempty"`
}

// IngredientRiskAssessment rates one ingredient for one restriction.
type IngredientRiskAssessment struct {
	Base
	IngredientID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ingredient_restriction" json:"ingredient_id"`
	RestrictionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ingredient_restriction" json:"restriction_id"`
	RiskLevel     string    `gorm:"size:20;not null" json:"risk_level"`
	Source        string    `gorm:"size:100" json:"source"`
	Notes         string    `gorm:"type:text" json:"notes"`
}

func (IngredientRiskAssessment) TableName() string {
	return "ingredient_risk_assessments"
}
