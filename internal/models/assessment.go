package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SafetyAssessmentRecord is the audit copy of one engine verdict.
type SafetyAssessmentRecord struct {
	Base
	UserID                    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	FamilyMemberID            *uuid.UUID     `gorm:"type:uuid" json:"family_member_id,omitempty"`
	ProductID                 uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	OverallSafetyLevel        string         `gorm:"size:20;not null" json:"overall_safety_level"`
	SafeIngredientsCount      int            `gorm:"not null" json:"safe_ingredients_count"`
	WarningIngredientsCount   int            `gorm:"not null" json:"warning_ingredients_count"`
	DangerousIngredientsCount int            `gorm:"not null" json:"dangerous_ingredients_count"`
	ConfidenceScore           int            `gorm:"not null" json:"confidence_score"`
	RiskFactors               datatypes.JSON `json:"risk_factors"`
	RestrictionFingerprint    string         `gorm:"size:64;not null" json:"restriction_fingerprint"`
}

func (SafetyAssessmentRecord) TableName() string {
	return "safety_assessments"
}
