package models

import "github.com/google/uuid"

// DietaryRestriction is catalog data such as "Peanut Allergy".
type DietaryRestriction struct {
	Base
	Name        string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Category    string `gorm:"size:20;not null" json:"category"`
	Description string `gorm:"type:text" json:"description"`
}

func (DietaryRestriction) TableName() string {
	return "dietary_restrictions"
}

// UserRestriction links a user, or one of their family members, to a
// restriction. Rows are deactivated, never deleted, so past assessments stay
// explainable.
type UserRestriction struct {
	Base
	UserID         uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	FamilyMemberID *uuid.UUID          `gorm:"type:uuid;index" json:"family_member_id,omitempty"`
	RestrictionID  uuid.UUID           `gorm:"type:uuid;not null;index" json:"restriction_id"`
	Restriction    *DietaryRestriction `gorm:"foreignKey:RestrictionID" json:"restriction,omitempty"`
	Severity       string              `gorm:"size:20;not null" json:"severity"`
	IsActive       bool                `gorm:"not null" json:"is_active"`
}

func (UserRestriction) TableName() string {
	return "user_restrictions"
}
