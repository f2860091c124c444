package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Base
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
}

// FamilyMember is a person managed by a user account, such as a child,
// who carries restrictions of their own.
type FamilyMember struct {
	Base
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Relationship string    `gorm:"size:50" json:"relationship"`
}

func (FamilyMember) TableName() string {
	return "family_members"
}
