package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/logger"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/models"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/safety"
	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/types"
)

type RestrictionService struct {
	db  *gorm.DB
	log *logger.Logger
}

var _ IRestrictionService = (*RestrictionService)(nil)

func NewRestrictionService(db *gorm.DB, log *logger.Logger) *RestrictionService {
	return &RestrictionService{db: db, log: log}
}

// Catalog returns every known restriction ordered by name.
func (s *RestrictionService) Catalog(ctx context.Context) ([]models.DietaryRestriction, error) {
	var out []models.DietaryRestriction
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// List returns the restrictions held by the account owner, or by one of
// their family members when memberID is set. Inactive rows are included.
func (s *RestrictionService) List(ctx context.Context, userID uuid.UUID, memberID *uuid.UUID) ([]models.UserRestriction, error) {
	if err := s.checkMember(ctx, userID, memberID); err != nil {
		return nil, err
	}
	var out []models.UserRestriction
	err := s.scoped(ctx, userID, memberID).
		Preload("Restriction").
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Add attaches a restriction. Adding one that was previously deactivated
// reactivates the existing row with the new severity.
func (s *RestrictionService) Add(ctx context.Context, userID uuid.UUID, req *types.AddRestrictionRequest) (*models.UserRestriction, error) {
	severity, err := safety.ParseSeverity(req.Severity)
	if err != nil {
		return nil, &safety.InputError{Field: "severity", Reason: err.Error()}
	}
	if err := s.checkMember(ctx, userID, req.FamilyMemberID); err != nil {
		return nil, err
	}

	var restriction models.DietaryRestriction
	if err := s.db.WithContext(ctx).First(&restriction, "id = ?", req.RestrictionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var existing models.UserRestriction
	err = s.scoped(ctx, userID, req.FamilyMemberID).
		Where("restriction_id = ?", req.RestrictionID).
		First(&existing).Error
	switch {
	case err == nil:
		existing.Severity = severity.String()
		existing.IsActive = true
		if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, err
		}
		existing.Restriction = &restriction
		s.log.Info("restriction reactivated", "user_id", userID, "restriction", restriction.Name)
		return &existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	ur := &models.UserRestriction{
		UserID:         userID,
		FamilyMemberID: req.FamilyMemberID,
		RestrictionID:  restriction.ID,
		Severity:       severity.String(),
		IsActive:       true,
	}
	if err := s.db.WithContext(ctx).Create(ur).Error; err != nil {
		return nil, err
	}
	ur.Restriction = &restriction
	s.log.Info("restriction added", "user_id", userID, "restriction", restriction.Name, "severity", ur.Severity)
	return ur, nil
}

func (s *RestrictionService) UpdateSeverity(ctx context.Context, userID, id uuid.UUID, severity string) (*models.UserRestriction, error) {
	sev, err := safety.ParseSeverity(severity)
	if err != nil {
		return nil, &safety.InputError{Field: "severity", Reason: err.Error()}
	}
	ur, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(ur).Update("severity", sev.String()).Error; err != nil {
		return nil, err
	}
	ur.Severity = sev.String()
	return ur, nil
}

// Deactivate marks a restriction inactive. The row is kept so earlier
// assessments remain explainable.
func (s *RestrictionService) Deactivate(ctx context.Context, userID, id uuid.UUID) error {
	ur, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(ur).Update("is_active", false).Error; err != nil {
		return err
	}
	s.log.Info("restriction deactivated", "user_id", userID, "id", id)
	return nil
}

// Active converts the held, active restrictions into engine input.
func (s *RestrictionService) Active(ctx context.Context, userID uuid.UUID, memberID *uuid.UUID) ([]safety.UserRestriction, error) {
	if err := s.checkMember(ctx, userID, memberID); err != nil {
		return nil, err
	}
	var rows []models.UserRestriction
	err := s.scoped(ctx, userID, memberID).
		Where("is_active = ?", true).
		Preload("Restriction").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]safety.UserRestriction, 0, len(rows))
	for _, r := range rows {
		sev, err := safety.ParseSeverity(r.Severity)
		if err != nil {
			s.log.Error("stored restriction has invalid severity", "id", r.ID, "severity", r.Severity)
			return nil, err
		}
		ur := safety.UserRestriction{
			RestrictionID: r.RestrictionID,
			Severity:      sev,
			Active:        true,
		}
		if r.Restriction != nil {
			ur.Name = r.Restriction.Name
		}
		out = append(out, ur)
	}
	return out, nil
}

func (s *RestrictionService) AddMember(ctx context.Context, userID uuid.UUID, req *types.AddFamilyMemberRequest) (*models.FamilyMember, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &safety.InputError{Field: "name", Reason: "must not be empty"}
	}
	member := &models.FamilyMember{
		UserID:       userID,
		Name:         name,
		Relationship: strings.TrimSpace(req.Relationship),
	}
	if err := s.db.WithContext(ctx).Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func (s *RestrictionService) ListMembers(ctx context.Context, userID uuid.UUID) ([]models.FamilyMember, error) {
	var out []models.FamilyMember
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RestrictionService) scoped(ctx context.Context, userID uuid.UUID, memberID *uuid.UUID) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.UserRestriction{}).Where("user_id = ?", userID)
	if memberID == nil {
		return q.Where("family_member_id IS NULL")
	}
	return q.Where("family_member_id = ?", *memberID)
}

// checkMember verifies that memberID, when set, belongs to userID.
func (s *RestrictionService) checkMember(ctx context.Context, userID uuid.UUID, memberID *uuid.UUID) error {
	if memberID == nil {
		return nil
	}
	var member models.FamilyMember
	err := s.db.WithContext(ctx).First(&member, "id = ?", *memberID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if member.UserID != userID {
		return ErrForbidden
	}
	return nil
}

func (s *RestrictionService) owned(ctx context.Context, userID, id uuid.UUID) (*models.UserRestriction, error) {
	var ur models.UserRestriction
	err := s.db.WithContext(ctx).Preload("Restriction").First(&ur, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if ur.UserID != userID {
		return nil, ErrForbidden
	}
	return &ur, nil
}
