package safety

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Severity is how strongly a restriction applies to a person. It is ordered
// independently of RiskLevel: Mild < Moderate < Severe < LifeThreatening.
type Severity int

const (
	Mild Severity = iota
	Moderate
	Severe
	LifeThreatening
)

var severityNames = [...]string{"mild", "moderate", "severe", "life_threatening"}

func (s Severity) Valid() bool {
	return s >= Mild && s <= LifeThreatening
}

func (s Severity) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// ParseSeverity parses a severity name such as "life_threatening".
func ParseSeverity(s string) (Severity, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range severityNames {
		if n == name {
			return Severity(i), nil
		}
	}
	return Mild, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Category groups restrictions by the kind of concern behind them.
type Category string

const (
	CategoryAllergy   Category = "allergy"
	CategoryMedical   Category = "medical"
	CategoryLifestyle Category = "lifestyle"
	CategoryReligious Category = "religious"
)

// ParseCategory accepts only the four known categories.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryAllergy, CategoryMedical, CategoryLifestyle, CategoryReligious:
		return c, nil
	default:
		return "", fmt.Errorf("unknown restriction category %q", s)
	}
}

// DietaryRestriction is immutable reference data describing a concern such as
// "peanut allergy".
type DietaryRestriction struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category Category  `json:"category"`
}

// UserRestriction ties a person to a DietaryRestriction with a severity.
type UserRestriction struct {
	RestrictionID uuid.UUID `json:"restriction_id"`
	Name          string    `json:"name,omitempty"`
	Severity      Severity  `json:"severity"`
	Active        bool      `json:"is_active"`
}
