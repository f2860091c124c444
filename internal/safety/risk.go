package safety

import (
	"fmt"
	"strings"
)

// RiskLevel classifies how risky an ingredient is for one restriction.
// Levels are totally ordered: Safe < Caution < Warning < Danger.
type RiskLevel int

const (
	Safe RiskLevel = iota
	Caution
	Warning
	Danger
)

var riskLevelNames = [...]string{"safe", "caution", "warning", "danger"}

// RiskLevels lists every level from safest to most severe.
func RiskLevels() []RiskLevel {
	return []RiskLevel{Safe, Caution, Warning, Danger}
}

// Valid reports whether r is one of the four defined levels.
func (r RiskLevel) Valid() bool {
	return r >= Safe && r <= Danger
}

func (r RiskLevel) String() string {
	if !r.Valid() {
		return fmt.Sprintf("RiskLevel(%d)", int(r))
	}
	return riskLevelNames[r]
}

// ParseRiskLevel parses the lowercase name of a level.
func ParseRiskLevel(s string) (RiskLevel, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range riskLevelNames {
		if n == name {
			return RiskLevel(i), nil
		}
	}
	return Safe, fmt.Errorf("unknown risk level %q", s)
}

func (r RiskLevel) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid risk level %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *RiskLevel) UnmarshalText(text []byte) error {
	level, err := ParseRiskLevel(string(text))
	if err != nil {
		return err
	}
	*r = level
	return nil
}

// Worst returns the more severe of a and b.
func Worst(a, b RiskLevel) RiskLevel {
	if b > a {
		return b
	}
	return a
}

// WorstOf folds levels with Worst. An empty list is Safe.
func WorstOf(levels []RiskLevel) RiskLevel {
	worst := Safe
	for _, l := range levels {
		worst = Worst(worst, l)
	}
	return worst
}
