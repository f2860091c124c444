package safety

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	DefaultAlternativeLimit = 10

	categoryWeight = 40.0
	brandWeight    = 20.0
	nameWeight     = 40.0
)

// Alternative is a candidate substitute with its own assessment.
type Alternative struct {
	Product    *Product          `json:"product"`
	Assessment *SafetyAssessment `json:"assessment"`
	MatchScore float64           `json:"match_score"`
	Reasons    []string          `json:"reasons"`
}

type rankOptions struct {
	minimum RiskLevel
	limit   int
}

// RankOption adjusts Ranker.Rank.
type RankOption func(*rankOptions)

// WithMinimumLevel sets the worst level a candidate may have and still be
// returned. The default is Caution.
func WithMinimumLevel(level RiskLevel) RankOption {
	return func(o *rankOptions) { o.minimum = level }
}

// WithLimit caps the number of alternatives returned. Non-positive values
// keep the default.
func WithLimit(n int) RankOption {
	return func(o *rankOptions) {
		if n > 0 {
			o.limit = n
		}
	}
}

// Ranker orders substitutes for a product using the same Aggregator that
// judged the original, so "unsafe" and "safer" mean the same thing on both
// sides.
type Ranker struct {
	aggregator *Aggregator
}

func NewRanker(aggregator *Aggregator) *Ranker {
	return &Ranker{aggregator: aggregator}
}

// Rank assesses every candidate against restrictions, drops those worse than
// the minimum level, and orders the rest safest first, then by match score.
func (r *Ranker) Rank(original *Product, candidates []*Product, restrictions []UserRestriction, opts ...RankOption) ([]Alternative, error) {
	o := rankOptions{minimum: Caution, limit: DefaultAlternativeLimit}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.minimum.Valid() {
		return nil, invalid("minimum_level", "invalid risk level %d", int(o.minimum))
	}

	base, err := r.aggregator.Assess(original, restrictions)
	if err != nil {
		return nil, err
	}

	out := make([]Alternative, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || (c.ID != uuid.Nil && c.ID == original.ID) {
			continue
		}
		assessment, err := r.aggregator.Assess(c, restrictions)
		if err != nil {
			return nil, err
		}
		if assessment.OverallSafetyLevel > o.minimum {
			continue
		}
		out = append(out, Alternative{
			Product:    c,
			Assessment: assessment,
			MatchScore: MatchScore(original, c),
			Reasons:    reasons(original, base, c, assessment),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Assessment.OverallSafetyLevel != b.Assessment.OverallSafetyLevel {
			return a.Assessment.OverallSafetyLevel < b.Assessment.OverallSafetyLevel
		}
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if a.Assessment.ConfidenceScore != b.Assessment.ConfidenceScore {
			return a.Assessment.ConfidenceScore > b.Assessment.ConfidenceScore
		}
		return a.Product.Name < b.Product.Name
	})

	if len(out) > o.limit {
		out = out[:o.limit]
	}
	return out, nil
}

// MatchScore rates 0..100 how similar candidate is to original: shared
// category, shared brand and token overlap of the names.
func MatchScore(original, candidate *Product) float64 {
	score := 0.0
	if sameText(original.Category, candidate.Category) {
		score += categoryWeight
	}
	if sameText(original.Brand, candidate.Brand) {
		score += brandWeight
	}
	score += nameWeight * tokenOverlap(original.Name, candidate.Name)
	return score
}

func sameText(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

// tokenOverlap is the Jaccard index of the lowercase word sets of a and b.
func tokenOverlap(a, b string) float64 {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return float64(shared) / float64(union)
}

func tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[f] = struct{}{}
	}
	return set
}

func reasons(original *Product, base *SafetyAssessment, candidate *Product, assessment *SafetyAssessment) []string {
	var out []string
	if assessment.OverallSafetyLevel < base.OverallSafetyLevel {
		out = append(out, fmt.Sprintf("Rated %s instead of %s", assessment.OverallSafetyLevel, base.OverallSafetyLevel))
	}

	present := make(map[string]struct{}, len(candidate.Ingredients))
	for _, ing := range candidate.Ingredients {
		present[NormalizeIngredientName(ing)] = struct{}{}
	}
	stillFlagged := make(map[string]struct{})
	for _, rf := range assessment.RiskFactors {
		for _, n := range rf.RestrictionNames {
			stillFlagged[n] = struct{}{}
		}
	}

	seen := make(map[string]struct{})
	for _, rf := range base.RiskFactors {
		key := NormalizeIngredientName(rf.IngredientName)
		if _, ok := present[key]; !ok {
			if _, dup := seen["ing:"+key]; !dup {
				seen["ing:"+key] = struct{}{}
				out = append(out, fmt.Sprintf("Free of %s", rf.IngredientName))
			}
		}
		for _, n := range rf.RestrictionNames {
			if _, flagged := stillFlagged[n]; flagged {
				continue
			}
			if _, dup := seen["res:"+n]; dup {
				continue
			}
			seen["res:"+n] = struct{}{}
			out = append(out, fmt.Sprintf("No %s concerns", n))
		}
	}

	if len(original.AllergenWarnings) > 0 && len(candidate.AllergenWarnings) == 0 {
		out = append(out, "No declared allergen warnings")
	}
	if sameText(original.Brand, candidate.Brand) {
		out = append(out, "Same brand")
	}
	if sameText(original.Category, candidate.Category) {
		out = append(out, "Same category")
	}
	if candidate.DataQualityScore > original.DataQualityScore {
		out = append(out, "Better documented ingredients")
	}
	if out == nil {
		out = []string{}
	}
	return out
}
