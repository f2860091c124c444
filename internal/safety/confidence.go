package safety

import "math"

const (
	verificationBonus    = 2
	maxVerificationBonus = 10
)

// ScoreConfidence rates 0..100 how much data backs a verdict.
//
// With ingredients present the base is round(count * quality / 100), capped
// at 100, so a short list scores low even from a trusted source. With no
// ingredients the product's own quality score is all there is. Independent
// verifications add a bounded bonus. Negative inputs count as zero.
func ScoreConfidence(ingredientCount, dataQualityScore, verificationCount int) int {
	quality := clamp(dataQualityScore, 0, 100)
	count := max(ingredientCount, 0)

	base := quality
	if count > 0 {
		base = int(math.Round(float64(count) * float64(quality) / 100))
	}

	bonus := min(max(verificationCount, 0)*verificationBonus, maxVerificationBonus)
	return clamp(base+bonus, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
