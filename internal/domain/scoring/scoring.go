// Package scoring holds the rules applied to AI-assigned winning-potential scores.
package scoring

import (
	"math"

	"github.com/okian/hackwreck/internal/domain/model"
)

// Tier thresholds on the 0-10 scale.
const (
	excellentFloor = 8.0
	goodFloor      = 6.0
	fairFloor      = 4.0
)

// Tier is a coarse label for a score, used for badges.
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierFair      Tier = "fair"
	TierWeak      Tier = "weak"
)

// Clamp bounds a score to [0,10]. NaN maps to 0.
func Clamp(score float64) float64 {
	if math.IsNaN(score) {
		return model.MinScore
	}
	return math.Max(model.MinScore, math.Min(model.MaxScore, score))
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// TierOf classifies a clamped score.
func TierOf(score float64) Tier {
	s := Clamp(score)
	switch {
	case s >= excellentFloor:
		return TierExcellent
	case s >= goodFloor:
		return TierGood
	case s >= fairFloor:
		return TierFair
	default:
		return TierWeak
	}
}

// MeanWinner averages the scores of winning projects that carry one.
// It returns 0 when there are none.
func MeanWinner(projects []model.Project) float64 {
	var sum float64
	var n int
	for _, p := range projects {
		if !p.Outcome().IsWinner() || p.Score == nil {
			continue
		}
		sum += *p.Score
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
