package services

import (
	"fmt"

	"github.com/dodam-health/glucoquest/internal/domain"
)

// Glycemic band boundaries in mg/dL. Values exactly at 140 and 180 belong
// to the lower band.
const (
	hypoBound       = 70.0
	normalBound     = 140.0
	borderlineBound = 180.0
)

// glycemicLoadFactor approximates expected glucose impact from net carbs.
const glycemicLoadFactor = 0.8

var intensityMultipliers = map[domain.Intensity]float64{
	domain.IntensityLow:    0.5,
	domain.IntensityMedium: 1.0,
	domain.IntensityHigh:   1.5,
}

// Classify maps a glucose value onto its status band.
func Classify(value float64) domain.GlycemicStatus {
	switch {
	case value < hypoBound:
		return domain.StatusHypo
	case value <= normalBound:
		return domain.StatusNormal
	case value <= borderlineBound:
		return domain.StatusBorderline
	default:
		return domain.StatusHyper
	}
}

// GlycemicLoad estimates the glucose impact of a meal. Fiber is treated as
// zero when not tracked separately, a documented limitation of the source
// data.
func GlycemicLoad(carbs, fiber float64) float64 {
	if carbs <= 0 {
		return 0
	}
	return (carbs - fiber) * glycemicLoadFactor
}

// ExpectedDecrease estimates how far glucose should fall for an exercise
// session. Unknown intensity falls back to medium.
func ExpectedDecrease(durationMinutes int, intensity domain.Intensity) float64 {
	if durationMinutes <= 0 {
		return 0
	}
	multiplier, ok := intensityMultipliers[intensity]
	if !ok {
		multiplier = intensityMultipliers[domain.IntensityMedium]
	}
	return float64(durationMinutes) * multiplier
}

// ScoreFoodImpact rates a meal's glucose impact on a 0..100 scale. A zero
// glycemic load yields the neutral score because the change cannot be
// normalized.
func ScoreFoodImpact(delta, glycemicLoad float64) int {
	if glycemicLoad == 0 {
		return 50
	}

	normalized := delta / glycemicLoad
	var score float64
	switch {
	case normalized <= 0:
		score = 100
	case normalized <= 1:
		score = 80 - normalized*30
	case normalized <= 2:
		score = 50 - (normalized-1)*30
	default:
		score = 20 - (normalized-2)*10
		if score < 0 {
			score = 0
		}
	}
	return clampInt(int(score), 0, 100)
}

// ScoreExerciseImpact rates an exercise session against its expected
// glucose decrease.
func ScoreExerciseImpact(actualChange, expectedDecrease float64) int {
	if expectedDecrease == 0 {
		return 50
	}

	if actualChange <= 0 {
		dropped := -actualChange
		switch {
		case dropped >= expectedDecrease*0.8:
			return 100
		case dropped >= expectedDecrease*0.5:
			return 80
		default:
			return 60
		}
	}
	if actualChange <= expectedDecrease*0.3 {
		return 70
	}
	return 40
}

// foodImpactSummary renders the one-line human summary for a food impact.
func foodImpactSummary(name string, delta, gl float64, score int, after domain.GlycemicStatus) string {
	if delta > 0 {
		return fmt.Sprintf("%s: glucose rose %.0f mg/dL (GL %.0f, score %d), ended %s", name, delta, gl, score, after)
	}
	return fmt.Sprintf("%s: glucose held steady at %.0f mg/dL change (GL %.0f, score %d)", name, delta, gl, score)
}

// exerciseImpactSummary renders the one-line human summary for an exercise
// impact.
func exerciseImpactSummary(name string, delta float64, score int, after domain.GlycemicStatus) string {
	if delta < 0 {
		return fmt.Sprintf("%s: glucose dropped %.0f mg/dL (score %d), ended %s", name, -delta, score, after)
	}
	return fmt.Sprintf("%s: glucose changed %+.0f mg/dL (score %d), ended %s", name, delta, score, after)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
