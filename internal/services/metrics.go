package services

import (
	"math"

	apperrors "github.com/dodam-health/glucoquest/internal/errors"
	"github.com/dodam-health/glucoquest/internal/domain"
)

const (
	// spikeThreshold is the adjacent-reading increase that counts as a
	// glucose spike, in mg/dL.
	spikeThreshold = 30.0

	tirLow  = 70.0
	tirHigh = 180.0
)

// ComputeMetrics derives the scalar indicators from a reading sequence.
// Readings must already be sorted ascending by date+time. Returns a NoData
// error when the sequence is empty.
func ComputeMetrics(readings []domain.GlucoseReading) (domain.Metrics, error) {
	if len(readings) == 0 {
		return domain.Metrics{}, apperrors.ErrNoData
	}

	var sum float64
	max := readings[0].Value
	min := readings[0].Value
	for _, r := range readings {
		sum += r.Value
		if r.Value > max {
			max = r.Value
		}
		if r.Value < min {
			min = r.Value
		}
	}
	avg := sum / float64(len(readings))

	spikes := 0
	for i := 1; i < len(readings); i++ {
		if readings[i].Value-readings[i-1].Value >= spikeThreshold {
			spikes++
		}
	}

	return domain.Metrics{
		Average:     avg,
		Max:         max,
		Min:         min,
		SpikeCount:  spikes,
		HealthIndex: healthIndex(avg, spikes),
	}, nil
}

// Stand-in indicators for days with no readings. Quest generation still
// produces a full set on such days, built from these values.
const (
	defaultAverage = 120.0
	defaultMax     = 180.0
	defaultMin     = 80.0
)

// DefaultMetrics returns the stand-in indicators used when a day has no
// readings.
func DefaultMetrics() domain.Metrics {
	return domain.Metrics{
		Average:     defaultAverage,
		Max:         defaultMax,
		Min:         defaultMin,
		SpikeCount:  0,
		HealthIndex: healthIndex(defaultAverage, 0),
	}
}

// healthIndex is a coaching heuristic, not a medical index: it rewards an
// average near 100 mg/dL and penalizes each spike.
func healthIndex(average float64, spikes int) float64 {
	raw := 100 - (average - 100) - float64(spikes)*5
	return clampFloat(raw, 0, 100)
}

// ComputeWeeklySummary aggregates a trailing window of readings for the
// parent and child reports.
func ComputeWeeklySummary(readings []domain.GlucoseReading) (domain.WeeklySummary, error) {
	if len(readings) == 0 {
		return domain.WeeklySummary{}, apperrors.ErrNoData
	}

	var sum float64
	inRange, hyper, hypo := 0, 0, 0
	for _, r := range readings {
		sum += r.Value
		switch {
		case r.Value > tirHigh:
			hyper++
		case r.Value < tirLow:
			hypo++
		default:
			inRange++
		}
	}
	avg := sum / float64(len(readings))

	var variance float64
	for _, r := range readings {
		variance += (r.Value - avg) * (r.Value - avg)
	}
	variability := math.Sqrt(variance / float64(len(readings)))

	return domain.WeeklySummary{
		Average:         round1(avg),
		TIRPercent:      round1(float64(inRange) / float64(len(readings)) * 100),
		HyperCount:      hyper,
		HypoCount:       hypo,
		Variability:     round1(variability),
		RecoveryPattern: recoveryPattern(variability),
	}, nil
}

// EmptyWeeklySummary is the zeroed summary reported for windows with no
// readings.
func EmptyWeeklySummary() domain.WeeklySummary {
	return domain.WeeklySummary{RecoveryPattern: "insufficient data to assess recovery"}
}

func recoveryPattern(variability float64) string {
	switch {
	case variability < 30:
		return "glucose recovers steadily after meals and exercise"
	case variability < 50:
		return "glucose follows a mostly stable pattern"
	default:
		return "glucose swings widely and needs gradual stabilization"
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
