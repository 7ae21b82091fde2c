package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dodam-health/glucoquest/internal/domain"
	apperrors "github.com/dodam-health/glucoquest/internal/errors"
)

func readingsFromValues(date string, values ...float64) []domain.GlucoseReading {
	readings := make([]domain.GlucoseReading, 0, len(values))
	for i, v := range values {
		readings = append(readings, domain.GlucoseReading{
			SubjectID: 1,
			Date:      date,
			Time:      clockAt(8 + i),
			Value:     v,
		})
	}
	return readings
}

func clockAt(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

func TestComputeMetrics(t *testing.T) {
	m, err := ComputeMetrics(readingsFromValues("2026-08-29", 95, 120, 160, 150, 100))
	require.NoError(t, err)

	assert.InDelta(t, 125.0, m.Average, 0.001)
	assert.Equal(t, 160.0, m.Max)
	assert.Equal(t, 95.0, m.Min)
	assert.Equal(t, 1, m.SpikeCount, "only the 120->160 rise crosses the spike threshold")
	assert.InDelta(t, 70.0, m.HealthIndex, 0.001)
}

func TestComputeMetricsNoReadings(t *testing.T) {
	_, err := ComputeMetrics(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNoData))
	assert.True(t, apperrors.Recoverable(err))
}

func TestComputeMetricsSpikeExactlyAtThreshold(t *testing.T) {
	m, err := ComputeMetrics(readingsFromValues("2026-08-29", 100, 130))
	require.NoError(t, err)
	assert.Equal(t, 1, m.SpikeCount, "a rise of exactly 30 counts as a spike")

	m, err = ComputeMetrics(readingsFromValues("2026-08-29", 100, 129))
	require.NoError(t, err)
	assert.Equal(t, 0, m.SpikeCount)
}

func TestHealthIndexClampsToZero(t *testing.T) {
	m, err := ComputeMetrics(readingsFromValues("2026-08-29", 250, 250, 250))
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.HealthIndex)
}

func TestHealthIndexClampsToHundred(t *testing.T) {
	m, err := ComputeMetrics(readingsFromValues("2026-08-29", 80, 80))
	require.NoError(t, err)
	assert.Equal(t, 100.0, m.HealthIndex)
}

func TestComputeWeeklySummary(t *testing.T) {
	summary, err := ComputeWeeklySummary(readingsFromValues("2026-08-29", 100, 190, 60, 120))
	require.NoError(t, err)

	assert.Equal(t, 50.0, summary.TIRPercent)
	assert.Equal(t, 1, summary.HyperCount)
	assert.Equal(t, 1, summary.HypoCount)
	assert.InDelta(t, 117.5, summary.Average, 0.001)
	assert.NotEmpty(t, summary.RecoveryPattern)
}

func TestComputeWeeklySummaryNoReadings(t *testing.T) {
	_, err := ComputeWeeklySummary(nil)
	assert.True(t, errors.Is(err, apperrors.ErrNoData))
}
