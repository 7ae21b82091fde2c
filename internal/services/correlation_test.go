package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dodam-health/glucoquest/internal/domain"
)

const testDay = "2026-08-29"

func reading(clock string, value float64) domain.GlucoseReading {
	return domain.GlucoseReading{SubjectID: 1, Date: testDay, Time: clock, Value: value}
}

func TestCorrelateFoodPicksWindowedReadings(t *testing.T) {
	readings := []domain.GlucoseReading{
		reading("09:00", 100), // older before candidate
		reading("11:30", 110), // closest before
		reading("12:30", 140), // 30m after the meal, inside the exclusion hour
		reading("13:30", 150), // first qualifying after reading
		reading("15:00", 135), // later qualifying reading, not picked
		reading("17:30", 120), // outside the 4h window
	}
	foods := []domain.FoodEvent{{
		SubjectID: 1, Date: testDay, Time: "12:00",
		Name: "rice bowl", MealType: domain.MealLunch, Carbs: 55, Fiber: 5,
	}}

	impacts := CorrelateFood(foods, readings)
	require.Len(t, impacts, 1)

	impact := impacts[0]
	assert.Equal(t, domain.ImpactFood, impact.Kind)
	assert.Equal(t, 110.0, impact.GlucoseBefore)
	assert.Equal(t, 150.0, impact.GlucoseAfter)
	assert.Equal(t, 40.0, impact.Delta)
	assert.InDelta(t, 40.0, impact.GlycemicLoad, 0.001)
	assert.Equal(t, "11:30", impact.TimeBefore)
	assert.Equal(t, "13:30", impact.TimeAfter)
	assert.Equal(t, domain.StatusBorderline, impact.StatusAfter)
	assert.False(t, impact.Hyperglycemia)
	assert.NotEmpty(t, impact.Summary)
}

func TestCorrelateFoodSkipsUnbracketedEvents(t *testing.T) {
	readings := []domain.GlucoseReading{reading("11:30", 110)}
	foods := []domain.FoodEvent{
		{SubjectID: 1, Date: testDay, Time: "12:00", Name: "no after reading", Carbs: 30},
		{SubjectID: 1, Date: testDay, Time: "10:00", Name: "no before reading", Carbs: 30},
	}

	assert.Empty(t, CorrelateFood(foods, readings))
}

func TestCorrelateExerciseDefaultsToNoon(t *testing.T) {
	readings := []domain.GlucoseReading{
		reading("11:00", 160),
		reading("13:45", 125), // 2h45m after the assumed noon start
	}
	exercises := []domain.ExerciseEvent{{
		SubjectID: 1, Date: testDay, Time: "",
		Name: "soccer", DurationMinutes: 40, Intensity: domain.IntensityHigh,
	}}

	impacts := CorrelateExercise(exercises, readings)
	require.Len(t, impacts, 1)

	impact := impacts[0]
	assert.Equal(t, domain.ImpactExercise, impact.Kind)
	assert.Equal(t, 160.0, impact.GlucoseBefore)
	assert.Equal(t, 125.0, impact.GlucoseAfter)
	assert.Equal(t, -35.0, impact.Delta)
	assert.Equal(t, 60.0, impact.ExpectedDrop)
	assert.Equal(t, 80, impact.Score, "dropped more than half of expectation")
}

func TestCorrelateExerciseWindowShorterThanFood(t *testing.T) {
	readings := []domain.GlucoseReading{
		reading("11:00", 150),
		reading("15:30", 120), // 3.5h after, outside the 3h exercise window
	}
	exercises := []domain.ExerciseEvent{{
		SubjectID: 1, Date: testDay, Time: "12:00",
		Name: "bike ride", DurationMinutes: 30, Intensity: domain.IntensityMedium,
	}}

	assert.Empty(t, CorrelateExercise(exercises, readings))
}
