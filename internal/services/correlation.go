package services

import (
	"time"

	"github.com/dodam-health/glucoquest/internal/domain"
	"github.com/dodam-health/glucoquest/internal/utils"
)

// After-window bounds. A reading qualifies as "after" when its elapsed
// time since the event falls in (1h, upper]; among qualifying readings the
// one closest to the 1h boundary wins.
const (
	afterWindowLow      = time.Hour
	foodAfterWindow     = 4 * time.Hour
	exerciseAfterWindow = 3 * time.Hour

	// exerciseDefaultClock stands in for exercise logs that carry no time
	// of day. Noon is a documented approximation, not a measurement.
	exerciseDefaultClock = "12:00"
)

// CorrelateFood aligns each food event with its surrounding glucose
// readings and scores the impact. Events with no usable before or after
// reading are silently skipped.
func CorrelateFood(events []domain.FoodEvent, readings []domain.GlucoseReading) []domain.ImpactResult {
	results := make([]domain.ImpactResult, 0, len(events))
	for _, event := range events {
		eventTime, err := utils.ParseTimestamp(event.Date, event.Time)
		if err != nil {
			continue
		}

		before, after := bracketReadings(eventTime, readings, foodAfterWindow)
		if before == nil || after == nil {
			continue
		}

		delta := after.Value - before.Value
		gl := GlycemicLoad(event.Carbs, event.Fiber)
		score := ScoreFoodImpact(delta, gl)
		statusAfter := Classify(after.Value)

		results = append(results, domain.ImpactResult{
			Kind:          domain.ImpactFood,
			EventName:     event.Name,
			MealType:      event.MealType,
			Carbs:         event.Carbs,
			Calories:      event.Calories,
			GlycemicLoad:  gl,
			GlucoseBefore: before.Value,
			GlucoseAfter:  after.Value,
			Delta:         delta,
			Score:         score,
			StatusBefore:  Classify(before.Value),
			StatusAfter:   statusAfter,
			Hyperglycemia: after.Value > borderlineBound,
			Hypoglycemia:  after.Value < hypoBound,
			TimeBefore:    before.Time,
			TimeAfter:     after.Time,
			Summary:       foodImpactSummary(event.Name, delta, gl, score, statusAfter),
		})
	}
	return results
}

// CorrelateExercise aligns each exercise session with its surrounding
// glucose readings using the shorter 1-3h after window.
func CorrelateExercise(events []domain.ExerciseEvent, readings []domain.GlucoseReading) []domain.ImpactResult {
	results := make([]domain.ImpactResult, 0, len(events))
	for _, event := range events {
		clock := event.Time
		if clock == "" {
			clock = exerciseDefaultClock
		}
		eventTime, err := utils.ParseTimestamp(event.Date, clock)
		if err != nil {
			continue
		}

		before, after := bracketReadings(eventTime, readings, exerciseAfterWindow)
		if before == nil || after == nil {
			continue
		}

		delta := after.Value - before.Value
		expected := ExpectedDecrease(event.DurationMinutes, event.Intensity)
		score := ScoreExerciseImpact(delta, expected)
		statusAfter := Classify(after.Value)

		results = append(results, domain.ImpactResult{
			Kind:          domain.ImpactExercise,
			EventName:     event.Name,
			Duration:      event.DurationMinutes,
			ExpectedDrop:  expected,
			GlucoseBefore: before.Value,
			GlucoseAfter:  after.Value,
			Delta:         delta,
			Score:         score,
			StatusBefore:  Classify(before.Value),
			StatusAfter:   statusAfter,
			Hyperglycemia: after.Value > borderlineBound,
			Hypoglycemia:  after.Value < hypoBound,
			TimeBefore:    before.Time,
			TimeAfter:     after.Time,
			Summary:       exerciseImpactSummary(event.Name, delta, score, statusAfter),
		})
	}
	return results
}

// bracketReadings finds the closest reading at or before the event and the
// earliest reading inside the (1h, afterWindow] range. Either may be nil.
func bracketReadings(eventTime time.Time, readings []domain.GlucoseReading, afterWindow time.Duration) (before, after *domain.GlucoseReading) {
	var beforeGap, afterGap time.Duration
	for i := range readings {
		r := &readings[i]
		readingTime, err := utils.ParseTimestamp(r.Date, r.Time)
		if err != nil {
			continue
		}

		if !readingTime.After(eventTime) {
			gap := eventTime.Sub(readingTime)
			if before == nil || gap < beforeGap {
				before, beforeGap = r, gap
			}
			continue
		}

		elapsed := readingTime.Sub(eventTime)
		if elapsed > afterWindowLow && elapsed <= afterWindow {
			if after == nil || elapsed < afterGap {
				after, afterGap = r, elapsed
			}
		}
	}
	return before, after
}
