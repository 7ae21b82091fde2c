package services

import (
	"fmt"

	"github.com/dodam-health/glucoquest/internal/domain"
)

// Quest titles are stable keys: the selector samples them and the persisted
// quests reuse them, so renaming one changes what users see on regeneration
// days only, never retroactively.
const (
	QuestAvgImprove   = "Average Glucose Improvement Quest"
	QuestAvgMaintain  = "Average Glucose Maintenance Quest"
	QuestMaxUrgent    = "Peak Glucose Urgent Care Quest"
	QuestMaxManage    = "Peak Glucose Management Quest"
	QuestMaxCaution   = "Peak Glucose Caution Quest"
	QuestMaxMaintain  = "Peak Glucose Maintenance Quest"
	QuestSpikePrevent = "Spike Prevention Quest"
	QuestSpikeSteady  = "Glucose Stability Challenge Quest"
	QuestSpikeKeep    = "Glucose Stability Maintenance Quest"
	QuestRangeCalm    = "Glucose Stabilization Quest"
	QuestRangeImprove = "Glucose Range Improvement Quest"
	QuestRangeManage  = "Glucose Range Management Quest"
	QuestRangeKeep    = "Glucose Range Maintenance Quest"
	QuestOverallHigh  = "Overall Glucose Care Quest"
	QuestOverallGreat = "Excellent Management Quest"
	QuestOverallStep  = "Step-by-Step Improvement Quest"
	QuestHydration    = "Hydration Quest"
	QuestStress       = "Stress Relief Quest"
	QuestRoutine      = "Daily Rhythm Quest"
	QuestGeneral      = "Healthy Habits Quest"
)

// GenerateGlucoseQuestPool builds the candidate quest pool for one day of
// metrics. One template per metric ladder plus a fixed set of generic
// quests, so the pool never collapses below a usable size even with flat
// data.
func GenerateGlucoseQuestPool(m domain.Metrics) map[string]string {
	pool := make(map[string]string)

	avg := m.Average
	switch {
	case avg > 130:
		target := maxFloat(100, avg-15)
		pool[QuestAvgImprove] = fmt.Sprintf(
			"Your average is %s mg/dL, a bit high. Drink 8 glasses of water today and bring it under %s mg/dL.",
			formatNumber(avg), formatNumber(target))
	case avg > 120:
		target := maxFloat(100, avg-15)
		pool[QuestAvgMaintain] = fmt.Sprintf(
			"Your average is %s mg/dL, looking good. Keep it steady and aim for %s mg/dL.",
			formatNumber(avg), formatNumber(target))
	default:
		pool[QuestAvgMaintain] = fmt.Sprintf(
			"Your average is %s mg/dL, excellent. Keep doing what you are doing.",
			formatNumber(avg))
	}

	max := m.Max
	switch {
	case max > 200:
		pool[QuestMaxUrgent] = fmt.Sprintf(
			"Your peak hit %s mg/dL, very high. Take 5 deep breaths and 2 glasses of water to get back under 180 mg/dL.",
			formatNumber(max))
	case max > 180:
		pool[QuestMaxManage] = fmt.Sprintf(
			"Your peak reached %s mg/dL, high. Drink plenty of water and work it back under 160 mg/dL.",
			formatNumber(max))
	case max > 140:
		pool[QuestMaxCaution] = fmt.Sprintf(
			"Your peak was %s mg/dL, slightly high. Keep things calm and stay under 140 mg/dL.",
			formatNumber(max))
	default:
		pool[QuestMaxMaintain] = fmt.Sprintf(
			"Your peak stayed at %s mg/dL, nice and stable. Keep it up.",
			formatNumber(max))
	}

	targetSpikes := m.SpikeCount - 1
	if targetSpikes < 1 {
		targetSpikes = 1
	}
	switch {
	case m.SpikeCount > 2:
		pool[QuestSpikePrevent] = fmt.Sprintf(
			"Glucose jumped %d times today. Ease the stress and keep it to %d or fewer tomorrow.",
			m.SpikeCount, targetSpikes)
	case m.SpikeCount > 0:
		pool[QuestSpikeSteady] = fmt.Sprintf(
			"Glucose jumped %d time(s) today. Try slow breathing and keep it to %d or fewer.",
			m.SpikeCount, targetSpikes)
	default:
		pool[QuestSpikeKeep] = "No sudden jumps today, great work. Keep this steady pattern going."
	}

	spread := m.Range()
	switch {
	case spread > 100:
		pool[QuestRangeCalm] = fmt.Sprintf(
			"Your glucose swung %s mg/dL today, a very wide range. A regular routine can bring it under 80 mg/dL.",
			formatNumber(spread))
	case spread > 80:
		pool[QuestRangeImprove] = fmt.Sprintf(
			"Your glucose swung %s mg/dL today, quite a lot. Build a steadier pattern and get it under 60 mg/dL.",
			formatNumber(spread))
	case spread > 60:
		pool[QuestRangeManage] = fmt.Sprintf(
			"Your glucose range was %s mg/dL today. Keep working on it to make it even steadier.",
			formatNumber(spread))
	default:
		pool[QuestRangeKeep] = fmt.Sprintf(
			"Your glucose range was only %s mg/dL today, very stable. Keep it up.",
			formatNumber(spread))
	}

	switch {
	case avg > 140 && max > 180:
		pool[QuestOverallHigh] = fmt.Sprintf(
			"Average %s mg/dL and peak %s mg/dL are both running high. Small steady habits will bring them down.",
			formatNumber(avg), formatNumber(max))
	case avg <= 100 && max <= 140:
		pool[QuestOverallGreat] = fmt.Sprintf(
			"Average %s mg/dL and peak %s mg/dL, outstanding control. Keep this excellent care going.",
			formatNumber(avg), formatNumber(max))
	default:
		pool[QuestOverallStep] = "Build on today and improve one small thing at a time."
	}

	// Generic quests guarantee a minimum pool size even with flat data.
	pool[QuestHydration] = "Drink 8 or more glasses of water today to help keep glucose steady."
	pool[QuestStress] = "Take 5 deep breaths to keep stress from pushing glucose up."
	pool[QuestRoutine] = "Stick to a regular daily rhythm to keep glucose calm."
	pool[QuestGeneral] = "Keep up the steady effort on your overall health."

	return pool
}

// RecordMetrics summarizes logging behaviour for the record quest pool.
type RecordMetrics struct {
	TotalMeals      int
	LateNightSnacks int
	ExerciseMinutes int
	Completeness    float64 // share of the three main meals logged, percent
}

// ComputeRecordMetrics derives record-habit metrics for one day of logs.
func ComputeRecordMetrics(foods []domain.FoodEvent, exercises []domain.ExerciseEvent) RecordMetrics {
	m := RecordMetrics{TotalMeals: len(foods)}
	mainMeals := 0
	for _, f := range foods {
		switch f.MealType {
		case domain.MealBreakfast, domain.MealLunch, domain.MealDinner:
			mainMeals++
		case domain.MealLateSnack:
			m.LateNightSnacks++
		case domain.MealSnack:
			if len(f.Time) >= 2 && f.Time >= "21:00" {
				m.LateNightSnacks++
			}
		}
	}
	if mainMeals > 3 {
		mainMeals = 3
	}
	m.Completeness = float64(mainMeals) / 3 * 100
	for _, e := range exercises {
		m.ExerciseMinutes += e.DurationMinutes
	}
	return m
}

// GenerateRecordQuestPool builds habit quests from logging behaviour.
func GenerateRecordQuestPool(m RecordMetrics) map[string]string {
	pool := make(map[string]string)

	if m.Completeness < 100 {
		pool["Meal Logging Quest"] = fmt.Sprintf(
			"You logged %d meal(s) today. Record breakfast, lunch and dinner so we can coach you better.",
			m.TotalMeals)
	} else {
		pool["Meal Logging Star Quest"] = "All three main meals logged today, fantastic. Keep the streak going."
	}

	if m.LateNightSnacks > 0 {
		pool["Evening Snack Quest"] = fmt.Sprintf(
			"You had %d late snack(s) after 9pm. Try finishing food earlier so morning glucose starts lower.",
			m.LateNightSnacks)
	} else {
		pool["Evening Routine Quest"] = "No late-night snacks today, well done. Keep evenings light."
	}

	switch {
	case m.ExerciseMinutes == 0:
		pool["Movement Quest"] = "No exercise logged today. Take a 10-minute walk after your next meal."
	case m.ExerciseMinutes < 30:
		pool["Movement Boost Quest"] = fmt.Sprintf(
			"You moved for %d minutes today. Stretch it to 30 minutes for an extra glucose boost.",
			m.ExerciseMinutes)
	default:
		pool["Movement Star Quest"] = fmt.Sprintf(
			"%d minutes of movement today, great job. Keep the habit tomorrow.",
			m.ExerciseMinutes)
	}

	pool["Record Streak Quest"] = "Log glucose, meals and exercise every day this week."
	pool["Sleep Routine Quest"] = "Head to bed at the same time tonight to keep tomorrow steady."

	return pool
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
