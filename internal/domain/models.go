package domain

import (
	"time"
)

// Subject is a child enrolled in the coaching program. Profile data comes
// from the auth layer, not from this service.
type Subject struct {
	ID        uint
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	Age       int // 0 means unknown
	Condition string
}

// GlucoseReading is a single glucose measurement. Readings are read-only
// input to the analysis pipeline and are sorted ascending by date+time
// before any computation.
type GlucoseReading struct {
	ID        uint
	SubjectID uint
	Date      string  // "2006-01-02"
	Time      string  // "15:04"
	Value     float64 // mg/dL
}

// FoodEvent is a logged meal or snack.
type FoodEvent struct {
	ID        uint
	SubjectID uint
	Date      string
	Time      string
	Name      string
	MealType  MealType
	Carbs     float64 // grams
	Fiber     float64 // grams, 0 when not tracked separately
	Calories  float64
}

// MealType enumerates the recognized meal slots.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
	MealLateSnack MealType = "late_snack"
)

// ExerciseEvent is a logged exercise session. The source data does not
// always carry a time of day; when Time is empty the pipeline assumes
// noon as a documented approximation.
type ExerciseEvent struct {
	ID              uint
	SubjectID       uint
	Date            string
	Time            string // "15:04", may be empty
	Name            string
	DurationMinutes int
	Intensity       Intensity
}

// Intensity is the reported exercise intensity. Defaults to medium when
// the log does not specify one.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// Metrics holds the scalar indicators derived from a reading sequence.
// Computed fresh per request and never persisted by this service.
// HealthIndex is a heuristic scalar for coaching copy, not a medical index.
type Metrics struct {
	Average     float64 `json:"average"`
	Max         float64 `json:"max"`
	Min         float64 `json:"min"`
	SpikeCount  int     `json:"spike_count"`
	HealthIndex float64 `json:"health_index"`
}

// Range is the spread between the highest and lowest reading.
func (m Metrics) Range() float64 {
	return m.Max - m.Min
}

// WeeklySummary aggregates a trailing window of readings for reports.
type WeeklySummary struct {
	Average         float64 `json:"average"`
	TIRPercent      float64 `json:"tir_percent"`
	HyperCount      int     `json:"hyper_count"`
	HypoCount       int     `json:"hypo_count"`
	Variability     float64 `json:"variability"` // population standard deviation
	RecoveryPattern string  `json:"recovery_pattern"`
}

// GlycemicStatus is the categorical classification of a glucose value.
type GlycemicStatus string

const (
	StatusHypo       GlycemicStatus = "hypoglycemia"
	StatusNormal     GlycemicStatus = "normal"
	StatusBorderline GlycemicStatus = "borderline"
	StatusHyper      GlycemicStatus = "hyperglycemia"
)

// ImpactKind distinguishes what produced an impact result.
type ImpactKind string

const (
	ImpactFood     ImpactKind = "food"
	ImpactExercise ImpactKind = "exercise"
)

// ImpactResult correlates one food or exercise event with the glucose
// readings around it.
type ImpactResult struct {
	Kind          ImpactKind     `json:"kind"`
	EventName     string         `json:"event_name"`
	MealType      MealType       `json:"meal_type,omitempty"`      // food only
	Carbs         float64        `json:"carbs,omitempty"`          // food only
	Calories      float64        `json:"calories,omitempty"`       // food only
	GlycemicLoad  float64        `json:"glycemic_load,omitempty"`  // food only: (carbs - fiber) * 0.8
	Duration      int            `json:"duration,omitempty"`       // exercise only, minutes
	ExpectedDrop  float64        `json:"expected_drop,omitempty"`  // exercise only, mg/dL
	GlucoseBefore float64        `json:"glucose_before"`
	GlucoseAfter  float64        `json:"glucose_after"`
	Delta         float64        `json:"delta"`
	Score         int            `json:"score"` // 0..100
	StatusBefore  GlycemicStatus `json:"status_before"`
	StatusAfter   GlycemicStatus `json:"status_after"`
	Hyperglycemia bool           `json:"hyperglycemia"`
	Hypoglycemia  bool           `json:"hypoglycemia"`
	TimeBefore    string         `json:"time_before"`
	TimeAfter     string         `json:"time_after"`
	Summary       string         `json:"summary"`
}

// QuestType separates glucose-derived quests from record-habit quests.
type QuestType string

const (
	QuestGlucose QuestType = "GLUCOSE"
	QuestRecord  QuestType = "RECORD"
)

// ApprovalStatus tracks the guardian approval workflow for a quest.
type ApprovalStatus string

const (
	ApprovalNone     ApprovalStatus = "none"
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Quest is a short personalized recommendation generated once per calendar
// day. Once quests exist for a (subject, date) they are never regenerated.
type Quest struct {
	ID             uint           `json:"id"`
	SubjectID      uint           `json:"subject_id"`
	Type           QuestType      `json:"type"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	QuestDate      string         `json:"quest_date"` // "2006-01-02"
	IsCompleted    bool           `json:"is_completed"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// KnowledgeSnippet is one retrieved knowledge-base document.
type KnowledgeSnippet struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Content  string   `json:"content"`
	Keywords []string `json:"keywords"`
	Score    float64  `json:"score"`
}

// DailyPattern classifies one historical day of a subject's readings.
type DailyPattern struct {
	Date        string      `json:"date"`
	Average     float64     `json:"average"`
	Max         float64     `json:"max"`
	Min         float64     `json:"min"`
	Variability float64     `json:"variability"`
	Type        PatternType `json:"type"`
	Readings    int         `json:"readings"`
}

// PatternType tiers a day by average and variability.
type PatternType string

const (
	PatternExcellent PatternType = "excellent"
	PatternGood      PatternType = "good"
	PatternHigh      PatternType = "high"
	PatternUnstable  PatternType = "unstable"
)

// SimilarCase is another subject whose recent glucose profile resembles
// the current one.
type SimilarCase struct {
	SubjectID  uint    `json:"subject_id"`
	Average    float64 `json:"average"`
	Max        float64 `json:"max"`
	Min        float64 `json:"min"`
	SpikeCount int     `json:"spike_count"`
	Similarity float64 `json:"similarity"`
	Readings   int     `json:"readings"`
}
