package services

import (
	"context"
	"errors"

	"github.com/dodam-health/glucoquest/internal/domain"
	"github.com/dodam-health/glucoquest/internal/logger"
	"github.com/dodam-health/glucoquest/internal/utils"

	apperrors "github.com/dodam-health/glucoquest/internal/errors"
)

const reportWindowDays = 7

// Audience selects who a report is written for. Parents always get the
// formal register regardless of the child's age.
type Audience string

const (
	AudienceChild  Audience = "child"
	AudienceParent Audience = "parent"
)

// AnalysisService correlates daily events with glucose readings and writes
// weekly reports.
type AnalysisService struct {
	store domain.DataStore
	llm   domain.LanguageModel
	rag   *RAGService
}

func NewAnalysisService(store domain.DataStore, llm domain.LanguageModel, rag *RAGService) *AnalysisService {
	return &AnalysisService{store: store, llm: llm, rag: rag}
}

// DailyMetrics computes the scalar indicators for one day of readings.
func (s *AnalysisService) DailyMetrics(ctx context.Context, subjectID uint, date string) (domain.Metrics, error) {
	if !utils.ValidDate(date) {
		return domain.Metrics{}, apperrors.NewValidationError("date must be formatted as YYYY-MM-DD")
	}
	readings, err := s.store.Readings(ctx, subjectID, date)
	if err != nil {
		return domain.Metrics{}, err
	}
	return ComputeMetrics(readings)
}

// DailyImpactReport aggregates one day of correlated event impacts.
type DailyImpactReport struct {
	Date             string                `json:"date"`
	FoodImpacts      []domain.ImpactResult `json:"food_impacts"`
	ExerciseImpacts  []domain.ImpactResult `json:"exercise_impacts"`
	HyperEvents      int                   `json:"hyper_events"`
	HypoEvents       int                   `json:"hypo_events"`
	AvgFoodScore     float64               `json:"avg_food_score"`
	AvgExerciseScore float64               `json:"avg_exercise_score"`
}

// DailyImpacts correlates the day's meals and exercise sessions with the
// surrounding glucose readings.
func (s *AnalysisService) DailyImpacts(ctx context.Context, subjectID uint, date string) (*DailyImpactReport, error) {
	if !utils.ValidDate(date) {
		return nil, apperrors.NewValidationError("date must be formatted as YYYY-MM-DD")
	}

	readings, err := s.store.Readings(ctx, subjectID, date)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		// Nothing to correlate against; the report is empty, not an error.
		return &DailyImpactReport{Date: date}, nil
	}
	foods, err := s.store.FoodEvents(ctx, subjectID, date)
	if err != nil {
		return nil, err
	}
	exercises, err := s.store.ExerciseEvents(ctx, subjectID, date)
	if err != nil {
		return nil, err
	}

	report := &DailyImpactReport{
		Date:            date,
		FoodImpacts:     CorrelateFood(foods, readings),
		ExerciseImpacts: CorrelateExercise(exercises, readings),
	}
	report.HyperEvents, report.HypoEvents = countExcursions(report.FoodImpacts, report.ExerciseImpacts)
	report.AvgFoodScore = averageScore(report.FoodImpacts)
	report.AvgExerciseScore = averageScore(report.ExerciseImpacts)
	return report, nil
}

// WeeklyReport is a trailing-window summary with a written assessment.
type WeeklyReport struct {
	Summary      domain.WeeklySummary `json:"summary"`
	Assessment   AnalysisFields       `json:"assessment"`
	FallbackUsed bool                 `json:"fallback_used"`
}

// WeeklyReportFor builds the trailing seven-day report for the given
// audience. Model failures fall back to the deterministic assessment.
func (s *AnalysisService) WeeklyReportFor(ctx context.Context, subjectID uint, age int, audience Audience) (*WeeklyReport, error) {
	from, to := utils.DaysAgo(reportWindowDays), utils.Today()
	readings, err := s.store.ReadingsBetween(ctx, subjectID, from, to)
	if err != nil {
		return nil, err
	}

	summary, err := ComputeWeeklySummary(readings)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNoData) {
			return nil, err
		}
		// An empty window still yields a report: zeroed summary, stand-in
		// indicators for the assessment.
		logger.Info("no readings in report window, using empty summary",
			"subject_id", subjectID)
		summary = EmptyWeeklySummary()
	}
	metrics, err := ComputeMetrics(readings)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNoData) {
			return nil, err
		}
		metrics = DefaultMetrics()
	}

	impacts, err := s.weeklyImpacts(ctx, subjectID, from, to)
	if err != nil {
		logger.Warn("weekly impact correlation failed, reporting without events",
			"error", err, "subject_id", subjectID)
		impacts = nil
	}

	toneAge := age
	if audience == AudienceParent {
		toneAge = 0 // formal register
	}

	assessment, fallbackUsed := s.assess(ctx, subjectID, summary, metrics, impacts, toneAge)
	return &WeeklyReport{Summary: summary, Assessment: assessment, FallbackUsed: fallbackUsed}, nil
}

func (s *AnalysisService) weeklyImpacts(ctx context.Context, subjectID uint, from, to string) ([]domain.ImpactResult, error) {
	readings, err := s.store.ReadingsBetween(ctx, subjectID, from, to)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]bool)
	for _, r := range readings {
		byDay[r.Date] = true
	}

	var impacts []domain.ImpactResult
	for date := range byDay {
		foods, err := s.store.FoodEvents(ctx, subjectID, date)
		if err != nil {
			return nil, err
		}
		exercises, err := s.store.ExerciseEvents(ctx, subjectID, date)
		if err != nil {
			return nil, err
		}
		impacts = append(impacts, CorrelateFood(foods, readings)...)
		impacts = append(impacts, CorrelateExercise(exercises, readings)...)
	}
	return impacts, nil
}

func (s *AnalysisService) assess(ctx context.Context, subjectID uint, summary domain.WeeklySummary, metrics domain.Metrics, impacts []domain.ImpactResult, age int) (AnalysisFields, bool) {
	if s.llm == nil {
		return FallbackAnalysis(metrics), true
	}

	prompt := ComposeAnalysisPrompt(summary, impacts, age)
	if s.rag != nil {
		if block := s.rag.ContextFor(ctx, subjectID, metrics); block != "" {
			prompt = block + "\n\n" + prompt
		}
	}
	raw, err := s.llm.Complete(ctx, prompt, "")
	if err != nil {
		logger.Warn("weekly assessment unavailable, using deterministic assessment",
			"error", err, "subject_id", subjectID)
		return FallbackAnalysis(metrics), true
	}

	fields, err := ParseAnalysisResponse(raw)
	if err != nil {
		logger.Warn("assessment response was not parseable, using deterministic assessment",
			"error", err, "subject_id", subjectID)
		return FallbackAnalysis(metrics), true
	}
	return fields, false
}

// countExcursions totals post-event hyper/hypo flags across food and
// exercise impacts alike: an exercise-induced low counts the same as a
// meal-induced high.
func countExcursions(groups ...[]domain.ImpactResult) (hyper, hypo int) {
	for _, impacts := range groups {
		for _, impact := range impacts {
			if impact.Hyperglycemia {
				hyper++
			}
			if impact.Hypoglycemia {
				hypo++
			}
		}
	}
	return hyper, hypo
}

func averageScore(impacts []domain.ImpactResult) float64 {
	if len(impacts) == 0 {
		return 0
	}
	sum := 0
	for _, impact := range impacts {
		sum += impact.Score
	}
	return round1(float64(sum) / float64(len(impacts)))
}
