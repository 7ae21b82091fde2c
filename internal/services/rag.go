package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dodam-health/glucoquest/internal/domain"
	"github.com/dodam-health/glucoquest/internal/logger"
	"github.com/dodam-health/glucoquest/internal/utils"
)

const (
	knowledgeTopK      = 3
	patternWindowDays  = 30
	patternMaxShown    = 5
	similarMinReadings = 5
	similarThreshold   = 0.6
	similarMaxShown    = 3
)

// RAGService enriches prompts with retrieved knowledge, the subject's own
// historical patterns and anonymized similar cases. Every retrieval failure
// is logged and absorbed: the caller always gets a usable (possibly empty)
// context block.
type RAGService struct {
	store     domain.DataStore
	retriever domain.KnowledgeRetriever
	enabled   bool
}

func NewRAGService(store domain.DataStore, retriever domain.KnowledgeRetriever, enabled bool) *RAGService {
	return &RAGService{store: store, retriever: retriever, enabled: enabled}
}

// BuildQuery derives the knowledge-base query from the day's metrics.
func BuildQuery(m domain.Metrics) string {
	terms := make([]string, 0, 4)
	switch {
	case m.Average > 140:
		terms = append(terms, "high glucose management for children")
	case m.Min < 70:
		terms = append(terms, "hypoglycemia prevention for children")
	default:
		terms = append(terms, "glucose stabilization habits for children")
	}
	if m.SpikeCount > 2 {
		terms = append(terms, "glucose spike prevention")
	}
	if m.Max > 200 {
		terms = append(terms, "severe hyperglycemia response")
	}
	return strings.Join(terms, "; ")
}

// ContextFor assembles the retrieval context block for a quest prompt.
// Returns "" when retrieval is disabled or every source comes back empty.
func (s *RAGService) ContextFor(ctx context.Context, subjectID uint, m domain.Metrics) string {
	if !s.enabled {
		return ""
	}

	var sections []string

	if s.retriever != nil {
		snippets, err := s.retriever.Search(ctx, BuildQuery(m), knowledgeTopK)
		if err != nil {
			logger.Warn("knowledge retrieval failed, continuing without it", "error", err, "subject_id", subjectID)
		} else if len(snippets) > 0 {
			sections = append(sections, formatKnowledge(snippets))
		}
	}

	patterns, err := s.UserPatterns(ctx, subjectID)
	if err != nil {
		logger.Warn("pattern retrieval failed, continuing without it", "error", err, "subject_id", subjectID)
	} else if len(patterns) > 0 {
		sections = append(sections, formatPatterns(patterns))
	}

	cases, err := s.SimilarCases(ctx, subjectID, m)
	if err != nil {
		logger.Warn("similar-case retrieval failed, continuing without it", "error", err, "subject_id", subjectID)
	} else if len(cases) > 0 {
		sections = append(sections, formatSimilarCases(cases))
	}

	if len(sections) == 0 {
		return ""
	}
	return "Reference context:\n" + strings.Join(sections, "\n")
}

// UserPatterns classifies each of the subject's last 30 days of readings.
func (s *RAGService) UserPatterns(ctx context.Context, subjectID uint) ([]domain.DailyPattern, error) {
	readings, err := s.store.ReadingsBetween(ctx, subjectID, utils.DaysAgo(patternWindowDays), utils.Today())
	if err != nil {
		return nil, err
	}

	byDay := make(map[string][]domain.GlucoseReading)
	for _, r := range readings {
		byDay[r.Date] = append(byDay[r.Date], r)
	}

	dates := make([]string, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	patterns := make([]domain.DailyPattern, 0, len(dates))
	for _, date := range dates {
		day := byDay[date]
		m, err := ComputeMetrics(day)
		if err != nil {
			continue
		}
		patterns = append(patterns, domain.DailyPattern{
			Date:        date,
			Average:     round1(m.Average),
			Max:         m.Max,
			Min:         m.Min,
			Variability: m.Range(),
			Type:        classifyPattern(m),
			Readings:    len(day),
		})
	}
	return patterns, nil
}

// classifyPattern tiers one day by its average and spread.
func classifyPattern(m domain.Metrics) domain.PatternType {
	switch {
	case m.Average >= 70 && m.Average <= 140 && m.Range() < 50:
		return domain.PatternExcellent
	case m.Average >= 70 && m.Average <= 180 && m.Range() < 80:
		return domain.PatternGood
	case m.Average > 180:
		return domain.PatternHigh
	default:
		return domain.PatternUnstable
	}
}

// SimilarCases finds other subjects whose recent glucose profile resembles
// the current metrics. Identity is reduced to a numeric subject id; no
// profile data crosses subjects.
func (s *RAGService) SimilarCases(ctx context.Context, subjectID uint, m domain.Metrics) ([]domain.SimilarCase, error) {
	readings, err := s.store.AllReadingsBetween(ctx, utils.DaysAgo(patternWindowDays), utils.Today())
	if err != nil {
		return nil, err
	}

	bySubject := make(map[uint][]domain.GlucoseReading)
	for _, r := range readings {
		if r.SubjectID == subjectID {
			continue
		}
		bySubject[r.SubjectID] = append(bySubject[r.SubjectID], r)
	}

	cases := make([]domain.SimilarCase, 0)
	for id, subjectReadings := range bySubject {
		if len(subjectReadings) < similarMinReadings {
			continue
		}
		other, err := ComputeMetrics(subjectReadings)
		if err != nil {
			continue
		}
		sim := similarity(m, other)
		if sim <= similarThreshold {
			continue
		}
		cases = append(cases, domain.SimilarCase{
			SubjectID:  id,
			Average:    round1(other.Average),
			Max:        other.Max,
			Min:        other.Min,
			SpikeCount: other.SpikeCount,
			Similarity: round1(sim*100) / 100,
			Readings:   len(subjectReadings),
		})
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].Similarity > cases[j].Similarity })
	if len(cases) > similarMaxShown {
		cases = cases[:similarMaxShown]
	}
	return cases, nil
}

// similarity scores two metric profiles; distances are scaled so a 50 mg/dL
// average gap, a 100 mg/dL peak gap and 2 spikes each cost about the same.
func similarity(a, b domain.Metrics) float64 {
	distance := math.Abs(a.Average-b.Average)/50 +
		math.Abs(a.Max-b.Max)/100 +
		math.Abs(a.Min-b.Min)/50 +
		math.Abs(float64(a.SpikeCount-b.SpikeCount))/2
	return 1 / (1 + distance)
}

func formatKnowledge(snippets []domain.KnowledgeSnippet) string {
	var b strings.Builder
	b.WriteString("Relevant guidance:\n")
	for _, s := range snippets {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", s.Category, s.Title, s.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatPatterns(patterns []domain.DailyPattern) string {
	if len(patterns) > patternMaxShown {
		patterns = patterns[len(patterns)-patternMaxShown:]
	}
	var b strings.Builder
	b.WriteString("Recent daily patterns:\n")
	for _, p := range patterns {
		fmt.Fprintf(&b, "- %s: avg %s mg/dL, range %s mg/dL (%s)\n",
			p.Date, formatNumber(p.Average), formatNumber(p.Variability), p.Type)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSimilarCases(cases []domain.SimilarCase) string {
	var b strings.Builder
	b.WriteString("Similar anonymized cases:\n")
	for _, c := range cases {
		fmt.Fprintf(&b, "- avg %s mg/dL, max %s mg/dL, %d spike(s), similarity %.2f\n",
			formatNumber(c.Average), formatNumber(c.Max), c.SpikeCount, c.Similarity)
	}
	return strings.TrimRight(b.String(), "\n")
}
