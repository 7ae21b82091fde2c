package services

import (
	"context"
	"errors"

	"github.com/dodam-health/glucoquest/internal/domain"
	apperrors "github.com/dodam-health/glucoquest/internal/errors"
	"github.com/dodam-health/glucoquest/internal/logger"
	"github.com/dodam-health/glucoquest/internal/utils"
)

// QuestService generates, completes and approves daily quests. Generation
// is idempotent per (subject, date): once a quest set exists it is returned
// verbatim and neither the selector nor the model runs again.
type QuestService struct {
	store domain.DataStore
	llm   domain.LanguageModel
	rag   *RAGService
}

func NewQuestService(store domain.DataStore, llm domain.LanguageModel, rag *RAGService) *QuestService {
	return &QuestService{store: store, llm: llm, rag: rag}
}

// DailyQuests is the result of a generation or lookup call.
type DailyQuests struct {
	Quests       []domain.Quest
	FallbackUsed bool
	Generated    bool // false when an existing set was returned
}

// GenerateDaily returns the subject's quest set for a date, generating it
// on first call. Model or parse failures are absorbed by the deterministic
// candidates; validation and storage failures surface to the caller.
func (s *QuestService) GenerateDaily(ctx context.Context, subjectID uint, date string, age int) (*DailyQuests, error) {
	if !utils.ValidDate(date) {
		return nil, apperrors.NewValidationError("date must be formatted as YYYY-MM-DD")
	}

	existing, err := s.store.QuestsByDate(ctx, subjectID, date)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return &DailyQuests{Quests: existing}, nil
	}

	readings, err := s.store.Readings(ctx, subjectID, date)
	if err != nil {
		return nil, err
	}
	metrics, err := ComputeMetrics(readings)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNoData) {
			return nil, err
		}
		// A day without readings still gets its quest set, built from the
		// stand-in indicators.
		logger.Info("no readings for quest day, using default indicators",
			"subject_id", subjectID, "date", date)
		metrics = DefaultMetrics()
	}

	foods, err := s.store.FoodEvents(ctx, subjectID, date)
	if err != nil {
		return nil, err
	}
	exercises, err := s.store.ExerciseEvents(ctx, subjectID, date)
	if err != nil {
		return nil, err
	}

	glucosePool := GenerateGlucoseQuestPool(metrics)
	recordPool := GenerateRecordQuestPool(ComputeRecordMetrics(foods, exercises))
	selected := SelectDailyQuests(glucosePool, recordPool, date)

	personalized, fallbackUsed := s.personalize(ctx, subjectID, metrics, selected, age)

	glucoseSel, recordSel := SplitSelection(selected, glucosePool)
	quests := buildQuests(subjectID, date, personalized, glucoseSel, recordSel)

	if err := s.store.ReplaceQuests(ctx, subjectID, date, quests); err != nil {
		return nil, err
	}

	// Re-read so concurrent duplicate generations all return the set that
	// actually won the insert.
	persisted, err := s.store.QuestsByDate(ctx, subjectID, date)
	if err != nil {
		return nil, err
	}
	return &DailyQuests{Quests: persisted, FallbackUsed: fallbackUsed, Generated: true}, nil
}

// List returns the persisted quest set for a date without generating.
func (s *QuestService) List(ctx context.Context, subjectID uint, date string) ([]domain.Quest, error) {
	return s.store.QuestsByDate(ctx, subjectID, date)
}

// personalize asks the model to reword the selected quests. Any recoverable
// failure returns the deterministic selection unchanged.
func (s *QuestService) personalize(ctx context.Context, subjectID uint, metrics domain.Metrics, selected map[string]string, age int) (map[string]string, bool) {
	if s.llm == nil {
		return selected, true
	}

	prompt := ComposeQuestPrompt(metrics, selected, age)
	if s.rag != nil {
		// Retrieved context goes in front so the instructions and the JSON
		// contract stay last in the prompt.
		if block := s.rag.ContextFor(ctx, subjectID, metrics); block != "" {
			prompt = block + "\n\n" + prompt
		}
	}

	raw, err := s.llm.Complete(ctx, prompt, "")
	if err != nil {
		if !apperrors.Recoverable(err) {
			logger.Error("quest personalization failed hard, using deterministic quests",
				"error", err, "subject_id", subjectID)
		} else {
			logger.Warn("quest personalization unavailable, using deterministic quests",
				"error", err, "subject_id", subjectID)
		}
		return selected, true
	}

	parsed, err := ParseQuestResponse(raw)
	if err != nil {
		logger.Warn("quest response was not parseable, using deterministic quests",
			"error", err, "subject_id", subjectID)
		return selected, true
	}

	// Keep only the titles we asked for; drop anything the model invented
	// and restore anything it dropped.
	merged := make(map[string]string, len(selected))
	for title, fallback := range selected {
		if text, ok := parsed[title]; ok && text != "" {
			merged[title] = text
		} else {
			merged[title] = fallback
		}
	}
	return merged, false
}

func buildQuests(subjectID uint, date string, personalized, glucoseSel, recordSel map[string]string) []domain.Quest {
	quests := make([]domain.Quest, 0, len(personalized))
	for _, title := range sortedKeys(glucoseSel) {
		quests = append(quests, domain.Quest{
			SubjectID:      subjectID,
			Type:           domain.QuestGlucose,
			Title:          title,
			Content:        personalized[title],
			QuestDate:      date,
			ApprovalStatus: domain.ApprovalNone,
		})
	}
	for _, title := range sortedKeys(recordSel) {
		quests = append(quests, domain.Quest{
			SubjectID:      subjectID,
			Type:           domain.QuestRecord,
			Title:          title,
			Content:        personalized[title],
			QuestDate:      date,
			ApprovalStatus: domain.ApprovalNone,
		})
	}
	return quests
}

// CompletionResult pairs the completed quest with the day's progress.
type CompletionResult struct {
	Quest          *domain.Quest
	CompletedCount int
	TotalCount     int
	Encouragement  string
}

// Complete marks a quest done, moves it to pending approval and reports the
// day's completion progress.
func (s *QuestService) Complete(ctx context.Context, subjectID, questID uint) (*CompletionResult, error) {
	quest, err := s.store.CompleteQuest(ctx, subjectID, questID)
	if err != nil {
		return nil, err
	}

	dayQuests, err := s.store.QuestsByDate(ctx, subjectID, quest.QuestDate)
	if err != nil {
		return nil, err
	}
	completed := 0
	for _, q := range dayQuests {
		if q.IsCompleted {
			completed++
		}
	}

	return &CompletionResult{
		Quest:          quest,
		CompletedCount: completed,
		TotalCount:     len(dayQuests),
		Encouragement:  encouragement(completed, len(dayQuests)),
	}, nil
}

// Approve records a guardian's approval decision on a completed quest.
func (s *QuestService) Approve(ctx context.Context, questID uint, approved bool) (*domain.Quest, error) {
	status := domain.ApprovalApproved
	if !approved {
		status = domain.ApprovalRejected
	}
	return s.store.SetApproval(ctx, questID, status)
}

// encouragement tiers the day's progress message by completion rate.
func encouragement(completed, total int) string {
	if total == 0 {
		return "No quests yet today. Generate today's quests to get started."
	}
	rate := float64(completed) / float64(total)
	switch {
	case rate >= 1:
		return "All quests complete today, amazing work!"
	case rate >= 0.75:
		return "Almost there, just a little more to finish today's quests."
	case rate >= 0.5:
		return "Halfway done, keep the momentum going."
	case rate > 0:
		return "Good start, every completed quest counts."
	default:
		return "Today's quests are waiting whenever you are ready."
	}
}
