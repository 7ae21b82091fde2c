package services

import (
	"context"
	"fmt"

	"github.com/dodam-health/glucoquest/internal/domain"
	apperrors "github.com/dodam-health/glucoquest/internal/errors"
)

// fakeStore is an in-memory DataStore for service tests.
type fakeStore struct {
	readings  []domain.GlucoseReading
	foods     []domain.FoodEvent
	exercises []domain.ExerciseEvent
	quests    map[string][]domain.Quest
	nextID    uint

	failReadings error
	failAll      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{quests: make(map[string][]domain.Quest)}
}

func questKey(subjectID uint, date string) string {
	return fmt.Sprintf("%d|%s", subjectID, date)
}

func (f *fakeStore) Readings(_ context.Context, subjectID uint, date string) ([]domain.GlucoseReading, error) {
	if f.failReadings != nil {
		return nil, f.failReadings
	}
	var out []domain.GlucoseReading
	for _, r := range f.readings {
		if r.SubjectID == subjectID && r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ReadingsBetween(_ context.Context, subjectID uint, from, to string) ([]domain.GlucoseReading, error) {
	if f.failReadings != nil {
		return nil, f.failReadings
	}
	var out []domain.GlucoseReading
	for _, r := range f.readings {
		if r.SubjectID == subjectID && r.Date >= from && r.Date <= to {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) AllReadingsBetween(_ context.Context, from, to string) ([]domain.GlucoseReading, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	var out []domain.GlucoseReading
	for _, r := range f.readings {
		if r.Date >= from && r.Date <= to {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) FoodEvents(_ context.Context, subjectID uint, date string) ([]domain.FoodEvent, error) {
	var out []domain.FoodEvent
	for _, e := range f.foods {
		if e.SubjectID == subjectID && e.Date == date {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ExerciseEvents(_ context.Context, subjectID uint, date string) ([]domain.ExerciseEvent, error) {
	var out []domain.ExerciseEvent
	for _, e := range f.exercises {
		if e.SubjectID == subjectID && e.Date == date {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) QuestsByDate(_ context.Context, subjectID uint, date string) ([]domain.Quest, error) {
	return f.quests[questKey(subjectID, date)], nil
}

func (f *fakeStore) ReplaceQuests(_ context.Context, subjectID uint, date string, quests []domain.Quest) error {
	key := questKey(subjectID, date)
	if len(f.quests[key]) > 0 {
		return nil
	}
	stored := make([]domain.Quest, 0, len(quests))
	for _, q := range quests {
		f.nextID++
		q.ID = f.nextID
		stored = append(stored, q)
	}
	f.quests[key] = stored
	return nil
}

func (f *fakeStore) CompleteQuest(_ context.Context, subjectID, questID uint) (*domain.Quest, error) {
	for key, quests := range f.quests {
		for i := range quests {
			if quests[i].ID == questID && quests[i].SubjectID == subjectID {
				quests[i].IsCompleted = true
				quests[i].ApprovalStatus = domain.ApprovalPending
				f.quests[key] = quests
				q := quests[i]
				return &q, nil
			}
		}
	}
	return nil, apperrors.ErrQuestNotFound
}

func (f *fakeStore) SetApproval(_ context.Context, questID uint, status domain.ApprovalStatus) (*domain.Quest, error) {
	for key, quests := range f.quests {
		for i := range quests {
			if quests[i].ID == questID {
				quests[i].ApprovalStatus = status
				f.quests[key] = quests
				q := quests[i]
				return &q, nil
			}
		}
	}
	return nil, apperrors.ErrQuestNotFound
}

// spyLLM counts completions, records the last prompt and returns a canned
// response.
type spyLLM struct {
	calls      int
	lastPrompt string
	response   string
	err        error
}

func (s *spyLLM) Complete(_ context.Context, prompt, _ string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

// fakeRetriever returns canned snippets or a canned error.
type fakeRetriever struct {
	snippets []domain.KnowledgeSnippet
	err      error
}

func (f *fakeRetriever) Search(_ context.Context, _ string, _ int) ([]domain.KnowledgeSnippet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snippets, nil
}
