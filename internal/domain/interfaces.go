package domain

import (
	"context"
)

// DataStore is the persistence contract consumed by the coaching engine.
// Implementations must be safe for concurrent use; each request gets its
// own session semantics from the underlying driver.
type DataStore interface {
	// Readings returns a subject's readings for one calendar day, sorted
	// ascending by date+time.
	Readings(ctx context.Context, subjectID uint, date string) ([]GlucoseReading, error)

	// ReadingsBetween returns readings in [from, to], sorted ascending.
	ReadingsBetween(ctx context.Context, subjectID uint, from, to string) ([]GlucoseReading, error)

	// AllReadingsBetween returns every subject's readings in [from, to],
	// used for cross-subject similarity retrieval.
	AllReadingsBetween(ctx context.Context, from, to string) ([]GlucoseReading, error)

	FoodEvents(ctx context.Context, subjectID uint, date string) ([]FoodEvent, error)
	ExerciseEvents(ctx context.Context, subjectID uint, date string) ([]ExerciseEvent, error)

	// QuestsByDate returns the persisted quest set for a day, empty when
	// none has been generated yet.
	QuestsByDate(ctx context.Context, subjectID uint, date string) ([]Quest, error)

	// ReplaceQuests atomically persists a day's quest set. When quests
	// already exist for the (subject, date) the call is a no-op so that
	// concurrent duplicate generations cannot produce partial sets.
	ReplaceQuests(ctx context.Context, subjectID uint, date string, quests []Quest) error

	// CompleteQuest marks a quest done and moves approval to pending.
	CompleteQuest(ctx context.Context, subjectID, questID uint) (*Quest, error)

	// SetApproval records a guardian decision on a completed quest.
	SetApproval(ctx context.Context, questID uint, status ApprovalStatus) (*Quest, error)
}

// LanguageModel is the outbound LLM contract. Implementations must honor
// the context deadline and return a typed timeout error when it expires.
type LanguageModel interface {
	Complete(ctx context.Context, prompt, system string) (string, error)
}

// KnowledgeRetriever searches the coaching knowledge base.
type KnowledgeRetriever interface {
	Search(ctx context.Context, query string, topK int) ([]KnowledgeSnippet, error)
}

// Embedder turns text into a dense vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Principal is the verified caller identity supplied by the auth layer.
type Principal struct {
	SubjectID uint   `json:"subject_id"`
	Age       int    `json:"age"` // 0 means unknown
	Role      string `json:"role"`
	Condition string `json:"condition"`
}

// AuthProvider verifies a bearer token and resolves the principal. The
// engine consumes this; it never implements token handling itself.
type AuthProvider interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// ProfileCache is a bounded cache for subject profiles so repeated quest
// and report calls do not hit the auth backend every time.
type ProfileCache interface {
	Get(ctx context.Context, subjectID uint) (*Principal, bool)
	Set(ctx context.Context, subjectID uint, p *Principal)
}
