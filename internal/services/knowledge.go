package services

import (
	"context"

	"github.com/dodam-health/glucoquest/internal/domain"
	"github.com/dodam-health/glucoquest/internal/logger"
)

// VectorIndex is the storage side of knowledge retrieval.
type VectorIndex interface {
	Add(ctx context.Context, title, category, content string, keywords []string, embedding []float32) error
	Count(ctx context.Context) (int64, error)
	Nearest(ctx context.Context, query []float32, topK int) ([]domain.KnowledgeSnippet, error)
}

// EmbeddingRetriever answers knowledge queries by embedding the query text
// and ranking stored documents by vector similarity.
type EmbeddingRetriever struct {
	embedder domain.Embedder
	index    VectorIndex
}

func NewEmbeddingRetriever(embedder domain.Embedder, index VectorIndex) *EmbeddingRetriever {
	return &EmbeddingRetriever{embedder: embedder, index: index}
}

func (r *EmbeddingRetriever) Search(ctx context.Context, query string, topK int) ([]domain.KnowledgeSnippet, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.index.Nearest(ctx, vec, topK)
}

type seedDocument struct {
	title    string
	category string
	content  string
	keywords []string
}

var seedDocuments = []seedDocument{
	{
		title:    "Hydration and glucose",
		category: "habits",
		content:  "Drinking water regularly helps the kidneys clear excess glucose. Aim for 8 glasses spread across the day.",
		keywords: []string{"water", "hydration", "high glucose"},
	},
	{
		title:    "Post-meal movement",
		category: "exercise",
		content:  "A 10 to 15 minute walk after meals blunts post-meal glucose rises in children.",
		keywords: []string{"walking", "exercise", "spike prevention"},
	},
	{
		title:    "Late-night snacking",
		category: "nutrition",
		content:  "Food after 9pm tends to raise fasting glucose the next morning. Prefer an earlier, lighter evening snack.",
		keywords: []string{"snack", "evening", "fasting glucose"},
	},
	{
		title:    "Handling lows",
		category: "safety",
		content:  "For readings under 70 mg/dL, take 15 grams of fast carbs, wait 15 minutes and recheck before more activity.",
		keywords: []string{"hypoglycemia", "low glucose", "fast carbs"},
	},
	{
		title:    "Stress and glucose",
		category: "habits",
		content:  "Stress hormones raise glucose. Short breathing exercises help children settle spikes without extra food rules.",
		keywords: []string{"stress", "breathing", "spike prevention"},
	},
	{
		title:    "Steady routines",
		category: "habits",
		content:  "Consistent meal and sleep times narrow the daily glucose range more than any single food change.",
		keywords: []string{"routine", "sleep", "stability"},
	},
}

// SeedKnowledgeBase loads the built-in coaching documents when the index is
// empty. Embedding failures abort the seed; the retriever still works once
// documents are added later.
func SeedKnowledgeBase(ctx context.Context, embedder domain.Embedder, index VectorIndex) error {
	count, err := index.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, doc := range seedDocuments {
		vec, err := embedder.Embed(ctx, doc.title+"\n"+doc.content)
		if err != nil {
			return err
		}
		if err := index.Add(ctx, doc.title, doc.category, doc.content, doc.keywords, vec); err != nil {
			return err
		}
	}
	logger.Info("knowledge base seeded", "documents", len(seedDocuments))
	return nil
}
