package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dodam-health/glucoquest/internal/domain"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

type fakeIndex struct {
	docs    int64
	added   []string
	nearest []domain.KnowledgeSnippet
}

func (f *fakeIndex) Add(_ context.Context, title, _, _ string, _ []string, _ []float32) error {
	f.added = append(f.added, title)
	f.docs++
	return nil
}

func (f *fakeIndex) Count(_ context.Context) (int64, error) { return f.docs, nil }

func (f *fakeIndex) Nearest(_ context.Context, _ []float32, topK int) ([]domain.KnowledgeSnippet, error) {
	if topK > len(f.nearest) {
		topK = len(f.nearest)
	}
	return f.nearest[:topK], nil
}

func TestEmbeddingRetrieverSearch(t *testing.T) {
	index := &fakeIndex{nearest: []domain.KnowledgeSnippet{
		{Title: "first"}, {Title: "second"}, {Title: "third"}, {Title: "fourth"},
	}}
	retriever := NewEmbeddingRetriever(&fakeEmbedder{vec: []float32{1, 0}}, index)

	snippets, err := retriever.Search(context.Background(), "high glucose", 3)
	require.NoError(t, err)
	assert.Len(t, snippets, 3)
}

func TestEmbeddingRetrieverEmbedFailure(t *testing.T) {
	retriever := NewEmbeddingRetriever(&fakeEmbedder{err: errors.New("quota exceeded")}, &fakeIndex{})
	_, err := retriever.Search(context.Background(), "query", 3)
	assert.Error(t, err)
}

func TestSeedKnowledgeBase(t *testing.T) {
	index := &fakeIndex{}
	err := SeedKnowledgeBase(context.Background(), &fakeEmbedder{vec: []float32{1}}, index)
	require.NoError(t, err)
	assert.Equal(t, len(seedDocuments), len(index.added))

	// A populated index is never re-seeded.
	err = SeedKnowledgeBase(context.Background(), &fakeEmbedder{vec: []float32{1}}, index)
	require.NoError(t, err)
	assert.Equal(t, len(seedDocuments), len(index.added))
}
