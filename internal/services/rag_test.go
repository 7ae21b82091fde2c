package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dodam-health/glucoquest/internal/domain"
	"github.com/dodam-health/glucoquest/internal/utils"
)

func TestBuildQuery(t *testing.T) {
	assert.Contains(t, BuildQuery(domain.Metrics{Average: 150, Min: 90, Max: 170}), "high glucose")
	assert.Contains(t, BuildQuery(domain.Metrics{Average: 100, Min: 60, Max: 120}), "hypoglycemia")
	assert.Contains(t, BuildQuery(domain.Metrics{Average: 100, Min: 80, Max: 120}), "stabilization")

	spiky := BuildQuery(domain.Metrics{Average: 100, Min: 80, Max: 210, SpikeCount: 3})
	assert.Contains(t, spiky, "spike prevention")
	assert.Contains(t, spiky, "severe hyperglycemia")
}

func TestUserPatternsClassification(t *testing.T) {
	store := newFakeStore()
	today := utils.Today()
	yesterday := utils.DaysAgo(1)
	// Excellent day: in-range average, narrow spread.
	store.readings = append(store.readings, readingsFromValues(yesterday, 100, 120, 110)...)
	// Unstable day: wide spread around an in-range average.
	store.readings = append(store.readings, readingsFromValues(today, 60, 180, 120)...)

	rag := NewRAGService(store, nil, true)
	patterns, err := rag.UserPatterns(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, patterns, 2)

	assert.Equal(t, yesterday, patterns[0].Date)
	assert.Equal(t, domain.PatternExcellent, patterns[0].Type)
	assert.Equal(t, domain.PatternUnstable, patterns[1].Type)
}

func TestUserPatternsHighTier(t *testing.T) {
	store := newFakeStore()
	store.readings = readingsFromValues(utils.Today(), 190, 200, 195)

	rag := NewRAGService(store, nil, true)
	patterns, err := rag.UserPatterns(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	assert.Equal(t, domain.PatternHigh, patterns[0].Type)
}

func TestSimilarCases(t *testing.T) {
	store := newFakeStore()
	today := utils.Today()

	// Subject 2 matches the query profile closely.
	twin := readingsFromValues(today, 110, 150, 130, 95, 120)
	for i := range twin {
		twin[i].SubjectID = 2
	}
	store.readings = append(store.readings, twin...)

	// Subject 3 has too few readings to count.
	sparse := readingsFromValues(today, 110, 150)
	for i := range sparse {
		sparse[i].SubjectID = 3
	}
	store.readings = append(store.readings, sparse...)

	// Subject 4 is far away from the query profile.
	far := readingsFromValues(today, 260, 280, 270, 250, 265)
	for i := range far {
		far[i].SubjectID = 4
	}
	store.readings = append(store.readings, far...)

	query, err := ComputeMetrics(twin)
	require.NoError(t, err)

	rag := NewRAGService(store, nil, true)
	cases, err := rag.SimilarCases(context.Background(), 1, query)
	require.NoError(t, err)

	require.Len(t, cases, 1)
	assert.Equal(t, uint(2), cases[0].SubjectID)
	assert.Greater(t, cases[0].Similarity, 0.6)
}

func TestSimilarCasesExcludesSelf(t *testing.T) {
	store := newFakeStore()
	own := readingsFromValues(utils.Today(), 110, 150, 130, 95, 120)
	store.readings = own

	query, err := ComputeMetrics(own)
	require.NoError(t, err)

	rag := NewRAGService(store, nil, true)
	cases, err := rag.SimilarCases(context.Background(), 1, query)
	require.NoError(t, err)
	assert.Empty(t, cases, "the requesting subject never appears in its own similar cases")
}

func TestContextForDisabled(t *testing.T) {
	rag := NewRAGService(newFakeStore(), &fakeRetriever{}, false)
	assert.Empty(t, rag.ContextFor(context.Background(), 1, domain.Metrics{Average: 150}))
}

func TestContextForSurvivesRetrieverFailure(t *testing.T) {
	store := newFakeStore()
	store.readings = readingsFromValues(utils.Today(), 100, 120, 110)

	rag := NewRAGService(store, &fakeRetriever{err: errors.New("vector index down")}, true)
	block := rag.ContextFor(context.Background(), 1, domain.Metrics{Average: 110, Max: 120, Min: 100})

	assert.Contains(t, block, "Recent daily patterns", "pattern retrieval still contributes")
	assert.NotContains(t, block, "Relevant guidance")
}

func TestContextForIncludesKnowledge(t *testing.T) {
	store := newFakeStore()
	retriever := &fakeRetriever{snippets: []domain.KnowledgeSnippet{
		{Title: "Hydration and glucose", Category: "habits", Content: "Drink water regularly."},
	}}

	rag := NewRAGService(store, retriever, true)
	block := rag.ContextFor(context.Background(), 1, domain.Metrics{Average: 150, Max: 180, Min: 90})

	assert.Contains(t, block, "Relevant guidance")
	assert.Contains(t, block, "Hydration and glucose")
}

func TestContextForAllSourcesEmpty(t *testing.T) {
	rag := NewRAGService(newFakeStore(), &fakeRetriever{}, true)
	assert.Empty(t, rag.ContextFor(context.Background(), 1, domain.Metrics{Average: 100, Max: 110, Min: 90}))
}
