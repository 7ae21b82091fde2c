package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dodam-health/glucoquest/internal/domain"
	apperrors "github.com/dodam-health/glucoquest/internal/errors"
)

func TestParseQuestResponseBareJSON(t *testing.T) {
	quests, err := ParseQuestResponse(`{"Hydration Quest": "Drink water!", "Stress Relief Quest": "Breathe."}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Hydration Quest":     "Drink water!",
		"Stress Relief Quest": "Breathe.",
	}, quests)
}

func TestParseQuestResponseFencedBlock(t *testing.T) {
	raw := "Here are your quests:\n```json\n{\"Hydration Quest\": \"Drink water!\"}\n```\nEnjoy!"
	quests, err := ParseQuestResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Drink water!", quests["Hydration Quest"])
}

func TestParseQuestResponseFenceAndBareAgree(t *testing.T) {
	bare, err := ParseQuestResponse(`{"Hydration Quest": "Drink water!"}`)
	require.NoError(t, err)
	fenced, err := ParseQuestResponse("```json\n{\"Hydration Quest\": \"Drink water!\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, bare, fenced)
}

func TestParseQuestResponseEmbeddedObject(t *testing.T) {
	raw := `Sure! The quests are {"Hydration Quest": "Drink {at least} 8 glasses"} as requested.`
	quests, err := ParseQuestResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Drink {at least} 8 glasses", quests["Hydration Quest"],
		"braces inside string literals must not confuse the scanner")
}

func TestParseQuestResponseResultEnvelope(t *testing.T) {
	quests, err := ParseQuestResponse(`{"result": {"Hydration Quest": "Drink water!"}}`)
	require.NoError(t, err)
	assert.Equal(t, "Drink water!", quests["Hydration Quest"])
}

func TestParseQuestResponseProse(t *testing.T) {
	_, err := ParseQuestResponse("I am sorry, I cannot produce quests today.")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMalformedResponse))
	assert.True(t, apperrors.Recoverable(err))
}

func TestParseAnalysisResponseEnvelope(t *testing.T) {
	raw := `{"result": {"spike_analysis": "a", "average_analysis": "b", "max_analysis": "c", "overall_assessment": "d"}}`
	fields, err := ParseAnalysisResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "a", fields.SpikeAnalysis)
	assert.Equal(t, "d", fields.OverallAssessment)
}

func TestParseAnalysisResponseFlat(t *testing.T) {
	raw := "```\n{\"spike_analysis\": \"a\", \"average_analysis\": \"b\", \"max_analysis\": \"c\", \"overall_assessment\": \"d\"}\n```"
	fields, err := ParseAnalysisResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "b", fields.AverageAnalysis)
}

func TestParseAnalysisResponseProse(t *testing.T) {
	_, err := ParseAnalysisResponse("no json here")
	assert.True(t, errors.Is(err, apperrors.ErrMalformedResponse))
}

func TestFallbackAnalysisAlwaysFillsAllFields(t *testing.T) {
	for _, m := range []domain.Metrics{
		{Average: 150, Max: 210, Min: 80, SpikeCount: 3},
		{Average: 95, Max: 120, Min: 85, SpikeCount: 0},
		{Average: 125, Max: 170, Min: 75, SpikeCount: 1},
	} {
		fields := FallbackAnalysis(m)
		assert.NotEmpty(t, fields.SpikeAnalysis)
		assert.NotEmpty(t, fields.AverageAnalysis)
		assert.NotEmpty(t, fields.MaxAnalysis)
		assert.NotEmpty(t, fields.OverallAssessment)
	}
}

func TestFallbackAnalysisTiers(t *testing.T) {
	high := FallbackAnalysis(domain.Metrics{Average: 150, Max: 210, SpikeCount: 3})
	assert.Contains(t, high.MaxAnalysis, "urgent")
	assert.Contains(t, high.AverageAnalysis, "needs improvement")
	assert.Contains(t, high.SpikeAnalysis, "3 times")

	calm := FallbackAnalysis(domain.Metrics{Average: 95, Max: 120, SpikeCount: 0})
	assert.Contains(t, calm.SpikeAnalysis, "No glucose spikes")
	assert.Contains(t, calm.OverallAssessment, "Outstanding")
}
