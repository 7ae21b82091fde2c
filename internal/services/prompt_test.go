package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dodam-health/glucoquest/internal/domain"
)

func TestToneInstruction(t *testing.T) {
	assert.Contains(t, ToneInstruction(8), "casually")
	assert.Contains(t, ToneInstruction(10), "formal")
	assert.Contains(t, ToneInstruction(14), "formal")
	assert.Contains(t, ToneInstruction(0), "formal", "unknown age defaults to the formal register")
}

func TestComposeQuestPrompt(t *testing.T) {
	metrics := domain.Metrics{Average: 132.5, Max: 188, Min: 92, SpikeCount: 2, HealthIndex: 57.5}
	candidates := map[string]string{
		QuestHydration: "Drink 8 glasses of water today.",
	}

	prompt := ComposeQuestPrompt(metrics, candidates, 8)

	assert.Contains(t, prompt, "132.5")
	assert.Contains(t, prompt, "188.0")
	assert.Contains(t, prompt, "Spike count: 2")
	assert.Contains(t, prompt, QuestHydration)
	assert.Contains(t, prompt, "Drink 8 glasses of water today.")
	assert.Contains(t, prompt, "casually", "an eight year old gets the informal register")
	assert.Contains(t, prompt, "single valid JSON object")
	assert.NotContains(t, prompt, "{{", "all placeholders must be substituted")
}

func TestComposeQuestPromptListsCandidatesInStableOrder(t *testing.T) {
	metrics := domain.Metrics{Average: 100, Max: 120, Min: 90}
	candidates := map[string]string{
		"B Quest": "second",
		"A Quest": "first",
	}

	prompt := ComposeQuestPrompt(metrics, candidates, 12)
	assert.Less(t, strings.Index(prompt, "A Quest"), strings.Index(prompt, "B Quest"))
}

func TestComposeAnalysisPrompt(t *testing.T) {
	summary := domain.WeeklySummary{
		Average: 128.4, TIRPercent: 71.2, HyperCount: 5, HypoCount: 1,
		Variability: 38.7, RecoveryPattern: "glucose follows a mostly stable pattern",
	}
	impacts := []domain.ImpactResult{{Summary: "rice bowl: glucose rose 40 mg/dL"}}

	prompt := ComposeAnalysisPrompt(summary, impacts, 14)

	assert.Contains(t, prompt, "128.4")
	assert.Contains(t, prompt, "71.2")
	assert.Contains(t, prompt, "rice bowl")
	assert.Contains(t, prompt, "mostly stable pattern")
	assert.Contains(t, prompt, `"spike_analysis"`)
	assert.Contains(t, prompt, `"overall_assessment"`)
	assert.Contains(t, prompt, "formal")
}

func TestComposeAnalysisPromptWithoutEvents(t *testing.T) {
	prompt := ComposeAnalysisPrompt(domain.WeeklySummary{Average: 110}, nil, 0)
	assert.Contains(t, prompt, "no correlated events")
}
