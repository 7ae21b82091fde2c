package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dodam-health/glucoquest/internal/domain"
)

// informalAgeCutoff: subjects younger than this get the informal register.
// Unknown age (0) deliberately falls through to the formal register.
const informalAgeCutoff = 10

const questPromptTemplate = `You are a pediatric diabetes coach. Today's glucose indicators for the child:

- Average glucose: {{average_glucose}} mg/dL
- Max glucose: {{max_glucose}} mg/dL
- Min glucose: {{min_glucose}} mg/dL
- Spike count: {{spike_count}}
- Health index: {{health_index}}

Rewrite the following candidate quests so they feel personal and motivating while keeping every number and target exactly as given. Keep each quest to one or two sentences. Do not add or remove quests and do not change the quest titles.

Candidate quests:
{{candidate_quests}}`

const analysisPromptTemplate = `You are a pediatric diabetes coach. Weekly glucose summary:

- Average glucose: {{average_glucose}} mg/dL
- Time in range (70-180): {{tir_percentage}}%
- Hyperglycemia readings: {{hyper_count}}
- Hypoglycemia readings: {{hypo_count}}
- Variability (std dev): {{variability}} mg/dL
- Recovery pattern: {{recovery_pattern}}

Daily event impacts:
{{event_impacts}}

Write a short per-category assessment of this week's glucose management.`

const informalToneInstruction = `

VERY IMPORTANT: speak casually and warmly, like a friendly older sibling!
Formal phrasing is strictly forbidden.

Use casual, encouraging phrasing:
- "Let's try...", "You've got this!", "How about we...?"
- Example: "Let's keep that glucose steady today!", "Nice job, let's do it again tomorrow!"

Never use formal phrasing:
- "It is recommended that...", "Please ensure that...", "One should..."
- Example: "It is recommended to maintain stable glucose" (wrong register)

Every sentence must use the casual, warm register.`

const formalToneInstruction = `

VERY IMPORTANT: use a formal, respectful register throughout.
Casual phrasing is strictly forbidden.

Use formal, respectful phrasing:
- "It is recommended that...", "Please consider...", "We suggest..."
- Example: "We recommend maintaining stable glucose levels through regular hydration."

Never use casual phrasing:
- "Let's try...", "You've got this!", "How about..."
- Example: "Let's keep that glucose steady!" (wrong register)

Every sentence must use the formal, respectful register.`

const questOutputContract = `

CRITICAL JSON FORMAT REQUIREMENTS:
- Respond with a single valid JSON object and nothing else
- No markdown fences, no explanatory text before or after
- The object maps each quest title to its quest text, for example:
  {
    "Hydration Quest": "Drink 8 glasses of water today to keep glucose steady.",
    "Spike Prevention Quest": "Keep jumps to 1 or fewer with slow breathing breaks."
  }`

const analysisOutputContract = `

CRITICAL JSON FORMAT REQUIREMENTS:
- Respond with a single valid JSON object and nothing else
- No markdown fences, no explanatory text before or after
- The object must have exactly this shape:
  {
    "result": {
      "spike_analysis": "Assessment of glucose spikes and stability.",
      "average_analysis": "Assessment of the average glucose level.",
      "max_analysis": "Assessment of the peak glucose level.",
      "overall_assessment": "Overall weekly management assessment."
    }
  }`

// ComposeQuestPrompt fills the quest template with metrics and the
// deterministic candidate quests, then appends the tone rules and the
// strict output contract.
func ComposeQuestPrompt(m domain.Metrics, candidates map[string]string, age int) string {
	var quests strings.Builder
	for _, title := range sortedKeys(candidates) {
		fmt.Fprintf(&quests, "- %s: %s\n", title, candidates[title])
	}

	prompt := substitute(questPromptTemplate, map[string]string{
		"average_glucose":  formatGlucose(m.Average),
		"max_glucose":      formatGlucose(m.Max),
		"min_glucose":      formatGlucose(m.Min),
		"spike_count":      fmt.Sprintf("%d", m.SpikeCount),
		"health_index":     formatGlucose(m.HealthIndex),
		"candidate_quests": strings.TrimRight(quests.String(), "\n"),
	})

	return prompt + ToneInstruction(age) + questOutputContract
}

// ComposeAnalysisPrompt fills the weekly analysis template and appends the
// tone rules and output contract.
func ComposeAnalysisPrompt(summary domain.WeeklySummary, impacts []domain.ImpactResult, age int) string {
	var events strings.Builder
	if len(impacts) == 0 {
		events.WriteString("- no correlated events this period")
	}
	for _, impact := range impacts {
		fmt.Fprintf(&events, "- %s\n", impact.Summary)
	}

	prompt := substitute(analysisPromptTemplate, map[string]string{
		"average_glucose":  formatGlucose(summary.Average),
		"tir_percentage":   formatGlucose(summary.TIRPercent),
		"hyper_count":      fmt.Sprintf("%d", summary.HyperCount),
		"hypo_count":       fmt.Sprintf("%d", summary.HypoCount),
		"variability":      formatGlucose(summary.Variability),
		"recovery_pattern": summary.RecoveryPattern,
		"event_impacts":    strings.TrimRight(events.String(), "\n"),
	})

	return prompt + ToneInstruction(age) + analysisOutputContract
}

// ToneInstruction returns the speech-register block for a subject's age.
// The contract is a strict either/or: under-10 gets the informal register,
// everyone else, including unknown age, gets the formal one.
func ToneInstruction(age int) string {
	if age > 0 && age < informalAgeCutoff {
		return informalToneInstruction
	}
	return formalToneInstruction
}

// substitute replaces {{name}} placeholders with their values.
func substitute(template string, values map[string]string) string {
	out := template
	for name, value := range values {
		out = strings.ReplaceAll(out, "{{"+name+"}}", value)
	}
	return out
}

// formatGlucose renders glucose-scale values with one decimal place.
func formatGlucose(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
