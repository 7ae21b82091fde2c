package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dodam-health/glucoquest/internal/domain"
	apperrors "github.com/dodam-health/glucoquest/internal/errors"
)

// AnalysisFields are the per-category assessments every analysis response
// carries, whether it came from the model or the deterministic fallback.
type AnalysisFields struct {
	SpikeAnalysis     string `json:"spike_analysis"`
	AverageAnalysis   string `json:"average_analysis"`
	MaxAnalysis       string `json:"max_analysis"`
	OverallAssessment string `json:"overall_assessment"`
}

type analysisEnvelope struct {
	Result AnalysisFields `json:"result"`
}

// ParseQuestResponse extracts the title-to-text quest mapping from raw
// model output, trying direct JSON, then a fenced code block, then the
// first balanced object.
func ParseQuestResponse(raw string) (map[string]string, error) {
	payload, err := extractObject(raw)
	if err != nil {
		return nil, err
	}

	var quests map[string]string
	if err := json.Unmarshal([]byte(payload), &quests); err != nil || len(quests) == 0 {
		// Some models wrap the mapping in a result envelope despite the
		// contract; accept that shape too.
		var wrapped struct {
			Result map[string]string `json:"result"`
		}
		if err := json.Unmarshal([]byte(payload), &wrapped); err != nil || len(wrapped.Result) == 0 {
			return nil, apperrors.ErrMalformedResponse
		}
		return wrapped.Result, nil
	}
	return quests, nil
}

// ParseAnalysisResponse extracts the per-category analysis fields from raw
// model output using the same parse chain.
func ParseAnalysisResponse(raw string) (AnalysisFields, error) {
	payload, err := extractObject(raw)
	if err != nil {
		return AnalysisFields{}, err
	}

	var envelope analysisEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err == nil && envelope.Result != (AnalysisFields{}) {
		return envelope.Result, nil
	}

	var flat AnalysisFields
	if err := json.Unmarshal([]byte(payload), &flat); err == nil && flat != (AnalysisFields{}) {
		return flat, nil
	}
	return AnalysisFields{}, apperrors.ErrMalformedResponse
}

// extractObject runs the three-stage parse chain and returns a JSON object
// string, or a malformed-response error when none of the stages find one.
func extractObject(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if json.Valid([]byte(trimmed)) && strings.HasPrefix(trimmed, "{") {
		return trimmed, nil
	}

	if fenced := extractFencedBlock(trimmed); fenced != "" {
		if json.Valid([]byte(fenced)) {
			return fenced, nil
		}
	}

	if balanced := extractBalancedObject(trimmed); balanced != "" {
		if json.Valid([]byte(balanced)) {
			return balanced, nil
		}
	}
	return "", apperrors.ErrMalformedResponse
}

// extractFencedBlock returns the contents of the first ```json or ```
// fenced block, or "" when there is none.
func extractFencedBlock(s string) string {
	start := strings.Index(s, "```")
	if start == -1 {
		return ""
	}
	rest := s[start+3:]
	if newline := strings.IndexByte(rest, '\n'); newline != -1 {
		// Drop the language tag line ("json" or empty).
		rest = rest[newline+1:]
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

// extractBalancedObject returns the first balanced {...} substring,
// respecting string literals and escapes.
func extractBalancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// FallbackAnalysis derives the per-category assessments directly from the
// metrics using the same thresholds as the quest pool generator, so the
// fallback reads consistently with what the model would have said.
func FallbackAnalysis(m domain.Metrics) AnalysisFields {
	fields := AnalysisFields{}

	switch {
	case m.SpikeCount > 2:
		fields.SpikeAnalysis = fmt.Sprintf("Glucose spiked %d times, more than we want to see. Needs attention.", m.SpikeCount)
	case m.SpikeCount > 0:
		fields.SpikeAnalysis = fmt.Sprintf("Glucose spiked %d time(s), mostly stable. Good effort.", m.SpikeCount)
	default:
		fields.SpikeAnalysis = "No glucose spikes recorded. Excellent stability."
	}

	switch {
	case m.Average > 130:
		fields.AverageAnalysis = fmt.Sprintf("Average glucose of %.1f mg/dL is above target and needs improvement.", m.Average)
	case m.Average > 120:
		fields.AverageAnalysis = fmt.Sprintf("Average glucose of %.1f mg/dL is acceptable. Keep maintaining it.", m.Average)
	default:
		fields.AverageAnalysis = fmt.Sprintf("Average glucose of %.1f mg/dL is excellent.", m.Average)
	}

	switch {
	case m.Max > 200:
		fields.MaxAnalysis = fmt.Sprintf("Peak glucose of %.1f mg/dL is very high and needs urgent care.", m.Max)
	case m.Max > 180:
		fields.MaxAnalysis = fmt.Sprintf("Peak glucose of %.1f mg/dL is high. Bring it down gradually.", m.Max)
	case m.Max > 140:
		fields.MaxAnalysis = fmt.Sprintf("Peak glucose of %.1f mg/dL is slightly elevated. Watch it.", m.Max)
	default:
		fields.MaxAnalysis = fmt.Sprintf("Peak glucose of %.1f mg/dL stayed in a healthy band.", m.Max)
	}

	switch {
	case m.Average > 140 && m.Max > 180:
		fields.OverallAssessment = "Overall levels are running high. Steady daily habits will bring them down."
	case m.Average <= 100 && m.Max <= 140:
		fields.OverallAssessment = "Outstanding overall control. Keep this excellent management going."
	default:
		fields.OverallAssessment = "Overall management is on track. Improve one small habit at a time."
	}

	return fields
}
