package generator

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/navikit/navigator-backend/internal/entity"
)

type rawSuggestion struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Score           int      `json:"score"`
	Advantages      []string `json:"advantages"`
	Risks           []string `json:"risks"`
	Recommendations []string `json:"recommendations"`
}

// parseSuggestions extracts the JSON array from model output and converts
// it into suggestion records. Models wrap JSON in code fences or prose
// often enough that we locate the array by brackets instead of trusting
// the whole body.
func parseSuggestions(raw string) ([]entity.SuggestionRecord, error) {
	payload := extractJSONArray(raw)
	if payload == "" {
		return nil, &entity.GenerationError{Reason: "no JSON array found in model output"}
	}

	var parsed []rawSuggestion
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, &entity.GenerationError{Reason: "model output is not valid JSON", Cause: err}
	}

	if len(parsed) == 0 {
		return nil, &entity.GenerationError{Reason: "model returned an empty suggestion list"}
	}

	records := make([]entity.SuggestionRecord, 0, len(parsed))
	for _, s := range parsed {
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Description) == "" {
			return nil, &entity.GenerationError{Reason: "suggestion is missing name or description"}
		}
		records = append(records, entity.SuggestionRecord{
			ID:              uuid.NewString(),
			Name:            strings.TrimSpace(s.Name),
			Description:     strings.TrimSpace(s.Description),
			Score:           clampScore(s.Score),
			Advantages:      s.Advantages,
			Risks:           s.Risks,
			Recommendations: s.Recommendations,
		})
	}

	return records, nil
}

// extractJSONArray returns the outermost [...] slice of raw, stripping
// markdown code fences first.
func extractJSONArray(raw string) string {
	cleaned := raw
	if idx := strings.Index(cleaned, "```"); idx >= 0 {
		cleaned = strings.ReplaceAll(cleaned, "```json", "")
		cleaned = strings.ReplaceAll(cleaned, "```", "")
	}

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start < 0 || end <= start {
		return ""
	}
	return cleaned[start : end+1]
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
