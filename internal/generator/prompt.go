package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/navikit/navigator-backend/internal/catalog"
	"github.com/navikit/navigator-backend/internal/entity"
)

const systemPrompt = "You are an experienced business consultant. You analyze a person's " +
	"questionnaire answers and propose realistic business directions that fit their " +
	"background, resources and constraints. You answer in the same language the " +
	"questionnaire is written in."

// buildSuggestionsPrompt serializes the full questionnaire transcript and
// asks for a strict JSON array of suggestions.
func buildSuggestionsPrompt(c *catalog.Catalog, session *entity.Session, count int, avoid []string) string {
	var b strings.Builder

	b.WriteString("Below are a person's answers to a business-orientation questionnaire.\n\n")
	b.WriteString(renderTranscript(c, session))

	fmt.Fprintf(&b, "\nBased on these answers, propose exactly %d business directions for this person.\n", count)

	if len(avoid) > 0 {
		b.WriteString("Do NOT repeat any of these previously suggested directions:\n")
		for _, name := range avoid {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}

	b.WriteString(`
Respond with ONLY a JSON array, no prose before or after. Each element:
{
  "name": "short name of the direction",
  "description": "2-4 sentences on what the business is and why it fits this person",
  "score": 0-100 fit score,
  "advantages": ["strength of this direction for this person", ...],
  "risks": ["main risk", ...],
  "recommendations": ["concrete first step", ...]
}
Order the array by score, highest first.`)

	return b.String()
}

// buildPlanPrompt asks for a detailed markdown plan for one chosen direction.
func buildPlanPrompt(c *catalog.Catalog, session *entity.Session, s *entity.SuggestionRecord) string {
	var b strings.Builder

	b.WriteString("Below are a person's answers to a business-orientation questionnaire.\n\n")
	b.WriteString(renderTranscript(c, session))

	fmt.Fprintf(&b, "\nThe person chose this direction:\n\nName: %s\nDescription: %s\n\n", s.Name, s.Description)

	b.WriteString(`Write a detailed, practical launch plan for this direction, tailored to the answers above. Use markdown with these sections:
## Summary
## Market and Customers
## First Steps (numbered, concrete)
## Finances (startup costs, pricing, break-even estimate)
## Risks and Mitigations
## 90-Day Goals

Be specific. No generic filler.`)

	return b.String()
}

// buildAnalysisPrompt asks for a psychological entrepreneur profile based
// on the transcript alone.
func buildAnalysisPrompt(c *catalog.Catalog, session *entity.Session) string {
	var b strings.Builder

	b.WriteString("Below are a person's answers to a business-orientation questionnaire.\n\n")
	b.WriteString(renderTranscript(c, session))

	b.WriteString(`
Write a psychological profile of this person as an entrepreneur, grounded only in the answers above. Use markdown with these sections:
## Entrepreneurial Profile
## Strengths
## Growth Areas
## Work Style and Motivation
## Risk Attitude
## How to Use This

Address the person directly and stay constructive. No generic filler.`)

	return b.String()
}

// renderTranscript walks the catalog in order and formats every answered
// question as a question/answer pair.
func renderTranscript(c *catalog.Catalog, session *entity.Session) string {
	var b strings.Builder
	n := 0
	for i := 0; i < c.Len(); i++ {
		q, err := c.Get(i)
		if err != nil {
			continue
		}
		a, ok := session.Answers[q.ID]
		if !ok {
			continue
		}
		n++
		fmt.Fprintf(&b, "%d. %s\n   Answer: %s\n", n, q.Text, renderAnswer(q, a))
	}
	return b.String()
}

func renderAnswer(q entity.Question, a entity.Answer) string {
	switch a.Type {
	case entity.QuestionText:
		return a.Text
	case entity.QuestionChoice:
		return optionLabel(q, a.Choice)
	case entity.QuestionMultiSelect:
		labels := make([]string, 0, len(a.Choices))
		for _, v := range a.Choices {
			labels = append(labels, optionLabel(q, v))
		}
		return strings.Join(labels, ", ")
	case entity.QuestionSlider:
		return fmt.Sprintf("%d (scale %d-%d)", a.Value, q.Min, q.Max)
	case entity.QuestionRating:
		return renderScores(ratingLabels(q), a.Scores, "")
	case entity.QuestionAllocation:
		return renderScores(areaLabels(q), a.Scores, " points")
	}
	return ""
}

func optionLabel(q entity.Question, value string) string {
	for _, opt := range q.Options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

func ratingLabels(q entity.Question) map[string]string {
	m := make(map[string]string, len(q.Items))
	for _, item := range q.Items {
		m[item.Name] = item.Label
	}
	return m
}

func areaLabels(q entity.Question) map[string]string {
	m := make(map[string]string, len(q.Areas))
	for _, area := range q.Areas {
		m[area.Name] = area.Label
	}
	return m
}

func renderScores(labels map[string]string, scores map[string]int, unit string) string {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		label := labels[k]
		if label == "" {
			label = k
		}
		parts = append(parts, fmt.Sprintf("%s: %d%s", label, scores[k], unit))
	}
	return strings.Join(parts, ", ")
}
