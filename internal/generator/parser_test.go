package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navikit/navigator-backend/internal/entity"
)

const validArray = `[
  {
    "name": "Weekend pottery studio",
    "description": "Small-group ceramics classes for beginners.",
    "score": 87,
    "advantages": ["low competition"],
    "risks": ["seasonal demand"],
    "recommendations": ["start with rented kiln time"]
  },
  {
    "name": "Meal-prep delivery",
    "description": "Weekly healthy meal boxes for busy professionals.",
    "score": 74
  }
]`

func TestParseSuggestionsPlainArray(t *testing.T) {
	records, err := parseSuggestions(validArray)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Weekend pottery studio", records[0].Name)
	assert.Equal(t, 87, records[0].Score)
	assert.Equal(t, []string{"low competition"}, records[0].Advantages)
	assert.Equal(t, "Meal-prep delivery", records[1].Name)

	assert.NotEmpty(t, records[0].ID)
	assert.NotEmpty(t, records[1].ID)
	assert.NotEqual(t, records[0].ID, records[1].ID)
}

func TestParseSuggestionsCodeFence(t *testing.T) {
	raw := "Here are your directions:\n```json\n" + validArray + "\n```\nGood luck!"

	records, err := parseSuggestions(raw)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestParseSuggestionsProseWrapped(t *testing.T) {
	raw := "Based on your answers I suggest:\n" + validArray + "\nLet me know."

	records, err := parseSuggestions(raw)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestParseSuggestionsNoArray(t *testing.T) {
	_, err := parseSuggestions("I could not come up with anything, sorry.")

	var genErr *entity.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Contains(t, genErr.Reason, "no JSON array")
}

func TestParseSuggestionsInvalidJSON(t *testing.T) {
	_, err := parseSuggestions(`[{"name": "broken"`)

	var genErr *entity.GenerationError
	require.True(t, errors.As(err, &genErr))
}

func TestParseSuggestionsEmptyList(t *testing.T) {
	_, err := parseSuggestions("[]")

	var genErr *entity.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Contains(t, genErr.Reason, "empty")
}

func TestParseSuggestionsMissingFields(t *testing.T) {
	for _, raw := range []string{
		`[{"description": "no name", "score": 50}]`,
		`[{"name": "no description", "score": 50}]`,
		`[{"name": "   ", "description": "blank name", "score": 50}]`,
	} {
		_, err := parseSuggestions(raw)

		var genErr *entity.GenerationError
		require.True(t, errors.As(err, &genErr), "input: %s", raw)
		assert.Contains(t, genErr.Reason, "missing name or description")
	}
}

func TestParseSuggestionsClampsScore(t *testing.T) {
	raw := `[
  {"name": "Over", "description": "too high", "score": 250},
  {"name": "Under", "description": "too low", "score": -10}
]`

	records, err := parseSuggestions(raw)
	require.NoError(t, err)
	assert.Equal(t, 100, records[0].Score)
	assert.Equal(t, 0, records[1].Score)
}

func TestParseSuggestionsTrimsWhitespace(t *testing.T) {
	raw := `[{"name": "  Tutoring  ", "description": " Online math tutoring. ", "score": 60}]`

	records, err := parseSuggestions(raw)
	require.NoError(t, err)
	assert.Equal(t, "Tutoring", records[0].Name)
	assert.Equal(t, "Online math tutoring.", records[0].Description)
}
