package catalog

import (
	"testing"

	"github.com/navikit/navigator-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuestions() []entity.Question {
	return []entity.Question{
		{
			ID:   "first",
			Text: "Pick one",
			Type: entity.QuestionChoice,
			Options: []entity.Option{
				{Label: "A", Value: "a"},
				{Label: "B", Value: "b", Next: "last"},
			},
		},
		{
			ID:        "second",
			Text:      "Tell me",
			Type:      entity.QuestionText,
			MinLength: 3,
		},
		{
			ID:   "last",
			Text: "Slide it",
			Type: entity.QuestionSlider,
			Min:  1,
			Max:  10,
		},
	}
}

func TestNewValidatesEntries(t *testing.T) {
	t.Run("empty catalog", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, entity.ErrCatalogEmpty)
	})

	t.Run("duplicate id", func(t *testing.T) {
		qs := testQuestions()
		qs[1].ID = "first"
		_, err := New(qs)
		var cfgErr *entity.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "first", cfgErr.QuestionID)
	})

	t.Run("dangling next link", func(t *testing.T) {
		qs := testQuestions()
		qs[1].Next = "nowhere"
		_, err := New(qs)
		var cfgErr *entity.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("dangling option next link", func(t *testing.T) {
		qs := testQuestions()
		qs[0].Options[1].Next = "nowhere"
		_, err := New(qs)
		var cfgErr *entity.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("inverted slider bounds", func(t *testing.T) {
		qs := testQuestions()
		qs[2].Min = 10
		qs[2].Max = 1
		_, err := New(qs)
		var cfgErr *entity.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("choice without options", func(t *testing.T) {
		qs := testQuestions()
		qs[0].Options = nil
		_, err := New(qs)
		var cfgErr *entity.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func TestLookups(t *testing.T) {
	c, err := New(testQuestions())
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())

	q, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "second", q.ID)

	_, err = c.Get(3)
	assert.ErrorIs(t, err, entity.ErrQuestionNotFound)

	q, err = c.ByID("last")
	require.NoError(t, err)
	assert.Equal(t, entity.QuestionSlider, q.Type)

	assert.Equal(t, 2, c.IndexOf("last"))
	assert.Equal(t, -1, c.IndexOf("missing"))
}

func TestNextIndex(t *testing.T) {
	c, err := New(testQuestions())
	require.NoError(t, err)

	t.Run("catalog order by default", func(t *testing.T) {
		next := c.NextIndex(0, entity.Answer{Type: entity.QuestionChoice, Choice: "a"})
		assert.Equal(t, 1, next)
	})

	t.Run("option next link wins", func(t *testing.T) {
		next := c.NextIndex(0, entity.Answer{Type: entity.QuestionChoice, Choice: "b"})
		assert.Equal(t, 2, next)
	})

	t.Run("last question ends the flow", func(t *testing.T) {
		next := c.NextIndex(2, entity.Answer{Type: entity.QuestionSlider, Value: 5})
		assert.Equal(t, -1, next)
	})

	t.Run("question next link", func(t *testing.T) {
		qs := testQuestions()
		qs[1].Next = "first"
		branched, err := New(qs)
		require.NoError(t, err)

		next := branched.NextIndex(1, entity.Answer{Type: entity.QuestionText, Text: "abc"})
		assert.Equal(t, 0, next)
	})
}

func TestDefaultCatalogIsValid(t *testing.T) {
	c, err := New(defaultQuestions())
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 0)

	// Every supported question type should appear in the shipped set.
	seen := map[entity.QuestionType]bool{}
	for i := 0; i < c.Len(); i++ {
		q, err := c.Get(i)
		require.NoError(t, err)
		seen[q.Type] = true
	}
	for _, typ := range []entity.QuestionType{
		entity.QuestionText, entity.QuestionChoice, entity.QuestionMultiSelect,
		entity.QuestionSlider, entity.QuestionRating, entity.QuestionAllocation,
	} {
		assert.True(t, seen[typ], "type %s missing from default catalog", typ)
	}
}
