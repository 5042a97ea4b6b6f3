package engine

import (
	"testing"

	"github.com/navikit/navigator-backend/internal/catalog"
	"github.com/navikit/navigator-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	c, err := catalog.New([]entity.Question{
		{
			ID:   "pick",
			Text: "Pick one",
			Type: entity.QuestionChoice,
			Options: []entity.Option{
				{Label: "A", Value: "a"},
				{Label: "B", Value: "b"},
			},
		},
		{
			ID:        "describe",
			Text:      "Describe",
			Type:      entity.QuestionText,
			MinLength: 5,
			MaxLength: 20,
		},
		{
			ID:   "rate",
			Text: "Rate",
			Type: entity.QuestionSlider,
			Min:  1,
			Max:  10,
		},
	})
	require.NoError(t, err)
	return New(c)
}

func TestAdvanceThroughQuestionnaire(t *testing.T) {
	eng := newTestEngine(t)
	session := entity.NewSession(7, 7)

	q, err := eng.Current(session)
	require.NoError(t, err)
	assert.Equal(t, "pick", q.ID)

	require.NoError(t, eng.Advance(session, entity.Answer{Type: entity.QuestionChoice, Choice: "a"}))
	assert.Equal(t, 1, session.CurrentIndex)
	assert.False(t, session.Completed)

	require.NoError(t, eng.Advance(session, entity.Answer{Type: entity.QuestionText, Text: "hello there"}))
	assert.Equal(t, 2, session.CurrentIndex)

	require.NoError(t, eng.Advance(session, entity.Answer{Type: entity.QuestionSlider, Value: 10}))
	assert.True(t, session.Completed)

	// All three answers recorded under their question ids.
	assert.Len(t, session.Answers, 3)
	assert.Equal(t, "a", session.Answers["pick"].Choice)
	assert.Equal(t, "hello there", session.Answers["describe"].Text)
	assert.Equal(t, 10, session.Answers["rate"].Value)
}

func TestAdvanceRejectsInvalidAnswerWithoutSideEffects(t *testing.T) {
	eng := newTestEngine(t)
	session := entity.NewSession(7, 7)

	err := eng.Advance(session, entity.Answer{Type: entity.QuestionChoice, Choice: "zzz"})

	var validationErr *entity.ValidationError
	require.ErrorAs(t, err, &validationErr)

	assert.Equal(t, 0, session.CurrentIndex)
	assert.Empty(t, session.Answers)
	assert.False(t, session.Completed)
}

func TestBack(t *testing.T) {
	eng := newTestEngine(t)
	session := entity.NewSession(7, 7)

	assert.False(t, eng.Back(session), "cannot go back from the first question")

	require.NoError(t, eng.Advance(session, entity.Answer{Type: entity.QuestionChoice, Choice: "b"}))
	require.True(t, eng.Back(session))
	assert.Equal(t, 0, session.CurrentIndex)

	// Previous answer survives and is overwritten on resubmit.
	assert.Equal(t, "b", session.Answers["pick"].Choice)
	require.NoError(t, eng.Advance(session, entity.Answer{Type: entity.QuestionChoice, Choice: "a"}))
	assert.Equal(t, "a", session.Answers["pick"].Choice)
}

func TestOptionsFoldPendingSelection(t *testing.T) {
	c, err := catalog.New([]entity.Question{
		{
			ID:   "multi",
			Text: "Pick some",
			Type: entity.QuestionMultiSelect,
			Options: []entity.Option{
				{Label: "A", Value: "a"},
				{Label: "B", Value: "b"},
			},
			MinChoices: 1,
		},
	})
	require.NoError(t, err)
	eng := New(c)

	session := entity.NewSession(7, 7)
	session.Pending.Selected = []string{"b"}

	q, err := eng.Current(session)
	require.NoError(t, err)

	views := eng.Options(q, session)
	require.Len(t, views, 2)
	assert.False(t, views[0].Selected)
	assert.True(t, views[1].Selected)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		question entity.Question
		answer   entity.Answer
		wantErr  bool
	}{
		{
			name:     "text too short",
			question: entity.Question{ID: "q", Text: "t", Type: entity.QuestionText, MinLength: 10},
			answer:   entity.Answer{Type: entity.QuestionText, Text: "short"},
			wantErr:  true,
		},
		{
			name:     "text length counted in runes",
			question: entity.Question{ID: "q", Text: "t", Type: entity.QuestionText, MinLength: 5, MaxLength: 6},
			answer:   entity.Answer{Type: entity.QuestionText, Text: "привет"},
		},
		{
			name:     "text too long",
			question: entity.Question{ID: "q", Text: "t", Type: entity.QuestionText, MaxLength: 3},
			answer:   entity.Answer{Type: entity.QuestionText, Text: "abcd"},
			wantErr:  true,
		},
		{
			name: "multiselect below minimum",
			question: entity.Question{
				ID: "q", Text: "t", Type: entity.QuestionMultiSelect,
				Options:    []entity.Option{{Label: "A", Value: "a"}, {Label: "B", Value: "b"}},
				MinChoices: 2,
			},
			answer:  entity.Answer{Type: entity.QuestionMultiSelect, Choices: []string{"a"}},
			wantErr: true,
		},
		{
			name: "multiselect unknown value",
			question: entity.Question{
				ID: "q", Text: "t", Type: entity.QuestionMultiSelect,
				Options: []entity.Option{{Label: "A", Value: "a"}},
			},
			answer:  entity.Answer{Type: entity.QuestionMultiSelect, Choices: []string{"x"}},
			wantErr: true,
		},
		{
			name:     "slider at lower bound",
			question: entity.Question{ID: "q", Text: "t", Type: entity.QuestionSlider, Min: 1, Max: 10},
			answer:   entity.Answer{Type: entity.QuestionSlider, Value: 1},
		},
		{
			name:     "slider above upper bound",
			question: entity.Question{ID: "q", Text: "t", Type: entity.QuestionSlider, Min: 1, Max: 10},
			answer:   entity.Answer{Type: entity.QuestionSlider, Value: 11},
			wantErr:  true,
		},
		{
			name: "rating missing item",
			question: entity.Question{
				ID: "q", Text: "t", Type: entity.QuestionRating,
				Items: []entity.RatingItem{
					{Name: "a", Label: "A", Min: 1, Max: 5},
					{Name: "b", Label: "B", Min: 1, Max: 5},
				},
			},
			answer:  entity.Answer{Type: entity.QuestionRating, Scores: map[string]int{"a": 3}},
			wantErr: true,
		},
		{
			name: "rating complete",
			question: entity.Question{
				ID: "q", Text: "t", Type: entity.QuestionRating,
				Items: []entity.RatingItem{
					{Name: "a", Label: "A", Min: 1, Max: 5},
					{Name: "b", Label: "B", Min: 1, Max: 5},
				},
			},
			answer: entity.Answer{Type: entity.QuestionRating, Scores: map[string]int{"a": 1, "b": 5}},
		},
		{
			name: "allocation sum mismatch",
			question: entity.Question{
				ID: "q", Text: "t", Type: entity.QuestionAllocation,
				Areas:       []entity.AllocationArea{{Name: "x", Label: "X"}, {Name: "y", Label: "Y"}},
				TotalPoints: 100,
			},
			answer:  entity.Answer{Type: entity.QuestionAllocation, Scores: map[string]int{"x": 40, "y": 50}},
			wantErr: true,
		},
		{
			name: "allocation exact sum",
			question: entity.Question{
				ID: "q", Text: "t", Type: entity.QuestionAllocation,
				Areas:       []entity.AllocationArea{{Name: "x", Label: "X"}, {Name: "y", Label: "Y"}},
				TotalPoints: 100,
			},
			answer: entity.Answer{Type: entity.QuestionAllocation, Scores: map[string]int{"x": 100, "y": 0}},
		},
		{
			name: "allocation unknown category",
			question: entity.Question{
				ID: "q", Text: "t", Type: entity.QuestionAllocation,
				Areas:       []entity.AllocationArea{{Name: "x", Label: "X"}},
				TotalPoints: 10,
			},
			answer:  entity.Answer{Type: entity.QuestionAllocation, Scores: map[string]int{"z": 10}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.question, tt.answer)
			if tt.wantErr {
				var validationErr *entity.ValidationError
				assert.ErrorAs(t, err, &validationErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
