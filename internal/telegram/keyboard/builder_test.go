package keyboard

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navikit/navigator-backend/internal/entity"
	"github.com/navikit/navigator-backend/internal/usecase/quiz"
)

func buttonLabels(markup tgbotapi.InlineKeyboardMarkup) []string {
	var labels []string
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			labels = append(labels, btn.Text)
		}
	}
	return labels
}

func buttonData(markup tgbotapi.InlineKeyboardMarkup) []string {
	var data []string
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				data = append(data, *btn.CallbackData)
			}
		}
	}
	return data
}

func TestAllocationKeyboardShowsRemainingPoints(t *testing.T) {
	b := NewBuilder()

	view := &quiz.QuestionView{
		Question: entity.Question{
			Type: entity.QuestionAllocation,
			Areas: []entity.AllocationArea{
				{Name: "marketing", Label: "Marketing"},
				{Name: "product", Label: "Product"},
			},
			TotalPoints: 10,
			Step:        5,
		},
		Index:   5,
		Total:   6,
		Pending: entity.Pending{Scores: map[string]int{"marketing": 5}},
	}

	markup := b.QuestionKeyboard(view)
	labels := buttonLabels(markup)
	assert.Contains(t, labels, "🪙 Points left: 5 of 10")

	// Done appears only once the whole budget is spent.
	assert.NotContains(t, labels, "✔️ Done")
	view.Pending.Scores["product"] = 5
	assert.Contains(t, buttonLabels(b.QuestionKeyboard(view)), "✔️ Done")
}

func TestResultsKeyboardActions(t *testing.T) {
	b := NewBuilder()

	markup := b.ResultsKeyboard(0, 3)
	data := buttonData(markup)
	assert.Contains(t, data, "act:plan")
	assert.Contains(t, data, "act:analysis")
	assert.Contains(t, data, "act:regen")
	assert.Contains(t, data, "act:restart")
	assert.NotContains(t, data, "res:prev", "no back arrow on the first card")

	markup = b.ResultsKeyboard(1, 3)
	data = buttonData(markup)
	assert.Contains(t, data, "res:prev")
	assert.Contains(t, data, "res:next")
}

func TestBackToResultsKeyboard(t *testing.T) {
	b := NewBuilder()

	markup := b.BackToResultsKeyboard()
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, []string{"act:results"}, buttonData(markup))
}
