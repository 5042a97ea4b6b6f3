package keyboard

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/navikit/navigator-backend/internal/entity"
	"github.com/navikit/navigator-backend/internal/telegram/render"
	"github.com/navikit/navigator-backend/internal/usecase/quiz"
)

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// StartKeyboard creates the initial start button
func (b *Builder) StartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Start", "act:start"),
		),
	)
}

// QuestionKeyboard builds the input keyboard for the current question.
// Free-text questions get only the back row.
func (b *Builder) QuestionKeyboard(view *quiz.QuestionView) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	switch view.Question.Type {
	case entity.QuestionChoice:
		rows = b.choiceRows(view)
	case entity.QuestionMultiSelect:
		rows = b.multiSelectRows(view)
	case entity.QuestionSlider:
		rows = b.sliderRows(view)
	case entity.QuestionRating:
		rows = b.ratingRows(view)
	case entity.QuestionAllocation:
		rows = b.allocationRows(view)
	}

	if view.Index > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Previous question", "act:back"),
		))
	}

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func (b *Builder) choiceRows(view *quiz.QuestionView) [][]tgbotapi.InlineKeyboardButton {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(view.Options))
	for _, opt := range view.Options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(opt.Label, "opt:"+opt.Value),
		))
	}
	return rows
}

func (b *Builder) multiSelectRows(view *quiz.QuestionView) [][]tgbotapi.InlineKeyboardButton {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(view.Options)+1)
	selected := 0
	for _, opt := range view.Options {
		label := opt.Label
		if opt.Selected {
			label = "✅ " + label
			selected++
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "sel:"+opt.Value),
		))
	}

	if selected >= view.Question.MinChoices {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✔️ Done (%d picked)", selected), "act:submit"),
		))
	}
	return rows
}

func (b *Builder) sliderRows(view *quiz.QuestionView) [][]tgbotapi.InlineKeyboardButton {
	value := view.Pending.Value
	return [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖", "sli:dec"),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d", value), "noop:-"),
			tgbotapi.NewInlineKeyboardButtonData("➕", "sli:inc"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✔️ Done", "act:submit"),
		),
	}
}

func (b *Builder) ratingRows(view *quiz.QuestionView) [][]tgbotapi.InlineKeyboardButton {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(view.Question.Items)+1)
	for _, item := range view.Question.Items {
		score := view.Pending.Scores[item.Name]
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s: %d", item.Label, score), "noop:-"),
			tgbotapi.NewInlineKeyboardButtonData("➖", fmt.Sprintf("rat:%s:-1", item.Name)),
			tgbotapi.NewInlineKeyboardButtonData("➕", fmt.Sprintf("rat:%s:1", item.Name)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✔️ Done", "act:submit"),
	))
	return rows
}

func (b *Builder) allocationRows(view *quiz.QuestionView) [][]tgbotapi.InlineKeyboardButton {
	step := view.Question.Step
	if step <= 0 {
		step = 1
	}

	used := 0
	for _, v := range view.Pending.Scores {
		used += v
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(view.Question.Areas)+2)
	for _, area := range view.Question.Areas {
		score := view.Pending.Scores[area.Name]
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s: %d", area.Label, score), "noop:-"),
			tgbotapi.NewInlineKeyboardButtonData("➖", fmt.Sprintf("alloc:%s:%d", area.Name, -step)),
			tgbotapi.NewInlineKeyboardButtonData("➕", fmt.Sprintf("alloc:%s:%d", area.Name, step)),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(
			render.RenderAllocationRemaining(used, view.Question.TotalPoints), "noop:-"),
	))

	if used == view.Question.TotalPoints {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✔️ Done", "act:submit"),
		))
	}
	return rows
}

// GenerateKeyboard is shown after the last answer.
func (b *Builder) GenerateKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Get my directions", "act:generate"),
		),
	)
}

// RetryGenerateKeyboard is shown when generation failed.
func (b *Builder) RetryGenerateKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Try again", "act:generate"),
		),
	)
}

// ResultsKeyboard builds navigation for suggestion browsing.
func (b *Builder) ResultsKeyboard(index, total int) tgbotapi.InlineKeyboardMarkup {
	navRow := []tgbotapi.InlineKeyboardButton{}
	if index > 0 {
		navRow = append(navRow, tgbotapi.NewInlineKeyboardButtonData("◀️", "res:prev"))
	}
	navRow = append(navRow, tgbotapi.NewInlineKeyboardButtonData(
		fmt.Sprintf("%d / %d", index+1, total), "noop:-"))
	if index < total-1 {
		navRow = append(navRow, tgbotapi.NewInlineKeyboardButtonData("▶️", "res:next"))
	}

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{
		navRow,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Detailed plan", "act:plan"),
			tgbotapi.NewInlineKeyboardButtonData("🧠 My profile", "act:analysis"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Other directions", "act:regen"),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Start over", "act:restart"),
		),
	}}
}

// ConfirmRestartKeyboard asks before discarding the user's progress.
func (b *Builder) ConfirmRestartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes, start over", "act:restart_yes"),
			tgbotapi.NewInlineKeyboardButtonData("↩️ Keep my progress", "act:cancel"),
		),
	)
}

// BackToResultsKeyboard returns the user to suggestion browsing.
func (b *Builder) BackToResultsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back to directions", "act:results"),
		),
	)
}

// PlanKeyboard offers plan downloads and the way back to browsing.
func (b *Builder) PlanKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 MD", "dl:md"),
			tgbotapi.NewInlineKeyboardButtonData("📕 PDF", "dl:pdf"),
			tgbotapi.NewInlineKeyboardButtonData("📘 DOCX", "dl:docx"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back to directions", "act:results"),
		),
	)
}
