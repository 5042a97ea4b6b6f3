package engine

import (
	"fmt"

	"github.com/navikit/navigator-backend/internal/catalog"
	"github.com/navikit/navigator-backend/internal/entity"
)

// Engine owns the question catalog and the per-answer validate/advance
// logic. It never mutates a session on invalid input.
type Engine struct {
	catalog *catalog.Catalog
}

// New creates a question engine over a loaded catalog.
func New(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// Catalog exposes the underlying catalog for rendering.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Current returns the question the session is positioned at.
func (e *Engine) Current(session *entity.Session) (entity.Question, error) {
	return e.catalog.Get(session.CurrentIndex)
}

// Advance validates the answer against the session's current question,
// records it, and moves the pointer forward (or marks the session
// complete at the last question). On a validation failure the session is
// left untouched and the returned error is a *entity.ValidationError.
func (e *Engine) Advance(session *entity.Session, answer entity.Answer) error {
	question, err := e.Current(session)
	if err != nil {
		return err
	}

	if err := Validate(question, answer); err != nil {
		return err
	}

	answer.Type = question.Type
	session.Answers[question.ID] = answer
	session.ResetPending()
	session.Touch()

	next := e.catalog.NextIndex(session.CurrentIndex, answer)
	if next < 0 {
		session.Completed = true
		return nil
	}
	session.CurrentIndex = next
	return nil
}

// Back moves the pointer to the previous question when possible. The
// previously recorded answer stays and is overwritten on re-answer.
func (e *Engine) Back(session *entity.Session) bool {
	if session.CurrentIndex == 0 {
		return false
	}
	session.CurrentIndex--
	session.ResetPending()
	session.Touch()
	return true
}

// OptionView is one renderable selectable option with its in-progress
// selection state.
type OptionView struct {
	Label    string
	Value    string
	Selected bool
}

// Options renders the selectable options for a question, folding in the
// session's partial in-progress state. Returns nil for free-text and
// value-adjusted types that carry no discrete option list.
func (e *Engine) Options(question entity.Question, session *entity.Session) []OptionView {
	switch question.Type {
	case entity.QuestionChoice:
		views := make([]OptionView, 0, len(question.Options))
		for _, opt := range question.Options {
			views = append(views, OptionView{Label: opt.Label, Value: opt.Value})
		}
		return views
	case entity.QuestionMultiSelect:
		selected := make(map[string]bool, len(session.Pending.Selected))
		for _, v := range session.Pending.Selected {
			selected[v] = true
		}
		views := make([]OptionView, 0, len(question.Options))
		for _, opt := range question.Options {
			views = append(views, OptionView{
				Label:    opt.Label,
				Value:    opt.Value,
				Selected: selected[opt.Value],
			})
		}
		return views
	default:
		return nil
	}
}

// Validate type-dispatches on the question's type and checks the answer
// against the question's constraints. Expected failures come back as
// *entity.ValidationError with a human-readable reason.
func Validate(question entity.Question, answer entity.Answer) error {
	switch question.Type {
	case entity.QuestionText:
		return validateText(question, answer)
	case entity.QuestionChoice:
		return validateChoice(question, answer)
	case entity.QuestionMultiSelect:
		return validateMultiSelect(question, answer)
	case entity.QuestionSlider:
		return validateSlider(question, answer)
	case entity.QuestionRating:
		return validateRating(question, answer)
	case entity.QuestionAllocation:
		return validateAllocation(question, answer)
	default:
		// Unknown types are rejected at catalog load; reaching this is a
		// programming error.
		return &entity.ConfigurationError{QuestionID: question.ID, Reason: fmt.Sprintf("unknown type %q", question.Type)}
	}
}

func validateText(q entity.Question, a entity.Answer) error {
	length := len([]rune(a.Text))
	if length < q.MinLength {
		return entity.NewValidationError("answer is too short: minimum %d characters, got %d", q.MinLength, length)
	}
	if q.MaxLength > 0 && length > q.MaxLength {
		return entity.NewValidationError("answer is too long: maximum %d characters, got %d", q.MaxLength, length)
	}
	return nil
}

func validateChoice(q entity.Question, a entity.Answer) error {
	for _, opt := range q.Options {
		if opt.Value == a.Choice {
			return nil
		}
	}
	return entity.NewValidationError("%q is not one of the offered options", a.Choice)
}

func validateMultiSelect(q entity.Question, a entity.Answer) error {
	allowed := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		allowed[opt.Value] = true
	}
	for _, v := range a.Choices {
		if !allowed[v] {
			return entity.NewValidationError("%q is not one of the offered options", v)
		}
	}
	count := len(a.Choices)
	if q.MinChoices > 0 && count < q.MinChoices {
		return entity.NewValidationError("select at least %d option(s), got %d", q.MinChoices, count)
	}
	if q.MaxChoices > 0 && count > q.MaxChoices {
		return entity.NewValidationError("select at most %d option(s), got %d", q.MaxChoices, count)
	}
	return nil
}

func validateSlider(q entity.Question, a entity.Answer) error {
	if a.Value < q.Min || a.Value > q.Max {
		return entity.NewValidationError("value %d is outside the allowed range [%d, %d]", a.Value, q.Min, q.Max)
	}
	return nil
}

func validateRating(q entity.Question, a entity.Answer) error {
	for _, item := range q.Items {
		value, ok := a.Scores[item.Name]
		if !ok {
			return entity.NewValidationError("missing rating for %q", item.Label)
		}
		if value < item.Min || value > item.Max {
			return entity.NewValidationError("rating for %q must be within [%d, %d], got %d", item.Label, item.Min, item.Max, value)
		}
	}
	if len(a.Scores) > len(q.Items) {
		return entity.NewValidationError("unexpected rating entries")
	}
	return nil
}

func validateAllocation(q entity.Question, a entity.Answer) error {
	known := make(map[string]bool, len(q.Areas))
	for _, area := range q.Areas {
		known[area.Name] = true
	}
	sum := 0
	for name, value := range a.Scores {
		if !known[name] {
			return entity.NewValidationError("unknown category %q", name)
		}
		if value < 0 {
			return entity.NewValidationError("points for %q must not be negative", name)
		}
		sum += value
	}
	if sum != q.TotalPoints {
		return entity.NewValidationError("points must sum to %d, current sum is %d", q.TotalPoints, sum)
	}
	return nil
}
