package quiz

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/navikit/navigator-backend/internal/engine"
	"github.com/navikit/navigator-backend/internal/entity"
	"go.uber.org/zap"
)

// QuizUsecase drives the questionnaire dialogue: question progression,
// multi-step input accumulation, generation and result browsing. Every
// session mutation runs inside a store Update closure so the store lock
// covers it; anything returned to callers is detached from the live
// record.
type QuizUsecase struct {
	store     SessionStore
	engine    *engine.Engine
	generator SuggestionGenerator
	logger    *zap.Logger
}

func NewUsecase(
	store SessionStore,
	eng *engine.Engine,
	generator SuggestionGenerator,
	logger *zap.Logger,
) *QuizUsecase {
	return &QuizUsecase{
		store:     store,
		engine:    eng,
		generator: generator,
		logger:    logger,
	}
}

// QuestionView is everything a renderer needs to present the current
// question: position, catalog entry and accumulated in-progress input.
type QuestionView struct {
	Question entity.Question
	Index    int
	Total    int
	Options  []engine.OptionView
	Pending  entity.Pending
}

// StepResult is the outcome of committing an answer: either the next
// question or questionnaire completion.
type StepResult struct {
	Done     bool
	Answered entity.Question
	Next     *QuestionView
}

// Begin starts or resumes the questionnaire for a user. Sessions that
// already hold results are not restarted implicitly.
func (uc *QuizUsecase) Begin(ctx context.Context, userID, chatID int64) (*QuestionView, error) {
	var view *QuestionView
	err := uc.store.UpdateOrCreate(userID, chatID, func(session *entity.Session) error {
		if session.State == entity.StateBrowsing || session.State == entity.StateDone {
			return entity.ErrSessionCompleted
		}

		if session.State == entity.StateStart {
			session.State = entity.StateAnswering
		}
		uc.preparePending(session)

		ctxzap.Info(ctx, "questionnaire started", zap.Int("question_index", session.CurrentIndex))

		var err error
		view, err = uc.view(session)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Restart discards the user's session and starts from the first question.
func (uc *QuizUsecase) Restart(ctx context.Context, userID, chatID int64) (*QuestionView, error) {
	uc.store.Delete(userID)

	var view *QuestionView
	err := uc.store.UpdateOrCreate(userID, chatID, func(session *entity.Session) error {
		session.State = entity.StateAnswering
		uc.preparePending(session)

		ctxzap.Info(ctx, "questionnaire restarted")

		var err error
		view, err = uc.view(session)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Current returns the question the session is positioned at.
func (uc *QuizUsecase) Current(ctx context.Context, userID int64) (*QuestionView, error) {
	session, err := uc.store.Get(userID)
	if err != nil {
		return nil, err
	}
	if session.State != entity.StateAnswering {
		return nil, entity.ErrInvalidState
	}
	return uc.view(session)
}

// Session returns a copy of the raw session for status reporting and
// exports.
func (uc *QuizUsecase) Session(ctx context.Context, userID int64) (*entity.Session, error) {
	return uc.store.Get(userID)
}

// SubmitText commits a free-text answer.
func (uc *QuizUsecase) SubmitText(ctx context.Context, userID int64, text string) (*StepResult, error) {
	return uc.step(ctx, userID, func(session *entity.Session, question entity.Question) (entity.Answer, error) {
		if question.Type != entity.QuestionText {
			return entity.Answer{}, entity.NewValidationError("this question is answered with the buttons below")
		}
		return entity.Answer{Type: entity.QuestionText, Text: text}, nil
	})
}

// SelectChoice commits a single-choice answer.
func (uc *QuizUsecase) SelectChoice(ctx context.Context, userID int64, value string) (*StepResult, error) {
	return uc.step(ctx, userID, func(session *entity.Session, question entity.Question) (entity.Answer, error) {
		return entity.Answer{Type: entity.QuestionChoice, Choice: value}, nil
	})
}

// SubmitPending commits the accumulated pending input for multi-step
// question types.
func (uc *QuizUsecase) SubmitPending(ctx context.Context, userID int64) (*StepResult, error) {
	return uc.step(ctx, userID, func(session *entity.Session, question entity.Question) (entity.Answer, error) {
		return pendingAnswer(question, session)
	})
}

// step runs one answer commit under the store lock: resolve the current
// question, build the answer, advance the engine.
func (uc *QuizUsecase) step(
	ctx context.Context,
	userID int64,
	build func(*entity.Session, entity.Question) (entity.Answer, error),
) (*StepResult, error) {
	var result *StepResult
	err := uc.store.Update(userID, func(session *entity.Session) error {
		if session.State != entity.StateAnswering {
			return entity.ErrInvalidState
		}

		question, err := uc.engine.Current(session)
		if err != nil {
			return err
		}

		answer, err := build(session, question)
		if err != nil {
			return err
		}

		if err := uc.engine.Advance(session, answer); err != nil {
			return err
		}

		if session.Completed {
			ctxzap.Info(ctx, "questionnaire completed", zap.Int("answer_count", len(session.Answers)))
			result = &StepResult{Done: true, Answered: question}
			return nil
		}

		uc.preparePending(session)
		next, err := uc.view(session)
		if err != nil {
			return err
		}
		result = &StepResult{Answered: question, Next: next}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ToggleMulti flips one multiselect option in the pending selection.
func (uc *QuizUsecase) ToggleMulti(ctx context.Context, userID int64, value string) (*QuestionView, error) {
	return uc.adjust(userID, entity.QuestionMultiSelect, func(session *entity.Session, question entity.Question) error {
		if !hasOption(question, value) {
			return entity.NewValidationError("unknown option")
		}

		selected := session.Pending.Selected
		if idx := indexOf(selected, value); idx >= 0 {
			session.Pending.Selected = append(selected[:idx], selected[idx+1:]...)
			return nil
		}
		if question.MaxChoices > 0 && len(selected) >= question.MaxChoices {
			return entity.NewValidationError("you can pick at most %d options", question.MaxChoices)
		}
		session.Pending.Selected = append(selected, value)
		return nil
	})
}

// AdjustSlider moves the pending slider value by delta, clamped to the
// question bounds.
func (uc *QuizUsecase) AdjustSlider(ctx context.Context, userID int64, delta int) (*QuestionView, error) {
	return uc.adjust(userID, entity.QuestionSlider, func(session *entity.Session, question entity.Question) error {
		if !session.Pending.HasValue {
			session.Pending.Value = sliderDefault(question)
			session.Pending.HasValue = true
		}
		session.Pending.Value = clamp(session.Pending.Value+delta, question.Min, question.Max)
		return nil
	})
}

// AdjustRating moves one rating item by delta, clamped to the item bounds.
func (uc *QuizUsecase) AdjustRating(ctx context.Context, userID int64, itemName string, delta int) (*QuestionView, error) {
	return uc.adjust(userID, entity.QuestionRating, func(session *entity.Session, question entity.Question) error {
		item, ok := ratingItem(question, itemName)
		if !ok {
			return entity.NewValidationError("unknown rating item")
		}

		if session.Pending.Scores == nil {
			session.Pending.Scores = ratingDefaults(question)
		}
		session.Pending.Scores[itemName] = clamp(session.Pending.Scores[itemName]+delta, item.Min, item.Max)
		return nil
	})
}

// AdjustAllocation moves points for one area by delta. Points never go
// negative and the running total never exceeds the question budget.
func (uc *QuizUsecase) AdjustAllocation(ctx context.Context, userID int64, area string, delta int) (*QuestionView, error) {
	return uc.adjust(userID, entity.QuestionAllocation, func(session *entity.Session, question entity.Question) error {
		if !hasArea(question, area) {
			return entity.NewValidationError("unknown category")
		}

		if session.Pending.Scores == nil {
			session.Pending.Scores = allocationDefaults(question)
		}

		next := session.Pending.Scores[area] + delta
		if next < 0 {
			next = 0
		}
		if delta > 0 && scoreSum(session.Pending.Scores)+delta > question.TotalPoints {
			return entity.NewValidationError("no points left, remove some from another category first")
		}
		session.Pending.Scores[area] = next
		return nil
	})
}

// adjust runs one pending-input mutation under the store lock after
// checking the current question has the expected type.
func (uc *QuizUsecase) adjust(
	userID int64,
	want entity.QuestionType,
	fn func(*entity.Session, entity.Question) error,
) (*QuestionView, error) {
	var view *QuestionView
	err := uc.store.Update(userID, func(session *entity.Session) error {
		if session.State != entity.StateAnswering {
			return entity.ErrInvalidState
		}

		question, err := uc.engine.Current(session)
		if err != nil {
			return err
		}
		if question.Type != want {
			return entity.ErrInvalidState
		}

		if err := fn(session, question); err != nil {
			return err
		}

		view, err = uc.view(session)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Back steps to the previous question. The stored answer for it is kept
// and overwritten on resubmission.
func (uc *QuizUsecase) Back(ctx context.Context, userID int64) (*QuestionView, error) {
	var view *QuestionView
	err := uc.store.Update(userID, func(session *entity.Session) error {
		if session.State != entity.StateAnswering {
			return entity.ErrInvalidState
		}

		if !uc.engine.Back(session) {
			return entity.NewValidationError("already at the first question")
		}
		uc.preparePending(session)

		var err error
		view, err = uc.view(session)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Generate runs suggestion generation for a completed questionnaire. On
// failure the session returns to the answering state so the user can
// retry. The generator works on a detached copy; the store lock is never
// held across the completion call.
func (uc *QuizUsecase) Generate(ctx context.Context, userID int64) (*entity.Session, error) {
	var snapshot *entity.Session
	err := uc.store.Update(userID, func(session *entity.Session) error {
		if !session.Completed {
			return entity.ErrInvalidState
		}
		if session.State == entity.StateGenerating {
			return entity.ErrInvalidState
		}
		session.State = entity.StateGenerating
		snapshot = session.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	suggestions, genErr := uc.generator.GenerateSuggestions(ctx, snapshot)

	var result *entity.Session
	err = uc.store.Update(userID, func(session *entity.Session) error {
		if genErr != nil {
			session.State = entity.StateAnswering
			return nil
		}
		session.Results = &entity.Results{
			Suggestions:   suggestions,
			SelectedIndex: 0,
			Plans:         make(map[string]string),
		}
		session.State = entity.StateBrowsing
		result = session.Clone()
		return nil
	})
	if genErr != nil {
		return nil, fmt.Errorf("generate suggestions: %w", genErr)
	}
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "results attached", zap.Int("suggestion_count", len(suggestions)))

	return result, nil
}

// Regenerate replaces the suggestion list, steering the model away from
// names it already produced. On failure the previous results are kept.
func (uc *QuizUsecase) Regenerate(ctx context.Context, userID int64) (*entity.Session, error) {
	var (
		snapshot *entity.Session
		avoid    []string
	)
	err := uc.store.Update(userID, func(session *entity.Session) error {
		if session.State != entity.StateBrowsing || session.Results == nil {
			return entity.ErrInvalidState
		}

		avoid = append([]string{}, session.Results.PreviousNames...)
		for _, s := range session.Results.Suggestions {
			avoid = append(avoid, s.Name)
		}

		session.State = entity.StateGenerating
		snapshot = session.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	suggestions, genErr := uc.generator.RegenerateSuggestions(ctx, snapshot, avoid)

	var result *entity.Session
	err = uc.store.Update(userID, func(session *entity.Session) error {
		if genErr != nil {
			session.State = entity.StateBrowsing
			return nil
		}
		session.Results = &entity.Results{
			Suggestions:   suggestions,
			SelectedIndex: 0,
			Plans:         make(map[string]string),
			PreviousNames: avoid,
		}
		session.State = entity.StateBrowsing
		result = session.Clone()
		return nil
	})
	if genErr != nil {
		return nil, fmt.Errorf("regenerate suggestions: %w", genErr)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Browse moves the suggestion cursor by delta and returns the suggestion
// now in view with its position.
func (uc *QuizUsecase) Browse(ctx context.Context, userID int64, delta int) (*entity.SuggestionRecord, int, int, error) {
	var (
		record *entity.SuggestionRecord
		index  int
		total  int
	)
	err := uc.store.Update(userID, func(session *entity.Session) error {
		if session.State != entity.StateBrowsing || session.Results == nil {
			return entity.ErrInvalidState
		}

		total = len(session.Results.Suggestions)
		session.Results.SelectedIndex = clamp(session.Results.SelectedIndex+delta, 0, total-1)
		index = session.Results.SelectedIndex

		record = session.Clone().SelectedSuggestion()
		if record == nil {
			return entity.ErrNoResult
		}
		return nil
	})
	if err != nil {
		return nil, 0, 0, err
	}
	return record, index, total, nil
}

// Plan returns the detailed plan for the suggestion in view, generating
// it on first request and reusing the stored text afterwards.
func (uc *QuizUsecase) Plan(ctx context.Context, userID int64) (*entity.SuggestionRecord, string, error) {
	var (
		snapshot *entity.Session
		record   *entity.SuggestionRecord
		cached   string
	)
	err := uc.store.Update(userID, func(session *entity.Session) error {
		if session.State != entity.StateBrowsing || session.Results == nil {
			return entity.ErrInvalidState
		}

		record = session.Clone().SelectedSuggestion()
		if record == nil {
			return entity.ErrNoResult
		}
		cached = session.Results.Plans[record.ID]
		if cached == "" {
			snapshot = session.Clone()
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	if cached != "" {
		return record, cached, nil
	}

	plan, err := uc.generator.GeneratePlan(ctx, snapshot, record)
	if err != nil {
		return nil, "", fmt.Errorf("generate plan: %w", err)
	}

	err = uc.store.Update(userID, func(session *entity.Session) error {
		if session.Results == nil {
			return entity.ErrNoResult
		}
		if session.Results.Plans == nil {
			session.Results.Plans = make(map[string]string)
		}
		session.Results.Plans[record.ID] = plan
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return record, plan, nil
}

// Analysis returns the psychological profile for the completed
// questionnaire, generating it on first request.
func (uc *QuizUsecase) Analysis(ctx context.Context, userID int64) (string, error) {
	var (
		snapshot *entity.Session
		cached   string
	)
	err := uc.store.Update(userID, func(session *entity.Session) error {
		if session.State != entity.StateBrowsing || session.Results == nil {
			return entity.ErrInvalidState
		}
		cached = session.Results.Analysis
		if cached == "" {
			snapshot = session.Clone()
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if cached != "" {
		return cached, nil
	}

	analysis, err := uc.generator.GenerateAnalysis(ctx, snapshot)
	if err != nil {
		return "", fmt.Errorf("generate analysis: %w", err)
	}

	err = uc.store.Update(userID, func(session *entity.Session) error {
		if session.Results == nil {
			return entity.ErrNoResult
		}
		session.Results.Analysis = analysis
		return nil
	})
	if err != nil {
		return "", err
	}

	ctxzap.Info(ctx, "analysis attached", zap.Int("analysis_length", len(analysis)))

	return analysis, nil
}

// view builds a renderable snapshot of the session's current question.
// Pending input is copied so the caller never aliases the live record.
func (uc *QuizUsecase) view(session *entity.Session) (*QuestionView, error) {
	question, err := uc.engine.Current(session)
	if err != nil {
		return nil, err
	}
	return &QuestionView{
		Question: question,
		Index:    session.CurrentIndex,
		Total:    uc.engine.Catalog().Len(),
		Options:  uc.engine.Options(question, session),
		Pending:  detachPending(session.Pending),
	}, nil
}

// preparePending seeds pending input with the defaults the keyboard
// renders initially.
func (uc *QuizUsecase) preparePending(session *entity.Session) {
	session.ResetPending()

	question, err := uc.engine.Current(session)
	if err != nil {
		return
	}

	switch question.Type {
	case entity.QuestionSlider:
		session.Pending.Value = sliderDefault(question)
		session.Pending.HasValue = true
	case entity.QuestionRating:
		session.Pending.Scores = ratingDefaults(question)
	case entity.QuestionAllocation:
		session.Pending.Scores = allocationDefaults(question)
	}
}
