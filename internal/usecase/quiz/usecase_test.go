package quiz

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/navikit/navigator-backend/internal/catalog"
	"github.com/navikit/navigator-backend/internal/engine"
	"github.com/navikit/navigator-backend/internal/entity"
)

// fakeStore mirrors the real store's locking discipline: mutation only
// inside Update closures, reads handed out as clones.
type fakeStore struct {
	mu       sync.Mutex
	sessions map[int64]*entity.Session
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[int64]*entity.Session)}
}

func (f *fakeStore) Get(userID int64) (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[userID]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (f *fakeStore) Update(userID int64, fn func(*entity.Session) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[userID]
	if !ok {
		return entity.ErrSessionNotFound
	}
	return fn(s)
}

func (f *fakeStore) UpdateOrCreate(userID, chatID int64, fn func(*entity.Session) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[userID]
	if !ok {
		s = entity.NewSession(userID, chatID)
		f.sessions[userID] = s
	}
	return fn(s)
}

func (f *fakeStore) Delete(userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, userID)
}

// session returns the live record for assertions.
func (f *fakeStore) session(userID int64) *entity.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[userID]
}

// seed installs a prepared session record.
func (f *fakeStore) seed(s *entity.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.UserID] = s
}

type fakeGenerator struct {
	suggestions []entity.SuggestionRecord
	plan        string
	analysis    string
	err         error

	lastAvoid     []string
	planCalls     int
	analysisCalls int
}

func (f *fakeGenerator) GenerateSuggestions(ctx context.Context, session *entity.Session) ([]entity.SuggestionRecord, error) {
	return f.suggestions, f.err
}

func (f *fakeGenerator) RegenerateSuggestions(ctx context.Context, session *entity.Session, avoid []string) ([]entity.SuggestionRecord, error) {
	f.lastAvoid = avoid
	return f.suggestions, f.err
}

func (f *fakeGenerator) GeneratePlan(ctx context.Context, session *entity.Session, s *entity.SuggestionRecord) (string, error) {
	f.planCalls++
	return f.plan, f.err
}

func (f *fakeGenerator) GenerateAnalysis(ctx context.Context, session *entity.Session) (string, error) {
	f.analysisCalls++
	return f.analysis, f.err
}

func testSuggestions() []entity.SuggestionRecord {
	return []entity.SuggestionRecord{
		{ID: "a", Name: "Pottery studio", Description: "Classes", Score: 80},
		{ID: "b", Name: "Meal prep", Description: "Boxes", Score: 70},
	}
}

func newTestUsecase(t *testing.T) (*QuizUsecase, *fakeStore, *fakeGenerator) {
	t.Helper()

	cat, err := catalog.New([]entity.Question{
		{
			ID:   "style",
			Text: "How do you like to work?",
			Type: entity.QuestionChoice,
			Options: []entity.Option{
				{Label: "Alone", Value: "solo"},
				{Label: "In a team", Value: "team"},
			},
		},
		{
			ID:        "story",
			Text:      "Tell me about yourself.",
			Type:      entity.QuestionText,
			MinLength: 3,
			MaxLength: 100,
		},
		{
			ID:   "drivers",
			Text: "What motivates you?",
			Type: entity.QuestionMultiSelect,
			Options: []entity.Option{
				{Label: "Money", Value: "money"},
				{Label: "Freedom", Value: "freedom"},
				{Label: "Impact", Value: "impact"},
			},
			MinChoices: 1,
			MaxChoices: 2,
		},
		{
			ID:   "risk",
			Text: "How much risk can you take?",
			Type: entity.QuestionSlider,
			Min:  1,
			Max:  9,
		},
		{
			ID:   "skills",
			Text: "Rate your skills.",
			Type: entity.QuestionRating,
			Items: []entity.RatingItem{
				{Name: "sales", Label: "Sales", Min: 1, Max: 5},
				{Name: "tech", Label: "Tech", Min: 1, Max: 5},
			},
		},
		{
			ID:   "focus",
			Text: "Split your learning time.",
			Type: entity.QuestionAllocation,
			Areas: []entity.AllocationArea{
				{Name: "marketing", Label: "Marketing"},
				{Name: "product", Label: "Product"},
			},
			TotalPoints: 10,
			Step:        5,
		},
	})
	require.NoError(t, err)

	store := newFakeStore()
	gen := &fakeGenerator{
		suggestions: testSuggestions(),
		plan:        "## Summary\ndo things",
		analysis:    "## Entrepreneurial Profile\nsteady builder",
	}
	uc := NewUsecase(store, engine.New(cat), gen, zap.NewNop())
	return uc, store, gen
}

// completeQuestionnaire answers every question and leaves the session
// completed but not yet generated.
func completeQuestionnaire(t *testing.T, uc *QuizUsecase, userID int64) {
	t.Helper()
	ctx := context.Background()

	_, err := uc.Begin(ctx, userID, userID)
	require.NoError(t, err)

	_, err = uc.SelectChoice(ctx, userID, "solo")
	require.NoError(t, err)

	_, err = uc.SubmitText(ctx, userID, "I fix old bicycles on weekends")
	require.NoError(t, err)

	_, err = uc.ToggleMulti(ctx, userID, "freedom")
	require.NoError(t, err)
	_, err = uc.SubmitPending(ctx, userID)
	require.NoError(t, err)

	_, err = uc.SubmitPending(ctx, userID) // slider keeps its midpoint default
	require.NoError(t, err)

	_, err = uc.SubmitPending(ctx, userID) // rating keeps item minimums
	require.NoError(t, err)

	_, err = uc.AdjustAllocation(ctx, userID, "marketing", 5)
	require.NoError(t, err)
	_, err = uc.AdjustAllocation(ctx, userID, "product", 5)
	require.NoError(t, err)
	result, err := uc.SubmitPending(ctx, userID)
	require.NoError(t, err)
	require.True(t, result.Done)
}

func TestBeginStartsAnswering(t *testing.T) {
	uc, store, _ := newTestUsecase(t)
	ctx := context.Background()

	view, err := uc.Begin(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "style", view.Question.ID)
	assert.Equal(t, 0, view.Index)
	assert.Equal(t, 6, view.Total)
	assert.Len(t, view.Options, 2)

	assert.Equal(t, entity.StateAnswering, store.session(1).State)
}

func TestBeginRejectsBrowsingSession(t *testing.T) {
	uc, store, _ := newTestUsecase(t)

	s := entity.NewSession(1, 1)
	s.State = entity.StateBrowsing
	s.Results = &entity.Results{Suggestions: testSuggestions()}
	store.seed(s)

	_, err := uc.Begin(context.Background(), 1, 1)
	assert.True(t, errors.Is(err, entity.ErrSessionCompleted))
}

func TestSubmitTextOnButtonQuestion(t *testing.T) {
	uc, _, _ := newTestUsecase(t)
	ctx := context.Background()

	_, err := uc.Begin(ctx, 1, 1)
	require.NoError(t, err)

	_, err = uc.SubmitText(ctx, 1, "solo")

	var vErr *entity.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Reason, "buttons")
}

func TestSubmitTextValidation(t *testing.T) {
	uc, store, _ := newTestUsecase(t)
	ctx := context.Background()

	_, err := uc.Begin(ctx, 1, 1)
	require.NoError(t, err)
	_, err = uc.SelectChoice(ctx, 1, "solo")
	require.NoError(t, err)

	_, err = uc.SubmitText(ctx, 1, "no")
	var vErr *entity.ValidationError
	require.True(t, errors.As(err, &vErr))

	// rejection must not advance the session
	assert.Equal(t, 1, store.session(1).CurrentIndex)

	result, err := uc.SubmitText(ctx, 1, "long enough this time")
	require.NoError(t, err)
	assert.Equal(t, "story", result.Answered.ID)
	assert.Equal(t, "drivers", result.Next.Question.ID)
}

func TestToggleMultiRespectsMaxChoices(t *testing.T) {
	uc, _, _ := newTestUsecase(t)
	ctx := context.Background()

	_, err := uc.Begin(ctx, 1, 1)
	require.NoError(t, err)
	_, err = uc.SelectChoice(ctx, 1, "solo")
	require.NoError(t, err)
	_, err = uc.SubmitText(ctx, 1, "I fix old bicycles")
	require.NoError(t, err)

	_, err = uc.ToggleMulti(ctx, 1, "money")
	require.NoError(t, err)
	view, err := uc.ToggleMulti(ctx, 1, "freedom")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"money", "freedom"}, view.Pending.Selected)

	_, err = uc.ToggleMulti(ctx, 1, "impact")
	var vErr *entity.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Reason, "at most 2")

	// toggling off an already selected option always works
	view, err = uc.ToggleMulti(ctx, 1, "money")
	require.NoError(t, err)
	assert.Equal(t, []string{"freedom"}, view.Pending.Selected)
}

func TestToggleMultiConcurrentUsers(t *testing.T) {
	uc, store, _ := newTestUsecase(t)
	ctx := context.Background()

	const users = 3
	for u := int64(1); u <= users; u++ {
		_, err := uc.Begin(ctx, u, u)
		require.NoError(t, err)
		_, err = uc.SelectChoice(ctx, u, "solo")
		require.NoError(t, err)
		_, err = uc.SubmitText(ctx, u, "I fix old bicycles")
		require.NoError(t, err)
	}

	// Every user hammers the same option from several goroutines the way
	// goroutine-per-update delivery does.
	var wg sync.WaitGroup
	for u := int64(1); u <= users; u++ {
		for g := 0; g < 3; g++ {
			wg.Add(1)
			go func(userID int64) {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					_, _ = uc.ToggleMulti(ctx, userID, "freedom")
					_, _ = uc.Session(ctx, userID)
				}
			}(u)
		}
	}
	wg.Wait()

	for u := int64(1); u <= users; u++ {
		selected := store.session(u).Pending.Selected
		assert.LessOrEqual(t, len(selected), 1, "option is either on or off")
		for _, v := range selected {
			assert.Equal(t, "freedom", v)
		}
	}
}

func TestAdjustSliderClampsToBounds(t *testing.T) {
	uc, _, _ := newTestUsecase(t)
	ctx := context.Background()

	_, err := uc.Begin(ctx, 1, 1)
	require.NoError(t, err)
	_, err = uc.SelectChoice(ctx, 1, "solo")
	require.NoError(t, err)
	_, err = uc.SubmitText(ctx, 1, "I fix old bicycles")
	require.NoError(t, err)
	_, err = uc.ToggleMulti(ctx, 1, "freedom")
	require.NoError(t, err)
	step, err := uc.SubmitPending(ctx, 1)
	require.NoError(t, err)

	// midpoint of [1, 9]
	assert.Equal(t, 5, step.Next.Pending.Value)
	assert.True(t, step.Next.Pending.HasValue)

	view, err := uc.AdjustSlider(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 9, view.Pending.Value)

	view, err = uc.AdjustSlider(ctx, 1, -100)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Pending.Value)
}

func TestAdjustAllocationBudget(t *testing.T) {
	uc, _, _ := newTestUsecase(t)
	ctx := context.Background()

	_, err := uc.Begin(ctx, 1, 1)
	require.NoError(t, err)
	_, err = uc.SelectChoice(ctx, 1, "solo")
	require.NoError(t, err)
	_, err = uc.SubmitText(ctx, 1, "I fix old bicycles")
	require.NoError(t, err)
	_, err = uc.ToggleMulti(ctx, 1, "freedom")
	require.NoError(t, err)
	_, err = uc.SubmitPending(ctx, 1)
	require.NoError(t, err)
	_, err = uc.SubmitPending(ctx, 1)
	require.NoError(t, err)
	_, err = uc.SubmitPending(ctx, 1)
	require.NoError(t, err)

	view, err := uc.AdjustAllocation(ctx, 1, "marketing", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, view.Pending.Scores["marketing"])

	// removing below zero floors at zero
	view, err = uc.AdjustAllocation(ctx, 1, "product", -5)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Pending.Scores["product"])

	_, err = uc.AdjustAllocation(ctx, 1, "product", 5)
	require.NoError(t, err)

	_, err = uc.AdjustAllocation(ctx, 1, "marketing", 5)
	var vErr *entity.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Reason, "no points left")

	_, err = uc.AdjustAllocation(ctx, 1, "warehouse", 5)
	require.True(t, errors.As(err, &vErr))
}

func TestBackAtFirstQuestion(t *testing.T) {
	uc, _, _ := newTestUsecase(t)
	ctx := context.Background()

	_, err := uc.Begin(ctx, 1, 1)
	require.NoError(t, err)

	_, err = uc.Back(ctx, 1)
	var vErr *entity.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Reason, "first question")
}

func TestBackKeepsStoredAnswer(t *testing.T) {
	uc, store, _ := newTestUsecase(t)
	ctx := context.Background()

	_, err := uc.Begin(ctx, 1, 1)
	require.NoError(t, err)
	_, err = uc.SelectChoice(ctx, 1, "solo")
	require.NoError(t, err)

	view, err := uc.Back(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "style", view.Question.ID)
	assert.Equal(t, "solo", store.session(1).Answers["style"].Choice)

	result, err := uc.SelectChoice(ctx, 1, "team")
	require.NoError(t, err)
	assert.Equal(t, "story", result.Next.Question.ID)
	assert.Equal(t, "team", store.session(1).Answers["style"].Choice)
}

func TestGenerateRequiresCompletedSession(t *testing.T) {
	uc, _, _ := newTestUsecase(t)
	ctx := context.Background()

	_, err := uc.Begin(ctx, 1, 1)
	require.NoError(t, err)

	_, err = uc.Generate(ctx, 1)
	assert.True(t, errors.Is(err, entity.ErrInvalidState))
}

func TestGenerateAttachesResults(t *testing.T) {
	uc, store, _ := newTestUsecase(t)
	completeQuestionnaire(t, uc, 1)

	session, err := uc.Generate(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, entity.StateBrowsing, session.State)
	require.NotNil(t, session.Results)
	assert.Len(t, session.Results.Suggestions, 2)
	assert.Equal(t, 0, session.Results.SelectedIndex)
	assert.NotNil(t, session.Results.Plans)

	stored := store.session(1)
	assert.NotSame(t, session, stored, "callers receive a detached copy")
	assert.Equal(t, entity.StateBrowsing, stored.State)
	require.NotNil(t, stored.Results)
	assert.Len(t, stored.Results.Suggestions, 2)
}

func TestGenerateFailureRollsBackToAnswering(t *testing.T) {
	uc, store, gen := newTestUsecase(t)
	completeQuestionnaire(t, uc, 1)
	gen.err = errors.New("model unavailable")

	_, err := uc.Generate(context.Background(), 1)
	require.Error(t, err)

	s := store.session(1)
	assert.Equal(t, entity.StateAnswering, s.State)
	assert.True(t, s.Completed)
	assert.Nil(t, s.Results)

	// retry succeeds once the model is back
	gen.err = nil
	_, err = uc.Generate(context.Background(), 1)
	assert.NoError(t, err)
}

func TestRegenerateAvoidsPreviousNames(t *testing.T) {
	uc, _, gen := newTestUsecase(t)
	completeQuestionnaire(t, uc, 1)
	ctx := context.Background()

	_, err := uc.Generate(ctx, 1)
	require.NoError(t, err)

	gen.suggestions = []entity.SuggestionRecord{
		{ID: "c", Name: "Dog walking", Description: "Walks", Score: 60},
	}
	session, err := uc.Regenerate(ctx, 1)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Pottery studio", "Meal prep"}, gen.lastAvoid)
	assert.Equal(t, "Dog walking", session.Results.Suggestions[0].Name)
	assert.ElementsMatch(t, []string{"Pottery studio", "Meal prep"}, session.Results.PreviousNames)
}

func TestRegenerateFailureKeepsOldResults(t *testing.T) {
	uc, store, gen := newTestUsecase(t)
	completeQuestionnaire(t, uc, 1)
	ctx := context.Background()

	_, err := uc.Generate(ctx, 1)
	require.NoError(t, err)

	gen.err = errors.New("model unavailable")
	_, err = uc.Regenerate(ctx, 1)
	require.Error(t, err)

	s := store.session(1)
	assert.Equal(t, entity.StateBrowsing, s.State)
	require.NotNil(t, s.Results)
	assert.Equal(t, "Pottery studio", s.Results.Suggestions[0].Name)
}

func TestBrowseClampsCursor(t *testing.T) {
	uc, _, _ := newTestUsecase(t)
	completeQuestionnaire(t, uc, 1)
	ctx := context.Background()

	_, err := uc.Generate(ctx, 1)
	require.NoError(t, err)

	s, index, total, err := uc.Browse(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Meal prep", s.Name)
	assert.Equal(t, 1, index)
	assert.Equal(t, 2, total)

	s, index, _, err = uc.Browse(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, index, "cursor stops at the last suggestion")

	s, index, _, err = uc.Browse(ctx, 1, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, index)
	assert.Equal(t, "Pottery studio", s.Name)
}

func TestPlanIsGeneratedOnceAndReused(t *testing.T) {
	uc, _, gen := newTestUsecase(t)
	completeQuestionnaire(t, uc, 1)
	ctx := context.Background()

	_, err := uc.Generate(ctx, 1)
	require.NoError(t, err)

	s, plan, err := uc.Plan(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Pottery studio", s.Name)
	assert.Equal(t, "## Summary\ndo things", plan)
	assert.Equal(t, 1, gen.planCalls)

	_, _, err = uc.Plan(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.planCalls, "second request must reuse the stored plan")
}

func TestPlanBeforeGeneration(t *testing.T) {
	uc, _, _ := newTestUsecase(t)
	completeQuestionnaire(t, uc, 1)

	_, _, err := uc.Plan(context.Background(), 1)
	assert.True(t, errors.Is(err, entity.ErrInvalidState))
}

func TestAnalysisIsGeneratedOnceAndReused(t *testing.T) {
	uc, store, gen := newTestUsecase(t)
	completeQuestionnaire(t, uc, 1)
	ctx := context.Background()

	_, err := uc.Generate(ctx, 1)
	require.NoError(t, err)

	analysis, err := uc.Analysis(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "## Entrepreneurial Profile\nsteady builder", analysis)
	assert.Equal(t, 1, gen.analysisCalls)
	assert.Equal(t, analysis, store.session(1).Results.Analysis)

	_, err = uc.Analysis(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.analysisCalls, "second request must reuse the stored profile")
}

func TestAnalysisBeforeGeneration(t *testing.T) {
	uc, _, _ := newTestUsecase(t)
	completeQuestionnaire(t, uc, 1)

	_, err := uc.Analysis(context.Background(), 1)
	assert.True(t, errors.Is(err, entity.ErrInvalidState))
}

func TestAnalysisFailureKeepsBrowsing(t *testing.T) {
	uc, store, gen := newTestUsecase(t)
	completeQuestionnaire(t, uc, 1)
	ctx := context.Background()

	_, err := uc.Generate(ctx, 1)
	require.NoError(t, err)

	gen.err = errors.New("model unavailable")
	_, err = uc.Analysis(ctx, 1)
	require.Error(t, err)

	s := store.session(1)
	assert.Equal(t, entity.StateBrowsing, s.State)
	assert.Empty(t, s.Results.Analysis)
}

func TestRestartResetsEverything(t *testing.T) {
	uc, store, _ := newTestUsecase(t)
	completeQuestionnaire(t, uc, 1)
	ctx := context.Background()

	_, err := uc.Generate(ctx, 1)
	require.NoError(t, err)

	view, err := uc.Restart(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "style", view.Question.ID)

	s := store.session(1)
	assert.Equal(t, entity.StateAnswering, s.State)
	assert.False(t, s.Completed)
	assert.Empty(t, s.Answers)
	assert.Nil(t, s.Results)
}

func TestSubmitPendingRecordsTypedAnswers(t *testing.T) {
	uc, store, _ := newTestUsecase(t)
	completeQuestionnaire(t, uc, 1)

	answers := store.session(1).Answers
	assert.Equal(t, "solo", answers["style"].Choice)
	assert.Equal(t, []string{"freedom"}, answers["drivers"].Choices)
	assert.Equal(t, 5, answers["risk"].Value)
	assert.Equal(t, map[string]int{"sales": 1, "tech": 1}, answers["skills"].Scores)
	assert.Equal(t, map[string]int{"marketing": 5, "product": 5}, answers["focus"].Scores)
}
