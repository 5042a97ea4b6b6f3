package generator

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/navikit/navigator-backend/internal/catalog"
	"github.com/navikit/navigator-backend/internal/config"
	"github.com/navikit/navigator-backend/internal/entity"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// CompletionClient is the completion API surface the generator depends on.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Generator turns completed questionnaires into business suggestions and
// detailed plans via the completion API.
type Generator struct {
	client    CompletionClient
	catalog   *catalog.Catalog
	cfg       config.OpenAIConfig
	retryOpts []retry.Option

	// planCache keeps generated plans keyed by "userID:suggestionID" so
	// re-opening a suggestion does not re-bill the API.
	planCache *gocache.Cache

	logger *zap.Logger
}

func New(client CompletionClient, c *catalog.Catalog, cfg config.OpenAIConfig, logger *zap.Logger) *Generator {
	return &Generator{
		client:    client,
		catalog:   c,
		cfg:       cfg,
		retryOpts: cfg.Retry.ToRetryOptions(),
		planCache: gocache.New(cfg.PlanCacheTTL, 2*cfg.PlanCacheTTL),
		logger:    logger,
	}
}

// GenerateSuggestions produces a fresh suggestion list for a completed
// session. The session is not mutated.
func (g *Generator) GenerateSuggestions(ctx context.Context, session *entity.Session) ([]entity.SuggestionRecord, error) {
	return g.generate(ctx, session, nil)
}

// RegenerateSuggestions produces a new list while steering the model away
// from previously suggested names.
func (g *Generator) RegenerateSuggestions(ctx context.Context, session *entity.Session, avoid []string) ([]entity.SuggestionRecord, error) {
	return g.generate(ctx, session, avoid)
}

func (g *Generator) generate(ctx context.Context, session *entity.Session, avoid []string) ([]entity.SuggestionRecord, error) {
	ctxzap.Info(ctx, "generating suggestions",
		zap.Int("answer_count", len(session.Answers)),
		zap.Int("avoid_count", len(avoid)),
	)

	prompt := buildSuggestionsPrompt(g.catalog, session, g.cfg.SuggestionCount, avoid)

	raw, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, &entity.GenerationError{Reason: "completion request failed", Cause: err}
	}

	records, err := parseSuggestions(raw)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "suggestions generated", zap.Int("count", len(records)))

	return records, nil
}

// GeneratePlan returns a detailed launch plan for one suggestion, serving
// from cache when the same suggestion was already expanded.
func (g *Generator) GeneratePlan(ctx context.Context, session *entity.Session, s *entity.SuggestionRecord) (string, error) {
	key := planCacheKey(session.UserID, s.ID)
	if cached, ok := g.planCache.Get(key); ok {
		ctxzap.Info(ctx, "plan served from cache", zap.String("suggestion_id", s.ID))
		return cached.(string), nil
	}

	ctxzap.Info(ctx, "generating plan", zap.String("suggestion_name", s.Name))

	plan, err := g.complete(ctx, buildPlanPrompt(g.catalog, session, s))
	if err != nil {
		return "", &entity.GenerationError{Reason: "plan request failed", Cause: err}
	}

	g.planCache.Set(key, plan, gocache.DefaultExpiration)

	ctxzap.Info(ctx, "plan generated", zap.Int("plan_length", len(plan)))

	return plan, nil
}

// GenerateAnalysis returns a psychological entrepreneur profile for the
// completed questionnaire.
func (g *Generator) GenerateAnalysis(ctx context.Context, session *entity.Session) (string, error) {
	key := analysisCacheKey(session.UserID)
	if cached, ok := g.planCache.Get(key); ok {
		ctxzap.Info(ctx, "analysis served from cache")
		return cached.(string), nil
	}

	ctxzap.Info(ctx, "generating analysis", zap.Int("answer_count", len(session.Answers)))

	analysis, err := g.complete(ctx, buildAnalysisPrompt(g.catalog, session))
	if err != nil {
		return "", &entity.GenerationError{Reason: "analysis request failed", Cause: err}
	}

	g.planCache.Set(key, analysis, gocache.DefaultExpiration)

	return analysis, nil
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	return retry.DoWithData(func() (string, error) {
		return g.client.Complete(ctx, systemPrompt, prompt)
	}, append(g.retryOpts, retry.Context(ctx))...)
}

func planCacheKey(userID int64, suggestionID string) string {
	return fmt.Sprintf("%d:%s", userID, suggestionID)
}

func analysisCacheKey(userID int64) string {
	return fmt.Sprintf("%d:analysis", userID)
}
