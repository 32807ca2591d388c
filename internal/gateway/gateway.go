package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"careerpilot/internal/config"
	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/types"
)

// Gateway routes stage invocations to their providers, applies the
// per-stage deadline, and validates responses against the stage
// schema. It is the only way pipeline code talks to a model.
type Gateway struct {
	providers map[Stage]Provider
	timeouts  map[Stage]time.Duration
	logger    *apperrors.Logger
}

// New builds a gateway with one provider per generation stage from the
// application configuration.
func New(cfg *config.Config, logger *apperrors.Logger) (*Gateway, error) {
	stageConfigs := map[Stage]config.StageAIConfig{
		StageParseSkills:       cfg.GetParseConfig(),
		StageBuildRoadmap:      cfg.GetRoadmapConfig(),
		StageSuggestProjects:   cfg.GetProjectsConfig(),
		StageGenerateQuestions: cfg.GetQuestionsConfig(),
		StageRankCandidate:     cfg.GetRankConfig(),
		StageRewriteSummary:    cfg.GetRewriteConfig(),
	}

	providers := make(map[Stage]Provider, len(stageConfigs))
	timeouts := make(map[Stage]time.Duration, len(stageConfigs))
	for _, stage := range generationStages {
		stageCfg := stageConfigs[stage]

		logger.Debug("Initializing gateway provider",
			"stage", stage,
			"provider", stageCfg.Provider,
			"model", stageCfg.Model,
			"timeout", *stageCfg.Timeout,
			"max_retries", *stageCfg.MaxRetries)

		var provider Provider
		var err error
		switch stageCfg.Provider {
		case "gemini":
			provider, err = NewGeminiProvider(&stageCfg, stage, logger)
		default:
			return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
				fmt.Sprintf("Unsupported gateway provider: %s", stageCfg.Provider), nil)
		}
		if err != nil {
			return nil, err
		}

		providers[stage] = provider
		timeouts[stage] = *stageCfg.Timeout
	}

	return &Gateway{
		providers: providers,
		timeouts:  timeouts,
		logger:    logger,
	}, nil
}

// NewWithProviders builds a gateway over pre-constructed providers.
// Used by tests and by callers that need custom backends.
func NewWithProviders(providers map[Stage]Provider, timeouts map[Stage]time.Duration, logger *apperrors.Logger) *Gateway {
	if timeouts == nil {
		timeouts = make(map[Stage]time.Duration)
	}
	return &Gateway{
		providers: providers,
		timeouts:  timeouts,
		logger:    logger,
	}
}

// Invoke runs one stage's generation call: it builds the stage
// prompts, applies the stage deadline, and validates the response
// schema. All failures come back as a typed *Error.
func (g *Gateway) Invoke(ctx context.Context, stage Stage, pc PromptContext) (json.RawMessage, *types.TokenUsage, error) {
	provider, ok := g.providers[stage]
	if !ok {
		return nil, nil, &Error{Kind: KindInvalidRequest, Stage: stage, Message: "no provider configured for stage"}
	}

	systemPrompt, userPrompt, err := BuildPrompts(stage, pc)
	if err != nil {
		return nil, nil, &Error{Kind: KindInvalidRequest, Stage: stage, Message: "failed to build prompts", Cause: err}
	}

	if timeout, ok := g.timeouts[stage]; ok && timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	raw, usage, err := provider.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		gwErr := classify(stage, err)
		g.logger.Warn("Gateway invocation failed",
			"stage", stage,
			"kind", gwErr.Kind,
			"duration", time.Since(start),
			"error", gwErr.Message)
		return nil, nil, gwErr
	}

	if err := ValidateResponse(stage, raw); err != nil {
		g.logger.Warn("Gateway response failed schema validation",
			"stage", stage,
			"duration", time.Since(start),
			"error", err.Error())
		return nil, nil, err
	}

	g.logger.Debug("Gateway invocation succeeded",
		"stage", stage,
		"duration", time.Since(start))
	return raw, usage, nil
}

// Healthy reports whether every stage provider's circuit breaker is
// closed.
func (g *Gateway) Healthy() bool {
	for _, provider := range g.providers {
		if !provider.Healthy() {
			return false
		}
	}
	return true
}

// Stats returns per-stage circuit breaker statistics.
func (g *Gateway) Stats() map[string]any {
	stats := make(map[string]any, len(g.providers)+1)
	healthy := true
	for stage, provider := range g.providers {
		stats[string(stage)] = provider.Stats()
		if !provider.Healthy() {
			healthy = false
		}
	}
	stats["overall_healthy"] = healthy
	return stats
}

// ModelInfo checks backing model availability using the parse stage's
// provider as the representative backend.
func (g *Gateway) ModelInfo(ctx context.Context) *ModelInfo {
	if provider, ok := g.providers[StageParseSkills]; ok {
		return provider.GetModelInfo(ctx)
	}
	for _, provider := range g.providers {
		return provider.GetModelInfo(ctx)
	}
	return &ModelInfo{Available: false, Error: "no providers configured"}
}

// Close releases all stage providers.
func (g *Gateway) Close() error {
	var firstErr error
	for _, provider := range g.providers {
		if err := provider.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
