package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"careerpilot/internal/config"
	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/types"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// GeminiProvider implements Provider for Google Gemini, serving a
// single pipeline stage.
type GeminiProvider struct {
	client         *genai.Client
	config         *config.StageAIConfig
	stage          Stage
	circuitBreaker *StageCircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *apperrors.Logger
}

// Ensure GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a
// specific stage
func NewGeminiProvider(cfg *config.StageAIConfig, stage Stage, logger *apperrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, apperrors.NewGatewayError(apperrors.ErrCodeGatewayUnavailable,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:         client,
		config:         cfg,
		stage:          stage,
		circuitBreaker: NewStageCircuitBreaker(string(stage), cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(string(stage), cfg, logger),
		logger:         logger,
	}, nil
}

// Generate runs the stage's generation call with circuit breaker and
// retry protection and returns the raw JSON response.
func (g *GeminiProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (json.RawMessage, *types.TokenUsage, error) {
	tracer := otel.Tracer("careerpilot.gateway.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+string(g.stage))
	defer span.End()

	span.SetAttributes(
		attribute.String("gateway.provider", "gemini"),
		attribute.String("gateway.stage", string(g.stage)),
		attribute.String("gateway.model", g.config.Model),
		attribute.Float64("gateway.temperature", float64(*g.config.Temperature)),
	)

	genCfg := g.buildGenerationConfig()
	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	var usage *types.TokenUsage
	raw, err := g.circuitBreaker.Execute(func() (json.RawMessage, error) {
		result, err := g.executeWithRetry(ctx, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genCfg)
		})
		if err != nil {
			return nil, err
		}
		usage = extractTokenUsage(result)
		return json.RawMessage(result.Text()), nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, nil, err
	}

	if usage != nil {
		span.SetAttributes(
			attribute.Int64("gateway.tokens.input", usage.InputTokens),
			attribute.Int64("gateway.tokens.output", usage.OutputTokens),
			attribute.Int64("gateway.tokens.total", usage.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))
	return raw, usage, nil
}

// executeWithRetry executes a generation call with exponential backoff.
// Non-retryable errors stop the attempts immediately.
func (g *GeminiProvider) executeWithRetry(ctx context.Context, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = time.Second
	expo.MaxInterval = 30 * time.Second

	attempt := 0
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(*g.config.MaxRetries)), ctx)

	return backoff.RetryWithData(func() (*genai.GenerateContentResponse, error) {
		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("Generation succeeded after retry",
					"stage", g.stage,
					"successful_attempt", attempt+1)
			}
			return result, nil
		}

		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"stage", g.stage,
				"error", err.Error())
			return nil, backoff.Permanent(err)
		}

		attempt++
		g.logger.Warn("Retrying generation",
			"stage", g.stage,
			"attempt", attempt,
			"max_retries", *g.config.MaxRetries,
			"error", err.Error())
		return nil, err
	}, policy)
}

// GetModelInfo checks the readiness and availability of the configured
// model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"stage", g.stage,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}
	return modelInfo
}

// Stats returns circuit breaker statistics for the provider
func (g *GeminiProvider) Stats() map[string]any {
	return map[string]any{
		"generation": g.circuitBreaker.GetStats(),
		"model":      g.modelBreaker.GetModelStats(),
	}
}

// Healthy reports whether the generation circuit breaker is closed
func (g *GeminiProvider) Healthy() bool {
	return g.circuitBreaker.IsHealthy()
}

// Close implements Provider
func (g *GeminiProvider) Close() error {
	// The genai client has no Close in single-shot usage
	return nil
}

// buildGenerationConfig creates the generation config with the stage's
// response schema so the model answers in strict JSON.
func (g *GeminiProvider) buildGenerationConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   stageResponseSchemas[g.stage],
	}
	if *g.config.Temperature > 0 {
		cfg.Temperature = g.config.Temperature
	}
	return cfg
}

// stageResponseSchemas mirrors the gateway's JSON Schemas in the genai
// schema dialect, used to force structured output from Gemini.
var stageResponseSchemas = map[Stage]*genai.Schema{
	StageParseSkills: {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"resumeSkills":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"jobSkills":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"jobKeywords":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"experienceLevel": {Type: genai.TypeString, Enum: []string{"junior", "mid-level", "senior"}},
		},
		Required: []string{"resumeSkills", "jobSkills", "experienceLevel"},
	},
	StageBuildRoadmap: {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"phases": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"skill":         {Type: genai.TypeString},
						"order":         {Type: genai.TypeInteger},
						"duration":      {Type: genai.TypeString},
						"topics":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
						"prerequisites": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					},
					Required: []string{"skill", "order", "duration"},
				},
			},
		},
		Required: []string{"phases"},
	},
	StageSuggestProjects: {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"projects": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":               {Type: genai.TypeString},
						"description":         {Type: genai.TypeString},
						"difficulty":          {Type: genai.TypeString},
						"estimatedTime":       {Type: genai.TypeString},
						"skillsCovered":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
						"implementationSteps": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
						"portfolioValue":      {Type: genai.TypeString},
					},
					Required: []string{"title", "description", "difficulty"},
				},
			},
		},
		Required: []string{"projects"},
	},
	StageGenerateQuestions: {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"questions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"question":    {Type: genai.TypeString},
						"category":    {Type: genai.TypeString},
						"difficulty":  {Type: genai.TypeString},
						"skillTested": {Type: genai.TypeString},
						"timeLimit":   {Type: genai.TypeString},
						"hints":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					},
					Required: []string{"question", "category", "difficulty"},
				},
			},
		},
		Required: []string{"questions"},
	},
	StageRankCandidate: {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"fitScore": {Type: genai.TypeNumber},
			"summary":  {Type: genai.TypeString},
		},
		Required: []string{"fitScore", "summary"},
	},
	StageRewriteSummary: {
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {Type: genai.TypeString},
		},
		Required: []string{"summary"},
	},
}

// extractTokenUsage extracts token usage information from a Gemini API
// response
func extractTokenUsage(result *genai.GenerateContentResponse) *types.TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &types.TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
