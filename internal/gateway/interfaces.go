package gateway

import (
	"context"
	"encoding/json"

	"careerpilot/internal/config"
	"careerpilot/internal/types"
)

// Stage identifies a generation operation. Stage names match the
// pipeline stage identifiers used in configuration.
type Stage string

const (
	StageParseSkills       Stage = config.StageParseSkills
	StageBuildRoadmap      Stage = config.StageBuildRoadmap
	StageSuggestProjects   Stage = config.StageSuggestProjects
	StageGenerateQuestions Stage = config.StageGenerateQuestions
	StageRankCandidate     Stage = config.StageRankCandidate
	StageRewriteSummary    Stage = config.StageRewriteSummary
)

// generationStages lists every stage the gateway can serve.
var generationStages = []Stage{
	StageParseSkills,
	StageBuildRoadmap,
	StageSuggestProjects,
	StageGenerateQuestions,
	StageRankCandidate,
	StageRewriteSummary,
}

// PromptContext carries the analysis state a stage prompt is built
// from. Stages use the subset of fields relevant to them.
type PromptContext struct {
	ResumeText      string
	JobDescription  string
	ResumeSkills    []string
	JobSkills       []string
	MatchedSkills   []string
	MissingSkills   []string
	ExperienceLevel string
	OriginalSummary string
	CandidateName   string
}

// ModelInfo represents information about the backing model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// Provider abstracts a text-generation backend for a single stage. A
// provider returns the raw JSON document produced by the model; schema
// validation happens in the gateway.
type Provider interface {
	// Generate runs the stage's generation call and returns the raw
	// JSON response.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (json.RawMessage, *types.TokenUsage, error)

	// GetModelInfo checks backing model availability for health checks.
	GetModelInfo(ctx context.Context) *ModelInfo

	// Stats returns circuit breaker statistics for the provider.
	Stats() map[string]any

	// Healthy reports whether the provider's circuit breaker is closed.
	Healthy() bool

	Close() error
}
