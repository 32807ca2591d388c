package config

// Pipeline stage names. These are the keys accepted in
// pipeline.policies and the identifiers used in stage outcomes.
const (
	StageParseSkills        = "parse_skills"
	StageScoreATS           = "score_ats"
	StageFindGaps           = "find_gaps"
	StageAnalyzeRepetitions = "analyze_repetitions"
	StageBuildRoadmap       = "build_roadmap"
	StageSuggestProjects    = "suggest_projects"
	StageGenerateQuestions  = "generate_questions"
	StageRankCandidate      = "rank_candidate"
	StageRewriteSummary     = "rewrite_summary"
)

// Stage degradation policies.
const (
	// PolicyLocalOnly runs the deterministic implementation and never
	// touches the gateway.
	PolicyLocalOnly = "local-only"
	// PolicyGatewayWithFallback tries the gateway first and falls back
	// to the deterministic implementation on failure.
	PolicyGatewayWithFallback = "gateway-with-fallback"
	// PolicyGatewayOnly tries the gateway and marks the stage degraded
	// on failure instead of falling back.
	PolicyGatewayOnly = "gateway-only"
)

// defaultStagePolicies maps each pipeline stage to its policy when no
// override is configured. Purely computational stages have no gateway
// path at all.
var defaultStagePolicies = map[string]string{
	StageParseSkills:        PolicyGatewayWithFallback,
	StageScoreATS:           PolicyLocalOnly,
	StageFindGaps:           PolicyLocalOnly,
	StageAnalyzeRepetitions: PolicyLocalOnly,
	StageBuildRoadmap:       PolicyGatewayWithFallback,
	StageSuggestProjects:    PolicyGatewayWithFallback,
	StageGenerateQuestions:  PolicyGatewayWithFallback,
	StageRankCandidate:      PolicyGatewayWithFallback,
	StageRewriteSummary:     PolicyGatewayWithFallback,
}

// GetStagePolicy returns the effective degradation policy for a stage.
func (c *Config) GetStagePolicy(stage string) string {
	if policy, ok := c.Pipeline.Policies[stage]; ok && policy != "" {
		return policy
	}
	if policy, ok := defaultStagePolicies[stage]; ok {
		return policy
	}
	return PolicyLocalOnly
}

// GatewayRequired reports whether any stage's effective policy needs a
// working gateway.
func (c *Config) GatewayRequired() bool {
	for stage := range defaultStagePolicies {
		if c.GetStagePolicy(stage) != PolicyLocalOnly {
			return true
		}
	}
	return false
}

// GatewayCritical reports whether any stage is gateway-only. Stages with
// a local fallback keep the service healthy when the gateway is down.
func (c *Config) GatewayCritical() bool {
	for stage := range defaultStagePolicies {
		if c.GetStagePolicy(stage) == PolicyGatewayOnly {
			return true
		}
	}
	return false
}

// applyStageDefaults applies global defaults to stage-specific
// configuration
func (c *Config) applyStageDefaults(stageCfg *StageAIConfig) {
	if stageCfg.Provider == "" {
		stageCfg.Provider = c.AI.Provider
	}
	if stageCfg.Model == "" {
		stageCfg.Model = c.AI.Model
	}
	if stageCfg.Timeout == nil {
		stageCfg.Timeout = &c.AI.Timeout
	}
	if stageCfg.APIKey == "" {
		stageCfg.APIKey = c.AI.APIKey
	}
	if stageCfg.MaxRetries == nil {
		stageCfg.MaxRetries = &c.AI.MaxRetries
	}
	if stageCfg.Temperature == nil {
		stageCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if stageCfg.UseSystemPrompts == nil {
		stageCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetParseConfig returns the gateway configuration for the skill
// parsing stage with fallback to global config
func (c *Config) GetParseConfig() StageAIConfig {
	cfg := c.AI.Parse
	c.applyStageDefaults(&cfg)
	return cfg
}

// GetRoadmapConfig returns the gateway configuration for the roadmap
// stage with fallback to global config
func (c *Config) GetRoadmapConfig() StageAIConfig {
	cfg := c.AI.Roadmap
	c.applyStageDefaults(&cfg)
	return cfg
}

// GetProjectsConfig returns the gateway configuration for the project
// suggestion stage with fallback to global config
func (c *Config) GetProjectsConfig() StageAIConfig {
	cfg := c.AI.Projects
	c.applyStageDefaults(&cfg)
	return cfg
}

// GetQuestionsConfig returns the gateway configuration for the
// interview question stage with fallback to global config
func (c *Config) GetQuestionsConfig() StageAIConfig {
	cfg := c.AI.Questions
	c.applyStageDefaults(&cfg)
	return cfg
}

// GetRankConfig returns the gateway configuration for per-candidate
// ranking signals with fallback to global config
func (c *Config) GetRankConfig() StageAIConfig {
	cfg := c.AI.Rank
	c.applyStageDefaults(&cfg)
	return cfg
}

// GetRewriteConfig returns the gateway configuration for the summary
// rewrite stage with fallback to global config
func (c *Config) GetRewriteConfig() StageAIConfig {
	cfg := c.AI.Rewrite
	c.applyStageDefaults(&cfg)
	return cfg
}
