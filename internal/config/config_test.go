package config

import (
	"errors"
	"testing"
	"time"

	apperrors "careerpilot/internal/errors"
)

func validBaseConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash",
			Timeout:     60 * time.Second,
			APIKey:      "test-key",
			MaxRetries:  3,
			Temperature: 0.7,
		},
		Pipeline: PipelineConfig{
			Timeout:          5 * time.Minute,
			MaxMissingSkills: 8,
		},
		Scoring: ScoringConfig{
			SkillOverlapWeight: 0.6,
			CompletenessWeight: 0.4,
		},
		Repetition: RepetitionConfig{
			Threshold:   3,
			MaxSynonyms: 6,
		},
		Ranking: RankingConfig{
			TopK:             5,
			MaxConcurrent:    4,
			CandidateTimeout: 30 * time.Second,
			ATSWeight:        0.4,
			SkillsWeight:     0.35,
			ProfileWeight:    0.25,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: "8080",
		},
		App: AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"missing api key with gateway stages", func(c *Config) { c.AI.APIKey = "" }, true},
		{"missing api key all local", func(c *Config) {
			c.AI.APIKey = ""
			c.Pipeline.Policies = map[string]string{
				StageParseSkills:       PolicyLocalOnly,
				StageBuildRoadmap:      PolicyLocalOnly,
				StageSuggestProjects:   PolicyLocalOnly,
				StageGenerateQuestions: PolicyLocalOnly,
				StageRankCandidate:     PolicyLocalOnly,
				StageRewriteSummary:    PolicyLocalOnly,
			}
		}, false},
		{"bad stage policy", func(c *Config) {
			c.Pipeline.Policies = map[string]string{StageBuildRoadmap: "yolo"}
		}, true},
		{"scoring weights must sum to one", func(c *Config) { c.Scoring.SkillOverlapWeight = 0.9 }, true},
		{"ranking weights must sum to one", func(c *Config) { c.Ranking.ATSWeight = 0.9 }, true},
		{"zero pipeline timeout", func(c *Config) { c.Pipeline.Timeout = 0 }, true},
		{"zero max concurrent", func(c *Config) { c.Ranking.MaxConcurrent = 0 }, true},
		{"missing port", func(c *Config) { c.Server.Port = "" }, true},
		{"tls without files", func(c *Config) { c.Server.TLS.Enabled = true }, true},
		{"bad default format", func(c *Config) { c.App.DefaultFormat = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBaseConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateMissingAPIKeyCode(t *testing.T) {
	cfg := validBaseConfig()
	cfg.AI.APIKey = ""

	err := cfg.Validate()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected an AppError, got %T: %v", err, err)
	}
	if appErr.Code != apperrors.ErrCodeMissingAPIKey {
		t.Errorf("error code = %q, want %q", appErr.Code, apperrors.ErrCodeMissingAPIKey)
	}
}

func TestGetStagePolicy(t *testing.T) {
	cfg := validBaseConfig()

	if got := cfg.GetStagePolicy(StageScoreATS); got != PolicyLocalOnly {
		t.Errorf("score_ats default policy = %q, want local-only", got)
	}
	if got := cfg.GetStagePolicy(StageBuildRoadmap); got != PolicyGatewayWithFallback {
		t.Errorf("build_roadmap default policy = %q, want gateway-with-fallback", got)
	}

	cfg.Pipeline.Policies = map[string]string{StageBuildRoadmap: PolicyGatewayOnly}
	if got := cfg.GetStagePolicy(StageBuildRoadmap); got != PolicyGatewayOnly {
		t.Errorf("override policy = %q, want gateway-only", got)
	}

	if got := cfg.GetStagePolicy("unknown_stage"); got != PolicyLocalOnly {
		t.Errorf("unknown stage policy = %q, want local-only", got)
	}
}

func TestApplyStageDefaults(t *testing.T) {
	cfg := validBaseConfig()

	parse := cfg.GetParseConfig()
	if parse.Model != cfg.AI.Model {
		t.Errorf("unset stage model should fall back to global, got %q", parse.Model)
	}
	if parse.APIKey != cfg.AI.APIKey {
		t.Errorf("unset stage apiKey should fall back to global, got %q", parse.APIKey)
	}
	if parse.Timeout == nil || *parse.Timeout != cfg.AI.Timeout {
		t.Error("unset stage timeout should fall back to global")
	}

	override := 10 * time.Second
	cfg.AI.Roadmap.Model = "gemini-2.5-pro"
	cfg.AI.Roadmap.Timeout = &override
	roadmap := cfg.GetRoadmapConfig()
	if roadmap.Model != "gemini-2.5-pro" {
		t.Errorf("stage model override ignored, got %q", roadmap.Model)
	}
	if roadmap.Timeout == nil || *roadmap.Timeout != override {
		t.Error("stage timeout override ignored")
	}
}

func TestGatewayRequired(t *testing.T) {
	cfg := validBaseConfig()
	if !cfg.GatewayRequired() {
		t.Error("default policies should require the gateway")
	}

	cfg.Pipeline.Policies = map[string]string{}
	for stage := range defaultStagePolicies {
		cfg.Pipeline.Policies[stage] = PolicyLocalOnly
	}
	if cfg.GatewayRequired() {
		t.Error("all-local policies should not require the gateway")
	}
}

func TestGatewayCritical(t *testing.T) {
	cfg := validBaseConfig()
	if cfg.GatewayCritical() {
		t.Error("default policies all have fallbacks, gateway should not be critical")
	}

	cfg.Pipeline.Policies = map[string]string{StageRewriteSummary: PolicyGatewayOnly}
	if !cfg.GatewayCritical() {
		t.Error("a gateway-only stage should make the gateway critical")
	}
}
