package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"careerpilot/internal/analysis"
	"careerpilot/internal/config"
	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/gateway"
	"careerpilot/internal/types"
)

const sampleResume = `Summary
Software engineer with 6 years of experience building web applications.

Skills
JavaScript, React, Git

Experience
Senior Engineer at Acme. Developed dashboards. Developed APIs.
Developed tooling. Developed integrations. Developed reports.

Education
BSc Computer Science

Contact: jane@example.com, (555) 123-4567`

const sampleJob = `We are hiring a full-stack engineer.
Requirements: JavaScript, React, Node.js, AWS.`

type stubProvider struct {
	raw   json.RawMessage
	err   error
	calls int
}

func (s *stubProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (json.RawMessage, *types.TokenUsage, error) {
	s.calls++
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.raw, &types.TokenUsage{TotalTokens: 1}, nil
}

func (s *stubProvider) GetModelInfo(ctx context.Context) *gateway.ModelInfo {
	return &gateway.ModelInfo{Name: "stub", Available: true}
}

func (s *stubProvider) Stats() map[string]any { return map[string]any{} }
func (s *stubProvider) Healthy() bool         { return true }
func (s *stubProvider) Close() error          { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Pipeline: config.PipelineConfig{
			Timeout:          time.Minute,
			MaxMissingSkills: 8,
		},
		Scoring: config.ScoringConfig{
			SkillOverlapWeight: 0.6,
			CompletenessWeight: 0.4,
		},
		Repetition: config.RepetitionConfig{
			Threshold:   3,
			MaxSynonyms: 6,
		},
	}
}

func testLogger(t *testing.T) *apperrors.Logger {
	t.Helper()
	logger, err := apperrors.New("error")
	if err != nil {
		t.Fatal(err)
	}
	return logger
}

func testOrchestrator(t *testing.T, gw *gateway.Gateway, cfg *config.Config) *Orchestrator {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	return New(gw, cfg, analysis.NewThesaurus(), testLogger(t))
}

func stubGateway(t *testing.T, providers map[gateway.Stage]gateway.Provider) *gateway.Gateway {
	t.Helper()
	return gateway.NewWithProviders(providers, nil, testLogger(t))
}

func TestAnalyzeRejectsEmptyInput(t *testing.T) {
	o := testOrchestrator(t, nil, nil)

	tests := []struct {
		name     string
		input    types.AnalyzeInput
		wantCode string
	}{
		{"empty resume", types.AnalyzeInput{ResumeText: "   ", JobDescription: sampleJob}, apperrors.ErrCodeNoResumeContent},
		{"empty job", types.AnalyzeInput{ResumeText: sampleResume, JobDescription: ""}, apperrors.ErrCodeNoJobDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Analyze(context.Background(), tt.input)
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", appErr.Code, tt.wantCode)
			}
		})
	}
}

func TestAnalyzeFallbackOnlyReachesComplete(t *testing.T) {
	// No gateway at all: every generation stage must fall back and the
	// pipeline must still finish complete with usable output.
	o := testOrchestrator(t, nil, nil)

	result, err := o.Analyze(context.Background(), types.AnalyzeInput{
		ResumeText:     sampleResume,
		JobDescription: sampleJob,
	})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if result.State != types.AnalysisComplete {
		t.Errorf("state = %q, want %q", result.State, types.AnalysisComplete)
	}
	if result.ID == "" {
		t.Error("missing analysis ID")
	}
	if len(result.Roadmap.Phases) == 0 {
		t.Error("fallback roadmap is empty")
	}
	if len(result.Projects) == 0 {
		t.Error("fallback projects are empty")
	}
	if len(result.Questions) == 0 {
		t.Error("fallback questions are empty")
	}
	for _, stage := range []string{config.StageBuildRoadmap, config.StageSuggestProjects, config.StageGenerateQuestions} {
		outcome := result.Stages[stage]
		if outcome.Status != types.StageFallback || outcome.Source != types.SourceLocal {
			t.Errorf("stage %s outcome = %+v, want fallback/local", stage, outcome)
		}
	}
}

func TestAnalyzeSkillGapExample(t *testing.T) {
	o := testOrchestrator(t, nil, nil)

	result, err := o.Analyze(context.Background(), types.AnalyzeInput{
		ResumeText:     "Frontend developer. Skills: JavaScript, React. Built SPAs.",
		JobDescription: "Looking for JavaScript, React, Node.js and AWS experience.",
	})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if want := []string{"JavaScript", "React"}; !reflect.DeepEqual(result.MatchedSkills, want) {
		t.Errorf("matched = %v, want %v", result.MatchedSkills, want)
	}
	if want := []string{"Node.js", "AWS"}; !reflect.DeepEqual(result.MissingSkills, want) {
		t.Errorf("missing = %v, want %v", result.MissingSkills, want)
	}
	if got := result.ATS.Breakdown["skill_overlap"]; got != 50.0 {
		t.Errorf("skill_overlap = %v, want 50.0", got)
	}
}

func TestAnalyzeLocalOnlyIdempotent(t *testing.T) {
	cfg := testConfig()
	cfg.Pipeline.Policies = map[string]string{
		config.StageParseSkills:       config.PolicyLocalOnly,
		config.StageBuildRoadmap:      config.PolicyLocalOnly,
		config.StageSuggestProjects:   config.PolicyLocalOnly,
		config.StageGenerateQuestions: config.PolicyLocalOnly,
	}
	o := testOrchestrator(t, nil, cfg)

	input := types.AnalyzeInput{ResumeText: sampleResume, JobDescription: sampleJob}
	first, err := o.Analyze(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	second, err := o.Analyze(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}

	if first.ATS.Score != second.ATS.Score {
		t.Errorf("ATS score differs across runs: %d vs %d", first.ATS.Score, second.ATS.Score)
	}
	if !reflect.DeepEqual(first.MatchedSkills, second.MatchedSkills) {
		t.Errorf("matched skills differ: %v vs %v", first.MatchedSkills, second.MatchedSkills)
	}
	if !reflect.DeepEqual(first.MissingSkills, second.MissingSkills) {
		t.Errorf("missing skills differ: %v vs %v", first.MissingSkills, second.MissingSkills)
	}
	if !reflect.DeepEqual(first.Roadmap.Phases, second.Roadmap.Phases) {
		t.Error("roadmap differs across identical local-only runs")
	}
	for stage, outcome := range first.Stages {
		if outcome.Status != types.StageOK {
			t.Errorf("stage %s = %+v, want ok under local-only policies", stage, outcome)
		}
	}
}

func TestAnalyzeGatewayOnlyStageDegrades(t *testing.T) {
	cfg := testConfig()
	cfg.Pipeline.Policies = map[string]string{
		config.StageBuildRoadmap: config.PolicyGatewayOnly,
	}
	gw := stubGateway(t, map[gateway.Stage]gateway.Provider{
		gateway.StageBuildRoadmap: &stubProvider{err: errors.New("backend down")},
	})
	o := testOrchestrator(t, gw, cfg)

	result, err := o.Analyze(context.Background(), types.AnalyzeInput{
		ResumeText:     sampleResume,
		JobDescription: sampleJob,
	})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if result.State != types.AnalysisPartiallyComplete {
		t.Errorf("state = %q, want %q", result.State, types.AnalysisPartiallyComplete)
	}
	outcome := result.Stages[config.StageBuildRoadmap]
	if outcome.Status != types.StageDegraded {
		t.Errorf("roadmap outcome = %+v, want degraded", outcome)
	}
	if len(result.Roadmap.Phases) != 0 {
		t.Errorf("degraded roadmap should stay at its default, got %d phases", len(result.Roadmap.Phases))
	}
	// Earlier local stages must be untouched by the degradation.
	if result.ATS.Score == 0 {
		t.Error("ATS score lost after a later stage degraded")
	}
}

func TestAnalyzeGatewayParseSkills(t *testing.T) {
	parsePayload := `{
		"resumeSkills": ["javascript", "react", "golang"],
		"jobSkills": ["javascript", "node", "aws"],
		"jobKeywords": ["microservices"],
		"experienceLevel": "senior"
	}`
	provider := &stubProvider{raw: json.RawMessage(parsePayload)}
	gw := stubGateway(t, map[gateway.Stage]gateway.Provider{
		gateway.StageParseSkills: provider,
	})
	o := testOrchestrator(t, gw, nil)

	result, err := o.Analyze(context.Background(), types.AnalyzeInput{
		ResumeText:     sampleResume,
		JobDescription: sampleJob,
	})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if provider.calls == 0 {
		t.Fatal("parse provider was never called")
	}
	outcome := result.Stages[config.StageParseSkills]
	if outcome.Status != types.StageOK || outcome.Source != types.SourceAI {
		t.Errorf("parse outcome = %+v, want ok/ai", outcome)
	}
	if want := []string{"JavaScript", "Go", "React"}; !reflect.DeepEqual(result.ResumeSkills, want) {
		t.Errorf("resume skills = %v, want canonicalized %v", result.ResumeSkills, want)
	}
	if want := []string{"JavaScript", "Node.js", "AWS"}; !reflect.DeepEqual(result.JobSkills, want) {
		t.Errorf("job skills = %v, want canonicalized %v", result.JobSkills, want)
	}
	if result.ExperienceLevel != "senior" {
		t.Errorf("experience level = %q, want senior", result.ExperienceLevel)
	}
}

func TestAnalyzeRoadmapGatewaySuccess(t *testing.T) {
	roadmapPayload := `{
		"phases": [
			{"skill": "AWS", "order": 2, "duration": "4 weeks", "topics": ["IAM"], "prerequisites": ["Node.js"]},
			{"skill": "Node.js", "order": 1, "duration": "3 weeks", "topics": ["Event loop"], "prerequisites": []}
		]
	}`
	gw := stubGateway(t, map[gateway.Stage]gateway.Provider{
		gateway.StageBuildRoadmap: &stubProvider{raw: json.RawMessage(roadmapPayload)},
	})
	o := testOrchestrator(t, gw, nil)

	result, err := o.Analyze(context.Background(), types.AnalyzeInput{
		ResumeText:     sampleResume,
		JobDescription: sampleJob,
	})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	phases := result.Roadmap.Phases
	if len(phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(phases))
	}
	if phases[0].Skill != "Node.js" || phases[1].Skill != "AWS" {
		t.Errorf("phases not ordered by priority: %s, %s", phases[0].Skill, phases[1].Skill)
	}
	if phases[0].Order != 1 || phases[1].Order != 2 {
		t.Errorf("orders not normalized: %d, %d", phases[0].Order, phases[1].Order)
	}
	for _, phase := range phases {
		if len(phase.Resources) == 0 {
			t.Errorf("phase %s has no learning resources attached", phase.Skill)
		}
	}
	if result.Roadmap.TotalDuration != "about 7 weeks" {
		t.Errorf("total duration = %q, want %q", result.Roadmap.TotalDuration, "about 7 weeks")
	}
}

func TestAnalyzeRepetitionReport(t *testing.T) {
	o := testOrchestrator(t, nil, nil)

	result, err := o.Analyze(context.Background(), types.AnalyzeInput{
		ResumeText:     sampleResume,
		JobDescription: sampleJob,
	})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if result.Repetition.Status != "repetitions_found" {
		t.Fatalf("status = %q, want repetitions_found", result.Repetition.Status)
	}
	found := false
	for _, rep := range result.Repetition.Repetitions {
		if rep.Word == "developed" {
			found = true
			if rep.Count != 5 {
				t.Errorf("developed count = %d, want 5", rep.Count)
			}
		}
	}
	if !found {
		t.Error("expected 'developed' to be flagged")
	}
}

func TestAnalyzeCancelledContextSkipsStages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := testOrchestrator(t, nil, nil)
	result, err := o.Analyze(ctx, types.AnalyzeInput{
		ResumeText:     sampleResume,
		JobDescription: sampleJob,
	})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if result.State != types.AnalysisPartiallyComplete {
		t.Errorf("state = %q, want partially_complete", result.State)
	}
	for stage, outcome := range result.Stages {
		if outcome.Status != types.StageSkipped {
			t.Errorf("stage %s = %+v, want skipped", stage, outcome)
		}
	}
}

func TestGatewayHealthy(t *testing.T) {
	// Default policies all carry a local fallback, so a missing gateway
	// leaves the pipeline fully serviceable.
	o := testOrchestrator(t, nil, testConfig())
	if !o.GatewayHealthy() {
		t.Error("pipeline with fallbacks should report healthy without a gateway")
	}

	cfg := testConfig()
	cfg.Pipeline.Policies = map[string]string{
		config.StageRewriteSummary: config.PolicyGatewayOnly,
	}
	o = testOrchestrator(t, nil, cfg)
	if o.GatewayHealthy() {
		t.Error("gateway-only stage with no gateway should report unhealthy")
	}
}
