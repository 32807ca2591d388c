// Package pipeline runs the staged resume analysis workflow. Stages
// execute in a fixed order against a shared result; each stage either
// calls the generation gateway or a deterministic local implementation
// depending on its configured policy, and records how it concluded.
package pipeline

import (
	"context"
	"strings"

	"careerpilot/internal/analysis"
	"careerpilot/internal/config"
	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/gateway"
	"careerpilot/internal/types"

	"github.com/google/uuid"
)

// analysisStages is the fixed execution order. parse_skills must run
// first since every later stage reads the extracted skill sets.
var analysisStages = []string{
	config.StageParseSkills,
	config.StageScoreATS,
	config.StageFindGaps,
	config.StageAnalyzeRepetitions,
	config.StageBuildRoadmap,
	config.StageSuggestProjects,
	config.StageGenerateQuestions,
}

// Orchestrator threads a single analysis through the stage sequence.
// It is safe for concurrent use; per-request state lives entirely in
// the AnalysisResult built by Analyze.
type Orchestrator struct {
	gw        *gateway.Gateway
	cfg       *config.Config
	thesaurus *analysis.Thesaurus
	logger    *apperrors.Logger
}

// New creates an orchestrator. gw may be nil when every stage policy
// is local-only; a nil gateway behaves like an unavailable one.
func New(gw *gateway.Gateway, cfg *config.Config, thesaurus *analysis.Thesaurus, logger *apperrors.Logger) *Orchestrator {
	if thesaurus == nil {
		thesaurus = analysis.NewThesaurus()
	}
	return &Orchestrator{
		gw:        gw,
		cfg:       cfg,
		thesaurus: thesaurus,
		logger:    logger,
	}
}

// Analyze runs the full pipeline over one resume/job pair. It returns
// an error only for invalid input; gateway trouble degrades individual
// stages and is reported through the result's Stages map and State.
func (o *Orchestrator) Analyze(ctx context.Context, input types.AnalyzeInput) (*types.AnalysisResult, error) {
	resumeText := strings.TrimSpace(input.ResumeText)
	if resumeText == "" {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeNoResumeContent,
			"resume text is empty", nil)
	}
	jobDescription := strings.TrimSpace(input.JobDescription)
	if jobDescription == "" {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeNoJobDescription,
			"job description is empty", nil)
	}

	if o.cfg.Pipeline.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Pipeline.Timeout)
		defer cancel()
	}

	run := &analysisRun{
		resumeText:     analysis.CleanText(resumeText),
		jobDescription: analysis.CleanText(jobDescription),
		result: &types.AnalysisResult{
			ID:            uuid.NewString(),
			ResumeSkills:  []string{},
			JobSkills:     []string{},
			MatchedSkills: []string{},
			MissingSkills: []string{},
			Stages:        make(map[string]types.StageOutcome, len(analysisStages)),
		},
	}
	run.result.ResumeText = run.resumeText

	for _, stage := range analysisStages {
		if ctx.Err() != nil {
			run.result.Stages[stage] = types.StageOutcome{
				Status: types.StageSkipped,
				Source: types.SourceNone,
				Error:  ctx.Err().Error(),
			}
			continue
		}
		o.runStage(ctx, stage, run)
	}

	run.result.State = finalState(run.result.Stages)
	o.logger.Info("analysis finished",
		"id", run.result.ID,
		"state", string(run.result.State),
		"ats_score", run.result.ATS.Score,
		"missing_skills", len(run.result.MissingSkills))
	return run.result, nil
}

// analysisRun holds the per-request working state shared by stages.
type analysisRun struct {
	resumeText     string
	jobDescription string
	result         *types.AnalysisResult
}

func (o *Orchestrator) runStage(ctx context.Context, stage string, run *analysisRun) {
	switch stage {
	case config.StageParseSkills:
		o.runParseSkills(ctx, run)
	case config.StageScoreATS:
		o.runScoreATS(run)
	case config.StageFindGaps:
		o.runFindGaps(run)
	case config.StageAnalyzeRepetitions:
		o.runAnalyzeRepetitions(run)
	case config.StageBuildRoadmap:
		o.runBuildRoadmap(ctx, run)
	case config.StageSuggestProjects:
		o.runSuggestProjects(ctx, run)
	case config.StageGenerateQuestions:
		o.runGenerateQuestions(ctx, run)
	}
}

// invoke calls the gateway for one stage, treating a missing gateway
// the same as an unreachable one so policy handling stays uniform.
func (o *Orchestrator) invoke(ctx context.Context, stage gateway.Stage, pc gateway.PromptContext) ([]byte, error) {
	if o.gw == nil {
		return nil, &gateway.Error{
			Kind:    gateway.KindUnavailable,
			Stage:   stage,
			Message: "gateway not configured",
		}
	}
	raw, _, err := o.gw.Invoke(ctx, stage, pc)
	return raw, err
}

// runGatewayStage applies the stage's degradation policy around a
// gateway attempt and a local fallback. local must always succeed.
func (o *Orchestrator) runGatewayStage(ctx context.Context, run *analysisRun, stage string, viaGateway func(context.Context) error, local func()) {
	policy := o.cfg.GetStagePolicy(stage)
	if policy == config.PolicyLocalOnly {
		local()
		run.result.Stages[stage] = types.StageOutcome{Status: types.StageOK, Source: types.SourceLocal}
		return
	}

	err := viaGateway(ctx)
	if err == nil {
		run.result.Stages[stage] = types.StageOutcome{Status: types.StageOK, Source: types.SourceAI}
		return
	}

	o.logger.Warn("stage gateway attempt failed",
		"stage", stage,
		"policy", policy,
		"error", err.Error())

	if policy == config.PolicyGatewayOnly {
		run.result.Stages[stage] = types.StageOutcome{
			Status: types.StageDegraded,
			Source: types.SourceNone,
			Error:  err.Error(),
		}
		return
	}

	local()
	run.result.Stages[stage] = types.StageOutcome{
		Status: types.StageFallback,
		Source: types.SourceLocal,
		Error:  err.Error(),
	}
}

// finalState reports Complete only when every stage produced its value
// through the gateway or a defined fallback.
func finalState(stages map[string]types.StageOutcome) types.AnalysisState {
	for _, outcome := range stages {
		if outcome.Status == types.StageDegraded || outcome.Status == types.StageSkipped {
			return types.AnalysisPartiallyComplete
		}
	}
	return types.AnalysisComplete
}

// GatewayHealthy reports whether the pipeline can serve every stage it
// is configured for. Stages with a local fallback stay healthy without
// the gateway; only gateway-only stages depend on it being reachable.
func (o *Orchestrator) GatewayHealthy() bool {
	if !o.cfg.GatewayCritical() {
		return true
	}
	if o.gw == nil {
		return false
	}
	return o.gw.Healthy()
}
