package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"careerpilot/internal/analysis"
	"careerpilot/internal/config"
	"careerpilot/internal/gateway"
	"careerpilot/internal/types"
)

func (o *Orchestrator) runParseSkills(ctx context.Context, run *analysisRun) {
	local := func() {
		run.result.ResumeSkills = analysis.ExtractSkills(run.resumeText)
		run.result.JobSkills = analysis.ExtractSkills(run.jobDescription)
		run.result.ExperienceLevel = analysis.ExperienceLevel(run.resumeText)
	}

	viaGateway := func(ctx context.Context) error {
		raw, err := o.invoke(ctx, gateway.StageParseSkills, gateway.PromptContext{
			ResumeText:     run.resumeText,
			JobDescription: run.jobDescription,
		})
		if err != nil {
			return err
		}
		var resp gateway.ParseSkillsResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return fmt.Errorf("decoding parse_skills payload: %w", err)
		}
		run.result.ResumeSkills = analysis.CanonicalizeSkills(resp.ResumeSkills)
		run.result.JobSkills = analysis.CanonicalizeSkills(resp.JobSkills)
		run.result.JobKeywords = resp.JobKeywords
		run.result.ExperienceLevel = resp.ExperienceLevel
		return nil
	}

	o.runGatewayStage(ctx, run, config.StageParseSkills, viaGateway, local)

	// A degraded gateway-only parse leaves empty skill sets; the level
	// heuristic still runs so later stages have something to key on.
	if run.result.ExperienceLevel == "" {
		run.result.ExperienceLevel = analysis.ExperienceLevel(run.resumeText)
	}
}

func (o *Orchestrator) runScoreATS(run *analysisRun) {
	weights := analysis.ScoreWeights{
		SkillOverlap: o.cfg.Scoring.SkillOverlapWeight,
		Completeness: o.cfg.Scoring.CompletenessWeight,
	}
	run.result.ATS = analysis.ScoreATS(run.resumeText, run.result.ResumeSkills, run.result.JobSkills, weights)
	run.result.Stages[config.StageScoreATS] = types.StageOutcome{
		Status: types.StageOK,
		Source: types.SourceLocal,
	}
}

func (o *Orchestrator) runFindGaps(run *analysisRun) {
	matched, missing := analysis.MatchSkills(
		run.result.ResumeSkills,
		run.result.JobSkills,
		o.cfg.Pipeline.MaxMissingSkills)
	run.result.MatchedSkills = matched
	run.result.MissingSkills = missing
	run.result.Stages[config.StageFindGaps] = types.StageOutcome{
		Status: types.StageOK,
		Source: types.SourceLocal,
	}
}

func (o *Orchestrator) runAnalyzeRepetitions(run *analysisRun) {
	run.result.Repetition = analysis.AnalyzeRepetitions(run.resumeText, o.thesaurus, analysis.RepetitionOptions{
		Threshold:   o.cfg.Repetition.Threshold,
		MaxSynonyms: o.cfg.Repetition.MaxSynonyms,
	})
	run.result.Stages[config.StageAnalyzeRepetitions] = types.StageOutcome{
		Status: types.StageOK,
		Source: types.SourceLocal,
	}
}

func (o *Orchestrator) runBuildRoadmap(ctx context.Context, run *analysisRun) {
	// Nothing to learn: an empty roadmap is the correct complete result,
	// not a degradation, so the gateway is not consulted at all.
	if len(run.result.MissingSkills) == 0 {
		run.result.Roadmap = types.Roadmap{Phases: []types.RoadmapPhase{}}
		run.result.Stages[config.StageBuildRoadmap] = types.StageOutcome{
			Status: types.StageOK,
			Source: types.SourceLocal,
		}
		return
	}

	local := func() {
		run.result.Roadmap = fallbackRoadmap(run.result.MissingSkills)
	}

	viaGateway := func(ctx context.Context) error {
		raw, err := o.invoke(ctx, gateway.StageBuildRoadmap, gateway.PromptContext{
			ExperienceLevel: run.result.ExperienceLevel,
			MatchedSkills:   run.result.MatchedSkills,
			MissingSkills:   run.result.MissingSkills,
		})
		if err != nil {
			return err
		}
		roadmap, err := decodeRoadmap(raw)
		if err != nil {
			return err
		}
		run.result.Roadmap = roadmap
		return nil
	}

	o.runGatewayStage(ctx, run, config.StageBuildRoadmap, viaGateway, local)
	attachResources(&run.result.Roadmap)
}

func (o *Orchestrator) runSuggestProjects(ctx context.Context, run *analysisRun) {
	local := func() {
		run.result.Projects = fallbackProjects(
			run.result.MatchedSkills,
			run.result.MissingSkills,
			run.result.ExperienceLevel)
	}

	viaGateway := func(ctx context.Context) error {
		raw, err := o.invoke(ctx, gateway.StageSuggestProjects, gateway.PromptContext{
			ExperienceLevel: run.result.ExperienceLevel,
			MatchedSkills:   run.result.MatchedSkills,
			MissingSkills:   run.result.MissingSkills,
		})
		if err != nil {
			return err
		}
		projects, err := decodeProjects(raw)
		if err != nil {
			return err
		}
		run.result.Projects = projects
		return nil
	}

	o.runGatewayStage(ctx, run, config.StageSuggestProjects, viaGateway, local)
}

func (o *Orchestrator) runGenerateQuestions(ctx context.Context, run *analysisRun) {
	local := func() {
		run.result.Questions = fallbackQuestions(
			run.result.JobSkills,
			run.result.MatchedSkills,
			run.result.ExperienceLevel)
	}

	viaGateway := func(ctx context.Context) error {
		raw, err := o.invoke(ctx, gateway.StageGenerateQuestions, gateway.PromptContext{
			ExperienceLevel: run.result.ExperienceLevel,
			JobSkills:       run.result.JobSkills,
			MatchedSkills:   run.result.MatchedSkills,
		})
		if err != nil {
			return err
		}
		questions, err := decodeQuestions(raw)
		if err != nil {
			return err
		}
		run.result.Questions = questions
		return nil
	}

	o.runGatewayStage(ctx, run, config.StageGenerateQuestions, viaGateway, local)
}

func decodeRoadmap(raw []byte) (types.Roadmap, error) {
	var resp gateway.RoadmapResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return types.Roadmap{}, fmt.Errorf("decoding build_roadmap payload: %w", err)
	}

	phases := make([]types.RoadmapPhase, 0, len(resp.Phases))
	for _, p := range resp.Phases {
		phases = append(phases, types.RoadmapPhase{
			Skill:         p.Skill,
			Order:         p.Order,
			Duration:      p.Duration,
			Topics:        p.Topics,
			Prerequisites: p.Prerequisites,
		})
	}
	sort.SliceStable(phases, func(i, j int) bool { return phases[i].Order < phases[j].Order })
	for i := range phases {
		phases[i].Order = i + 1
	}

	return types.Roadmap{
		Phases:        phases,
		TotalDuration: totalDuration(phases),
	}, nil
}

func decodeProjects(raw []byte) ([]types.Project, error) {
	var resp gateway.ProjectsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decoding suggest_projects payload: %w", err)
	}

	projects := make([]types.Project, 0, len(resp.Projects))
	for _, p := range resp.Projects {
		projects = append(projects, types.Project{
			Title:               p.Title,
			Description:         p.Description,
			Difficulty:          p.Difficulty,
			EstimatedTime:       p.EstimatedTime,
			SkillsCovered:       p.SkillsCovered,
			ImplementationSteps: p.ImplementationSteps,
			PortfolioValue:      p.PortfolioValue,
		})
	}
	return projects, nil
}

func decodeQuestions(raw []byte) ([]types.InterviewQuestion, error) {
	var resp gateway.QuestionsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decoding generate_questions payload: %w", err)
	}

	questions := make([]types.InterviewQuestion, 0, len(resp.Questions))
	for _, q := range resp.Questions {
		questions = append(questions, types.InterviewQuestion{
			Question:    q.Question,
			Category:    q.Category,
			Difficulty:  q.Difficulty,
			SkillTested: q.SkillTested,
			TimeLimit:   q.TimeLimit,
			Hints:       q.Hints,
		})
	}
	return questions, nil
}
