// Package ranking scores many candidates against one job description
// and produces a deterministic top-K shortlist. Scoring fans out with
// bounded concurrency; a failed or slow gateway augmentation never
// fails the batch, it only loses that candidate's qualitative signal.
package ranking

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"careerpilot/internal/analysis"
	"careerpilot/internal/config"
	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/gateway"
	"careerpilot/internal/types"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	defaultTopK          = 5
	defaultMaxConcurrent = 4

	// aiBlend is how much a successful gateway fit signal shifts the
	// deterministic composite.
	aiBlend = 0.3
)

// Aggregator ranks candidate batches. Safe for concurrent use.
type Aggregator struct {
	gw     *gateway.Gateway
	cfg    *config.Config
	logger *apperrors.Logger
}

// New creates an aggregator. gw may be nil; ranking then runs fully
// deterministic.
func New(gw *gateway.Gateway, cfg *config.Config, logger *apperrors.Logger) *Aggregator {
	return &Aggregator{gw: gw, cfg: cfg, logger: logger}
}

// Rank scores every candidate against the job and returns the top-K
// shortlist, ranks 1..n with no gaps. An empty candidate list is not
// an error; it ranks to an empty list.
func (a *Aggregator) Rank(ctx context.Context, input types.RankInput) ([]types.RankedCandidate, error) {
	if strings.TrimSpace(input.JobDescription) == "" {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeNoJobDescription,
			"job description is empty", nil)
	}
	if len(input.Candidates) == 0 {
		return []types.RankedCandidate{}, nil
	}

	topK := input.TopK
	if topK <= 0 {
		topK = a.cfg.Ranking.TopK
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	maxConcurrent := a.cfg.Ranking.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	jobDescription := analysis.CleanText(input.JobDescription)
	jobSkills := analysis.ExtractSkills(jobDescription)

	ranked := make([]types.RankedCandidate, len(input.Candidates))
	sem := semaphore.NewWeighted(int64(maxConcurrent))
	g, gctx := errgroup.WithContext(ctx)

	for i, candidate := range input.Candidates {
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				ranked[i] = unscored(candidate, "scoring cancelled before it started")
				return nil
			}
			defer sem.Release(1)

			cctx := gctx
			if a.cfg.Ranking.CandidateTimeout > 0 {
				var cancel context.CancelFunc
				cctx, cancel = context.WithTimeout(gctx, a.cfg.Ranking.CandidateTimeout)
				defer cancel()
			}
			ranked[i] = a.scoreCandidate(cctx, jobDescription, jobSkills, candidate)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes completion.
	_ = g.Wait()

	sortRanked(ranked)
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	a.logger.Info("candidate ranking finished",
		"candidates", len(input.Candidates),
		"returned", len(ranked),
		"job_skills", len(jobSkills))
	return ranked, nil
}

// scoreCandidate computes the deterministic composite for one
// candidate and, when enabled, blends in a best-effort gateway signal.
func (a *Aggregator) scoreCandidate(ctx context.Context, jobDescription string, jobSkills []string, candidate types.Candidate) types.RankedCandidate {
	resumeText := analysis.CleanText(candidate.ResumeText)
	if resumeText == "" {
		return unscored(candidate, "no readable resume content")
	}

	candidateSkills := mergeSkills(candidate.Skills, analysis.ExtractSkills(resumeText))
	matched, _ := analysis.MatchSkills(candidateSkills, jobSkills, 0)

	ats := analysis.ScoreATS(resumeText, candidateSkills, jobSkills, analysis.ScoreWeights{
		SkillOverlap: a.cfg.Scoring.SkillOverlapWeight,
		Completeness: a.cfg.Scoring.CompletenessWeight,
	})
	skillsScore := analysis.SkillOverlap(candidateSkills, jobSkills) * 100
	profileScore := ats.Breakdown["completeness"]

	composite := (a.cfg.Ranking.ATSWeight*float64(ats.Score) +
		a.cfg.Ranking.SkillsWeight*skillsScore +
		a.cfg.Ranking.ProfileWeight*profileScore) / 100

	summary := analysis.ExperienceSummary(resumeText, matched)

	if a.cfg.Ranking.UseAISignals && a.gw != nil {
		if fit, aiSummary, ok := a.fitSignal(ctx, jobDescription, resumeText, candidate.ID); ok {
			composite = (1-aiBlend)*composite + aiBlend*(fit/100)
			if aiSummary != "" {
				summary = aiSummary
			}
		}
	}

	return types.RankedCandidate{
		Candidate:         candidate,
		CompositeScore:    round4(clamp01(composite)),
		ATSScore:          ats.Score,
		MatchedSkills:     matched,
		ExperienceSummary: summary,
		Breakdown: map[string]float64{
			"ats":     float64(ats.Score),
			"skills":  round1(skillsScore),
			"profile": profileScore,
		},
	}
}

// fitSignal asks the gateway for a qualitative fit score. Any failure
// is logged and swallowed; the candidate keeps its deterministic score.
func (a *Aggregator) fitSignal(ctx context.Context, jobDescription, resumeText, candidateID string) (float64, string, bool) {
	raw, _, err := a.gw.Invoke(ctx, gateway.StageRankCandidate, gateway.PromptContext{
		JobDescription: jobDescription,
		ResumeText:     resumeText,
	})
	if err != nil {
		a.logger.Warn("candidate fit signal unavailable",
			"candidate_id", candidateID,
			"error", err.Error())
		return 0, "", false
	}
	var resp gateway.RankCandidateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return 0, "", false
	}
	return resp.FitScore, strings.TrimSpace(resp.Summary), true
}

// unscored marks a candidate that could not be evaluated. It still
// appears in the output, scored zero, so callers see it was considered.
func unscored(candidate types.Candidate, reason string) types.RankedCandidate {
	return types.RankedCandidate{
		Candidate:         candidate,
		CompositeScore:    0,
		MatchedSkills:     analysis.CanonicalizeSkills(candidate.Skills),
		ExperienceSummary: fmt.Sprintf("Not scored: %s.", reason),
		Breakdown:         map[string]float64{"ats": 0, "skills": 0, "profile": 0},
	}
}

// sortRanked orders by composite score descending, then matched skill
// count descending, then candidate ID ascending. The final key makes
// the order fully deterministic under score ties.
func sortRanked(ranked []types.RankedCandidate) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CompositeScore != ranked[j].CompositeScore {
			return ranked[i].CompositeScore > ranked[j].CompositeScore
		}
		if len(ranked[i].MatchedSkills) != len(ranked[j].MatchedSkills) {
			return len(ranked[i].MatchedSkills) > len(ranked[j].MatchedSkills)
		}
		return ranked[i].Candidate.ID < ranked[j].Candidate.ID
	})
}

// mergeSkills combines declared and extracted skills into one
// catalog-ordered set.
func mergeSkills(declared, extracted []string) []string {
	return analysis.CanonicalizeSkills(append(append([]string{}, declared...), extracted...))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
