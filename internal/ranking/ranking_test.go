package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"careerpilot/internal/config"
	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/gateway"
	"careerpilot/internal/types"
)

const rankJob = "Hiring a backend engineer with Go, Docker, PostgreSQL and AWS experience."

const strongResume = `Summary
Senior backend engineer with 8 years of experience.

Skills
Go, Docker, PostgreSQL, AWS, Kubernetes

Experience
Built and operated cloud services at scale.

Education
BSc Computer Science

Contact: strong@example.com, (555) 000-1111`

const weakResume = `Junior developer, 1 year of experience with HTML and CSS.`

type stubProvider struct {
	raw json.RawMessage
	err error
}

func (s *stubProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (json.RawMessage, *types.TokenUsage, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.raw, nil, nil
}

func (s *stubProvider) GetModelInfo(ctx context.Context) *gateway.ModelInfo {
	return &gateway.ModelInfo{Name: "stub", Available: true}
}

func (s *stubProvider) Stats() map[string]any { return map[string]any{} }
func (s *stubProvider) Healthy() bool         { return true }
func (s *stubProvider) Close() error          { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Scoring: config.ScoringConfig{
			SkillOverlapWeight: 0.6,
			CompletenessWeight: 0.4,
		},
		Ranking: config.RankingConfig{
			TopK:             5,
			MaxConcurrent:    4,
			CandidateTimeout: 10 * time.Second,
			ATSWeight:        0.40,
			SkillsWeight:     0.35,
			ProfileWeight:    0.25,
		},
	}
}

func testAggregator(t *testing.T, gw *gateway.Gateway, cfg *config.Config) *Aggregator {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	logger, err := apperrors.New("error")
	if err != nil {
		t.Fatal(err)
	}
	return New(gw, cfg, logger)
}

func TestRankEmptyCandidates(t *testing.T) {
	a := testAggregator(t, nil, nil)

	ranked, err := a.Rank(context.Background(), types.RankInput{JobDescription: rankJob})
	if err != nil {
		t.Fatalf("Rank() error: %v", err)
	}
	if ranked == nil || len(ranked) != 0 {
		t.Errorf("got %v, want an empty (non-nil) list", ranked)
	}
}

func TestRankRejectsEmptyJob(t *testing.T) {
	a := testAggregator(t, nil, nil)

	_, err := a.Rank(context.Background(), types.RankInput{
		Candidates: []types.Candidate{{ID: "c1", ResumeText: strongResume}},
	})
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrCodeNoJobDescription {
		t.Errorf("expected NO_JOB_DESCRIPTION, got %v", err)
	}
}

func TestRankTopKTruncation(t *testing.T) {
	candidates := make([]types.Candidate, 12)
	for i := range candidates {
		candidates[i] = types.Candidate{
			ID:         fmt.Sprintf("cand-%02d", i),
			Name:       fmt.Sprintf("Candidate %d", i),
			ResumeText: strongResume,
		}
	}
	a := testAggregator(t, nil, nil)

	ranked, err := a.Rank(context.Background(), types.RankInput{
		JobDescription: rankJob,
		Candidates:     candidates,
		TopK:           5,
	})
	if err != nil {
		t.Fatalf("Rank() error: %v", err)
	}

	if len(ranked) != 5 {
		t.Fatalf("got %d results, want exactly 5", len(ranked))
	}
	for i, rc := range ranked {
		if rc.Rank != i+1 {
			t.Errorf("rank at position %d = %d, want %d", i, rc.Rank, i+1)
		}
	}
}

func TestRankTieBreakByID(t *testing.T) {
	// Identical resumes produce identical composites; order must fall
	// back to candidate ID ascending, reproducibly.
	candidates := []types.Candidate{
		{ID: "charlie", ResumeText: strongResume},
		{ID: "alice", ResumeText: strongResume},
		{ID: "bob", ResumeText: strongResume},
	}
	a := testAggregator(t, nil, nil)

	var previous []string
	for run := range 3 {
		ranked, err := a.Rank(context.Background(), types.RankInput{
			JobDescription: rankJob,
			Candidates:     candidates,
		})
		if err != nil {
			t.Fatal(err)
		}
		ids := []string{ranked[0].Candidate.ID, ranked[1].Candidate.ID, ranked[2].Candidate.ID}
		if want := []string{"alice", "bob", "charlie"}; !reflect.DeepEqual(ids, want) {
			t.Fatalf("order = %v, want %v", ids, want)
		}
		if run > 0 && !reflect.DeepEqual(ids, previous) {
			t.Fatalf("order changed between runs: %v vs %v", ids, previous)
		}
		previous = ids
	}
}

func TestSortRankedTieBreaks(t *testing.T) {
	ranked := []types.RankedCandidate{
		{Candidate: types.Candidate{ID: "b"}, CompositeScore: 0.8, MatchedSkills: []string{"Go"}},
		{Candidate: types.Candidate{ID: "a"}, CompositeScore: 0.8, MatchedSkills: []string{"Go", "AWS"}},
		{Candidate: types.Candidate{ID: "c"}, CompositeScore: 0.9, MatchedSkills: nil},
	}
	sortRanked(ranked)

	got := []string{ranked[0].Candidate.ID, ranked[1].Candidate.ID, ranked[2].Candidate.ID}
	// Highest score first, then more matched skills, then ID.
	if want := []string{"c", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestRankMissingResumeScoredLast(t *testing.T) {
	candidates := []types.Candidate{
		{ID: "empty", Name: "No Resume", Skills: []string{"Go"}},
		{ID: "strong", Name: "Strong", ResumeText: strongResume},
		{ID: "weak", Name: "Weak", ResumeText: weakResume},
	}
	a := testAggregator(t, nil, nil)

	ranked, err := a.Rank(context.Background(), types.RankInput{
		JobDescription: rankJob,
		Candidates:     candidates,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(ranked) != 3 {
		t.Fatalf("got %d results, want all 3 candidates included", len(ranked))
	}
	if ranked[0].Candidate.ID != "strong" {
		t.Errorf("top candidate = %s, want strong", ranked[0].Candidate.ID)
	}
	last := ranked[2]
	if last.Candidate.ID != "empty" {
		t.Fatalf("last candidate = %s, want the one without a resume", last.Candidate.ID)
	}
	if last.CompositeScore != 0 {
		t.Errorf("composite = %v, want 0 for missing resume", last.CompositeScore)
	}
}

func TestRankCompositeBounds(t *testing.T) {
	a := testAggregator(t, nil, nil)

	ranked, err := a.Rank(context.Background(), types.RankInput{
		JobDescription: rankJob,
		Candidates: []types.Candidate{
			{ID: "s", ResumeText: strongResume},
			{ID: "w", ResumeText: weakResume},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, rc := range ranked {
		if rc.CompositeScore < 0 || rc.CompositeScore > 1 {
			t.Errorf("composite %v out of [0,1] for %s", rc.CompositeScore, rc.Candidate.ID)
		}
	}
	if ranked[0].Candidate.ID != "s" {
		t.Errorf("stronger candidate ranked %s first, want s", ranked[0].Candidate.ID)
	}
}

func TestRankAISignalBestEffort(t *testing.T) {
	cfg := testConfig()
	cfg.Ranking.UseAISignals = true

	logger, err := apperrors.New("error")
	if err != nil {
		t.Fatal(err)
	}
	gw := gateway.NewWithProviders(map[gateway.Stage]gateway.Provider{
		gateway.StageRankCandidate: &stubProvider{err: errors.New("backend down")},
	}, nil, logger)
	a := testAggregator(t, gw, cfg)

	ranked, err := a.Rank(context.Background(), types.RankInput{
		JobDescription: rankJob,
		Candidates:     []types.Candidate{{ID: "s", ResumeText: strongResume}},
	})
	if err != nil {
		t.Fatalf("gateway failure must not fail the batch: %v", err)
	}
	if len(ranked) != 1 || ranked[0].CompositeScore <= 0 {
		t.Errorf("deterministic score lost when the gateway failed: %+v", ranked)
	}
}

func TestRankAISignalBlended(t *testing.T) {
	cfg := testConfig()
	cfg.Ranking.UseAISignals = true

	payload, _ := json.Marshal(gateway.RankCandidateResponse{FitScore: 100, Summary: "excellent fit"})
	logger, err := apperrors.New("error")
	if err != nil {
		t.Fatal(err)
	}
	gw := gateway.NewWithProviders(map[gateway.Stage]gateway.Provider{
		gateway.StageRankCandidate: &stubProvider{raw: payload},
	}, nil, logger)

	withAI := testAggregator(t, gw, cfg)
	withoutAI := testAggregator(t, nil, nil)

	input := types.RankInput{
		JobDescription: rankJob,
		Candidates:     []types.Candidate{{ID: "s", ResumeText: strongResume}},
	}
	blended, err := withAI.Rank(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	plain, err := withoutAI.Rank(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}

	if blended[0].CompositeScore <= plain[0].CompositeScore {
		t.Errorf("perfect fit signal did not raise the composite: %v vs %v",
			blended[0].CompositeScore, plain[0].CompositeScore)
	}
	if blended[0].ExperienceSummary != "excellent fit" {
		t.Errorf("summary = %q, want the gateway summary", blended[0].ExperienceSummary)
	}
}
