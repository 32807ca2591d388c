package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"careerpilot/internal/config"
	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/gateway"
	"careerpilot/internal/observability"
	"careerpilot/internal/pipeline"
	"careerpilot/internal/ranking"
	"careerpilot/internal/types"
)

const testResume = `Summary
Frontend engineer with 6 years of experience building web applications.

Skills: JavaScript, React, Git

Experience
Senior Engineer at Acme. Developed dashboards and internal tools.

Education
BS Computer Science

Contact: jane@example.com, 555-123-4567`

const testJob = "Looking for an engineer with JavaScript, React, Node.js and AWS experience."

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Pipeline.Timeout = time.Minute
	cfg.Pipeline.MaxMissingSkills = 8
	cfg.Scoring.SkillOverlapWeight = 0.6
	cfg.Scoring.CompletenessWeight = 0.4
	cfg.Repetition.Threshold = 3
	cfg.Repetition.MaxSynonyms = 6
	cfg.Ranking.TopK = 5
	cfg.Ranking.MaxConcurrent = 4
	cfg.Ranking.CandidateTimeout = 10 * time.Second
	cfg.Ranking.ATSWeight = 0.40
	cfg.Ranking.SkillsWeight = 0.35
	cfg.Ranking.ProfileWeight = 0.25
	cfg.Observability.HealthCheck.Timeout = 5 * time.Second
	return cfg
}

func newTestServer(t *testing.T, mutate func(*ServerConfig)) (*Server, *http.ServeMux) {
	t.Helper()

	logger, err := apperrors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	cfg := testConfig()
	srvCfg := ServerConfig{
		Host:           "localhost",
		Port:           "0",
		Version:        "test",
		MaxRequestSize: 1 << 20,
	}
	if mutate != nil {
		mutate(&srvCfg)
	}

	deps := Dependencies{
		Pipeline: pipeline.New(nil, cfg, nil, logger),
		Ranker:   ranking.New(nil, cfg, logger),
	}
	srv := NewServer(cfg, srvCfg, deps, logger)

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, cfg)
	if err != nil {
		t.Fatalf("failed to create observability manager: %v", err)
	}

	return srv, srv.setupRoutes(om)
}

func postJSON(t *testing.T, mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpoint(t *testing.T) {
	_, mux := newTestServer(t, nil)

	body, err := json.Marshal(AnalyzeRequest{ResumeText: testResume, JobDescription: testJob})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	rec := postJSON(t, mux, "/analyze", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.ID == "" {
		t.Error("expected a non-empty analysis ID")
	}
	if result.State != types.AnalysisComplete {
		t.Errorf("expected complete state, got %q", result.State)
	}
	if len(result.MatchedSkills) == 0 {
		t.Error("expected matched skills in response")
	}
	if result.ATS.Score <= 0 {
		t.Errorf("expected a positive ATS score, got %d", result.ATS.Score)
	}
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	_, mux := newTestServer(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantSubstr string
	}{
		{
			name:       "missing resume text",
			body:       `{"jobDescription":"some job"}`,
			wantStatus: http.StatusBadRequest,
			wantSubstr: "ResumeText",
		},
		{
			name:       "missing job description",
			body:       `{"resumeText":"some resume"}`,
			wantStatus: http.StatusBadRequest,
			wantSubstr: "JobDescription",
		},
		{
			name:       "whitespace resume rejected by pipeline",
			body:       `{"resumeText":"   ","jobDescription":"some job"}`,
			wantStatus: http.StatusBadRequest,
			wantSubstr: "NO_RESUME_CONTENT",
		},
		{
			name:       "malformed json",
			body:       `{"resumeText":`,
			wantStatus: http.StatusBadRequest,
			wantSubstr: "JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, mux, "/analyze", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantSubstr) {
				t.Errorf("expected response to mention %q, got %s", tt.wantSubstr, rec.Body.String())
			}
		})
	}
}

func TestAnalyzeEndpointRequiresJSONContentType(t *testing.T) {
	_, mux := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("resume"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "application/json") {
		t.Errorf("expected content-type error, got %s", rec.Body.String())
	}
}

func TestRankCandidatesEndpoint(t *testing.T) {
	_, mux := newTestServer(t, nil)

	reqBody := RankRequest{
		JobDescription: testJob,
		Candidates: []types.Candidate{
			{ID: "alice", Name: "Alice", ResumeText: testResume},
			{ID: "bob", Name: "Bob", ResumeText: "Junior developer. Knows HTML."},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	rec := postJSON(t, mux, "/rank-candidates", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var ranked []types.RankedCandidate
	if err := json.Unmarshal(rec.Body.Bytes(), &ranked); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked candidates, got %d", len(ranked))
	}
	if ranked[0].Candidate.ID != "alice" {
		t.Errorf("expected alice ranked first, got %q", ranked[0].Candidate.ID)
	}
	if ranked[0].Rank != 1 || ranked[1].Rank != 2 {
		t.Errorf("expected contiguous ranks, got %d and %d", ranked[0].Rank, ranked[1].Rank)
	}
}

func TestRankCandidatesEndpointEmptyList(t *testing.T) {
	_, mux := newTestServer(t, nil)

	rec := postJSON(t, mux, "/rank-candidates", `{"jobDescription":"a job","candidates":[]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var ranked []types.RankedCandidate
	if err := json.Unmarshal(rec.Body.Bytes(), &ranked); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(ranked) != 0 {
		t.Errorf("expected empty ranked list, got %d entries", len(ranked))
	}
}

func TestRegenerateEndpoint(t *testing.T) {
	_, mux := newTestServer(t, nil)

	body, err := json.Marshal(RegenerateRequest{ResumeText: testResume, JobDescription: testJob})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	rec := postJSON(t, mux, "/regenerate", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp RegenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AnalysisID == "" {
		t.Error("expected a non-empty analysis ID")
	}
	if resp.Resume == nil || len(resp.Resume.Sections) == 0 {
		t.Fatal("expected a regenerated resume with sections")
	}
	if resp.Resume.SummarySource != types.SourceLocal {
		t.Errorf("expected local summary without a gateway, got %q", resp.Resume.SummarySource)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, mux := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", resp["status"])
	}
	gw, ok := resp["gateway"].(map[string]any)
	if !ok {
		t.Fatal("expected a gateway section in health response")
	}
	if gw["configured"] != false {
		t.Errorf("expected gateway configured=false, got %v", gw["configured"])
	}
}

func TestWriteDomainErrorGatewayCodes(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.writeDomainError(rec, &gateway.Error{
		Kind:    gateway.KindTimeout,
		Stage:   gateway.StageBuildRoadmap,
		Message: "stage deadline elapsed",
	}, "failed")

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != apperrors.ErrCodeGatewayTimeout {
		t.Errorf("error code = %q, want %q", resp.Error, apperrors.ErrCodeGatewayTimeout)
	}
}

func TestHealthEndpointDegradedForGatewayOnlyStage(t *testing.T) {
	logger, err := apperrors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	cfg := testConfig()
	cfg.Pipeline.Policies = map[string]string{
		config.StageRewriteSummary: config.PolicyGatewayOnly,
	}

	srvCfg := ServerConfig{
		Host:           "localhost",
		Port:           "0",
		Version:        "test",
		MaxRequestSize: 1 << 20,
	}
	deps := Dependencies{
		Pipeline: pipeline.New(nil, cfg, nil, logger),
		Ranker:   ranking.New(nil, cfg, logger),
	}
	srv := NewServer(cfg, srvCfg, deps, logger)

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, cfg)
	if err != nil {
		t.Fatalf("failed to create observability manager: %v", err)
	}
	mux := srv.setupRoutes(om)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with an unreachable gateway-only stage, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "degraded" {
		t.Errorf("expected degraded status, got %v", resp["status"])
	}
}

func TestHealthEndpointRejectsPost(t *testing.T) {
	_, mux := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, mux := newTestServer(t, func(cfg *ServerConfig) {
		cfg.RateLimit = &config.RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 60,
			BurstCapacity:  10,
			ByIP:           true,
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	rl, ok := resp["rate_limiting"].(map[string]any)
	if !ok {
		t.Fatal("expected rate_limiting section")
	}
	if rl["burst_capacity"] != float64(10) {
		t.Errorf("expected burst capacity 10, got %v", rl["burst_capacity"])
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, mux := newTestServer(t, func(cfg *ServerConfig) {
		cfg.APIKeys = []string{"secret-key-12345"}
	})

	body := `{"resumeText":"` + "resume" + `","jobDescription":"job"}`

	t.Run("missing key", func(t *testing.T) {
		rec := postJSON(t, mux, "/analyze", body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("invalid key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", "wrong-key")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("valid key via header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", "secret-key-12345")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("valid key via bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer secret-key-12345")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("health stays open", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	srv, mux := newTestServer(t, func(cfg *ServerConfig) {
		cfg.RateLimit = &config.RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 60,
			BurstCapacity:  1,
			ByIP:           true,
		}
	})
	defer srv.RateLimiter.Close()

	body := `{"resumeText":"resume","jobDescription":"job"}`

	first := postJSON(t, mux, "/analyze", body)
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d: %s", first.Code, first.Body.String())
	}

	second := postJSON(t, mux, "/analyze", body)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be limited, got %d", second.Code)
	}
}

func TestRequestSizeLimit(t *testing.T) {
	_, mux := newTestServer(t, func(cfg *ServerConfig) {
		cfg.MaxRequestSize = 64
	})

	body := `{"resumeText":"` + strings.Repeat("x", 200) + `","jobDescription":"job"}`
	rec := postJSON(t, mux, "/analyze", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "too large") {
		t.Errorf("expected size limit error, got %s", rec.Body.String())
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"short", "****"},
		{"12345678", "****"},
		{"123456789abcdef", "12345678****"},
	}
	for _, tt := range tests {
		if got := maskAPIKey(tt.key); got != tt.want {
			t.Errorf("maskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "192.0.2.1:1234",
			want:       "192.0.2.1",
		},
		{
			name:       "x-forwarded-for takes precedence",
			remoteAddr: "192.0.2.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-real-ip fallback",
			remoteAddr: "192.0.2.1:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
		{
			name:       "invalid forwarded header ignored",
			remoteAddr: "192.0.2.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			want:       "192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLimiterManagerStats(t *testing.T) {
	logger, err := apperrors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	m := NewRateLimiter(120, 5, logger)
	defer m.Close()

	m.GetLimiter("ip:192.0.2.1")
	m.GetLimiter("api:abc")

	stats := m.GetStats()
	if stats["active_limiters"] != 2 {
		t.Errorf("expected 2 active limiters, got %v", stats["active_limiters"])
	}
	if stats["rate_per_minute"] != 120.0 {
		t.Errorf("expected 120 requests/min, got %v", stats["rate_per_minute"])
	}
	if stats["burst_capacity"] != 5 {
		t.Errorf("expected burst 5, got %v", stats["burst_capacity"])
	}
}
