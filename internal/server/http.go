package server

import (
	"time"

	"careerpilot/internal/config"
	apperrors "careerpilot/internal/errors"
	"careerpilot/internal/gateway"
	"careerpilot/internal/pipeline"
	"careerpilot/internal/ranking"
	"careerpilot/internal/types"

	"github.com/go-playground/validator/v10"
)

// AnalyzeRequest is the request body for the analyze endpoint
type AnalyzeRequest struct {
	ResumeText     string `json:"resumeText" validate:"required"`
	JobDescription string `json:"jobDescription" validate:"required"`
}

// RankRequest is the request body for the rank-candidates endpoint.
// An empty candidate list is valid and ranks to an empty list.
type RankRequest struct {
	JobDescription string            `json:"jobDescription" validate:"required"`
	Candidates     []types.Candidate `json:"candidates"`
	TopK           int               `json:"topK" validate:"omitempty,min=1"`
}

// RegenerateRequest is the request body for the regenerate endpoint
type RegenerateRequest struct {
	ResumeText     string `json:"resumeText" validate:"required"`
	JobDescription string `json:"jobDescription" validate:"required"`
}

// RegenerateResponse carries the rebuilt resume together with the
// analysis run that informed it.
type RegenerateResponse struct {
	AnalysisID string                `json:"analysisId"`
	State      types.AnalysisState   `json:"state"`
	Resume     *types.ResumeDocument `json:"resume"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Domain components
	Pipeline *pipeline.Orchestrator
	Ranker   *ranking.Aggregator
	Gateway  *gateway.Gateway

	// Request validation
	validate *validator.Validate

	// Logger
	Logger *apperrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// Dependencies bundles the domain components the server exposes over HTTP.
// Gateway may be nil when every pipeline stage runs locally.
type Dependencies struct {
	Pipeline *pipeline.Orchestrator
	Ranker   *ranking.Aggregator
	Gateway  *gateway.Gateway
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *apperrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Pipeline:       deps.Pipeline,
		Ranker:         deps.Ranker,
		Gateway:        deps.Gateway,
		validate:       validator.New(),
		Logger:         logger,
	}
}
