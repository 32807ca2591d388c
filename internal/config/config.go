package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	apperrors "careerpilot/internal/errors"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// Value precedence order:
// 1. Config file values
// 2. Environment variables (CAREERPILOT_AI_APIKEY, etc.)
// 3. Default values
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Pipeline      PipelineConfig      `mapstructure:"pipeline"`
	Scoring       ScoringConfig       `mapstructure:"scoring"`
	Repetition    RepetitionConfig    `mapstructure:"repetition"`
	Ranking       RankingConfig       `mapstructure:"ranking"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds text-generation gateway configuration
type AIConfig struct {
	// Global/fallback configuration
	Provider         string        `mapstructure:"provider"`
	Model            string        `mapstructure:"model"`
	Timeout          time.Duration `mapstructure:"timeout"`
	APIKey           string        `mapstructure:"apiKey"`
	MaxRetries       int           `mapstructure:"maxRetries"`
	Temperature      float32       `mapstructure:"temperature"`
	UseSystemPrompts bool          `mapstructure:"useSystemPrompts"`

	// Stage-specific configurations
	Parse     StageAIConfig `mapstructure:"parse"`
	Roadmap   StageAIConfig `mapstructure:"roadmap"`
	Projects  StageAIConfig `mapstructure:"projects"`
	Questions StageAIConfig `mapstructure:"questions"`
	Rank      StageAIConfig `mapstructure:"rank"`
	Rewrite   StageAIConfig `mapstructure:"rewrite"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// StageAIConfig holds gateway configuration for a specific pipeline stage.
// Pointer fields fall back to the global AIConfig values when unset.
type StageAIConfig struct {
	Provider         string               `mapstructure:"provider"`
	Model            string               `mapstructure:"model"`
	Timeout          *time.Duration       `mapstructure:"timeout"`
	APIKey           string               `mapstructure:"apiKey"`
	MaxRetries       *int                 `mapstructure:"maxRetries"`
	Temperature      *float32             `mapstructure:"temperature"`
	UseSystemPrompts *bool                `mapstructure:"useSystemPrompts"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// PipelineConfig holds analysis pipeline configuration
type PipelineConfig struct {
	// Timeout bounds the whole analysis run. Remaining stages are
	// skipped once it elapses.
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxMissingSkills caps the reported skills-gap list.
	MaxMissingSkills int `mapstructure:"maxMissingSkills"`
	// Policies overrides the per-stage degradation policy. Keys are
	// stage names, values one of "local-only", "gateway-with-fallback",
	// "gateway-only".
	Policies map[string]string `mapstructure:"policies"`
}

// ScoringConfig holds ATS score weighting configuration
type ScoringConfig struct {
	SkillOverlapWeight float64 `mapstructure:"skillOverlapWeight"`
	CompletenessWeight float64 `mapstructure:"completenessWeight"`
}

// RepetitionConfig holds word-repetition analysis configuration
type RepetitionConfig struct {
	Threshold     int           `mapstructure:"threshold"`     // Flag words appearing more than this many times
	MaxSynonyms   int           `mapstructure:"maxSynonyms"`   // Synonym suggestions per flagged word
	ThesaurusFile string        `mapstructure:"thesaurusFile"` // Optional JSON thesaurus overriding builtins
	WatchFile     bool          `mapstructure:"watchFile"`     // Hot-reload the thesaurus file on change
	DebounceDelay time.Duration `mapstructure:"debounceDelay"` // Debounce for file change events
}

// RankingConfig holds multi-candidate ranking configuration
type RankingConfig struct {
	TopK             int           `mapstructure:"topK"`             // Default number of candidates returned
	MaxConcurrent    int           `mapstructure:"maxConcurrent"`    // Concurrent candidate evaluations
	CandidateTimeout time.Duration `mapstructure:"candidateTimeout"` // Per-candidate scoring budget
	ATSWeight        float64       `mapstructure:"atsWeight"`
	SkillsWeight     float64       `mapstructure:"skillsWeight"`
	ProfileWeight    float64       `mapstructure:"profileWeight"`
	UseAISignals     bool          `mapstructure:"useAISignals"` // Best-effort gateway summaries per candidate
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	// TLS Configuration
	TLS TLSConfig `mapstructure:"tls"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"` // Valid API keys for authentication

	// Maximum request body size in bytes
	MaxRequestSize int64 `mapstructure:"maxRequestSize"`

	// Rate Limiting Configuration
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds TLS configuration
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"` // Server certificate file (PEM)
	KeyFile  string `mapstructure:"keyFile"`  // Server private key file (PEM)
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`        // Enable/disable rate limiting
	RequestsPerMin int           `mapstructure:"requestsPerMin"` // Requests allowed per minute
	BurstCapacity  int           `mapstructure:"burstCapacity"`  // Burst capacity for token bucket
	ByIP           bool          `mapstructure:"byIP"`           // Enable per-IP rate limiting
	ByAPIKey       bool          `mapstructure:"byAPIKey"`       // Enable per-API-key rate limiting
	Window         time.Duration `mapstructure:"window"`         // Rate limiting window duration
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set up environment variable handling
	v.SetEnvPrefix("CAREERPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set up config file handling
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/careerpilot/")
	v.AddConfigPath("$HOME/.careerpilot")
	v.AddConfigPath(".")

	// Read the config file
	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	// Unmarshal the configuration into the Config struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply environment fallbacks and derived values
	config.applyFallbacks()

	// Log configuration sources summary
	config.logConfigurationSources(configFileUsed)

	// Validate the configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.GatewayRequired() && c.AI.APIKey == "" {
		return apperrors.NewConfigError(apperrors.ErrCodeMissingAPIKey,
			"AI API key is required for gateway-backed stages (set CAREERPILOT_AI_APIKEY or switch stage policies to local-only)", nil)
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	if c.Pipeline.Timeout <= 0 {
		return fmt.Errorf("pipeline timeout must be positive")
	}

	for stage, policy := range c.Pipeline.Policies {
		switch policy {
		case PolicyLocalOnly, PolicyGatewayWithFallback, PolicyGatewayOnly:
		default:
			return fmt.Errorf("invalid policy %q for stage %q (must be %q, %q, or %q)",
				policy, stage, PolicyLocalOnly, PolicyGatewayWithFallback, PolicyGatewayOnly)
		}
	}

	if sum := c.Scoring.SkillOverlapWeight + c.Scoring.CompletenessWeight; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.3f", sum)
	}

	if sum := c.Ranking.ATSWeight + c.Ranking.SkillsWeight + c.Ranking.ProfileWeight; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("ranking weights must sum to 1.0, got %.3f", sum)
	}

	if c.Ranking.MaxConcurrent <= 0 {
		return fmt.Errorf("ranking maxConcurrent must be positive")
	}

	if c.Repetition.Threshold <= 0 {
		return fmt.Errorf("repetition threshold must be positive")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Server.TLS.Enabled && (c.Server.TLS.CertFile == "" || c.Server.TLS.KeyFile == "") {
		return fmt.Errorf("TLS certificate and key files are required when TLS is enabled")
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	return nil
}

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	// Legacy environment variable support for the Gemini key
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	// Parse API keys from environment variable if not set in config
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv("CAREERPILOT_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = strings.Split(apiKeysEnv, ",")
			for i, key := range c.Server.APIKeys {
				c.Server.APIKeys[i] = strings.TrimSpace(key)
			}
		}
	}

	// Set dynamic service instance ID if not specified
	if c.Observability.ServiceInstance == "" {
		if hostname, err := os.Hostname(); err == nil {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-%s", c.Observability.ServiceName, hostname)
		} else {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-1", c.Observability.ServiceName)
		}
	}

	// Set console output based on log level if not explicitly configured
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"CAREERPILOT_AI_APIKEY",
		"CAREERPILOT_AI_PROVIDER",
		"CAREERPILOT_AI_MODEL",
		"CAREERPILOT_SERVER_PORT",
		"CAREERPILOT_SERVER_HOST",
		"CAREERPILOT_APP_LOGLEVEL",
		"GEMINI_API_KEY", // Legacy support
	}

	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			// Mask sensitive values
			if strings.Contains(strings.ToLower(envVar), "apikey") || strings.Contains(strings.ToLower(envVar), "key") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
		}
	}

	log.Printf("[CONFIG] AI Provider: %s, Model: %s", c.AI.Provider, c.AI.Model)
	if c.AI.APIKey != "" {
		log.Println("[CONFIG] AI API Key: ***CONFIGURED***")
	} else {
		log.Println("[CONFIG] AI API Key: ***NOT SET***")
	}
	log.Printf("[CONFIG] Server: %s:%s (TLS: %t)", c.Server.Host, c.Server.Port, c.Server.TLS.Enabled)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Pipeline Timeout: %s", c.Pipeline.Timeout)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
}
