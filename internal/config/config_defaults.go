package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.useSystemPrompts", true)

	// AI Configuration - Parse stage defaults
	v.SetDefault("ai.parse.provider", "gemini")
	v.SetDefault("ai.parse.model", "")
	v.SetDefault("ai.parse.timeout", 45*time.Second)
	v.SetDefault("ai.parse.apiKey", "")
	v.SetDefault("ai.parse.maxRetries", 2)
	v.SetDefault("ai.parse.temperature", 0.1) // Extraction needs consistency, not creativity

	// AI Configuration - Roadmap stage defaults
	v.SetDefault("ai.roadmap.provider", "gemini")
	v.SetDefault("ai.roadmap.model", "")
	v.SetDefault("ai.roadmap.timeout", 90*time.Second) // Longer timeout for structured plans
	v.SetDefault("ai.roadmap.apiKey", "")
	v.SetDefault("ai.roadmap.maxRetries", 2)
	v.SetDefault("ai.roadmap.temperature", 0.3)

	// AI Configuration - Projects stage defaults
	v.SetDefault("ai.projects.provider", "gemini")
	v.SetDefault("ai.projects.model", "")
	v.SetDefault("ai.projects.timeout", 75*time.Second)
	v.SetDefault("ai.projects.apiKey", "")
	v.SetDefault("ai.projects.maxRetries", 2)
	v.SetDefault("ai.projects.temperature", 0.7) // Higher temperature for varied suggestions

	// AI Configuration - Questions stage defaults
	v.SetDefault("ai.questions.provider", "gemini")
	v.SetDefault("ai.questions.model", "")
	v.SetDefault("ai.questions.timeout", 75*time.Second)
	v.SetDefault("ai.questions.apiKey", "")
	v.SetDefault("ai.questions.maxRetries", 2)
	v.SetDefault("ai.questions.temperature", 0.5)

	// AI Configuration - Rank stage defaults
	v.SetDefault("ai.rank.provider", "gemini")
	v.SetDefault("ai.rank.model", "")
	v.SetDefault("ai.rank.timeout", 30*time.Second) // Per-candidate calls stay short
	v.SetDefault("ai.rank.apiKey", "")
	v.SetDefault("ai.rank.maxRetries", 1)
	v.SetDefault("ai.rank.temperature", 0.2)

	// AI Configuration - Rewrite stage defaults
	v.SetDefault("ai.rewrite.provider", "gemini")
	v.SetDefault("ai.rewrite.model", "")
	v.SetDefault("ai.rewrite.timeout", 60*time.Second)
	v.SetDefault("ai.rewrite.apiKey", "")
	v.SetDefault("ai.rewrite.maxRetries", 2)
	v.SetDefault("ai.rewrite.temperature", 0.4)

	// Circuit Breaker Configuration defaults for all stages
	for _, stage := range []string{"parse", "roadmap", "projects", "questions", "rank", "rewrite"} {
		v.SetDefault("ai."+stage+".circuitBreaker.enabled", true)
		v.SetDefault("ai."+stage+".circuitBreaker.maxRequests", 3)
		v.SetDefault("ai."+stage+".circuitBreaker.interval", 60*time.Second)
		v.SetDefault("ai."+stage+".circuitBreaker.timeout", 60*time.Second)
		v.SetDefault("ai."+stage+".circuitBreaker.minRequests", 3)
		v.SetDefault("ai."+stage+".circuitBreaker.failureThreshold", 0.6)
	}

	// Pipeline Configuration
	v.SetDefault("pipeline.timeout", 5*time.Minute)
	v.SetDefault("pipeline.maxMissingSkills", 8)
	v.SetDefault("pipeline.policies", map[string]string{})

	// Scoring Configuration
	v.SetDefault("scoring.skillOverlapWeight", 0.6)
	v.SetDefault("scoring.completenessWeight", 0.4)

	// Repetition Configuration
	v.SetDefault("repetition.threshold", 3)
	v.SetDefault("repetition.maxSynonyms", 6)
	v.SetDefault("repetition.thesaurusFile", "")
	v.SetDefault("repetition.watchFile", false)
	v.SetDefault("repetition.debounceDelay", time.Second)

	// Ranking Configuration
	v.SetDefault("ranking.topK", 5)
	v.SetDefault("ranking.maxConcurrent", 4)
	v.SetDefault("ranking.candidateTimeout", 30*time.Second)
	v.SetDefault("ranking.atsWeight", 0.4)
	v.SetDefault("ranking.skillsWeight", 0.35)
	v.SetDefault("ranking.profileWeight", 0.25)
	v.SetDefault("ranking.useAISignals", false)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.tls.enabled", false)
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	// API Authentication defaults
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.maxRequestSize", int64(1024*1024)) // 1MB
	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "careerpilot")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	// Tracing Configuration
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	// Metrics Configuration
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Custom Metrics Configuration
	v.SetDefault("observability.customMetrics.gateway.enabled", true)
	v.SetDefault("observability.customMetrics.gateway.trackDuration", true)
	v.SetDefault("observability.customMetrics.gateway.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackContentSizes", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)

	// Console Configuration
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	// Health Check Configuration
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.modelCheckTimeout", 10*time.Second)
}
