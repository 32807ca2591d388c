package cli

import (
	"careerpilot/internal/analysis"
	"careerpilot/internal/pipeline"
	"careerpilot/internal/ranking"
	"careerpilot/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for resume analysis and candidate ranking",
	Long: `Start an HTTP server that provides REST API endpoints for resume analysis,
candidate ranking, and resume regeneration.

Available endpoints:
- POST /analyze: Analyze a resume against a job description
- POST /rank-candidates: Rank multiple candidates against one job
- POST /regenerate: Regenerate a resume tuned to a job description
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --cert-file and --key-file for TLS certificates`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
	bindFlag("server.tls.certFile", "cert-file")
	bindFlag("server.tls.keyFile", "key-file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	gw, err := buildGateway(cfg, logger)
	if err != nil {
		return err
	}

	thesaurus := loadThesaurus(cfg, logger)
	if cfg.Repetition.WatchFile && cfg.Repetition.ThesaurusFile != "" {
		watcher := analysis.NewThesaurusWatcher(
			cfg.Repetition.ThesaurusFile, thesaurus, cfg.Repetition.DebounceDelay, logger)
		if err := watcher.Start(); err != nil {
			logger.Warn("Failed to start thesaurus watcher", "error", err)
		} else {
			defer func() { _ = watcher.Stop() }()
		}
	}

	serverCfg := server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		RateLimit:      &cfg.Server.RateLimit,
	}
	deps := server.Dependencies{
		Pipeline: pipeline.New(gw, cfg, thesaurus, logger),
		Ranker:   ranking.New(gw, cfg, logger),
		Gateway:  gw,
	}
	return server.NewServer(cfg, serverCfg, deps, logger).Start()
}
