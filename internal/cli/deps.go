package cli

import (
	"fmt"

	"careerpilot/internal/analysis"
	"careerpilot/internal/config"
	"careerpilot/internal/errors"
	"careerpilot/internal/gateway"
)

// buildGateway constructs the generation gateway when one is configured.
// A missing or broken gateway is fatal only when some stage is gateway-only;
// otherwise the command runs with local fallbacks.
func buildGateway(cfg *config.Config, logger *errors.Logger) (*gateway.Gateway, error) {
	if cfg.AI.APIKey == "" && !cfg.GatewayRequired() {
		logger.Info("No gateway API key configured, all stages run locally")
		return nil, nil
	}

	gw, err := gateway.New(cfg, logger)
	if err != nil {
		if cfg.GatewayRequired() {
			return nil, fmt.Errorf("failed to create generation gateway: %w", err)
		}
		logger.Warn("Generation gateway unavailable, stages fall back to local analysis", "error", err)
		return nil, nil
	}
	return gw, nil
}

// loadThesaurus builds the synonym thesaurus, layering the configured
// file over the built-in entries when one is set.
func loadThesaurus(cfg *config.Config, logger *errors.Logger) *analysis.Thesaurus {
	thesaurus := analysis.NewThesaurus()
	if cfg.Repetition.ThesaurusFile == "" {
		return thesaurus
	}

	if err := thesaurus.LoadFile(cfg.Repetition.ThesaurusFile); err != nil {
		logger.Warn("Failed to load thesaurus file, using built-in synonyms",
			"file", cfg.Repetition.ThesaurusFile, "error", err)
		return thesaurus
	}
	logger.Debug("Thesaurus loaded", "file", cfg.Repetition.ThesaurusFile, "entries", thesaurus.Size())
	return thesaurus
}
