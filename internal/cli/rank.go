package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"careerpilot/internal/common"
	"careerpilot/internal/ranking"
	"careerpilot/internal/types"

	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank [job-description-file] [candidates-json-file]",
	Short: "Rank multiple candidates against a job description",
	Long: `Rank multiple candidates against one job description and return them in
descending order of fit.

The candidates file is a JSON array of objects with "id", "name", and either
"skills" (a string array) or "resumeText". Each candidate gets a composite
score built from skill match, ATS compatibility, and experience alignment.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if rankConfig.OutputFormat == "" {
			rankConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(rankConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runRank,
}

var (
	rankConfig common.CommandConfig
	rankTopK   int
)

func init() {
	rankCmd.Flags().StringVarP(&rankConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	rankCmd.Flags().StringVar(&rankConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	rankCmd.Flags().IntVar(&rankTopK, "top-k", 0, "Number of candidates to return (default from config)")

	_ = rankCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func runRank(cmd *cobra.Command, args []string) error {
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
	if gw != nil {
		defer func() { _ = gw.Close() }()
	}

	aggregator := ranking.New(gw, cfg, logger)

	createInput := func(contents []string) (types.RankInput, error) {
		if len(contents) != 2 {
			return types.RankInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		var candidates []types.Candidate
		if err := json.Unmarshal([]byte(contents[1]), &candidates); err != nil {
			return types.RankInput{}, fmt.Errorf("failed to parse candidates file %s: %w", args[1], err)
		}
		return types.RankInput{
			JobDescription: contents[0],
			Candidates:     candidates,
			TopK:           rankTopK,
		}, nil
	}

	logDetails := func(input types.RankInput, cfg common.CommandConfig) {
		logger.Info("Starting candidate ranking",
			"candidates", len(input.Candidates),
			"top_k", input.TopK,
			"output_format", cfg.OutputFormat)
	}

	rankOperation := func(ctx context.Context, input types.RankInput) ([]types.RankedCandidate, error) {
		return aggregator.Rank(ctx, input)
	}

	err = common.RunPipelineCommand(
		cmd.Context(),
		logger,
		rankConfig,
		args,
		createInput,
		rankOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to rank candidates: %w", err)
	}
	logger.Info("Candidate ranking completed successfully")
	return nil
}
