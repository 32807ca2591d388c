package cli

import (
	"context"
	"fmt"

	"careerpilot/internal/common"
	"careerpilot/internal/pipeline"
	"careerpilot/internal/types"

	"github.com/spf13/cobra"
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate [resume-file] [job-description-file]",
	Short: "Regenerate a resume reordered for a job description",
	Long: `Regenerate a resume tuned to a job description. Sections are reordered
into a recruiter-friendly layout and the professional summary is rewritten to
emphasize the skills the job asks for. When no generation gateway is
available the original summary is kept.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if regenerateConfig.OutputFormat == "" {
			regenerateConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(regenerateConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runRegenerate,
}

var regenerateConfig common.CommandConfig

func init() {
	regenerateCmd.Flags().StringVarP(&regenerateConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	regenerateCmd.Flags().StringVar(&regenerateConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = regenerateCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func runRegenerate(cmd *cobra.Command, args []string) error {
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

	orchestrator := pipeline.New(gw, cfg, loadThesaurus(cfg, logger), logger)

	createInput := func(contents []string) (types.AnalyzeInput, error) {
		if len(contents) != 2 {
			return types.AnalyzeInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		return types.AnalyzeInput{
			ResumeText:     contents[0],
			JobDescription: contents[1],
		}, nil
	}

	logDetails := func(input types.AnalyzeInput, cfg common.CommandConfig) {
		logger.Info("Starting resume regeneration",
			"resume_chars", len(input.ResumeText),
			"job_chars", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	// Regeneration needs the analysis first; the resume is rebuilt from
	// its matched and missing skills.
	regenerateOperation := func(ctx context.Context, input types.AnalyzeInput) (*types.ResumeDocument, error) {
		result, err := orchestrator.Analyze(ctx, input)
		if err != nil {
			return nil, err
		}
		return orchestrator.Regenerate(ctx, result)
	}

	err = common.RunPipelineCommand(
		cmd.Context(),
		logger,
		regenerateConfig,
		args,
		createInput,
		regenerateOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to regenerate resume: %w", err)
	}
	logger.Info("Resume regeneration completed successfully")
	return nil
}
