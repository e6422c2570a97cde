package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bilgisen/weeklyissue/internal/config"
	"github.com/bilgisen/weeklyissue/internal/generator"
	"github.com/bilgisen/weeklyissue/internal/logger"
	"github.com/spf13/cobra"
)

var (
	flagMode   string
	flagFormat string
	flagSearch bool
	flagPretty bool
)

// rootCmd runs one generation
var rootCmd = &cobra.Command{
	Use:   "weeklyissue",
	Short: "Generate the weekly design news issue with Gemini",
	Long: `Asks Gemini for this week's news in six sections of five stories,
then patches the ISSUE_CONFIG and SECTIONS declarations of the issue page
and/or writes the JSON artifact.

Exit status is 0 when the issue was published or the run was skipped
(quota, incomplete model output), non-zero on configuration or artifact
errors.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one generation (default command)",
	RunE:  runGenerate,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().StringVar(&flagMode, "mode", "", "Generation mode: combined or per_section (or set GENERATION_MODE)")
		cmd.Flags().StringVar(&flagFormat, "format", "", "Output format: html, json or both (or set OUTPUT_FORMAT)")
		cmd.Flags().BoolVar(&flagSearch, "search", true, "Enable Google Search grounding (or set AI_ENABLE_SEARCH)")
	}
	rootCmd.PersistentFlags().BoolVar(&flagPretty, "pretty", false, "Human readable console logs")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

// exitError carries a process exit status out of a command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func main() {
	if err := rootCmd.Execute(); err != nil {
		code := 1
		if ee, ok := err.(*exitError); ok {
			code = ee.code
		}
		if code != 0 {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(code)
	}
}

// setup loads the configuration, applies command line overrides and
// initializes the logger
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, &exitError{code: generator.FatalConfig.ExitCode(), err: fmt.Errorf("invalid configuration: %w", err)}
	}

	if f := cmd.Flags().Lookup("mode"); f != nil && f.Changed {
		cfg.Mode = flagMode
	}
	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		cfg.OutputFormat = flagFormat
	}
	if f := cmd.Flags().Lookup("search"); f != nil && f.Changed {
		cfg.EnableSearch = flagSearch
	}
	if err := cfg.Validate(); err != nil {
		return nil, &exitError{code: generator.FatalConfig.ExitCode(), err: fmt.Errorf("invalid flags: %w", err)}
	}

	output := cfg.LogFile
	if output == "" {
		output = "stdout"
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: flagPretty,
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, cleanup, err := buildDeps(ctx, cfg, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize dependencies")
		return &exitError{code: generator.FatalConfig.ExitCode(), err: err}
	}
	defer cleanup()

	res := generator.New(cfg, deps).Run(ctx)
	log.Info().
		Str("run_id", res.RunID).
		Str("outcome", res.Outcome.String()).
		Int("exit_code", res.Outcome.ExitCode()).
		Msg("Run finished")

	if code := res.Outcome.ExitCode(); code != 0 {
		return &exitError{code: code, err: fmt.Errorf("%s: %w", res.Outcome, res.Err)}
	}
	return nil
}
