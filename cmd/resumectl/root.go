package main

import (
	"os"

	"github.com/spf13/cobra"

	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/telemetry"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resumectl",
		Short: "Operate the resume builder from the command line",
		Long: `resumectl seeds LaTeX templates and runs the generation pipeline
(prompt, model, sanitizer, LaTeX compiler) without the HTTP server.

Configuration comes from the same environment variables as the API.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.AddCommand(newSeedCmd(), newGenerateCmd(), newEditCmd())
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg := config.Load()
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	if err := telemetry.Init(cfg.Env, level); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
