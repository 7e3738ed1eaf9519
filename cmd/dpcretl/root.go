package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"dpcretl/internal/config"
	"dpcretl/internal/etl"
)

// DefaultInputFileName is the workbook consumed when --input is not given;
// it is resolved relative to the configured input directory.
const DefaultInputFileName = "input.xlsx"

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := newCommandContext(&configFlag)

	var (
		inputFlag    string
		outputFlag   string
		showVersion  bool
		verbose      bool
		dryRun       bool
		skipMetadata bool
		skipSummary  bool
		noPlots      bool
		jsonOutput   bool
	)

	rootCmd := &cobra.Command{
		Use:   "dpcretl",
		Short: "ETL for digital PCR instrument exports",
		Long: "dpcretl loads a dPCR instrument .xlsx export, validates and cleans the\n" +
			"curve data, and writes a timestamped run directory of CSV, JSON, and\n" +
			"plot artifacts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) || versionRequested(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "ETL Script Version: %s\n", etl.Version)
				return nil
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, verbose)
			if err != nil {
				return err
			}
			if noPlots {
				cfg.Plots.Enabled = false
			}

			opts := etl.Options{
				InputPath:    resolveInput(cfg, inputFlag),
				OutputBase:   resolveOutput(cfg, outputFlag),
				DryRun:       dryRun,
				SkipMetadata: skipMetadata,
				SkipSummary:  skipSummary,
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := etl.New(cfg, opts, logger).Run(runCtx)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), newRunReport(result))
			}
			printRunResult(cmd, result)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Input workbook path (default <input_dir>/"+DefaultInputFileName+")")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Base directory for run output (default <output_dir>)")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Print the ETL version and exit")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run every stage without writing artifacts")
	rootCmd.Flags().BoolVar(&skipMetadata, "skip-metadata", false, "Do not write metadata.json")
	rootCmd.Flags().BoolVar(&skipSummary, "skip-summary", false, "Omit the QC summary block from metadata.json")
	rootCmd.Flags().BoolVar(&noPlots, "no-plots", false, "Skip curve plot rendering")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run result as JSON")

	rootCmd.AddCommand(newCompareCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

func versionRequested(cmd *cobra.Command) bool {
	flag := cmd.Flags().Lookup("version")
	return flag != nil && flag.Changed
}

func resolveInput(cfg *config.Config, flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	return filepath.Join(cfg.Paths.InputDir, DefaultInputFileName)
}

func resolveOutput(cfg *config.Config, flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	return cfg.Paths.OutputDir
}
