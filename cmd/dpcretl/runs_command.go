package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dpcretl/internal/fileutil"
	"dpcretl/internal/runindex"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect and maintain the run index",
	}
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsPruneCommand(ctx))
	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var (
		outputFlag string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveRunsBase(ctx, outputFlag)
			if err != nil {
				return err
			}
			if !fileutil.PathExists(filepath.Join(base, runindex.DBFileName)) {
				fmt.Fprintf(cmd.OutOrStdout(), "No runs indexed under %s\n", base)
				return nil
			}

			store, err := runindex.Open(base)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			if len(records) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No runs indexed under %s\n", base)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRunTable(records))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Base directory holding the run index (default <output_dir>)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print records as JSON")
	return cmd
}

func newRunsPruneCommand(ctx *commandContext) *cobra.Command {
	var (
		outputFlag string
		keep       int
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop all but the newest index records",
		Long: "prune removes old records from the run index database. It never\n" +
			"touches the run directories themselves.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 1 {
				return fmt.Errorf("--keep must be at least 1, got %d", keep)
			}
			base, err := resolveRunsBase(ctx, outputFlag)
			if err != nil {
				return err
			}

			store, err := runindex.Open(base)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d index records, kept the newest %d\n", removed, keep)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Base directory holding the run index (default <output_dir>)")
	cmd.Flags().IntVar(&keep, "keep", 10, "Number of newest records to retain")
	return cmd
}

func resolveRunsBase(ctx *commandContext, flagValue string) (string, error) {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v, nil
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Paths.OutputDir, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
