package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"dpcretl/internal/config"
	"dpcretl/internal/etl"
	"dpcretl/internal/logging"
	"dpcretl/internal/summary"
	"dpcretl/internal/validate"
)

func newLogger(cfg *config.Config, verbose bool) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		Writer: os.Stderr,
	})
}

func isTerminal(file *os.File) bool {
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// runReport is the --json document for a pipeline run.
type runReport struct {
	RunDir       string             `json:"run_dir"`
	DryRun       bool               `json:"dry_run"`
	IndexID      string             `json:"index_id,omitempty"`
	Summary      summary.QCSummary  `json:"summary"`
	Anomalies    []validate.Anomaly `json:"anomalies"`
	Artifacts    []string           `json:"artifacts"`
	RenderErrors []string           `json:"render_errors,omitempty"`
}

func newRunReport(result *etl.RunResult) runReport {
	rep := runReport{
		RunDir:    result.RunDir,
		DryRun:    result.DryRun,
		IndexID:   result.IndexID,
		Summary:   result.Summary,
		Anomalies: result.Anomalies,
		Artifacts: result.Artifacts,
	}
	if rep.Anomalies == nil {
		rep.Anomalies = []validate.Anomaly{}
	}
	if rep.Artifacts == nil {
		rep.Artifacts = []string{}
	}
	for _, err := range result.RenderErrors {
		rep.RenderErrors = append(rep.RenderErrors, err.Error())
	}
	return rep
}

func printRunResult(cmd *cobra.Command, result *etl.RunResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Describe())

	metrics := []runMetric{
		{"Valid wells", strconv.Itoa(result.Summary.ValidWells)},
		{"Anomalies", strconv.Itoa(result.Summary.Anomalies)},
		{"Targets", strings.Join(result.Summary.TargetsDetected, ", ")},
		{"Melt wells", strconv.Itoa(result.Summary.Melt.Wells)},
		{"Amplified wells", strconv.Itoa(result.Summary.Amplification.Wells)},
		{"Artifacts", strconv.Itoa(len(result.Artifacts))},
	}
	if file, ok := out.(*os.File); ok && isTerminal(file) {
		fmt.Fprintln(out, renderMetricsTable(metrics))
	} else {
		for _, m := range metrics {
			fmt.Fprintf(out, "%s: %s\n", m.Name, m.Value)
		}
	}
	for _, err := range result.RenderErrors {
		fmt.Fprintf(out, "warning: %v\n", err)
	}
}
