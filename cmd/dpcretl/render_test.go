package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"dpcretl/internal/etl"
	"dpcretl/internal/replicate"
	"dpcretl/internal/runindex"
	"dpcretl/internal/summary"
)

func TestRenderAveragedTableAlignsColumns(t *testing.T) {
	out := renderAveragedTable([]replicate.Averaged{
		{Group: "control_1", X: 60.5, Mean: 1.25, StdDev: 0.03, N: 3},
	})
	for _, want := range []string{"Group", "Mean", "StdDev", "control_1", "60.5"} {
		requireContains(t, out, want)
	}
	if !strings.Contains(out, "╭") {
		t.Error("expected rounded table borders")
	}
}

func TestRenderRunTableTruncatesIDs(t *testing.T) {
	out := renderRunTable([]runindex.Record{
		{
			ID:         "0123456789abcdef",
			RunTime:    "2023-05-02 14:31:22",
			ValidWells: 2,
			Targets:    []string{"RNaseP"},
			OutputDir:  "/tmp/run_2023-05-02_143122",
		},
	})
	requireContains(t, out, "01234567")
	if strings.Contains(out, "0123456789abcdef") {
		t.Error("record IDs should be shortened for display")
	}
}

func TestPrintRunResultPlainWhenRedirected(t *testing.T) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	printRunResult(cmd, &etl.RunResult{
		RunDir: "/tmp/run_2023-05-02_143122",
		Summary: summary.QCSummary{
			ValidWells:      2,
			TargetsDetected: []string{"RNaseP"},
		},
	})

	out := buf.String()
	requireContains(t, out, "Valid wells: 2")
	requireContains(t, out, "Targets: RNaseP")
	if strings.Contains(out, "╭") {
		t.Error("redirected output must not contain table borders")
	}
}
