package main

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"dpcretl/internal/replicate"
	"dpcretl/internal/runindex"
)

// newResultTable builds the rounded console table shared by every command.
// Columns named in rightAligned hold numeric values and are right-aligned,
// the rest stay left-aligned. Headers always align left.
func newResultTable(headers []string, rightAligned ...string) table.Writer {
	right := make(map[string]struct{}, len(rightAligned))
	for _, name := range rightAligned {
		right[name] = struct{}{}
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	configs := make([]table.ColumnConfig, 0, len(headers))
	for i, name := range headers {
		header[i] = name
		align := text.AlignLeft
		if _, ok := right[name]; ok {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)
	return tw
}

// runMetric is one row of the post-run summary table.
type runMetric struct {
	Name  string
	Value string
}

func renderMetricsTable(metrics []runMetric) string {
	tw := newResultTable([]string{"Metric", "Value"}, "Value")
	for _, m := range metrics {
		tw.AppendRow(table.Row{m.Name, m.Value})
	}
	return tw.Render()
}

func renderAveragedTable(averaged []replicate.Averaged) string {
	tw := newResultTable([]string{"Group", "X", "Mean", "StdDev", "N"},
		"X", "Mean", "StdDev", "N")
	for _, a := range averaged {
		tw.AppendRow(table.Row{
			a.Group,
			strconv.FormatFloat(a.X, 'g', -1, 64),
			strconv.FormatFloat(a.Mean, 'g', 6, 64),
			strconv.FormatFloat(a.StdDev, 'g', 6, 64),
			a.N,
		})
	}
	return tw.Render()
}

func renderRunTable(records []runindex.Record) string {
	tw := newResultTable([]string{"ID", "Run Time", "Wells", "Anomalies", "Targets", "Output"},
		"Wells", "Anomalies")
	for _, rec := range records {
		tw.AppendRow(table.Row{
			shortID(rec.ID),
			rec.RunTime,
			rec.ValidWells,
			rec.Anomalies,
			strings.Join(rec.Targets, ", "),
			rec.OutputDir,
		})
	}
	return tw.Render()
}

// writeJSON encodes v as indented JSON to w.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
