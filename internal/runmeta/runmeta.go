// Package runmeta extracts run metadata from the Sample Setup sheet of an
// instrument export: instrument settings, sample names, and the replicate
// well groupings used for cross-run averaging.
package runmeta

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"dpcretl/internal/logging"
	"dpcretl/internal/workbook"
)

// SetupSheet is the worksheet carrying the metadata block and sample table.
const SetupSheet = "Sample Setup"

// TimestampLayout is the canonical format for run timestamps in metadata.
const TimestampLayout = "2006-01-02 15:04:05"

// RunMetadata holds the per-run instrument settings and plate layout.
// Immutable after extraction.
type RunMetadata struct {
	CreatedByETLVersion       string              `json:"created_by_etl_version"`
	BlockType                 string              `json:"block_type"`
	Chemistry                 string              `json:"chemistry"`
	PassiveReference          string              `json:"passive_reference"`
	DateCreated               string              `json:"date_created"`
	ExperimentType            string              `json:"experiment_type"`
	QuantificationCycleMethod string              `json:"quantification_cycle_method"`
	SignalSmoothingOn         bool                `json:"signal_smoothing_on"`
	ExperimentRunEndTime      string              `json:"experiment_run_end_time"`
	Samples                   []string            `json:"samples"`
	Replicates                map[string][]string `json:"replicates,omitempty"`
	WellTargets               map[string]string   `json:"well_targets,omitempty"`
}

// Instrument exports stamp timezone abbreviations and meridiem markers that
// general-purpose parsers reject; they are stripped before parsing.
var timestampNoise = regexp.MustCompile(`(?i)\b(AM|PM|EDT|PST|CST|EST|UTC)\b`)

var wellPosition = regexp.MustCompile(`(?i)^([A-Z]+)(\d+)$`)

// Extract reads run metadata from the workbook's Sample Setup sheet. Missing
// individual fields fall back to defaults; a missing sheet is an error. The
// now function supplies the fallback run end time.
func Extract(wb *workbook.Workbook, now func() time.Time, logger *slog.Logger) (*RunMetadata, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if now == nil {
		now = time.Now
	}

	header, values, err := wb.KeyValueBlock(SetupSheet)
	if err != nil {
		return nil, err
	}

	meta := defaults()
	if header != "" {
		meta.BlockType = header
	}
	assign(&meta.Chemistry, values, "Chemistry")
	assign(&meta.PassiveReference, values, "Passive Reference")
	assign(&meta.ExperimentType, values, "Experiment Type")
	assign(&meta.QuantificationCycleMethod, values, "Quantification Cycle Method")
	if raw, ok := values["Signal Smoothing On"]; ok {
		meta.SignalSmoothingOn = parseBool(raw)
	}
	if raw, ok := values["Date Created"]; ok && raw != "" {
		meta.DateCreated = stripTimestampNoise(raw)
	}
	meta.ExperimentRunEndTime = parseRunEndTime(values["Experiment Run End Time"], now, logger)

	if err := extractSampleTable(wb, meta, logger); err != nil {
		// The extended table is optional on older exports; extraction carries
		// on with the metadata block alone.
		logger.Warn("sample table extraction failed", logging.Error(err))
	}

	return meta, nil
}

// RunDirName derives the timestamped output folder name for this run.
func (m *RunMetadata) RunDirName() string {
	name := strings.ReplaceAll(m.ExperimentRunEndTime, ":", "")
	name = strings.ReplaceAll(name, " ", "_")
	return "run_" + name
}

func defaults() *RunMetadata {
	return &RunMetadata{
		BlockType:                 "Unknown",
		Chemistry:                 "Not specified",
		PassiveReference:          "None",
		ExperimentType:            "Unknown",
		QuantificationCycleMethod: "Standard",
		Samples:                   []string{},
	}
}

func assign(dst *string, values map[string]string, key string) {
	if v, ok := values[key]; ok && v != "" {
		*dst = v
	}
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "1", "on":
		return true
	default:
		return false
	}
}

func stripTimestampNoise(raw string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(timestampNoise.ReplaceAllString(raw, "")), " "))
}

func parseRunEndTime(raw string, now func() time.Time, logger *slog.Logger) string {
	cleaned := stripTimestampNoise(raw)
	if cleaned != "" {
		if ts, err := dateparse.ParseAny(cleaned); err == nil {
			return ts.Format(TimestampLayout)
		}
		logger.Warn("unparseable run end time, using wall clock", logging.String("value", raw))
	}
	return now().Format(TimestampLayout)
}

func extractSampleTable(wb *workbook.Workbook, meta *RunMetadata, logger *slog.Logger) error {
	table, err := wb.Table(SetupSheet, SetupTableOffset)
	if err != nil {
		return err
	}
	if len(table.MissingColumns("Sample Name", "Well Position")) > 0 {
		// Nothing to extract; not an error on exports without a sample table.
		return nil
	}

	seen := make(map[string]struct{})
	replicates := make(map[string][]string)
	targets := make(map[string]string)

	for _, row := range table.Rows {
		sample := row.Get("Sample Name")
		position := strings.TrimSpace(row.Get("Well Position"))
		if sample == "" || position == "" {
			continue
		}
		if _, ok := seen[sample]; !ok {
			seen[sample] = struct{}{}
			meta.Samples = append(meta.Samples, sample)
		}
		if col := ParseWellColumn(position); col > 0 {
			key := sample + "_" + strconv.Itoa(col)
			replicates[key] = append(replicates[key], position)
		}
		if target := row.Get("Target Name"); target != "" {
			targets[position] = target
		}
	}

	if len(replicates) > 0 {
		meta.Replicates = replicates
	}
	if len(targets) > 0 {
		meta.WellTargets = targets
	}
	logger.Debug("sample table extracted",
		logging.Int("samples", len(meta.Samples)),
		logging.Int("replicate_groups", len(replicates)))
	return nil
}

// SetupTableOffset is the number of lead-in rows before the per-well table,
// fixed by the instrument export layout.
const SetupTableOffset = 35

// ParseWellColumn returns the numeric plate column of a well position like
// "A1" or "H12", or 0 when the position does not parse.
func ParseWellColumn(position string) int {
	match := wellPosition.FindStringSubmatch(strings.TrimSpace(position))
	if match == nil {
		return 0
	}
	col, _ := strconv.Atoi(match[2])
	return col
}
