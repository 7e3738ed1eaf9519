// Package report serializes run artifacts: the metadata file, the QC report,
// and the curve/results CSV exports. All writes honor dry-run by becoming
// no-ops, so the pipeline's console output stays identical either way.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"dpcretl/internal/curves"
	"dpcretl/internal/fileutil"
	"dpcretl/internal/logging"
	"dpcretl/internal/runmeta"
	"dpcretl/internal/summary"
	"dpcretl/internal/validate"
	"dpcretl/internal/workbook"
)

const (
	MetadataFileName = "metadata.json"
	QCReportFileName = "qc_report.json"
	ResultsFileName  = "results_table.csv"
)

// QCReport is the qc_report.json document.
type QCReport struct {
	ETLVersion  string              `json:"etl_version"`
	GeneratedAt string              `json:"generated_at"`
	SourceFile  string              `json:"source_file"`
	Summary     summary.QCSummary   `json:"summary"`
	Anomalies   []validate.Anomaly  `json:"anomalies"`
}

type metadataDocument struct {
	*runmeta.RunMetadata
	Summary *summary.QCSummary `json:"summary,omitempty"`
}

// Writer persists artifacts into one run directory.
type Writer struct {
	dir    string
	dryRun bool
	logger *slog.Logger
}

// NewWriter returns a Writer rooted at dir. With dryRun set, every Write
// method succeeds without touching the filesystem.
func NewWriter(dir string, dryRun bool, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Writer{dir: dir, dryRun: dryRun, logger: logger}
}

// Dir returns the run directory this writer targets.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteMetadata writes metadata.json, embedding the QC summary block unless
// qc is nil.
func (w *Writer) WriteMetadata(meta *runmeta.RunMetadata, qc *summary.QCSummary) (string, error) {
	doc := metadataDocument{RunMetadata: meta, Summary: qc}
	return w.writeJSON(MetadataFileName, doc)
}

// WriteQCReport writes qc_report.json.
func (w *Writer) WriteQCReport(qc summary.QCSummary, anomalies []validate.Anomaly, version, sourceFile string) (string, error) {
	if anomalies == nil {
		anomalies = []validate.Anomaly{}
	}
	doc := QCReport{
		ETLVersion:  version,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		SourceFile:  sourceFile,
		Summary:     qc,
		Anomalies:   anomalies,
	}
	return w.writeJSON(QCReportFileName, doc)
}

// WriteCurveCSV writes the cleaned readings of one curve kind as CSV.
func (w *Writer) WriteCurveCSV(kind curves.Kind, readings []curves.Reading) (string, error) {
	var (
		data []byte
		err  error
	)
	if kind == curves.KindAmplification {
		data, err = gocsv.MarshalBytes(curves.ToAmplificationRows(readings))
	} else {
		data, err = gocsv.MarshalBytes(curves.ToMeltRows(readings))
	}
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", kind.CSVName(), err)
	}
	return w.write(kind.CSVName(), data)
}

// WriteResults writes the untyped Results table as CSV, preserving its
// column order.
func (w *Writer) WriteResults(table *workbook.Table) (string, error) {
	columns := make([]string, 0, len(table.Columns))
	for _, name := range table.Columns {
		if name != "" {
			columns = append(columns, name)
		}
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)
	if err := writer.Write(columns); err != nil {
		return "", fmt.Errorf("write results header: %w", err)
	}
	for _, row := range table.Rows {
		record := make([]string, len(columns))
		for i, name := range columns {
			record[i] = row.Get(name)
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("write results row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush results: %w", err)
	}
	return w.write(ResultsFileName, []byte(buf.String()))
}

func (w *Writer) writeJSON(name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}
	return w.write(name, append(data, '\n'))
}

func (w *Writer) write(name string, data []byte) (string, error) {
	path := filepath.Join(w.dir, name)
	if w.dryRun {
		w.logger.Debug("dry run, skipping write", logging.String(logging.FieldPath, path))
		return path, nil
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", err
	}
	w.logger.Info("artifact written", logging.String(logging.FieldPath, path))
	return path, nil
}
