// Package etl orchestrates one end-to-end run: load the instrument workbook,
// validate and clean the curve data, summarize it, and write the run
// directory artifacts. Stages run sequentially; load and write failures
// abort the run, plot render failures are recorded and reported without
// blocking the remaining artifacts.
package etl

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"dpcretl/internal/config"
	"dpcretl/internal/curves"
	"dpcretl/internal/fileutil"
	"dpcretl/internal/logging"
	"dpcretl/internal/plot"
	"dpcretl/internal/report"
	"dpcretl/internal/runindex"
	"dpcretl/internal/runmeta"
	"dpcretl/internal/summary"
	"dpcretl/internal/validate"
	"dpcretl/internal/workbook"
)

// ResultsSheet holds the instrument's computed per-well results. It shares
// the sample-setup table offset and is exported verbatim when present.
const ResultsSheet = "Results"

// Options controls a single pipeline invocation.
type Options struct {
	// InputPath is the source workbook.
	InputPath string
	// OutputBase is the directory run directories are created under.
	OutputBase string
	// DryRun executes every stage without creating the run directory or
	// writing any artifact.
	DryRun bool
	// SkipMetadata omits metadata.json from the run directory.
	SkipMetadata bool
	// SkipSummary omits the QC summary block from metadata.json. The
	// summary is still computed for the QC report and console output.
	SkipSummary bool
}

// RunResult reports what a pipeline invocation produced.
type RunResult struct {
	RunDir       string
	Metadata     *runmeta.RunMetadata
	Summary      summary.QCSummary
	Anomalies    []validate.Anomaly
	Artifacts    []string
	RenderErrors []error
	IndexID      string
	DryRun       bool
}

// Pipeline executes the load, validate, summarize, and write stages for one
// workbook.
type Pipeline struct {
	cfg    *config.Config
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// New constructs a Pipeline. A nil logger discards output.
func New(cfg *config.Config, opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{cfg: cfg, opts: opts, logger: logger, now: time.Now}
}

type runState struct {
	wb        *workbook.Workbook
	meta      *runmeta.RunMetadata
	melt      curves.Dataset
	amp       curves.Dataset
	results   *workbook.Table
	cleanMelt validate.Result
	cleanAmp  validate.Result
	result    *RunResult
}

type pipelineStage struct {
	name string
	run  func(context.Context, *runState) error
}

// Run executes the pipeline and returns the run result. Errors wrapping
// ErrRender are accumulated in RunResult.RenderErrors instead of being
// returned.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	p.logger.Info("pipeline starting",
		logging.String(logging.FieldPath, p.opts.InputPath),
		logging.Bool("dry_run", p.opts.DryRun))

	state := &runState{result: &RunResult{DryRun: p.opts.DryRun}}
	defer func() {
		if state.wb != nil {
			if err := state.wb.Close(); err != nil {
				p.logger.Warn("failed to close workbook", logging.Error(err))
			}
		}
	}()

	stages := []pipelineStage{
		{name: "load", run: p.load},
		{name: "validate", run: p.validate},
		{name: "summarize", run: p.summarize},
		{name: "write", run: p.write},
		{name: "index", run: p.index},
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := p.now()
		if err := stage.run(ctx, state); err != nil {
			return nil, err
		}
		p.logger.Debug("stage completed",
			logging.String(logging.FieldStage, stage.name),
			logging.Duration("duration", time.Since(start)))
	}
	return state.result, nil
}

func (p *Pipeline) load(ctx context.Context, state *runState) error {
	wb, err := workbook.Open(p.opts.InputPath)
	if err != nil {
		return Wrap(ErrLoad, "load", "open workbook", err)
	}
	state.wb = wb

	meta, err := runmeta.Extract(wb, p.now, p.logger)
	if err != nil {
		return Wrap(ErrLoad, "load", "extract metadata", err)
	}
	meta.CreatedByETLVersion = Version
	state.meta = meta
	state.result.Metadata = meta

	if state.melt, err = curves.LoadMelt(wb); err != nil {
		return Wrap(ErrLoad, "load", "melt curve data", err)
	}
	if state.amp, err = curves.LoadAmplification(wb); err != nil {
		return Wrap(ErrLoad, "load", "amplification data", err)
	}

	// The Results sheet is absent from raw exports taken before the
	// instrument finishes its analysis; exports without it still produce
	// every other artifact.
	if wb.HasSheet(ResultsSheet) {
		table, err := wb.Table(ResultsSheet, runmeta.SetupTableOffset)
		if err != nil {
			return Wrap(ErrLoad, "load", "results table", err)
		}
		state.results = table
	} else {
		p.logger.Warn("results sheet missing, skipping results export",
			logging.String(logging.FieldSheet, ResultsSheet))
	}

	p.logger.Info("workbook loaded",
		logging.String(logging.FieldPath, wb.Path()),
		logging.Int("melt_rows", len(state.melt.Raw)),
		logging.Int("amplification_rows", len(state.amp.Raw)))
	return nil
}

func (p *Pipeline) validate(ctx context.Context, state *runState) error {
	opts := validate.Options{
		DecimalComma: p.cfg.Validation.DecimalComma,
		FlagNegative: p.cfg.Validation.FlagNegative,
	}
	state.cleanMelt = validate.Clean(state.melt, opts)
	state.cleanAmp = validate.Clean(state.amp, opts)

	anomalies := append([]validate.Anomaly{}, state.cleanMelt.Anomalies...)
	anomalies = append(anomalies, state.cleanAmp.Anomalies...)
	state.result.Anomalies = anomalies

	for _, a := range anomalies {
		p.logger.Warn("anomaly recorded",
			logging.String(logging.FieldSheet, a.Sheet),
			logging.Int("row", a.Row),
			logging.String(logging.FieldWell, a.Well),
			logging.String("kind", string(a.Kind)))
	}
	p.logger.Info("validation completed",
		logging.Int("melt_readings", len(state.cleanMelt.Readings)),
		logging.Int("amplification_readings", len(state.cleanAmp.Readings)),
		logging.Int("anomalies", len(anomalies)))
	return nil
}

func (p *Pipeline) summarize(ctx context.Context, state *runState) error {
	state.result.Summary = summary.Build(
		state.cleanMelt.Readings,
		state.cleanAmp.Readings,
		len(state.result.Anomalies))
	p.logger.Debug("summary computed",
		logging.Int("valid_wells", state.result.Summary.ValidWells),
		logging.Float64("fluorescence_mean", state.result.Summary.Melt.FluorescenceMean),
		logging.Float64("delta_rn_mean", state.result.Summary.Amplification.DeltaRnMean))
	return nil
}

func (p *Pipeline) write(ctx context.Context, state *runState) error {
	runDir := filepath.Join(p.opts.OutputBase, state.meta.RunDirName())
	if !p.opts.DryRun {
		if err := fileutil.EnsureDir(runDir); err != nil {
			return Wrap(ErrWrite, "write", "create run directory", err)
		}
	}
	writer := report.NewWriter(runDir, p.opts.DryRun, p.logger)
	state.result.RunDir = writer.Dir()

	if !p.opts.SkipMetadata {
		var qc *summary.QCSummary
		if !p.opts.SkipSummary {
			qc = &state.result.Summary
		}
		path, err := writer.WriteMetadata(state.meta, qc)
		if err != nil {
			return Wrap(ErrWrite, "write", report.MetadataFileName, err)
		}
		state.result.Artifacts = append(state.result.Artifacts, path)
	}

	path, err := writer.WriteQCReport(state.result.Summary, state.result.Anomalies, Version, state.wb.Path())
	if err != nil {
		return Wrap(ErrWrite, "write", report.QCReportFileName, err)
	}
	state.result.Artifacts = append(state.result.Artifacts, path)

	for _, clean := range []struct {
		kind     curves.Kind
		readings []curves.Reading
	}{
		{curves.KindMelt, state.cleanMelt.Readings},
		{curves.KindAmplification, state.cleanAmp.Readings},
	} {
		path, err := writer.WriteCurveCSV(clean.kind, clean.readings)
		if err != nil {
			return Wrap(ErrWrite, "write", clean.kind.CSVName(), err)
		}
		state.result.Artifacts = append(state.result.Artifacts, path)
	}

	if state.results != nil {
		path, err := writer.WriteResults(state.results)
		if err != nil {
			return Wrap(ErrWrite, "write", report.ResultsFileName, err)
		}
		state.result.Artifacts = append(state.result.Artifacts, path)
	}

	p.renderPlots(state, runDir)
	return nil
}

// renderPlots draws the curve figures. Plot failures never fail the run;
// they are logged and surfaced through RunResult.RenderErrors.
func (p *Pipeline) renderPlots(state *runState, runDir string) {
	if !p.cfg.Plots.Enabled || p.opts.DryRun {
		return
	}
	opts := plot.Options{Width: p.cfg.Plots.Width, Height: p.cfg.Plots.Height}
	for _, clean := range []struct {
		kind     curves.Kind
		readings []curves.Reading
	}{
		{curves.KindMelt, state.cleanMelt.Readings},
		{curves.KindAmplification, state.cleanAmp.Readings},
	} {
		path := filepath.Join(runDir, plot.FileName(clean.kind))
		if err := plot.Render(path, clean.kind, clean.readings, opts); err != nil {
			wrapped := Wrap(ErrRender, "plot", plot.FileName(clean.kind), err)
			state.result.RenderErrors = append(state.result.RenderErrors, wrapped)
			p.logger.Warn("plot rendering failed",
				logging.String(logging.FieldPath, path),
				logging.Error(err))
			continue
		}
		state.result.Artifacts = append(state.result.Artifacts, path)
	}
}

func (p *Pipeline) index(ctx context.Context, state *runState) error {
	if !p.cfg.Index.Enabled || p.opts.DryRun {
		return nil
	}
	store, err := runindex.Open(p.opts.OutputBase)
	if err != nil {
		return Wrap(ErrWrite, "index", "open run index", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			p.logger.Warn("failed to close run index", logging.Error(err))
		}
	}()

	rec := &runindex.Record{
		SourceFile: p.opts.InputPath,
		RunTime:    state.meta.ExperimentRunEndTime,
		OutputDir:  state.result.RunDir,
		ValidWells: state.result.Summary.ValidWells,
		Anomalies:  len(state.result.Anomalies),
		Targets:    state.result.Summary.TargetsDetected,
		ETLVersion: Version,
	}
	if err := store.Add(ctx, rec); err != nil {
		return Wrap(ErrWrite, "index", "record run", err)
	}
	state.result.IndexID = rec.ID
	p.logger.Info("run indexed",
		logging.String(logging.FieldRun, rec.ID),
		logging.String(logging.FieldPath, store.Path()))
	return nil
}

// Describe returns a one-line human summary of the run for console output.
func (r *RunResult) Describe() string {
	mode := "completed"
	if r.DryRun {
		mode = "completed (dry run)"
	}
	return fmt.Sprintf("ETL %s: %d valid wells, %d anomalies, output %s",
		mode, r.Summary.ValidWells, r.Summary.Anomalies, r.RunDir)
}
