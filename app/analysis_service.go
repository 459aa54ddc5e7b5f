package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"spckit/adapters/excel"
	"spckit/domain/table"
	"spckit/internal/analysis"
	"spckit/internal/checksheet"
	"spckit/internal/config"
	"spckit/internal/errors"
	"spckit/internal/session"
)

// AnalysisService is the single entry point used by the CLI and the HTTP
// API. Each call resolves one snapshot and runs exactly one analyzer on it.
type AnalysisService struct {
	workspace *session.Workspace
	reader    *excel.DataReader
	sheets    *checksheet.Registry
	catalog   *analysis.Catalog
	cfg       config.AnalysisConfig
	log       logrus.FieldLogger
}

// NewAnalysisService wires the service. A nil catalog means the built-in one.
func NewAnalysisService(
	workspace *session.Workspace,
	reader *excel.DataReader,
	sheets *checksheet.Registry,
	catalog *analysis.Catalog,
	cfg config.AnalysisConfig,
	log logrus.FieldLogger,
) *AnalysisService {
	if catalog == nil {
		catalog = analysis.DefaultCatalog()
	}
	if cfg.ParetoThreshold == 0 {
		cfg.ParetoThreshold = analysis.DefaultCriticalThreshold
	}
	return &AnalysisService{
		workspace: workspace,
		reader:    reader,
		sheets:    sheets,
		catalog:   catalog,
		cfg:       cfg,
		log:       log.WithField("component", "analysis"),
	}
}

// NewAnalysisServiceFromConfig wires a service with an empty workspace,
// loading the interpretation catalog file when one is configured.
func NewAnalysisServiceFromConfig(cfg *config.Config, log logrus.FieldLogger) (*AnalysisService, error) {
	var catalog *analysis.Catalog
	if cfg.Analysis.CatalogFile != "" {
		c, err := config.LoadCatalog(cfg.Analysis.CatalogFile)
		if err != nil {
			return nil, err
		}
		catalog = c
	}
	return NewAnalysisService(
		session.NewWorkspace(),
		excel.NewDataReader(cfg.Upload.Reader(), log),
		checksheet.NewRegistry(),
		catalog,
		cfg.Analysis,
		log,
	), nil
}

// Sheets exposes the check sheet registry.
func (s *AnalysisService) Sheets() *checksheet.Registry {
	return s.sheets
}

// ParetoResult is a Pareto aggregation with its critical prefix.
type ParetoResult struct {
	Version        int64                `json:"version"`
	Pareto         *analysis.Pareto     `json:"pareto"`
	Threshold      float64              `json:"threshold"`
	Critical       []analysis.ParetoRow `json:"critical"`
	Interpretation string               `json:"interpretation"`
}

// ParetoRequest selects the columns of a Pareto analysis. A zero Threshold
// uses the configured one.
type ParetoRequest struct {
	CategoryColumn string  `json:"category_column"`
	ValueColumn    string  `json:"value_column,omitempty"`
	Threshold      float64 `json:"threshold,omitempty"`
	Version        int64   `json:"version,omitempty"`
}

// Load reads a CSV or XLSX stream and makes it the current dataset.
func (s *AnalysisService) Load(ctx context.Context, name string, src io.Reader) (*session.SnapshotInfo, error) {
	fileType, err := excel.FileTypeOf(name)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	t, err := s.reader.ReadTable(src, fileType)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.install(name, t, start), nil
}

// LoadFile loads a dataset from disk.
func (s *AnalysisService) LoadFile(ctx context.Context, path string) (*session.SnapshotInfo, error) {
	start := time.Now()
	t, err := s.reader.ReadTableFile(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.install(filepath.Base(path), t, start), nil
}

// LoadCheckSheet makes the records of a check sheet the current dataset.
func (s *AnalysisService) LoadCheckSheet(id string) (*session.SnapshotInfo, error) {
	sheet, err := s.sheets.Get(id)
	if err != nil {
		return nil, err
	}
	if sheet.Len() == 0 {
		return nil, errors.EmptyTable(fmt.Sprintf("check sheet %s has no records", id))
	}
	t, err := sheet.ToTable()
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s check sheet %s", sheet.Definition.Type, sheet.ID)
	return s.install(name, t, time.Now()), nil
}

func (s *AnalysisService) install(name string, t *table.Table, start time.Time) *session.SnapshotInfo {
	snap := s.workspace.Replace(name, t)
	s.log.WithFields(logrus.Fields{
		"dataset":  name,
		"version":  snap.Version,
		"rows":     t.RowCount(),
		"columns":  t.ColumnCount(),
		"duration": time.Since(start),
	}).Info("dataset loaded")
	info := snap.Info()
	return &info
}

// Current describes the current dataset.
func (s *AnalysisService) Current() (*session.SnapshotInfo, error) {
	snap, err := s.workspace.Current()
	if err != nil {
		return nil, err
	}
	info := snap.Info()
	return &info, nil
}

// Snapshot returns the current snapshot checked against version.
func (s *AnalysisService) Snapshot(version int64) (*session.Snapshot, error) {
	return s.workspace.Resolve(version)
}

func (s *AnalysisService) logger(snap *session.Snapshot, name string) logrus.FieldLogger {
	return s.log.WithFields(logrus.Fields{
		"dataset":  snap.Name,
		"version":  snap.Version,
		"analysis": name,
	})
}

// fail logs err at a level matching its kind and passes it through.
func fail(log logrus.FieldLogger, err error) error {
	if errors.GetCode(err) == errors.CodeInternalError || !errors.IsAppError(err) {
		log.WithError(err).Error("analysis failed")
	} else {
		log.WithError(err).Warn("analysis rejected")
	}
	return err
}

// Describe summarizes one numeric column.
func (s *AnalysisService) Describe(version int64, column string) (*analysis.Summary, error) {
	snap, err := s.workspace.Resolve(version)
	if err != nil {
		return nil, err
	}
	log := s.logger(snap, "describe").WithField("column", column)
	summary, err := analysis.SummarizeColumn(snap.Table, column)
	if err != nil {
		return nil, fail(log, err)
	}
	log.Debug("column described")
	return &summary, nil
}

// Pareto aggregates a categorical column and flags the critical prefix.
func (s *AnalysisService) Pareto(req ParetoRequest) (*ParetoResult, error) {
	snap, err := s.workspace.Resolve(req.Version)
	if err != nil {
		return nil, err
	}
	threshold := req.Threshold
	if threshold == 0 {
		threshold = s.cfg.ParetoThreshold
	}
	if threshold <= 0 || threshold > 100 {
		return nil, errors.InvalidInput(fmt.Sprintf("threshold must be in (0, 100], got %g", threshold))
	}

	log := s.logger(snap, "pareto").WithField("column", req.CategoryColumn)
	p, err := analysis.AggregatePareto(snap.Table, req.CategoryColumn, req.ValueColumn)
	if err != nil {
		return nil, fail(log, err)
	}
	critical := p.Critical(threshold)
	log.WithFields(logrus.Fields{"categories": len(p.Rows), "critical": len(critical)}).Info("pareto computed")

	return &ParetoResult{
		Version:        snap.Version,
		Pareto:         p,
		Threshold:      threshold,
		Critical:       critical,
		Interpretation: s.catalog.InterpretPareto(req.CategoryColumn),
	}, nil
}

// Control builds the X-bar chart of a numeric column.
func (s *AnalysisService) Control(version int64, column string) (*analysis.ControlChart, error) {
	snap, err := s.workspace.Resolve(version)
	if err != nil {
		return nil, err
	}
	log := s.logger(snap, "control").WithField("column", column)
	c, err := analysis.AnalyzeControl(snap.Table, column)
	if err != nil {
		return nil, fail(log, err)
	}
	log.WithField("out_of_control", c.OutOfControlCount()).Info("control chart computed")
	return c, nil
}

// Stratify splits a numeric column by a categorical one.
func (s *AnalysisService) Stratify(version int64, categoryColumn, numericColumn string) (*analysis.StratumSummary, error) {
	snap, err := s.workspace.Resolve(version)
	if err != nil {
		return nil, err
	}
	log := s.logger(snap, "stratify").WithField("column", numericColumn)
	sum, err := analysis.Stratify(snap.Table, categoryColumn, numericColumn)
	if err != nil {
		return nil, fail(log, err)
	}
	log.WithField("groups", len(sum.Groups)).Info("stratification computed")
	return sum, nil
}

// Histogram bins a numeric column. Zero bins uses the configured default,
// which itself may be zero for Sturges' rule.
func (s *AnalysisService) Histogram(version int64, column string, bins int) (*analysis.Histogram, error) {
	snap, err := s.workspace.Resolve(version)
	if err != nil {
		return nil, err
	}
	if bins == 0 {
		bins = s.cfg.HistogramBins
	}
	log := s.logger(snap, "histogram").WithField("column", column)
	h, err := analysis.AnalyzeHistogram(snap.Table, column, bins)
	if err != nil {
		return nil, fail(log, err)
	}
	log.WithField("bins", len(h.Bins)).Info("histogram computed")
	return h, nil
}

// Correlate relates two numeric columns.
func (s *AnalysisService) Correlate(version int64, xColumn, yColumn string) (*analysis.Correlation, error) {
	snap, err := s.workspace.Resolve(version)
	if err != nil {
		return nil, err
	}
	log := s.logger(snap, "correlation").WithFields(logrus.Fields{"x": xColumn, "y": yColumn})
	c, err := analysis.Correlate(snap.Table, xColumn, yColumn)
	if err != nil {
		return nil, fail(log, err)
	}
	log.WithField("r", c.R).Info("correlation computed")
	return c, nil
}

// DPMO needs no dataset.
func (s *AnalysisService) DPMO(defects, units, opportunities int64) (*analysis.DpmoResult, error) {
	log := s.log.WithField("analysis", "dpmo")
	r, err := analysis.CalculateDPMO(defects, units, opportunities)
	if err != nil {
		return nil, fail(log, err)
	}
	log.WithFields(logrus.Fields{"dpmo": r.DPMO, "tier": r.Tier}).Info("dpmo computed")
	return r, nil
}

// Profile summarizes every numeric column of the current dataset.
func (s *AnalysisService) Profile(ctx context.Context, version int64) (*analysis.Profile, error) {
	snap, err := s.workspace.Resolve(version)
	if err != nil {
		return nil, err
	}
	log := s.logger(snap, "profile")
	p, err := analysis.ProfileTable(ctx, snap.Table, s.cfg.ProfileWorkers)
	if err != nil {
		return nil, fail(log, err)
	}
	log.WithField("columns", len(p.Columns)).Info("profile computed")
	return p, nil
}

// PrepareOp is a table preparation step.
type PrepareOp string

const (
	OpDropMissing PrepareOp = "drop_missing"
	OpFillMissing PrepareOp = "fill_missing"
	OpConvert     PrepareOp = "convert"
)

// PrepareRequest describes one preparation step applied to the current
// dataset. Columns scopes drop_missing; Strategy is mean or median;
// Column and Kind drive convert.
type PrepareRequest struct {
	Op       PrepareOp          `json:"op"`
	Columns  []string           `json:"columns,omitempty"`
	Strategy table.FillStrategy `json:"strategy,omitempty"`
	Column   string             `json:"column,omitempty"`
	Kind     table.Kind         `json:"kind,omitempty"`
	Version  int64              `json:"version,omitempty"`
}

// Prepare applies req and installs the result as a new snapshot version.
func (s *AnalysisService) Prepare(req PrepareRequest) (*session.SnapshotInfo, error) {
	snap, err := s.workspace.Resolve(req.Version)
	if err != nil {
		return nil, err
	}
	log := s.logger(snap, "prepare").WithField("op", req.Op)

	var next *table.Table
	switch req.Op {
	case OpDropMissing:
		next, err = snap.Table.DropMissingRows(req.Columns...)
	case OpFillMissing:
		if req.Strategy != table.FillMean && req.Strategy != table.FillMedian {
			return nil, errors.InvalidInput(fmt.Sprintf("unknown fill strategy %q", req.Strategy))
		}
		next, err = snap.Table.FillMissing(req.Strategy)
	case OpConvert:
		next, err = snap.Table.Convert(req.Column, req.Kind)
	default:
		err = errors.InvalidInput(fmt.Sprintf("unknown preparation %q", req.Op))
	}
	if err != nil {
		return nil, fail(log, err)
	}

	installed, err := s.workspace.ReplaceIf(snap.Version, snap.Name, next)
	if err != nil {
		return nil, fail(log, err)
	}
	log.WithFields(logrus.Fields{
		"rows_before": snap.Table.RowCount(),
		"rows_after":  next.RowCount(),
		"version":     installed.Version,
	}).Info("dataset prepared")
	info := installed.Info()
	return &info, nil
}
