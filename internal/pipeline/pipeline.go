// =============================================================================
// Payroll Bank Splitter - Processing Pipeline
// =============================================================================
//
// This module runs the processing stages against one artifact store.
//
// STAGES:
//   1. Split    Normalise -> Route -> Partition -> Render -> Store
//   2. Summary  Store (split metadata) -> Aggregate -> Render -> Store
//   3. Convert  Store (split files) -> Re-encode -> Store (.txt and .csv)
//   4. Delete   Store: drop every .txt file
//
// Every stage runs to completion before returning. A stage that fails leaves
// the store exactly as it was, so earlier artifacts survive a failed
// re-run.
//
// CONCURRENCY:
//   A Pipeline is not safe for concurrent use. The HTTP server holds a mutex
//   around every stage call.
//
// =============================================================================

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/config"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/logging"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/metrics"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/normalizer"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/resolver"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/store"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/textenc"
	"github.com/ginjaninja78/payroll-bank-splitter/internal/types"
)

// =============================================================================
// REPORT STRUCTURE
// =============================================================================

// Report describes the outcome of one stage run.
type Report struct {
	// Stage is the stage that produced the report.
	Stage string `json:"stage"`

	// Files lists the artifacts created by the stage, in creation order.
	Files []string `json:"files"`

	// RowsIn is the number of input rows read (split only).
	RowsIn int `json:"rows_in,omitempty"`

	// InvalidRows is the number of rows dropped for a missing or bad value.
	InvalidRows int `json:"invalid_rows,omitempty"`

	// ZeroSalaryRows is the number of rows dropped for a zero salary.
	ZeroSalaryRows int `json:"zero_salary_rows,omitempty"`

	// UnroutableRows is the number of rows whose bank code is not known.
	UnroutableRows int `json:"unroutable_rows,omitempty"`

	// TruncatedNames is the number of beneficiary names that were shortened.
	TruncatedNames int `json:"truncated_names,omitempty"`

	// TruncatedAmounts is the number of amounts that lost a fraction in the
	// text encoding (convert only).
	TruncatedAmounts int `json:"truncated_amounts,omitempty"`

	// Deleted is the number of text files removed (delete only).
	Deleted int `json:"deleted,omitempty"`

	// Warnings are the non-fatal conditions met during the run.
	Warnings []string `json:"warnings,omitempty"`

	// Duration is the wall time of the stage.
	Duration time.Duration `json:"duration_ns"`
}

// warn appends a warning to the report and logs it.
func (r *Report) warn(log *slog.Logger, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	log.Warn(msg)
}

// =============================================================================
// PIPELINE STRUCTURE
// =============================================================================

// Pipeline runs stages against a store.
type Pipeline struct {
	cfg        *config.Config
	store      *store.Store
	registry   *resolver.Registry
	normalizer *normalizer.Normalizer
	encoder    *textenc.Encoder
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithClock replaces time.Now for file names, value dates and remittance text.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithMetrics records stage metrics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithRegistry replaces the bank registry built from configuration.
func WithRegistry(r *resolver.Registry) Option {
	return func(p *Pipeline) { p.registry = r }
}

// New creates a Pipeline.
//
// PARAMETERS:
//   - cfg: The loaded configuration.
//   - st: The store the stages read from and write to.
//   - opts: Optional overrides.
func New(cfg *config.Config, st *store.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:        cfg,
		store:      st,
		registry:   resolver.FromConfig(cfg),
		normalizer: normalizer.New(cfg.Input),
		encoder:    textenc.New(cfg.Output.SheetName),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.metrics == nil {
		p.metrics = metrics.New(prometheus.NewRegistry())
	}

	return p
}

// Store returns the store the pipeline works on.
func (p *Pipeline) Store() *store.Store {
	return p.store
}

// Registry returns the bank registry.
func (p *Pipeline) Registry() *resolver.Registry {
	return p.registry
}

// stageLogger returns a logger tagged with the session and stage.
func (p *Pipeline) stageLogger(ctx context.Context, stage types.Stage) *slog.Logger {
	return logging.WithFields(ctx,
		"session_id", p.store.SessionID(),
		"stage", stage.String(),
	)
}

// finish records the duration and failure metrics of a stage.
func (p *Pipeline) finish(stage types.Stage, report *Report, start time.Time, err error) {
	report.Duration = time.Since(start)
	p.metrics.ObserveStage(stage.String(), start)
	if err != nil {
		p.metrics.IncrementStageFailure(stage.String())
	}
}

// =============================================================================
// STAGE 4: TEXT DELETION
// =============================================================================

// DeleteText removes every .txt artifact from the store. A call that finds
// nothing to delete reports 0 and a warning.
func (p *Pipeline) DeleteText(ctx context.Context) *Report {
	start := time.Now()
	log := p.stageLogger(ctx, types.StageConvert).With("operation", "delete_text")
	report := &Report{Stage: "delete_text"}

	report.Deleted = p.store.DeleteText()
	p.metrics.AddTextDeleted(report.Deleted)

	if report.Deleted == 0 {
		report.warn(log, "no text files to delete")
	} else {
		log.Info("text files deleted", "count", report.Deleted)
	}

	report.Duration = time.Since(start)
	return report
}
