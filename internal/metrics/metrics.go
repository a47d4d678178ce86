package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the processing stages.
// Tracks row flow through the split stage, generated files and stage durations.
type Metrics struct {
	RowsIngested     prometheus.Counter
	RowsDropped      *prometheus.CounterVec
	ArtifactsCreated *prometheus.CounterVec
	TextFilesDeleted prometheus.Counter
	StageDuration    *prometheus.HistogramVec
	StageFailures    *prometheus.CounterVec
}

// New creates a Metrics instance registered on reg.
// A nil reg registers on the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RowsIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "payroll_rows_ingested_total",
			Help: "Total number of payroll rows read by the split stage",
		}),
		RowsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_rows_dropped_total",
			Help: "Total number of payroll rows left out of the bank files, by reason",
		}, []string{"reason"}),
		ArtifactsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_artifacts_created_total",
			Help: "Total number of generated files, by stage",
		}, []string{"stage"}),
		TextFilesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "payroll_text_files_deleted_total",
			Help: "Total number of .txt files removed from the session",
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payroll_stage_duration_seconds",
			Help:    "Duration of processing stages",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payroll_stage_failures_total",
			Help: "Total number of stage runs that returned an error, by stage",
		}, []string{"stage"}),
	}
}

// AddRowsIngested records rows read from an input file.
func (m *Metrics) AddRowsIngested(n int) {
	m.RowsIngested.Add(float64(n))
}

// AddRowsDropped records rows dropped for a reason. Zero counts are ignored.
func (m *Metrics) AddRowsDropped(reason string, n int) {
	if n <= 0 {
		return
	}
	m.RowsDropped.WithLabelValues(reason).Add(float64(n))
}

// AddArtifacts records files generated by a stage.
func (m *Metrics) AddArtifacts(stage string, n int) {
	m.ArtifactsCreated.WithLabelValues(stage).Add(float64(n))
}

// AddTextDeleted records removed text files.
func (m *Metrics) AddTextDeleted(n int) {
	m.TextFilesDeleted.Add(float64(n))
}

// IncrementStageFailure records a failed stage run.
func (m *Metrics) IncrementStageFailure(stage string) {
	m.StageFailures.WithLabelValues(stage).Inc()
}

// ObserveStage records the duration of a stage.
// Call with time.Now() at the start of the stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
