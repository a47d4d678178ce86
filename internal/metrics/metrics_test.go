package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.AddRowsIngested(10)
	m.AddRowsDropped("zero_salary", 2)
	m.AddRowsDropped("unroutable", 0)
	m.AddArtifacts("split", 3)
	m.AddArtifacts("convert", 6)
	m.AddTextDeleted(3)
	m.IncrementStageFailure("summary")
	m.ObserveStage("split", time.Now())

	assert.Equal(t, 10.0, testutil.ToFloat64(m.RowsIngested))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsDropped.WithLabelValues("zero_salary")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RowsDropped))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.ArtifactsCreated.WithLabelValues("convert")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TextFilesDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageFailures.WithLabelValues("summary")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
