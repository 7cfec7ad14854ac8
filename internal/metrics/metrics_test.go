package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/CaiJingLong/Tally/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSync(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.ObserveSync(time.Now(), nil, 12, 3, 2048)
	m.ObserveSync(time.Now(), errors.New("boom"), 0, 0, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncTotal.WithLabelValues(metrics.ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncTotal.WithLabelValues(metrics.ResultFailure)))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.Resources), "failed sync must keep the last snapshot gauges")
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Expiring))
	assert.Equal(t, 2048.0, testutil.ToFloat64(m.FeedBytes))
}

func TestCounters(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.IncSearch("glob")
	m.IncSearch("glob")
	m.IncDateParse(true)
	m.IncDateParse(false)
	m.IncDateParse(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchQueries.WithLabelValues("glob")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DateParses.WithLabelValues(metrics.ResultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DateParses.WithLabelValues(metrics.ResultFailure)))
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveSync(time.Now(), nil, 1, 1, 1)
		m.IncSearch("normal")
		m.IncDateParse(true)
	})
}
