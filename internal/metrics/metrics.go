package metrics

import (
	"time"

	"github.com/CaiJingLong/Tally/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync outcomes used as the "result" label.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

type Metrics struct {
	SyncTotal     *prometheus.CounterVec
	SyncDuration  prometheus.Histogram
	Resources     prometheus.Gauge
	Expiring      prometheus.Gauge
	FeedBytes     prometheus.Gauge
	SearchQueries *prometheus.CounterVec
	DateParses    *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SyncTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      "sync_total",
			Help:      "Feed synchronizations by result",
		}, []string{"result"}),
		SyncDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.MetricsNamespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of feed synchronizations",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Resources: f.NewGauge(prometheus.GaugeOpts{
			Namespace: config.MetricsNamespace,
			Name:      "resources",
			Help:      "Resources in the latest snapshot",
		}),
		Expiring: f.NewGauge(prometheus.GaugeOpts{
			Namespace: config.MetricsNamespace,
			Name:      "resources_expiring",
			Help:      "Resources expired or inside the warning window",
		}),
		FeedBytes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: config.MetricsNamespace,
			Name:      "feed_size_bytes",
			Help:      "Size of the served iCalendar feed",
		}),
		SearchQueries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      "search_queries_total",
			Help:      "Search API queries by mode",
		}, []string{"mode"}),
		DateParses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      "date_parses_total",
			Help:      "Date parse API calls by result",
		}, []string{"result"}),
	}
}

// ObserveSync records one synchronization. A nil receiver is a no-op.
func (m *Metrics) ObserveSync(start time.Time, err error, resources, expiring, feedBytes int) {
	if m == nil {
		return
	}
	m.SyncDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.SyncTotal.WithLabelValues(ResultFailure).Inc()
		return
	}
	m.SyncTotal.WithLabelValues(ResultSuccess).Inc()
	m.Resources.Set(float64(resources))
	m.Expiring.Set(float64(expiring))
	m.FeedBytes.Set(float64(feedBytes))
}

// IncSearch counts one resource search in the given mode. A nil receiver is a no-op.
func (m *Metrics) IncSearch(mode string) {
	if m == nil {
		return
	}
	m.SearchQueries.WithLabelValues(mode).Inc()
}

// IncDateParse counts one date parse by outcome. A nil receiver is a no-op.
func (m *Metrics) IncDateParse(ok bool) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if !ok {
		result = ResultFailure
	}
	m.DateParses.WithLabelValues(result).Inc()
}
