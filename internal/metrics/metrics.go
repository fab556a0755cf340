package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"meetupsplit/domain"
)

// Metrics records run statistics on a private registry. Nothing is served;
// the registry is dumped to a node-exporter textfile when a run ends.
type Metrics struct {
	registry *prometheus.Registry

	records    *prometheus.CounterVec
	feedErrors *prometheus.CounterVec
	pubDates   *prometheus.CounterVec
	fetchDur   prometheus.Histogram
	lastRunTS  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.records = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetupsplit",
		Name:      "records_total",
		Help:      "Meetup records classified, by outcome",
	}, []string{"outcome"})
	m.feedErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetupsplit",
		Name:      "feed_errors_total",
		Help:      "Per-record failures, by kind",
	}, []string{"kind"})
	m.pubDates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meetupsplit",
		Name:      "pubdates_total",
		Help:      "pubDate elements seen and successfully parsed",
	}, []string{"state"})
	m.fetchDur = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "meetupsplit",
		Name:      "fetch_duration_seconds",
		Help:      "Time spent fetching one feed",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})
	m.lastRunTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "meetupsplit",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished",
	})
	m.registry.MustRegister(m.records, m.feedErrors, m.pubDates, m.fetchDur, m.lastRunTS)
	return m
}

func (m *Metrics) ObserveFetch(d time.Duration) {
	m.fetchDur.Observe(d.Seconds())
}

func (m *Metrics) ObserveOutcome(o domain.Outcome, match domain.Match, err *domain.FeedError) {
	m.records.WithLabelValues(o.String()).Inc()
	if err != nil {
		m.feedErrors.WithLabelValues(err.Kind.String()).Inc()
	}
	m.pubDates.WithLabelValues("seen").Add(float64(match.Seen))
	m.pubDates.WithLabelValues("parsed").Add(float64(match.Parsed))
}

// WriteTextfile stamps the run end time and writes all metrics to path.
func (m *Metrics) WriteTextfile(path string) error {
	m.lastRunTS.SetToCurrentTime()
	return prometheus.WriteToTextfile(path, m.registry)
}
