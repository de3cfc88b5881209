package ranking

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricRankingPasses    = "ranking_passes_total"
	MetricCoachesScored    = "ranking_coaches_scored_total"
	MetricExpansionSignals = "ranking_expansion_signals_total"
	MetricMalformedRecords = "ranking_malformed_records_total"
	MetricTotalScore       = "ranking_total_score"
)

// Metrics contains Prometheus metrics for ranking operations. The scoring
// functions themselves stay pure; the calling search service drives these
// observations. All operations are thread-safe.
type Metrics struct {
	rankingPasses    prometheus.Counter
	coachesScored    prometheus.Counter
	expansionSignals *prometheus.CounterVec
	malformedRecords prometheus.Counter
	totalScore       prometheus.Histogram
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		rankingPasses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricRankingPasses,
				Help: "Total number of ranking passes executed",
			},
		),
		coachesScored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricCoachesScored,
				Help: "Total number of coach records scored",
			},
		),
		expansionSignals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricExpansionSignals,
				Help: "Total number of search-expansion signals by the scope that was relaxed",
			},
			[]string{"from_scope"},
		),
		malformedRecords: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricMalformedRecords,
				Help: "Total number of coach records scored after defensive clamping",
			},
		),
		totalScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricTotalScore,
				Help:    "Distribution of total ranking scores",
				Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all Prometheus collectors, mainly for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.rankingPasses,
		m.coachesScored,
		m.expansionSignals,
		m.malformedRecords,
		m.totalScore,
	}
}

// ObserveRankingPass records one completed ranking pass over n candidates.
func (m *Metrics) ObserveRankingPass(n int) {
	m.rankingPasses.Inc()
	m.coachesScored.Add(float64(n))
}

// ObserveTotalScore records a computed total score.
func (m *Metrics) ObserveTotalScore(total float64) {
	m.totalScore.Observe(total)
}

// IncExpansionSignal records that the expansion policy asked for the given
// scope to be relaxed (e.g. "city" when a city-level search came up short).
func (m *Metrics) IncExpansionSignal(fromScope string) {
	m.expansionSignals.WithLabelValues(fromScope).Inc()
}

// IncMalformedRecord records a coach record that required defensive
// clamping before scoring.
func (m *Metrics) IncMalformedRecord() {
	m.malformedRecords.Inc()
}
