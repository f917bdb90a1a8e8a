// Package metrics exposes Prometheus instrumentation for manual search.
package metrics

import (
	"io"
	"net/http"
	"time"

	"github.com/poiesic/hydrive/core"
	"github.com/poiesic/hydrive/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// SearchMetrics is a search.SearchMonitor that records query counts, result
// sizes, latency and scoring failures on a private registry.
type SearchMetrics struct {
	registry *prometheus.Registry

	queriesTotal   prometheus.Counter
	modeTotal      *prometheus.CounterVec
	fallbackTotal  prometheus.Counter
	emptyTotal     prometheus.Counter
	sectionFailed  prometheus.Counter
	queryTokens    prometheus.Histogram
	resultCount    prometheus.Histogram
	searchDuration prometheus.Histogram
}

var _ search.SearchMonitor = (*SearchMetrics)(nil)

func NewSearchMetrics(service string) *SearchMetrics {
	registry := prometheus.NewRegistry()
	labels := prometheus.Labels{"service": service}

	queriesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "hydrive",
		Subsystem:   "search",
		Name:        "queries_total",
		Help:        "Total search queries received.",
		ConstLabels: labels,
	})
	modeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "hydrive",
			Subsystem:   "search",
			Name:        "mode_total",
			Help:        "Searches by requested and effective content scoring mode.",
			ConstLabels: labels,
		},
		[]string{"requested", "used"},
	)
	fallbackTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "hydrive",
		Subsystem:   "search",
		Name:        "semantic_fallback_total",
		Help:        "Auto mode searches that fell back to lexical scoring.",
		ConstLabels: labels,
	})
	emptyTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "hydrive",
		Subsystem:   "search",
		Name:        "empty_results_total",
		Help:        "Searches that returned no sections.",
		ConstLabels: labels,
	})
	sectionFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "hydrive",
		Subsystem:   "search",
		Name:        "section_failures_total",
		Help:        "Sections whose scoring panicked and was degraded to zero.",
		ConstLabels: labels,
	})
	queryTokens := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   "hydrive",
		Subsystem:   "search",
		Name:        "query_tokens",
		Help:        "Distribution of distinct query tokens per search.",
		Buckets:     []float64{0, 1, 2, 3, 5, 8, 13},
		ConstLabels: labels,
	})
	resultCount := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   "hydrive",
		Subsystem:   "search",
		Name:        "results",
		Help:        "Distribution of returned sections per search.",
		Buckets:     []float64{0, 1, 2, 3, 5, 8, 13, 21},
		ConstLabels: labels,
	})
	searchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   "hydrive",
		Subsystem:   "search",
		Name:        "duration_seconds",
		Help:        "Search duration in seconds.",
		Buckets:     []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		ConstLabels: labels,
	})

	registry.MustRegister(
		queriesTotal,
		modeTotal,
		fallbackTotal,
		emptyTotal,
		sectionFailed,
		queryTokens,
		resultCount,
		searchDuration,
	)

	return &SearchMetrics{
		registry:       registry,
		queriesTotal:   queriesTotal,
		modeTotal:      modeTotal,
		fallbackTotal:  fallbackTotal,
		emptyTotal:     emptyTotal,
		sectionFailed:  sectionFailed,
		queryTokens:    queryTokens,
		resultCount:    resultCount,
		searchDuration: searchDuration,
	}
}

// Registry returns the registry the collectors are registered on.
func (m *SearchMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collected metrics in the Prometheus exposition format.
func (m *SearchMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteText writes every metric family in the text exposition format.
func (m *SearchMetrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func (m *SearchMetrics) Start(_ string, _ core.Mode) {
	m.queriesTotal.Inc()
}

func (m *SearchMetrics) AfterTokenize(tokens []string) {
	m.queryTokens.Observe(float64(len(tokens)))
}

func (m *SearchMetrics) ModeResolved(requested, used core.Mode, reason error) {
	m.modeTotal.WithLabelValues(string(requested), string(used)).Inc()
	if requested == core.ModeAuto && used != core.ModeSemantic && reason != nil {
		m.fallbackTotal.Inc()
	}
}

func (m *SearchMetrics) SectionFailed(_ *core.Section, _ any) {
	m.sectionFailed.Inc()
}

func (m *SearchMetrics) Finish(results []*core.SearchResult, elapsed time.Duration) {
	m.resultCount.Observe(float64(len(results)))
	m.searchDuration.Observe(elapsed.Seconds())
	if len(results) == 0 {
		m.emptyTotal.Inc()
	}
}
