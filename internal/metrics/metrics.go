package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"awesomearcade/internal/counter"
)

var (
	repoClicksDesc = prometheus.NewDesc(
		"awesomearcade_repo_clicks_total",
		"Total import clicks per repo as persisted by the counter store",
		[]string{"repo"},
		nil,
	)

	refreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "awesomearcade_click_count_refresh_total",
		Help: "Click count refreshes by kind and outcome",
	}, []string{"kind", "outcome"})

	searchTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "awesomearcade_search_events_total",
		Help: "Debounced search analytics events",
	})

	clickEventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "awesomearcade_click_events_total",
		Help: "Import control activations reported by clients",
	})
)

// Refresh kinds and outcomes.
const (
	KindBulk   = "bulk"
	KindSingle = "single"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ClickCountCollector is a custom Prometheus collector that reads click
// counts from the counter store on each scrape.
type ClickCountCollector struct {
	store counter.Store
}

// NewClickCountCollector creates a collector over store.
func NewClickCountCollector(store counter.Store) *ClickCountCollector {
	return &ClickCountCollector{store: store}
}

// Describe sends the metric descriptor to the channel.
func (c *ClickCountCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- repoClicksDesc
}

// Collect queries the store for all counters and emits them.
func (c *ClickCountCollector) Collect(ch chan<- prometheus.Metric) {
	counts, err := c.store.All(context.Background())
	if err != nil {
		slog.Error("failed to collect click count metrics", "error", err)
		return
	}
	for _, repo := range counter.SortedRepos(counts) {
		ch <- prometheus.MustNewConstMetric(
			repoClicksDesc,
			prometheus.CounterValue,
			float64(counts[repo]),
			repo,
		)
	}
}

var initOnce sync.Once

// Init registers the collectors with the default registry.
// Must be called once at startup.
func Init(store counter.Store) {
	initOnce.Do(func() {
		prometheus.MustRegister(refreshTotal, searchTotal, clickEventsTotal)
		if store != nil {
			prometheus.MustRegister(NewClickCountCollector(store))
		}
	})
}

// RecordRefresh counts one click count refresh.
func RecordRefresh(kind, outcome string) {
	refreshTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordSearch counts one debounced search event.
func RecordSearch() {
	searchTotal.Inc()
}

// RecordClick counts one import control activation.
func RecordClick() {
	clickEventsTotal.Inc()
}
