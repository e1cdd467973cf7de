package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects per-run counters. A batch run has no scrape endpoint, so
// the registry is written to a node_exporter textfile at the end of the run.
type Metrics struct {
	registry      *prometheus.Registry
	entriesTotal  *prometheus.CounterVec
	entryDuration *prometheus.HistogramVec
	globalMeanV   prometheus.Gauge
	globalMeanRGB *prometheus.GaugeVec
	lastRunOK     prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		entriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corpus_prep_entries_total",
			Help: "Entries processed by pass and outcome.",
		}, []string{"pass", "outcome"}),
		entryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "corpus_prep_entry_duration_seconds",
			Help:    "Time spent on a single entry, by pass.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"pass"}),
		globalMeanV: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "corpus_prep_global_mean_value",
			Help: "Corpus mean of per-image mean HSV value (0-255).",
		}),
		globalMeanRGB: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "corpus_prep_global_mean_rgb",
			Help: "Corpus mean of per-image mean RGB channels (0-255).",
		}, []string{"channel"}),
		lastRunOK: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "corpus_prep_last_run_success",
			Help: "1 if the last run completed without aborting, 0 otherwise.",
		}),
	}

	m.registry.MustRegister(
		m.entriesTotal,
		m.entryDuration,
		m.globalMeanV,
		m.globalMeanRGB,
		m.lastRunOK,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every metric in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
