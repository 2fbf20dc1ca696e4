// Package metrics exposes Prometheus counters for searches, batches and asset downloads.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "adscout"

// Metrics holds the application collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	searchRequests    *prometheus.CounterVec
	batches           *prometheus.CounterVec
	assetDownloads    *prometheus.CounterVec
	assetBytes        prometheus.Histogram
	downloadsInFlight prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		searchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Ad Library searches by outcome.",
		}, []string{"status"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Download batches by outcome.",
		}, []string{"status"}),
		assetDownloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_downloads_total",
			Help:      "Creative asset downloads by kind and outcome.",
		}, []string{"kind", "status"}),
		assetBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "asset_bytes",
			Help:      "Size of downloaded creative assets.",
			// 10KB .. 1GB
			Buckets: prometheus.ExponentialBuckets(10<<10, 10, 6),
		}),
		downloadsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "downloads_in_progress",
			Help:      "Asset downloads currently running.",
		}),
	}
	reg.MustRegister(m.searchRequests, m.batches, m.assetDownloads, m.assetBytes, m.downloadsInFlight)
	return m
}

// SearchRequest counts one search with status ok, invalid, no_token or upstream_error.
func (m *Metrics) SearchRequest(status string) {
	if m == nil {
		return
	}
	m.searchRequests.WithLabelValues(status).Inc()
}

// BatchFinished counts one settled batch.
func (m *Metrics) BatchFinished(status string) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(status).Inc()
}

// DownloadStarted marks one asset download as in flight.
func (m *Metrics) DownloadStarted() {
	if m == nil {
		return
	}
	m.downloadsInFlight.Inc()
}

// DownloadFinished records the outcome of an asset download started with DownloadStarted.
func (m *Metrics) DownloadFinished(kind, status string, bytes int64) {
	if m == nil {
		return
	}
	m.downloadsInFlight.Dec()
	m.assetDownloads.WithLabelValues(kind, status).Inc()
	if bytes > 0 {
		m.assetBytes.Observe(float64(bytes))
	}
}
