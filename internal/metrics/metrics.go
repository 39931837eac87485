// Package metrics exposes Prometheus counters/histograms/gauges for the
// pipeline driver, registered at package init and served over promhttp —
// the same global-metrics-plus-dedicated-endpoint pattern as the pack's
// churn telemetry module, scaled down to the handful of series a bar
// driver actually needs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	barsProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backline_bars_processed_total",
		Help: "Total bars evaluated by the pipeline driver, across Tick and RunBatch calls",
	})
	nodesRegistered = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "backline_nodes_registered",
		Help: "Number of indicator nodes currently registered in the pipeline graph",
	})
	indicatorEvalSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "backline_indicator_eval_seconds",
		Help:    "Wall time spent evaluating one bar across the whole graph",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	})
	snapshotsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backline_snapshots_dropped_total",
		Help: "Snapshots dropped by barbus because a subscriber's channel was full",
	})
)

func init() {
	prometheus.MustRegister(barsProcessedTotal, nodesRegistered, indicatorEvalSeconds, snapshotsDroppedTotal)
}

// ObserveBar records one bar's evaluation wall time.
func ObserveBar(d time.Duration) {
	barsProcessedTotal.Inc()
	indicatorEvalSeconds.Observe(d.Seconds())
}

// SetNodesRegistered reports the current graph size.
func SetNodesRegistered(n int) {
	nodesRegistered.Set(float64(n))
}

// IncSnapshotsDropped records one dropped snapshot delivery.
func IncSnapshotsDropped() {
	snapshotsDroppedTotal.Inc()
}

// Serve starts a dedicated /metrics endpoint on addr in the background.
// Mirrors the churn module's startMetricsEndpoint: a minimal ServeMux with
// only promhttp registered, left running for the life of the process.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv
}
