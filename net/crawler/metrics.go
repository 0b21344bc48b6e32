package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRounds = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "peercrawler",
		Subsystem: "crawler",
		Name:      "rounds_total",
		Help:      "Total number of crawl rounds started.",
	})
	metricSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "peercrawler",
		Subsystem: "crawler",
		Name:      "sessions_total",
		Help:      "Total number of peer sessions, per outcome.",
	}, []string{"result"})
	metricDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "peercrawler",
		Subsystem: "crawler",
		Name:      "discovered_addresses_total",
		Help:      "Total number of distinct peer addresses discovered.",
	})
	metricFrontier = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "peercrawler",
		Subsystem: "crawler",
		Name:      "frontier_size",
		Help:      "Number of discovered addresses not yet contacted.",
	})
	metricVisited = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "peercrawler",
		Subsystem: "crawler",
		Name:      "visited_size",
		Help:      "Number of distinct addresses discovered in the current crawl.",
	})
)

const (
	sessionResultOK     = "ok"
	sessionResultFailed = "failed"
)

func init() {
	// Register the outcome labels so they are present even when zero.
	metricSessions.WithLabelValues(sessionResultOK)
	metricSessions.WithLabelValues(sessionResultFailed)
}
