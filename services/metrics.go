package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	graphBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholar_graph_builds_total",
			Help: "Total number of graph builds by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)
	graphBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scholar_graph_build_duration_seconds",
			Help:    "Duration of graph builds in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	graphNodes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scholar_graph_nodes",
			Help: "Number of nodes in the most recent graph build.",
		},
		[]string{"op"},
	)
	scholarsImportedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholars_imported_total",
			Help: "Total number of imported scholar records by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(graphBuildsTotal, graphBuildDuration, graphNodes, scholarsImportedTotal)
}

const (
	outcomeOK    = "ok"
	outcomeEmpty = "empty"
	outcomeError = "error"
)
