package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	remotePagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamerhub_catalog_remote_pages_total",
			Help: "Catalog pages fetched from the API, by restriction mode",
		},
		[]string{"mode"},
	)

	kidsSupersetSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gamerhub_catalog_kids_superset_records",
			Help:    "Raw records accumulated per kids catalog materialization",
			Buckets: []float64{0, 25, 50, 100, 150, 200},
		},
	)

	staleResponsesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gamerhub_catalog_stale_responses_total",
			Help: "Catalog responses discarded because the filters changed in flight",
		},
	)
)
