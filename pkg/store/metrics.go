package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOperations tracks local store operations by backend, collection and operation
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_store_operations_total",
			Help: "Total number of local store operations",
		},
		[]string{"backend", "collection", "operation"}, // "sqlite"/"redis"; "all", "get", "replace", "upsert", "clear"
	)

	// StoreErrors tracks local store operation errors
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_store_errors_total",
			Help: "Total number of local store operation errors",
		},
		[]string{"backend", "collection", "operation"},
	)

	// StoreEntities tracks the entity count written by the last Replace
	StoreEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "booking_store_entities",
			Help: "Number of entities written by the last replace per collection",
		},
		[]string{"backend", "collection"},
	)
)

func observe(backend, collection, operation string, err error) {
	StoreOperations.WithLabelValues(backend, collection, operation).Inc()
	if err != nil {
		StoreErrors.WithLabelValues(backend, collection, operation).Inc()
	}
}
