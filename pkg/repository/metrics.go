package repository

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch sources.
const (
	sourceRemote    = "remote"
	sourceLocal     = "local"
	sourceDefault   = "default"
	sourceCancelled = "cancelled"
)

// Fallback reasons.
const (
	reasonEmptyRemote = "empty_remote"
	reasonError       = "error"
)

var (
	repositoryFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_repository_fetches_total",
		Help: "Total repository reads by repository and the source that answered",
	}, []string{"repository", "source"})

	repositoryFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_repository_fallbacks_total",
		Help: "Total repository reads not served from a fresh remote response, by reason",
	}, []string{"repository", "reason"})

	reservationSavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_reservation_saves_total",
		Help: "Total reservation saves by outcome",
	}, []string{"outcome"}) // "synced", "local_only", "failed", "cancelled"
)
