package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaginatorRequests tracks page requests by paginator and outcome
	PaginatorRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_paginator_requests_total",
			Help: "Total number of paginator page requests",
		},
		[]string{"paginator", "outcome"}, // "success", "error", "cancelled"
	)

	// PaginatorDeduplicated tracks LoadNextItems calls dropped while a request was in flight
	PaginatorDeduplicated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_paginator_deduplicated_total",
			Help: "Total number of load calls ignored because a request was in flight",
		},
		[]string{"paginator"},
	)

	// BatchPagesFetched tracks pages fetched by the batch fetcher
	BatchPagesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_batch_pages_fetched_total",
			Help: "Total number of pages fetched by the batch fetcher",
		},
	)
)
