package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// guardDecisions counts delete-guard and duplicate-guard outcomes by kind.
	guardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_guard_decisions_total",
		Help: "Delete and duplicate guard decisions by kind and outcome",
	}, []string{"kind", "outcome"})

	validationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_validation_failures_total",
		Help: "Rejected submissions by kind",
	}, []string{"kind"})
)
