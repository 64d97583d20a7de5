package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RentsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "library_rents_opened_total",
		Help: "Rents successfully opened.",
	})
	RentsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "library_rents_closed_total",
		Help: "Rents successfully closed.",
	})
	RentConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "library_rent_conflicts_total",
		Help: "Open/close attempts lost to a concurrent writer.",
	})
	PenaltiesAssessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "library_penalties_assessed_total",
		Help: "Returns that came back after the grace period.",
	})
	PenaltyAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "library_penalty_amount_total",
		Help: "Sum of penalty amounts assessed on return.",
	})
)
