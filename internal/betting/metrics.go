package betting

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BetsPlacedTotal tracks successfully placed tickets.
	BetsPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportsbook_bets_placed_total",
		Help: "Total number of tickets successfully placed",
	})

	// BetsRejectedTotal tracks failed placement attempts by reason.
	BetsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsbook_bets_rejected_total",
			Help: "Total number of rejected bet placement attempts",
		},
		[]string{"reason"},
	)

	// PlacementDurationSeconds tracks end-to-end placement latency.
	PlacementDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sportsbook_bet_placement_duration_seconds",
		Help:    "Duration of one bet placement attempt",
		Buckets: prometheus.DefBuckets,
	})

	// PayInAmount tracks stake sizes.
	PayInAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sportsbook_bet_pay_in_amount",
		Help:    "Pay-in amount of placed tickets",
		Buckets: prometheus.ExponentialBuckets(0.25, 4, 10), // 0.25, 1, 4, ..., ~65k
	})
)
