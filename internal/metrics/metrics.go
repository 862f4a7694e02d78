package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesTotal counts ledger operations.
	// Labels: op ("cast", "remove"), entity, result ("ok", "noop", or an apperr kind)
	VotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_votes_total",
		Help: "Vote ledger mutations by operation, entity kind and result",
	}, []string{"op", "entity", "result"})

	// StatsRecalculations counts per-user stats recomputations.
	// Labels: mode ("one", "all"), result ("ok", "error")
	StatsRecalculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_stats_recalculations_total",
		Help: "User stats recalculations by mode and result",
	}, []string{"mode", "result"})

	RecalculateAllDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arena_stats_recalculate_all_duration_seconds",
		Help:    "Wall time of a full stats recalculation",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
	})
)
