// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GamesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trivia_games_created_total",
			Help: "Total number of games created",
		},
	)

	GamesDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_games_deleted_total",
			Help: "Total number of games deleted, by trigger",
		},
		[]string{"trigger"},
	)

	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_player_registrations_total",
			Help: "Player registrations, split into new and returning players",
		},
		[]string{"kind"},
	)

	Answers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_answers_total",
			Help: "Submitted answers by outcome",
		},
		[]string{"outcome"},
	)

	Completions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trivia_player_completions_total",
			Help: "Total number of completePlayer calls that succeeded",
		},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trivia_retention_sweep_duration_seconds",
			Help:    "Time spent in one retention sweep",
			Buckets: prometheus.DefBuckets,
		},
	)

	LiveViewers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trivia_live_viewers_current",
			Help: "Open leaderboard websocket connections",
		},
	)
)
