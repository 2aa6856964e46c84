package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Agent-side counters. Registered on the default registry; the serve
// command exposes its own registry for HTTP metrics separately.
var (
	remindersFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskito_reminders_fired_total",
		Help: "Reminder events emitted by the scanner",
	})

	syncPushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskito_sync_pushes_total",
		Help: "Remote push attempts by entity",
	}, []string{"entity"})

	syncFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskito_sync_failures_total",
		Help: "Remote operations that failed and were swallowed",
	}, []string{"op"})

	syncSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskito_sync_skipped_total",
		Help: "Remote operations skipped while offline or signed out",
	}, []string{"op"})
)
