// Package metrics exposes the prometheus collectors of the core. All
// collectors register on the default registry; the replication
// listener serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Commits counts committed transactions that published an undo
	// batch.
	Commits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "homebook",
		Name:      "commits_total",
		Help:      "Committed transactions that published an undo batch.",
	})

	// Undos counts completed undo operations.
	Undos = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "homebook",
		Name:      "undo_total",
		Help:      "Completed undo operations.",
	})

	// Redos counts completed redo operations.
	Redos = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "homebook",
		Name:      "redo_total",
		Help:      "Completed redo operations.",
	})

	// Logins counts accepted logins.
	Logins = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "homebook",
		Name:      "logins_total",
		Help:      "Accepted logins.",
	})

	// Merges counts replicated rows by merge decision.
	Merges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "homebook",
		Name:      "replication_rows_total",
		Help:      "Replicated rows by merge decision.",
	}, []string{"decision"})
)
