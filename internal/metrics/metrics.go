// Package metrics holds the Prometheus collectors of the quad store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Transaction kinds and outcomes used as label values
const (
	KindRead  = "read"
	KindWrite = "write"

	OutcomeCommitted = "committed"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
	OutcomeForced    = "forced"
)

// Metrics contains all store metrics
type Metrics struct {
	TransactionsOpened    *prometheus.CounterVec
	TransactionsFinalized *prometheus.CounterVec
	OpenTransactions      *prometheus.GaugeVec
	CommitDuration        prometheus.Histogram
	StatementsAdded       prometheus.Counter
	StatementsRemoved     prometheus.Counter
	EntitiesMinted        prometheus.Counter
}

// New creates a new Metrics instance. Nothing is registered until Register is called.
func New() *Metrics {
	return &Metrics{
		TransactionsOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ligature",
				Subsystem: "tx",
				Name:      "opened_total",
				Help:      "Total number of transactions opened",
			},
			[]string{"kind"},
		),

		TransactionsFinalized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ligature",
				Subsystem: "tx",
				Name:      "finalized_total",
				Help:      "Total number of transactions finalized, by outcome",
			},
			[]string{"kind", "outcome"},
		),

		OpenTransactions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "ligature",
				Subsystem: "tx",
				Name:      "open",
				Help:      "Number of currently open transactions",
			},
			[]string{"kind"},
		),

		CommitDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "ligature",
				Subsystem: "tx",
				Name:      "commit_duration_seconds",
				Help:      "Write transaction commit duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		StatementsAdded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "ligature",
				Subsystem: "statements",
				Name:      "added_total",
				Help:      "Statements added by committed transactions",
			},
		),

		StatementsRemoved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "ligature",
				Subsystem: "statements",
				Name:      "removed_total",
				Help:      "Statements removed by committed transactions",
			},
		),

		EntitiesMinted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "ligature",
				Subsystem: "entities",
				Name:      "minted_total",
				Help:      "Entity identifiers issued by NewEntity",
			},
		),
	}
}

// Register registers every collector with reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.TransactionsOpened,
		m.TransactionsFinalized,
		m.OpenTransactions,
		m.CommitDuration,
		m.StatementsAdded,
		m.StatementsRemoved,
		m.EntitiesMinted,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// TxOpened records a transaction being opened
func (m *Metrics) TxOpened(kind string) {
	if m == nil {
		return
	}
	m.TransactionsOpened.WithLabelValues(kind).Inc()
	m.OpenTransactions.WithLabelValues(kind).Inc()
}

// TxFinalized records a transaction reaching a terminal state
func (m *Metrics) TxFinalized(kind, outcome string) {
	if m == nil {
		return
	}
	m.TransactionsFinalized.WithLabelValues(kind, outcome).Inc()
	m.OpenTransactions.WithLabelValues(kind).Dec()
}

// Committed records the statement deltas and duration of a successful commit
func (m *Metrics) Committed(seconds float64, added, removed, minted int) {
	if m == nil {
		return
	}
	m.CommitDuration.Observe(seconds)
	m.StatementsAdded.Add(float64(added))
	m.StatementsRemoved.Add(float64(removed))
	m.EntitiesMinted.Add(float64(minted))
}
