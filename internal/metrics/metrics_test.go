package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	// Registering twice fails
	assert.Error(t, m.Register(reg))
}

func TestTransactionCounters(t *testing.T) {
	m := New()

	m.TxOpened(KindRead)
	m.TxOpened(KindWrite)
	m.TxFinalized(KindWrite, OutcomeCommitted)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransactionsOpened.WithLabelValues(KindRead)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpenTransactions.WithLabelValues(KindRead)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OpenTransactions.WithLabelValues(KindWrite)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransactionsFinalized.WithLabelValues(KindWrite, OutcomeCommitted)))
}

func TestCommitted(t *testing.T) {
	m := New()
	m.Committed(0.01, 3, 1, 2)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.StatementsAdded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatementsRemoved))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EntitiesMinted))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CommitDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TxOpened(KindRead)
		m.TxFinalized(KindRead, OutcomeCancelled)
		m.Committed(1, 1, 1, 1)
	})
}
