package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.GateOutcome(OutcomeRan)
	m.GateOutcome(OutcomeRan)
	m.SwitchResult(false)
	m.TxFailed("convert", "reverted")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GateRuns.WithLabelValues(OutcomeRan)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SwitchRequests.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TxFailures.WithLabelValues("convert", "reverted")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.GateOutcome(OutcomeAborted)
		m.SwitchResult(true)
		m.TxFailed("x", "y")
		m.TxConfirmed("x")
		m.RPCRequest("n", "eth_call")
	})
	assert.NoError(t, m.WriteTextfile("ignored.prom"))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.TxConfirmed("approve")
	path := filepath.Join(t.TempDir(), "offramp.prom")

	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `offramp_tx_submitted_total{operation="approve"} 1`)
}
