package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Gate outcomes.
const (
	OutcomeRan      = "ran"
	OutcomeSwitched = "switched"
	OutcomeAborted  = "aborted"
	OutcomeFailed   = "failed"
)

// Metrics holds the counters of the offramp client on its own registry.
type Metrics struct {
	Registry       *prometheus.Registry
	GateRuns       *prometheus.CounterVec
	SwitchRequests *prometheus.CounterVec
	TxFailures     *prometheus.CounterVec
	TxSubmitted    *prometheus.CounterVec
	RPCRequests    *prometheus.CounterVec
}

// New creates and registers all counters.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		GateRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "offramp",
			Name:      "gate_runs_total",
			Help:      "Guarded actions by outcome.",
		}, []string{"outcome"}),
		SwitchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "offramp",
			Name:      "chain_switch_requests_total",
			Help:      "Chain switch requests by result.",
		}, []string{"result"}),
		TxFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "offramp",
			Name:      "tx_failures_total",
			Help:      "Failed transactions by error category.",
		}, []string{"operation", "category"}),
		TxSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "offramp",
			Name:      "tx_submitted_total",
			Help:      "Transactions confirmed on chain by operation.",
		}, []string{"operation"}),
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "offramp",
			Name:      "rpc_requests_total",
			Help:      "JSON-RPC requests by method.",
		}, []string{"network", "method"}),
	}
	m.Registry.MustRegister(m.GateRuns, m.SwitchRequests, m.TxFailures, m.TxSubmitted, m.RPCRequests)
	return m
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// The helpers below are nil-safe so components can run without metrics.

func (m *Metrics) GateOutcome(outcome string) {
	if m != nil {
		m.GateRuns.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) SwitchResult(succeeded bool) {
	if m == nil {
		return
	}
	result := "failed"
	if succeeded {
		result = "succeeded"
	}
	m.SwitchRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) TxFailed(operation, category string) {
	if m != nil {
		m.TxFailures.WithLabelValues(operation, category).Inc()
	}
}

func (m *Metrics) TxConfirmed(operation string) {
	if m != nil {
		m.TxSubmitted.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) RPCRequest(network, method string) {
	if m != nil {
		m.RPCRequests.WithLabelValues(network, method).Inc()
	}
}
