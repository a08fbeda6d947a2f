package eth

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "cargo_tracker"

type metrics struct {
	watched   prometheus.Counter
	completed prometheus.Counter
	timedOut  prometheus.Counter
	rpcErrors prometheus.Counter
	ticks     prometheus.Counter

	pending prometheus.Gauge
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		watched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "watched",
			Help:      "number of transactions added to the tracker",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "completed",
			Help:      "number of transactions that reached finality",
		}),
		timedOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "timed_out",
			Help:      "number of transactions dropped after max attempts or max duration",
		}),
		rpcErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rpc_errors",
			Help:      "number of failed rpc calls during poll ticks",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ticks",
			Help:      "number of poll ticks",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pending",
			Help:      "number of transactions currently pending",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.watched,
		m.completed,
		m.timedOut,
		m.rpcErrors,
		m.ticks,
		m.pending,
	} {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// The helpers below are no-ops on a nil *metrics so the tracker works without a registry.

func (m *metrics) incWatched() {
	if m != nil {
		m.watched.Inc()
	}
}

func (m *metrics) addCompleted(n int) {
	if m != nil {
		m.completed.Add(float64(n))
	}
}

func (m *metrics) addTimedOut(n int) {
	if m != nil {
		m.timedOut.Add(float64(n))
	}
}

func (m *metrics) incRpcErrors() {
	if m != nil {
		m.rpcErrors.Inc()
	}
}

func (m *metrics) incTicks() {
	if m != nil {
		m.ticks.Inc()
	}
}

func (m *metrics) setPending(n int) {
	if m != nil {
		m.pending.Set(float64(n))
	}
}
