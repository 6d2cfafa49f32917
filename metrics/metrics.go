// Package metrics provides the scheduler's profiling counters:
// Prometheus counters and gauges keyed by worker ID, tracking the
// scalar bookkeeping the scheduler core already maintains in memory
// (requested, dropped, steals sent by kind, tasks executed).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors groups the counters/gauges a Runtime registers for one
// partition. All are labeled by worker ID so a single partition's
// metrics can be scraped from one registry.
type Collectors struct {
	RequestsSent         *prometheus.CounterVec
	RequestsStealHalf    *prometheus.CounterVec
	RequestsStealOne     *prometheus.CounterVec
	TasksExecuted        *prometheus.CounterVec
	StealsSucceeded      *prometheus.CounterVec
	DroppedStealRequests *prometheus.CounterVec
	Requested            *prometheus.GaugeVec
	StealHalfActive      *prometheus.GaugeVec
}

// NewCollectors creates and registers a fresh set of collectors on
// reg. Pass prometheus.NewRegistry() for an isolated registry (tests,
// multiple Runtimes in one process) or prometheus.DefaultRegisterer
// to expose via the default /metrics handler.
func NewCollectors(reg prometheus.Registerer, namespace string) *Collectors {
	labels := []string{"worker"}
	c := &Collectors{
		RequestsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "steal_requests_sent_total",
			Help: "Steal requests originated by this worker.",
		}, labels),
		RequestsStealHalf: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "steal_requests_steal_half_total",
			Help: "Steal requests sent with stealhalf set.",
		}, labels),
		RequestsStealOne: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "steal_requests_steal_one_total",
			Help: "Steal requests sent without stealhalf set.",
		}, labels),
		TasksExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "tasks_executed_total",
			Help: "Tasks executed by this worker.",
		}, labels),
		StealsSucceeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "steals_succeeded_total",
			Help: "Steal requests that returned with a task.",
		}, labels),
		DroppedStealRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "dropped_steal_requests_total",
			Help: "Steal requests abandoned on quiescence.",
		}, labels),
		Requested: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "steal_requests_outstanding",
			Help: "Outstanding steal requests for this worker.",
		}, labels),
		StealHalfActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "adaptive_steal_half_active",
			Help: "1 if this worker's adaptive policy currently steals half, else 0.",
		}, labels),
	}

	for _, col := range []prometheus.Collector{
		c.RequestsSent, c.RequestsStealHalf, c.RequestsStealOne,
		c.TasksExecuted, c.StealsSucceeded, c.DroppedStealRequests,
		c.Requested, c.StealHalfActive,
	} {
		if reg != nil {
			_ = reg.Register(col)
		}
	}
	return c
}
