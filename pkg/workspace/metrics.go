package workspace

import "github.com/prometheus/client_golang/prometheus"

// metricsSet mirrors a namespace's instrumentation counters into
// Prometheus collectors, labeled by context/namespace, so a host process
// can scrape them. It lives on a private prometheus.Registry (not the
// global DefaultRegisterer) because a process may hold several
// MeteorEngine instances, each with its own EngineWorkspace, and
// registering the same collector name twice on the default registry
// would panic.
type metricsSet struct {
	registry *prometheus.Registry
	hits     *prometheus.CounterVec
	misses   *prometheus.CounterVec
	iters    *prometheus.CounterVec
	keys     *prometheus.CounterVec
}

func newMetricsSet() *metricsSet {
	reg := prometheus.NewRegistry()
	m := &metricsSet{
		registry: reg,
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meteor_workspace_cache_hits_total",
			Help: "Query cache hits per (context, namespace).",
		}, []string{"context", "namespace"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meteor_workspace_cache_misses_total",
			Help: "Query cache misses per (context, namespace).",
		}, []string{"context", "namespace"}),
		iters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meteor_workspace_iterations_total",
			Help: "Iteration passes per (context, namespace).",
		}, []string{"context", "namespace"}),
		keys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meteor_workspace_keys_iterated_total",
			Help: "Keys yielded by iteration per (context, namespace).",
		}, []string{"context", "namespace"}),
	}
	reg.MustRegister(m.hits, m.misses, m.iters, m.keys)
	return m
}

// Registry exposes the private registry so a caller can expose it over
// /metrics alongside the rest of a host process's collectors.
func (w *EngineWorkspace) Registry() *prometheus.Registry {
	return w.metrics.registry
}
