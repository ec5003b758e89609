// Package metrics exports reconciliation activity as Prometheus metrics.
//
// A Collector is fed from two places: tree lifecycle hooks count mounts,
// unmounts, updates and skips per component variant, and the engine's pass
// observer records pass counts and durations.
//
//	c := metrics.NewCollector()
//	reg.MustRegister(c)
//	eng := engine.New(state, view, onMount,
//	    engine.WithHooks(c.Hooks()),
//	    engine.WithPassObserver(c.ObservePass),
//	)
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-drift/flow/pkg/core"
	"github.com/go-drift/flow/pkg/engine"
	"github.com/go-drift/flow/pkg/tree"
)

const namespace = "flow"

// Collector holds the engine metrics. It implements prometheus.Collector.
type Collector struct {
	mounts   *prometheus.CounterVec
	unmounts *prometheus.CounterVec
	updates  *prometheus.CounterVec
	skips    *prometheus.CounterVec
	passes   *prometheus.CounterVec
	duration prometheus.Histogram
	nodes    prometheus.Gauge
}

// NewCollector creates an unregistered collector.
func NewCollector() *Collector {
	perComponent := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{"component"})
	}
	return &Collector{
		mounts:   perComponent("mounts_total", "Components mounted into the tree."),
		unmounts: perComponent("unmounts_total", "Components unmounted from the tree."),
		updates:  perComponent("updates_total", "Same-variant value updates applied in place."),
		skips:    perComponent("skips_total", "Subtrees skipped because the component was unchanged."),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Reconciliation passes by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of reconciliation passes.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tree_nodes",
			Help:      "Live nodes after the last pass.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.mounts.Describe(ch)
	c.unmounts.Describe(ch)
	c.updates.Describe(ch)
	c.skips.Describe(ch)
	c.passes.Describe(ch)
	c.duration.Describe(ch)
	c.nodes.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mounts.Collect(ch)
	c.unmounts.Collect(ch)
	c.updates.Collect(ch)
	c.skips.Collect(ch)
	c.passes.Collect(ch)
	c.duration.Collect(ch)
	c.nodes.Collect(ch)
}

// Hooks returns tree observers that count lifecycle events.
func (c *Collector) Hooks() tree.Hooks {
	return tree.Hooks{
		OnMount: func(e tree.MountEvent) {
			c.mounts.WithLabelValues(core.TypeName(e.Component)).Inc()
		},
		OnUnmount: func(e tree.UnmountEvent) {
			c.unmounts.WithLabelValues(core.TypeName(e.Component)).Inc()
		},
		OnUpdate: func(e tree.UpdateEvent) {
			c.updates.WithLabelValues(core.TypeName(e.Component)).Inc()
		},
		OnSkip: func(e tree.SkipEvent) {
			c.skips.WithLabelValues(core.TypeName(e.Component)).Inc()
		},
	}
}

// ObservePass records one engine pass. It has the engine.PassObserver
// signature.
func (c *Collector) ObservePass(s engine.PassSample) {
	result := "ok"
	if s.Failed {
		result = "failed"
	}
	c.passes.WithLabelValues(result).Inc()
	c.duration.Observe(s.Duration.Seconds())
	c.nodes.Set(float64(s.Nodes))
}
