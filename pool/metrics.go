// File: pool/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Prometheus exposition of group accounting.

package pool

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/hioload-buf/api"
)

const (
	metricsNamespace = "hioload"
	metricsSubsystem = "bufpool"
)

// poolMetrics holds the vectors shared by all groups of one registry.
type poolMetrics struct {
	usage    *prometheus.GaugeVec
	buffers  *prometheus.GaugeVec
	allocs   *prometheus.CounterVec
	failures *prometheus.CounterVec
	releases *prometheus.CounterVec
	discards *prometheus.CounterVec
	reuses   *prometheus.CounterVec
}

func newPoolMetrics(reg prometheus.Registerer, instance string) (*poolMetrics, error) {
	labels := prometheus.Labels{"registry": instance}
	gauge := func(name, help string, vars ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, vars)
	}
	counter := func(name, help string, vars ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, vars)
	}
	m := &poolMetrics{
		usage:    gauge("usage_bytes", "Bytes currently accounted to the group", "group"),
		buffers:  gauge("buffers", "Buffers owned by the group by state", "group", "state"),
		allocs:   counter("allocations_total", "Buffers created in the group", "group"),
		failures: counter("allocation_failures_total", "Refused or failed buffer creations", "group", "reason"),
		releases: counter("releases_total", "Buffers physically released or unregistered", "group"),
		discards: counter("discards_total", "Referenced buffers discarded by a group reset", "group"),
		reuses:   counter("reuses_total", "Unused buffers handed out again", "group"),
	}
	for _, c := range []prometheus.Collector{m.usage, m.buffers, m.allocs, m.failures, m.releases, m.discards, m.reuses} {
		if err := reg.Register(c); err != nil {
			return nil, api.Errorf(api.ErrCodeInvalidArgument, "register bufpool metrics").Wrap(err)
		}
	}
	return m, nil
}

func groupLabel(g *Group) string {
	return g.tag + "#" + strconv.FormatUint(uint64(g.id), 10)
}

// group binds the vectors to one group's label.
func (m *poolMetrics) group(g *Group) *groupMetrics {
	if m == nil {
		return nil
	}
	l := groupLabel(g)
	return &groupMetrics{
		m:        m,
		label:    l,
		usage:    m.usage.WithLabelValues(l),
		used:     m.buffers.WithLabelValues(l, "used"),
		unused:   m.buffers.WithLabelValues(l, "unused"),
		pending:  m.buffers.WithLabelValues(l, "pending"),
		allocs:   m.allocs.WithLabelValues(l),
		releases: m.releases.WithLabelValues(l),
		discards: m.discards.WithLabelValues(l),
		reuses:   m.reuses.WithLabelValues(l),
	}
}

// forget drops every series of a deinitialized group.
func (m *poolMetrics) forget(g *Group) {
	if m == nil {
		return
	}
	match := prometheus.Labels{"group": groupLabel(g)}
	m.usage.DeletePartialMatch(match)
	m.buffers.DeletePartialMatch(match)
	m.allocs.DeletePartialMatch(match)
	m.failures.DeletePartialMatch(match)
	m.releases.DeletePartialMatch(match)
	m.discards.DeletePartialMatch(match)
	m.reuses.DeletePartialMatch(match)
}

// groupMetrics is nil when metrics are disabled or the group is gone;
// every method tolerates a nil receiver.
type groupMetrics struct {
	m        *poolMetrics
	label    string
	usage    prometheus.Gauge
	used     prometheus.Gauge
	unused   prometheus.Gauge
	pending  prometheus.Gauge
	allocs   prometheus.Counter
	releases prometheus.Counter
	discards prometheus.Counter
	reuses   prometheus.Counter
}

func (gm *groupMetrics) sync(usage int64, used, unused, pending int) {
	if gm == nil {
		return
	}
	gm.usage.Set(float64(usage))
	gm.used.Set(float64(used))
	gm.unused.Set(float64(unused))
	gm.pending.Set(float64(pending))
}

func (gm *groupMetrics) failure(reason string) {
	if gm == nil {
		return
	}
	gm.m.failures.WithLabelValues(gm.label, reason).Inc()
}

func (gm *groupMetrics) allocated() {
	if gm != nil {
		gm.allocs.Inc()
	}
}

func (gm *groupMetrics) released() {
	if gm != nil {
		gm.releases.Inc()
	}
}

func (gm *groupMetrics) discarded() {
	if gm != nil {
		gm.discards.Inc()
	}
}

func (gm *groupMetrics) reuse() {
	if gm != nil {
		gm.reuses.Inc()
	}
}
