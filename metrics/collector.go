// Package metrics exposes bus and bridge counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trickstertwo/xsail"
	"github.com/trickstertwo/xsail/bridge"
)

// Source is anything with bus metrics, normally *xsail.MessageBus.
type Source interface {
	GetMetrics() xsail.Metrics
}

type desc struct {
	d     *prometheus.Desc
	kind  prometheus.ValueType
	value func(xsail.Metrics) float64
}

// Collector reads a Source snapshot on every scrape.
type Collector struct {
	src   Source
	descs []desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector publishing src under namespace ("xsail"
// when empty), subsystem "bus".
func NewCollector(namespace string, src Source) *Collector {
	if namespace == "" {
		namespace = "xsail"
	}
	name := func(n string) string { return prometheus.BuildFQName(namespace, "bus", n) }
	counter := func(n, help string, v func(xsail.Metrics) uint64) desc {
		return desc{
			d:     prometheus.NewDesc(name(n), help, nil, nil),
			kind:  prometheus.CounterValue,
			value: func(m xsail.Metrics) float64 { return float64(v(m)) },
		}
	}
	gauge := func(n, help string, v func(xsail.Metrics) float64) desc {
		return desc{d: prometheus.NewDesc(name(n), help, nil, nil), kind: prometheus.GaugeValue, value: v}
	}

	return &Collector{
		src: src,
		descs: []desc{
			counter("messages_sent_total", "Messages accepted by SendMessage.", func(m xsail.Metrics) uint64 { return m.Sent }),
			counter("messages_dispatched_total", "Messages taken off the queue and delivered.", func(m xsail.Metrics) uint64 { return m.Dispatched }),
			counter("deliveries_total", "ProcessMessage invocations.", func(m xsail.Metrics) uint64 { return m.Deliveries }),
			counter("messages_undeliverable_total", "Direct messages for unregistered nodes.", func(m xsail.Metrics) uint64 { return m.Undeliverable }),
			counter("messages_unrouted_total", "Broadcasts without subscribers.", func(m xsail.Metrics) uint64 { return m.Unrouted }),
			counter("handler_faults_total", "Failed ProcessMessage calls.", func(m xsail.Metrics) uint64 { return m.HandlerFaults }),
			counter("observer_events_dropped_total", "Observer events dropped by the pool.", func(m xsail.Metrics) uint64 { return m.EventsDropped }),
			gauge("queue_depth", "Messages waiting for dispatch.", func(m xsail.Metrics) float64 { return float64(m.QueueDepth) }),
			gauge("registered_nodes", "Nodes registered on the bus.", func(m xsail.Metrics) float64 { return float64(m.Registered) }),
			gauge("dispatch_time_avg_seconds", "Moving average of per-message dispatch time.", func(m xsail.Metrics) float64 { return m.AvgDispatchTimeMs / 1000 }),
		},
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d.d
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.src.GetMetrics()
	for _, d := range c.descs {
		ch <- prometheus.MustNewConstMetric(d.d, d.kind, d.value(m))
	}
}

// BridgeCollector publishes bridge.Stats, labelled by origin.
type BridgeCollector struct {
	br    *bridge.Bridge
	descs map[string]*prometheus.Desc
}

var _ prometheus.Collector = (*BridgeCollector)(nil)

func NewBridgeCollector(namespace string, br *bridge.Bridge) *BridgeCollector {
	if namespace == "" {
		namespace = "xsail"
	}
	labels := prometheus.Labels{"origin": br.Origin()}
	mk := func(n, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "bridge", n), help, nil, labels)
	}
	return &BridgeCollector{
		br: br,
		descs: map[string]*prometheus.Desc{
			"sent":           mk("frames_sent_total", "Frames published."),
			"received":       mk("frames_received_total", "Frames injected into the local bus."),
			"dropped":        mk("frames_dropped_total", "Outbound frames dropped on a full buffer."),
			"invalid":        mk("frames_invalid_total", "Inbound frames that failed to decode."),
			"echo":           mk("messages_echo_suppressed_total", "Injected messages not relayed back out."),
			"self":           mk("frames_self_total", "Inbound frames carrying this bridge's origin."),
			"publish_errors": mk("publish_errors_total", "Failed Publish calls."),
		},
	}
}

func (c *BridgeCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

func (c *BridgeCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.br.Stats()
	for k, v := range map[string]uint64{
		"sent":           s.Sent,
		"received":       s.Received,
		"dropped":        s.Dropped,
		"invalid":        s.Invalid,
		"echo":           s.Echo,
		"self":           s.Self,
		"publish_errors": s.PublishErrors,
	} {
		ch <- prometheus.MustNewConstMetric(c.descs[k], prometheus.CounterValue, float64(v))
	}
}
