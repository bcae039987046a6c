package worldserver

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes tick-loop and connection health as Prometheus
// collectors (no HTTP surface is wired here; cmd/worldservice registers
// these against its own /metrics handler).
type Metrics struct {
	TickDuration     prometheus.Histogram
	TickOverruns     prometheus.Counter
	ConnectedPlayers prometheus.Gauge
	InputDropped     prometheus.Counter
	DamageEvents     prometheus.Counter
}

// NewMetrics constructs and registers the WorldService collector set.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flyagain",
			Subsystem: "worldservice",
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of a single tick loop iteration.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		TickOverruns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flyagain",
			Subsystem: "worldservice",
			Name:      "tick_overruns_total",
			Help:      "Ticks whose duration exceeded the configured budget.",
		}),
		ConnectedPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flyagain",
			Subsystem: "worldservice",
			Name:      "connected_players",
			Help:      "Players currently present across all zone channels.",
		}),
		InputDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flyagain",
			Subsystem: "worldservice",
			Name:      "input_queue_dropped_total",
			Help:      "Packets dropped because the input queue was at capacity.",
		}),
		DamageEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flyagain",
			Subsystem: "worldservice",
			Name:      "damage_events_total",
			Help:      "Damage events resolved by the combat engine.",
		}),
	}

	reg.MustRegister(m.TickDuration, m.TickOverruns, m.ConnectedPlayers, m.InputDropped, m.DamageEvents)
	return m
}
