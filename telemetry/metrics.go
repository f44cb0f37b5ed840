package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pthm-cable/survival/components"
	"github.com/pthm-cable/survival/traits"
)

// Metrics exports population gauges and event counters to Prometheus.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	animals    *prometheus.GaugeVec
	plants     prometheus.Gauge
	generation prometheus.Gauge
	tick       prometheus.Gauge

	births     prometheus.Counter
	deaths     *prometheus.CounterVec
	eaten      prometheus.Counter
	recoveries prometheus.Counter
	tickTime   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		animals: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "survival",
			Name:      "animals",
			Help:      "Living animals by diet.",
		}, []string{"diet"}),
		plants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "survival",
			Name:      "plants",
			Help:      "Plants in the world.",
		}),
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "survival",
			Name:      "generation",
			Help:      "Current generation; increments on each population recovery.",
		}),
		tick: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "survival",
			Name:      "tick",
			Help:      "Ticks since the last reset.",
		}),
		births: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "survival",
			Name:      "births_total",
			Help:      "Offspring born.",
		}),
		deaths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "survival",
			Name:      "deaths_total",
			Help:      "Animal deaths by cause.",
		}, []string{"cause"}),
		eaten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "survival",
			Name:      "plants_eaten_total",
			Help:      "Plants consumed by animals.",
		}),
		recoveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "survival",
			Name:      "recoveries_total",
			Help:      "Population floor recoveries.",
		}),
		tickTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "survival",
			Name:      "tick_seconds",
			Help:      "Average tick duration over the last perf window.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.animals, m.plants, m.generation, m.tick,
		m.births, m.deaths, m.eaten, m.recoveries, m.tickTime,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveSample updates the population gauges from one history sample.
func (m *Metrics) ObserveSample(s Sample) {
	if m == nil {
		return
	}
	m.animals.WithLabelValues(traits.Herbivore.String()).Set(float64(s.Herbivores))
	m.animals.WithLabelValues(traits.Carnivore.String()).Set(float64(s.Carnivores))
	m.animals.WithLabelValues(traits.Omnivore.String()).Set(float64(s.Omnivores))
	m.plants.Set(float64(s.Plants))
	m.generation.Set(float64(s.Generation))
	m.tick.Set(float64(s.Tick))
}

// ObserveWindow adds a window's event counts to the counters.
func (m *Metrics) ObserveWindow(s WindowStats, perf PerfStats) {
	if m == nil {
		return
	}
	m.births.Add(float64(s.Births))
	m.deaths.WithLabelValues(components.CauseStarved.String()).Add(float64(s.DeathsStarved))
	m.deaths.WithLabelValues(components.CauseOldAge.String()).Add(float64(s.DeathsOldAge))
	m.deaths.WithLabelValues(components.CauseEaten.String()).Add(float64(s.DeathsEaten))
	m.eaten.Add(float64(s.PlantsEaten))
	m.recoveries.Add(float64(s.Recoveries))
	m.tickTime.Set(perf.AvgTickDuration.Seconds())
}
