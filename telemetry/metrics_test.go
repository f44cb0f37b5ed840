package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	m.ObserveSample(Sample{Tick: 42, Herbivores: 5, Carnivores: 3, Omnivores: 2, Plants: 17, Generation: 2})
	if got := testutil.ToFloat64(m.animals.WithLabelValues("carnivore")); got != 3 {
		t.Errorf("carnivore gauge = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.plants); got != 17 {
		t.Errorf("plants gauge = %v, want 17", got)
	}
	if got := testutil.ToFloat64(m.generation); got != 2 {
		t.Errorf("generation gauge = %v, want 2", got)
	}

	stats := WindowStats{Births: 4, DeathsEaten: 2, DeathsStarved: 1, PlantsEaten: 6, Recoveries: 1}
	m.ObserveWindow(stats, PerfStats{AvgTickDuration: 2 * time.Millisecond})
	m.ObserveWindow(stats, PerfStats{AvgTickDuration: 2 * time.Millisecond})

	if got := testutil.ToFloat64(m.births); got != 8 {
		t.Errorf("births = %v, want 8", got)
	}
	if got := testutil.ToFloat64(m.deaths.WithLabelValues("eaten")); got != 4 {
		t.Errorf("eaten deaths = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.tickTime); got != 0.002 {
		t.Errorf("tick seconds = %v, want 0.002", got)
	}
}

func TestMetricsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Error("expected error registering twice")
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveSample(Sample{})
	m.ObserveWindow(WindowStats{}, PerfStats{})
}
