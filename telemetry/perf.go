package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies a stage of the world tick.
type Phase uint8

const (
	PhasePlants Phase = iota
	PhaseAnimals
	PhaseCleanup
	PhaseRecovery
	PhaseHistory
	PhaseTelemetry

	numPhases
)

var phaseNames = [numPhases]string{
	PhasePlants:    "plants",
	PhaseAnimals:   "animals",
	PhaseCleanup:   "cleanup",
	PhaseRecovery:  "recovery",
	PhaseHistory:   "history",
	PhaseTelemetry: "telemetry",
}

// String returns the phase name.
func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       [numPhases]time.Duration
}

// PerfCollector tracks tick timing over a rolling window.
// A nil collector is valid and records nothing.
type PerfCollector struct {
	samples     []PerfSample
	writeIndex  int
	sampleCount int

	current    PerfSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{samples: make([]PerfSample, windowSize)}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	if p == nil {
		return
	}
	p.tickStart = time.Now()
	p.current = PerfSample{}
	p.inPhase = false
}

// StartPhase ends the running phase, if any, and begins timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	if p == nil {
		return
	}
	now := time.Now()
	p.endPhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) endPhase(now time.Time) {
	if p.inPhase {
		p.current.Phases[p.phase] += now.Sub(p.phaseStart)
		p.inPhase = false
	}
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	if p == nil {
		return
	}
	now := time.Now()
	p.endPhase(now)
	p.current.TickDuration = now.Sub(p.tickStart)

	p.samples[p.writeIndex] = p.current
	p.writeIndex = (p.writeIndex + 1) % len(p.samples)
	if p.sampleCount < len(p.samples) {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	// Share of the average tick spent in each phase, in percent
	PhasePct [numPhases]float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p == nil || p.sampleCount == 0 {
		return PerfStats{}
	}

	var total time.Duration
	var phaseSum [numPhases]time.Duration
	out := PerfStats{MinTickDuration: p.samples[0].TickDuration}

	for _, s := range p.samples[:p.sampleCount] {
		total += s.TickDuration
		out.MinTickDuration = min(out.MinTickDuration, s.TickDuration)
		out.MaxTickDuration = max(out.MaxTickDuration, s.TickDuration)
		for i, d := range s.Phases {
			phaseSum[i] += d
		}
	}

	if total > 0 {
		for i, d := range phaseSum {
			out.PhasePct[i] = float64(d) / float64(total) * 100
		}
	}

	out.AvgTickDuration = total / time.Duration(p.sampleCount)
	if out.AvgTickDuration > 0 {
		out.TicksPerSecond = float64(time.Second) / float64(out.AvgTickDuration)
	}
	return out
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	for i, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, slog.Float64(Phase(i).String()+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	PlantsPct    float64 `csv:"plants_pct"`
	AnimalsPct   float64 `csv:"animals_pct"`
	CleanupPct   float64 `csv:"cleanup_pct"`
	RecoveryPct  float64 `csv:"recovery_pct"`
	HistoryPct   float64 `csv:"history_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		PlantsPct:    s.PhasePct[PhasePlants],
		AnimalsPct:   s.PhasePct[PhaseAnimals],
		CleanupPct:   s.PhasePct[PhaseCleanup],
		RecoveryPct:  s.PhasePct[PhaseRecovery],
		HistoryPct:   s.PhasePct[PhaseHistory],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
