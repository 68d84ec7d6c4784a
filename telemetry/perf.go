package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one kennel tick.
const (
	PhaseLayout    = "layout"
	PhasePlanning  = "planning"
	PhaseMovement  = "movement"
	PhaseStream    = "stream"
	PhaseTelemetry = "telemetry"
)

// Phases lists the tick phases in execution order.
var Phases = []string{PhaseLayout, PhasePlanning, PhaseMovement, PhaseStream, PhaseTelemetry}

// PerfSample holds timing data for a single tick. GridBuild and Search are
// part of the planning phase and reported separately.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
	GridBuild    time.Duration
	Search       time.Duration
	Requests     int
}

// PerfCollector tracks performance metrics over a rolling window of ticks.
type PerfCollector struct {
	windowSize  int
	samples     []PerfSample
	writeIndex  int
	sampleCount int

	current    PerfSample
	tickStart  time.Time
	phaseStart time.Time
	lastPhase  string

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration

	now func() time.Time
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of ticks to average over (e.g., 60 for 1 second at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]PerfSample, windowSize),
		now:        time.Now,
	}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.current = PerfSample{Phases: make(map[string]time.Duration, len(Phases))}
	p.lastPhase = ""
}

// StartPhase ends the running phase, if any, and begins timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	p.closePhase(now)
	p.phaseStart = now
	p.lastPhase = phase
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.lastPhase != "" && p.current.Phases != nil {
		p.current.Phases[p.lastPhase] += now.Sub(p.phaseStart)
	}
}

// RecordSearch adds one path request's grid build and search time to the
// running tick.
func (p *PerfCollector) RecordSearch(build, search time.Duration) {
	p.current.GridBuild += build
	p.current.Search += search
	p.current.Requests++
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := p.now()
	p.closePhase(now)
	p.lastPhase = ""

	p.current.TickDuration = now.Sub(p.tickStart)
	p.samples[p.writeIndex] = p.current
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Phase breakdown: average durations and share of tick time
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	// Pathfinding inside the planning phase
	AvgGridBuild   time.Duration
	AvgSearch      time.Duration
	GridBuildPct   float64
	SearchPct      float64
	RequestsPerSec float64

	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frameDuration,
	}
	if p.frameDuration > 0 {
		stats.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.sampleCount == 0 {
		return stats
	}

	var totalTick, totalBuild, totalSearch time.Duration
	var requests int
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalTick += s.TickDuration
		totalBuild += s.GridBuild
		totalSearch += s.Search
		requests += s.Requests

		if i == 0 || s.TickDuration < stats.MinTickDuration {
			stats.MinTickDuration = s.TickDuration
		}
		stats.MaxTickDuration = max(stats.MaxTickDuration, s.TickDuration)
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	n := time.Duration(p.sampleCount)
	stats.AvgTickDuration = totalTick / n
	stats.AvgGridBuild = totalBuild / n
	stats.AvgSearch = totalSearch / n
	pct := func(d time.Duration) float64 {
		if stats.AvgTickDuration <= 0 {
			return 0
		}
		return float64(d) / float64(stats.AvgTickDuration) * 100
	}
	for phase, sum := range phaseSum {
		stats.PhaseAvg[phase] = sum / n
		stats.PhasePct[phase] = pct(stats.PhaseAvg[phase])
	}
	stats.GridBuildPct = pct(stats.AvgGridBuild)
	stats.SearchPct = pct(stats.AvgSearch)

	if totalTick > 0 {
		stats.TicksPerSecond = float64(time.Second) / float64(stats.AvgTickDuration)
		stats.RequestsPerSec = float64(requests) / totalTick.Seconds()
	}
	return stats
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
		"grid_build_us", s.AvgGridBuild.Microseconds(),
		"search_us", s.AvgSearch.Microseconds(),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
		slog.Float64("grid_build_pct", s.GridBuildPct),
		slog.Float64("search_pct", s.SearchPct),
		slog.Float64("requests_per_sec", s.RequestsPerSec),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd      int32   `csv:"window_end"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	MinTickUS      int64   `csv:"min_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	FPS            float64 `csv:"fps"`
	GridBuildUS    int64   `csv:"grid_build_us"`
	SearchUS       int64   `csv:"search_us"`
	GridBuildPct   float64 `csv:"grid_build_pct"`
	SearchPct      float64 `csv:"search_pct"`
	RequestsPerSec float64 `csv:"requests_per_sec"`
	LayoutPct      float64 `csv:"layout_pct"`
	PlanningPct    float64 `csv:"planning_pct"`
	MovementPct    float64 `csv:"movement_pct"`
	StreamPct      float64 `csv:"stream_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgTickUS:      s.AvgTickDuration.Microseconds(),
		MinTickUS:      s.MinTickDuration.Microseconds(),
		MaxTickUS:      s.MaxTickDuration.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		FPS:            s.FPS,
		GridBuildUS:    s.AvgGridBuild.Microseconds(),
		SearchUS:       s.AvgSearch.Microseconds(),
		GridBuildPct:   s.GridBuildPct,
		SearchPct:      s.SearchPct,
		RequestsPerSec: s.RequestsPerSec,
		LayoutPct:      s.PhasePct[PhaseLayout],
		PlanningPct:    s.PhasePct[PhasePlanning],
		MovementPct:    s.PhasePct[PhaseMovement],
		StreamPct:      s.PhasePct[PhaseStream],
		TelemetryPct:   s.PhasePct[PhaseTelemetry],
	}
}
