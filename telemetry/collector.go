package telemetry

import (
	"math"
	"time"

	"github.com/pthm-cable/kennel/navigation"
)

// PathSample is the outcome of one path request.
type PathSample struct {
	Dog        uint32
	Breed      string
	Status     navigation.State
	Aborted    bool // expansion limit tripped
	Cost       float64
	Expansions int
	Waypoints  int
	BuildTime  time.Duration
	SearchTime time.Duration
}

// PathCollector accumulates path requests within time windows and produces
// PathWindowStats.
type PathCollector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	windowStartTick int32
	samples         []PathSample
}

// NewPathCollector creates a new path collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewPathCollector(windowDurationSec float64, dt float32) *PathCollector {
	ticksPerWindow := int32(math.Round(windowDurationSec / float64(dt)))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &PathCollector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record adds a path request to the current window.
func (c *PathCollector) Record(s PathSample) {
	c.samples = append(c.samples, s)
}

// Pending returns the number of requests recorded since the last flush.
func (c *PathCollector) Pending() int { return len(c.samples) }

// WindowTicks returns the window length in ticks.
func (c *PathCollector) WindowTicks() int32 { return c.windowDurationTicks }

// ShouldFlush reports whether the current window has elapsed at tick.
func (c *PathCollector) ShouldFlush(tick int32) bool {
	return tick-c.windowStartTick >= c.windowDurationTicks
}

// Flush summarises the current window and starts a new one at tick.
func (c *PathCollector) Flush(tick int32, simTime float64) PathWindowStats {
	stats := PathWindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   tick,
		SimTimeSec:      simTime,
		Requests:        len(c.samples),
	}

	var costs, expansions, build, search []float64
	for _, s := range c.samples {
		switch {
		case s.Status == navigation.StateFound:
			stats.Found++
			costs = append(costs, s.Cost)
		case s.Aborted:
			stats.Aborted++
		default:
			stats.NotFound++
		}
		expansions = append(expansions, float64(s.Expansions))
		build = append(build, float64(s.BuildTime.Microseconds()))
		search = append(search, float64(s.SearchTime.Microseconds()))
	}
	if stats.Requests > 0 {
		stats.SuccessRate = float64(stats.Found) / float64(stats.Requests)
	}

	cost := Summarize(costs)
	stats.CostMean, stats.CostStd, stats.CostP50, stats.CostP90 = cost.Mean, cost.Std, cost.P50, cost.P90

	exp := Summarize(expansions)
	stats.ExpansionsMean, stats.ExpansionsMax = exp.Mean, exp.Max

	stats.BuildUSMean = Summarize(build).Mean
	s := Summarize(search)
	stats.SearchUSMean, stats.SearchUSP90 = s.Mean, s.P90

	c.windowStartTick = tick
	c.samples = c.samples[:0]
	return stats
}
