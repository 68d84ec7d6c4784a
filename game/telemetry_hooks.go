package game

import (
	"github.com/pthm-cable/kennel/components"
)

// flushTelemetry closes the path stats window once it has elapsed, logging
// it and appending it to the CSV output.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	simTime := float64(g.tick) * g.cfg.Physics.DT
	stats := g.collector.Flush(g.tick, simTime)
	stats.DogsMoving, stats.DogsIdle = g.countActivity()
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
		g.logBreedSummary()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WritePaths(stats); err != nil {
			g.logger.Error("failed to write paths", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			g.logger.Error("failed to write perf", "error", err)
		}
	}
}

// countActivity returns how many dogs are walking and idle.
func (g *Game) countActivity() (walking, idle int) {
	query := g.dogFilter.Query()
	for query.Next() {
		_, _, dog, _ := query.Get()
		if dog.Activity == components.ActivityWalking {
			walking++
		} else {
			idle++
		}
	}
	return walking, idle
}
