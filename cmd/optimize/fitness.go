package main

import (
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/kennel/config"
	"github.com/pthm-cable/kennel/game"
	"github.com/pthm-cable/kennel/telemetry"
)

// FitnessEvaluator runs headless kennels and scores their path requests.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64
	costWeight  float64
	logger      *slog.Logger

	mu          sync.Mutex
	bestFitness float64
	bestWindows []telemetry.PathWindowStats
	lastScore   runScore // from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, costWeight float64, logger *slog.Logger) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 5.0,
		costWeight:  costWeight,
		logger:      logger,
		bestFitness: math.Inf(1),
	}
}

// BestWindows returns the stats windows of the best seed of the best evaluation.
func (fe *FitnessEvaluator) BestWindows() []telemetry.PathWindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// LastScore returns the averaged score parts of the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() runScore {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore
}

// warmupWindows are skipped while the first idle timers run out.
const warmupWindows = 1

// runScore is what one run is judged on.
type runScore struct {
	Success float64 // found / requests after warmup
	Effort  float64 // mean grid cells built plus cells expanded per request
}

// fitness is lower for configs that find more paths with less work.
func (s runScore) fitness(costWeight float64) float64 {
	return -(s.Success - costWeight*math.Log10(1+s.Effort))
}

type seedResult struct {
	score   runScore
	windows []telemetry.PathWindowStats
	err     error
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		fe.logger.Warn("rejected parameters", "error", err)
		return math.Inf(1)
	}

	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows, err := fe.runSimulation(cfg, s)
			results[idx] = seedResult{
				score:   scoreWindows(windows, cfg.Derived.GridCols*cfg.Derived.GridRows),
				windows: windows,
				err:     err,
			}
		}(i, seed)
	}
	wg.Wait()

	// Aggregate results
	var total runScore
	var totalFitness float64
	bestSeed := -1
	bestSeedFitness := math.Inf(1)
	for i, r := range results {
		if r.err != nil {
			fe.logger.Warn("run failed", "seed", fe.seeds[i], "error", r.err)
			return math.Inf(1)
		}
		f := r.score.fitness(fe.costWeight)
		totalFitness += f
		total.Success += r.score.Success
		total.Effort += r.score.Effort
		if f < bestSeedFitness {
			bestSeedFitness, bestSeed = f, i
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness && bestSeed >= 0 {
		fe.bestFitness = avgFitness
		fe.bestWindows = results[bestSeed].windows
	}
	fe.lastScore = runScore{Success: total.Success / n, Effort: total.Effort / n}
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation runs one headless kennel for maxTicks and returns its stats windows.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) ([]telemetry.PathWindowStats, error) {
	var windows []telemetry.PathWindowStats

	run := cfg.Clone()
	run.Obstacles.Watch = false

	g, err := game.NewGameWithOptions(game.Options{
		Config:         run,
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Logger:         fe.logger,
		StatsCallback: func(stats telemetry.PathWindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}
	return windows, nil
}

// scoreWindows weights each window by its request count. Every request
// rebuilds the breed grid, so its cells count toward effort.
func scoreWindows(windows []telemetry.PathWindowStats, gridCells int) runScore {
	if len(windows) <= warmupWindows {
		return runScore{}
	}
	var requests, found int
	var effort float64
	for _, w := range windows[warmupWindows:] {
		requests += w.Requests
		found += w.Found
		effort += float64(w.Requests) * (w.ExpansionsMean + float64(gridCells))
	}
	if requests == 0 {
		return runScore{}
	}
	return runScore{
		Success: float64(found) / float64(requests),
		Effort:  effort / float64(requests),
	}
}
