package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PathWindowStats holds aggregated path request statistics for a time window.
type PathWindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Dog activity at window end, filled in by the caller
	DogsMoving int `csv:"dogs_moving"`
	DogsIdle   int `csv:"dogs_idle"`

	// Requests during window
	Requests    int     `csv:"requests"`
	Found       int     `csv:"found"`
	NotFound    int     `csv:"not_found"`
	Aborted     int     `csv:"aborted"`
	SuccessRate float64 `csv:"success_rate"`

	// Cost of found paths
	CostMean float64 `csv:"cost_mean"`
	CostStd  float64 `csv:"cost_std"`
	CostP50  float64 `csv:"cost_p50"`
	CostP90  float64 `csv:"cost_p90"`

	// Search effort
	ExpansionsMean float64 `csv:"expansions_mean"`
	ExpansionsMax  float64 `csv:"expansions_max"`
	BuildUSMean    float64 `csv:"build_us_mean"`
	SearchUSMean   float64 `csv:"search_us_mean"`
	SearchUSP90    float64 `csv:"search_us_p90"`
}

// Summary describes the distribution of one series.
type Summary struct {
	N    int
	Mean float64
	Std  float64
	P50  float64
	P90  float64
	Max  float64
}

// Summarize computes mean, sample standard deviation, empirical quantiles and
// maximum. An empty series yields the zero Summary.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	s := Summary{N: n, Max: floats.Max(sorted)}
	if n > 1 {
		s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	} else {
		s.Mean = sorted[0]
	}
	s.P50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s PathWindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("dogs_moving", s.DogsMoving),
		slog.Int("dogs_idle", s.DogsIdle),
		slog.Int("requests", s.Requests),
		slog.Int("found", s.Found),
		slog.Int("not_found", s.NotFound),
		slog.Int("aborted", s.Aborted),
		slog.Float64("success_rate", s.SuccessRate),
		slog.Float64("cost_mean", s.CostMean),
		slog.Float64("cost_std", s.CostStd),
		slog.Float64("cost_p50", s.CostP50),
		slog.Float64("cost_p90", s.CostP90),
		slog.Float64("expansions_mean", s.ExpansionsMean),
		slog.Float64("expansions_max", s.ExpansionsMax),
		slog.Float64("build_us_mean", s.BuildUSMean),
		slog.Float64("search_us_mean", s.SearchUSMean),
		slog.Float64("search_us_p90", s.SearchUSP90),
	)
}

// LogStats logs the window stats using slog.
func (s PathWindowStats) LogStats() {
	slog.Info("paths",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"dogs_moving", s.DogsMoving,
		"dogs_idle", s.DogsIdle,
		"requests", s.Requests,
		"found", s.Found,
		"not_found", s.NotFound,
		"aborted", s.Aborted,
		"success_rate", s.SuccessRate,
		"cost_mean", s.CostMean,
		"cost_p90", s.CostP90,
		"expansions_mean", s.ExpansionsMean,
		"expansions_max", s.ExpansionsMax,
		"search_us_mean", s.SearchUSMean,
		"search_us_p90", s.SearchUSP90,
	)
}
