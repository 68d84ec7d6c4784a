package navigation

import "log/slog"

// Options configures a Pathfinder.
type Options struct {
	CellSize      float64
	Heuristic     Heuristic
	ProbeRadius   float64 // <= 0 means one cell size
	MaxExpansions int     // 0 = unbounded
	CornerCutting bool
	Trace         bool
	Logger        *slog.Logger
}

// Option is a function that modifies Options.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		CellSize:      1,
		Heuristic:     Euclidean,
		CornerCutting: true,
	}
}

// WithCellSize sets the world units per cell.
func WithCellSize(size float64) Option {
	return func(o *Options) { o.CellSize = size }
}

// WithHeuristic selects the metric used for both step costs and goal estimates.
func WithHeuristic(h Heuristic) Option {
	return func(o *Options) { o.Heuristic = h }
}

// WithProbeRadius sets the obstacle probe radius used when building the grid.
func WithProbeRadius(r float64) Option {
	return func(o *Options) { o.ProbeRadius = r }
}

// WithMaxExpansions aborts a search after n cell expansions.
func WithMaxExpansions(n int) Option {
	return func(o *Options) { o.MaxExpansions = n }
}

// WithCornerCutting controls whether a diagonal step may pass between two
// blocked orthogonal neighbours.
func WithCornerCutting(allowed bool) Option {
	return func(o *Options) { o.CornerCutting = allowed }
}

// WithTrace records the expansion order in Result.Expanded.
func WithTrace(enabled bool) Option {
	return func(o *Options) { o.Trace = enabled }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}
