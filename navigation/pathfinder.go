package navigation

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/kennel/pqueue"
)

var (
	// ErrNoGrid is returned when a search or lookup runs before any grid build.
	ErrNoGrid = errors.New("navigation: no grid built")
	// ErrExpansionLimit is returned when a search hits WithMaxExpansions.
	ErrExpansionLimit = errors.New("navigation: expansion limit reached")
	// ErrNoWalkablePoint is returned when random sampling finds no walkable cell.
	ErrNoWalkablePoint = errors.New("navigation: no walkable point found")
)

// State is the pathfinder's search state.
type State uint8

const (
	StateIdle State = iota
	StateSearching
	StateFound
	StateNotFound
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateFound:
		return "found"
	case StateNotFound:
		return "not_found"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Result is the outcome of one search. Path is empty unless Status is
// StateFound.
type Result struct {
	Path       []Vec2  // cell centers, start to goal inclusive
	Cells      []Coord // same path in grid coordinates
	Cost       float64
	Expansions int
	Status     State
	Expanded   []Coord // expansion order, only with WithTrace

	BuildTime  time.Duration
	SearchTime time.Duration
}

// Found reports whether the search reached the goal.
func (r Result) Found() bool { return r.Status == StateFound }

type neighborOffset struct {
	col, row int
	diagonal bool
}

var neighborOffsets = [...]neighborOffset{
	{col: 0, row: -1},
	{col: 1, row: 0},
	{col: 0, row: 1},
	{col: -1, row: 0},
	{col: 1, row: -1, diagonal: true},
	{col: 1, row: 1, diagonal: true},
	{col: -1, row: 1, diagonal: true},
	{col: -1, row: -1, diagonal: true},
}

// Pathfinder owns one grid and runs one A* search at a time.
type Pathfinder struct {
	bounds Bounds
	query  ObstacleQuery
	opts   Options
	logger *slog.Logger

	grid   *Grid
	state  State
	open   *pqueue.Heap[*Cell]
	closed []bool
}

// NewPathfinder creates a pathfinder over bounds. No grid exists until
// BuildGrid or RequestPath is called.
func NewPathfinder(bounds Bounds, query ObstacleQuery, options ...Option) *Pathfinder {
	opts := defaultOptions()
	for _, o := range options {
		o(&opts)
	}
	if opts.CellSize <= 0 {
		opts.CellSize = 1
	}
	if opts.ProbeRadius <= 0 {
		opts.ProbeRadius = opts.CellSize
	}
	if opts.Heuristic == nil {
		opts.Heuristic = Euclidean
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if query == nil {
		query = NoObstacles
	}
	return &Pathfinder{
		bounds: bounds,
		query:  query,
		opts:   opts,
		logger: logger,
	}
}

// Bounds returns the host area.
func (p *Pathfinder) Bounds() Bounds { return p.bounds }

// Options returns the resolved options.
func (p *Pathfinder) Options() Options { return p.opts }

// State returns the state of the latest request.
func (p *Pathfinder) State() State { return p.state }

// Grid returns the latest grid, or nil before the first build.
func (p *Pathfinder) Grid() *Grid { return p.grid }

// SetQuery swaps the obstacle source. The next build picks it up.
func (p *Pathfinder) SetQuery(q ObstacleQuery) {
	if q == nil {
		q = NoObstacles
	}
	p.query = q
}

// SetHeuristic swaps the metric for subsequent searches.
func (p *Pathfinder) SetHeuristic(h Heuristic) {
	if h != nil {
		p.opts.Heuristic = h
	}
}

// SetCornerCutting toggles the diagonal corner rule for subsequent searches.
func (p *Pathfinder) SetCornerCutting(allowed bool) { p.opts.CornerCutting = allowed }

// SetTrace toggles expansion tracing for subsequent searches.
func (p *Pathfinder) SetTrace(enabled bool) { p.opts.Trace = enabled }

// BuildGrid rebuilds the grid from the current obstacle query. Cell pointers
// from earlier grids are invalid afterwards.
func (p *Pathfinder) BuildGrid() *Grid {
	p.grid = BuildGrid(p.bounds, p.opts.CellSize, p.query, p.opts.ProbeRadius)
	n := p.grid.Len()
	if p.open == nil || p.open.Cap() != n {
		p.open = pqueue.New[*Cell](n, compareCells)
		p.closed = make([]bool, n)
	} else {
		p.open.Clear()
		clear(p.closed)
	}
	return p.grid
}

// RequestPath rebuilds the grid and searches from start to goal. A missing
// path is reported through Result.Status, not as an error.
func (p *Pathfinder) RequestPath(start, goal Vec2) (Result, error) {
	p.state = StateIdle
	buildStart := time.Now()
	p.BuildGrid()
	buildTime := time.Since(buildStart)

	res, err := p.FindPath(start, goal)
	res.BuildTime = buildTime

	p.logger.Debug("path request",
		"start", start,
		"goal", goal,
		"status", res.Status.String(),
		"expansions", res.Expansions,
		"cost", res.Cost,
		"build_us", buildTime.Microseconds(),
		"search_us", res.SearchTime.Microseconds(),
	)
	return res, err
}

// FindPath runs A* on the current grid without rebuilding it.
func (p *Pathfinder) FindPath(start, goal Vec2) (Result, error) {
	p.state = StateIdle
	if p.grid == nil {
		return Result{Status: StateIdle}, ErrNoGrid
	}
	searchStart := time.Now()
	g := p.grid
	if g.dirty {
		g.resetSearch()
		p.open.Clear()
		clear(p.closed)
	}

	startCell, _ := g.Cell(g.Snap(start))
	goalCell, _ := g.Cell(g.Snap(goal))
	if !goalCell.Walkable {
		p.state = StateNotFound
		return Result{Status: StateNotFound, SearchTime: time.Since(searchStart)}, nil
	}

	g.dirty = true
	p.state = StateSearching
	h := p.opts.Heuristic
	startCell.G = 0
	startCell.H = Distance(h, startCell.Coord, goalCell.Coord)
	p.open.Add(startCell)

	var res Result
	for p.open.Count() > 0 {
		current := p.open.RemoveTop()
		currentIdx := g.index(current.Coord)
		p.closed[currentIdx] = true
		res.Expansions++
		if p.opts.Trace {
			res.Expanded = append(res.Expanded, current.Coord)
		}

		if current == goalCell {
			p.reconstruct(&res, goalCell)
			p.state = StateFound
			res.Status = StateFound
			res.SearchTime = time.Since(searchStart)
			return res, nil
		}

		if p.opts.MaxExpansions > 0 && res.Expansions >= p.opts.MaxExpansions {
			p.state = StateNotFound
			res.Status = StateNotFound
			res.SearchTime = time.Since(searchStart)
			return res, fmt.Errorf("%w: %d", ErrExpansionLimit, p.opts.MaxExpansions)
		}

		for _, d := range neighborOffsets {
			nc := Coord{Col: current.Coord.Col + d.col, Row: current.Coord.Row + d.row}
			neighbor, ok := g.Cell(nc)
			if !ok || !neighbor.Walkable {
				continue
			}
			neighborIdx := g.index(nc)
			if p.closed[neighborIdx] {
				continue
			}
			if d.diagonal && !p.opts.CornerCutting {
				if !g.IsWalkable(Coord{Col: nc.Col, Row: current.Coord.Row}) ||
					!g.IsWalkable(Coord{Col: current.Coord.Col, Row: nc.Row}) {
					continue
				}
			}

			tentativeG := current.G + Distance(h, current.Coord, nc)
			inOpen := p.open.Contains(neighbor)
			if inOpen && tentativeG >= neighbor.G {
				continue
			}
			neighbor.G = tentativeG
			neighbor.H = Distance(h, nc, goalCell.Coord)
			neighbor.parent = currentIdx
			if inOpen {
				p.open.UpdateElement(neighbor)
			} else {
				p.open.Add(neighbor)
			}
		}
	}

	p.state = StateNotFound
	res.Status = StateNotFound
	res.SearchTime = time.Since(searchStart)
	return res, nil
}

// reconstruct walks parent links back from goal and reverses them.
func (p *Pathfinder) reconstruct(res *Result, goal *Cell) {
	var cells []Coord
	for c, ok := goal, true; ok; c, ok = p.grid.Parent(c) {
		cells = append(cells, c.Coord)
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	path := make([]Vec2, len(cells))
	for i, c := range cells {
		path[i] = p.grid.WorldPos(c)
	}
	res.Cells = cells
	res.Path = path
	res.Cost = goal.G
}

// IsTraversableFor tests whether a square probe of side probeSize centred at
// point is free of obstacles. It does not consult the grid.
func (p *Pathfinder) IsTraversableFor(point Vec2, probeSize float64) bool {
	half := probeSize / 2
	if bq, ok := p.query.(BoxQuery); ok {
		return !bq.IsBoxBlocked(point, Vec2{X: half, Y: half})
	}
	return !p.query.IsBlocked(point, half)
}

// NodeAt returns a copy of the cell containing point.
func (p *Pathfinder) NodeAt(point Vec2) (Cell, error) {
	if p.grid == nil {
		return Cell{}, ErrNoGrid
	}
	c, _ := p.grid.Cell(p.grid.Snap(point))
	return *c, nil
}

// RandomWalkablePoint samples points inside the bounds until one lands in a
// walkable cell whose center also fits a probe of probeSize.
func (p *Pathfinder) RandomWalkablePoint(rng *rand.Rand, probeSize float64, attempts int) (Vec2, error) {
	if p.grid == nil {
		return Vec2{}, ErrNoGrid
	}
	lo := p.bounds.Min()
	for i := 0; i < attempts; i++ {
		candidate := Vec2{
			X: lo.X + rng.Float64()*p.bounds.Size.X,
			Y: lo.Y + rng.Float64()*p.bounds.Size.Y,
		}
		cell, err := p.NodeAt(candidate)
		if err != nil {
			return Vec2{}, err
		}
		if cell.Walkable && p.IsTraversableFor(cell.Pos, probeSize) {
			return cell.Pos, nil
		}
	}
	return Vec2{}, fmt.Errorf("%w after %d attempts", ErrNoWalkablePoint, attempts)
}

// compareCells gives higher priority to lower F, then lower H.
func compareCells(a, b *Cell) int {
	af, bf := a.F(), b.F()
	switch {
	case af < bf:
		return 1
	case af > bf:
		return -1
	case a.H < b.H:
		return 1
	case a.H > b.H:
		return -1
	}
	return 0
}
