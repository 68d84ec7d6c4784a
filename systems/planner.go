package systems

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/kennel/config"
	"github.com/pthm-cable/kennel/navigation"
	"github.com/pthm-cable/kennel/obstacles"
)

// ErrUnknownBreed is returned for a breed index with no pathfinder.
var ErrUnknownBreed = errors.New("systems: unknown breed")

// Planner owns one pathfinder per breed. Each breed plans against its own
// view of the obstacle space, so a terrier can ignore the garden beds a
// newfoundland walks around.
type Planner struct {
	breeds  []config.BreedConfig
	finders []*navigation.Pathfinder
	stale   []bool
	logger  *slog.Logger
}

// NewPlanner creates pathfinders for every breed over bounds.
func NewPlanner(space *obstacles.Space, bounds navigation.Bounds, breeds []config.BreedConfig, logger *slog.Logger, opts ...navigation.Option) (*Planner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Planner{
		breeds:  breeds,
		finders: make([]*navigation.Pathfinder, len(breeds)),
		stale:   make([]bool, len(breeds)),
		logger:  logger,
	}
	views, err := breedViews(space, breeds)
	if err != nil {
		return nil, err
	}
	for i, b := range breeds {
		finderOpts := append([]navigation.Option{}, opts...)
		finderOpts = append(finderOpts, navigation.WithLogger(logger.With("breed", b.Name)))
		p.finders[i] = navigation.NewPathfinder(bounds, views[i], finderOpts...)
		p.stale[i] = true
	}
	return p, nil
}

func breedViews(space *obstacles.Space, breeds []config.BreedConfig) ([]navigation.ObstacleQuery, error) {
	views := make([]navigation.ObstacleQuery, len(breeds))
	for i, b := range breeds {
		if space == nil {
			views[i] = navigation.NoObstacles
			continue
		}
		v, err := space.View(b.ObstacleLayers)
		if err != nil {
			return nil, fmt.Errorf("breed %s: %w", b.Name, err)
		}
		views[i] = v
	}
	return views, nil
}

// SetSpace points every pathfinder at a new obstacle space. Grids are
// rebuilt lazily on the next request.
func (p *Planner) SetSpace(space *obstacles.Space) error {
	views, err := breedViews(space, p.breeds)
	if err != nil {
		return err
	}
	for i, f := range p.finders {
		f.SetQuery(views[i])
		p.stale[i] = true
	}
	return nil
}

// Invalidate marks every grid stale, e.g. after an obstacle moved.
func (p *Planner) Invalidate() {
	for i := range p.stale {
		p.stale[i] = true
	}
}

// Len returns the number of breeds.
func (p *Planner) Len() int { return len(p.finders) }

// Breed returns the breed config for index.
func (p *Planner) Breed(breed uint8) config.BreedConfig { return p.breeds[breed] }

// Finder returns the pathfinder for breed, or nil.
func (p *Planner) Finder(breed uint8) *navigation.Pathfinder {
	if int(breed) >= len(p.finders) {
		return nil
	}
	return p.finders[breed]
}

// Grid returns the breed's current grid, rebuilding it when stale.
func (p *Planner) Grid(breed uint8) *navigation.Grid {
	f := p.Finder(breed)
	if f == nil {
		return nil
	}
	if p.stale[breed] || f.Grid() == nil {
		f.BuildGrid()
		p.stale[breed] = false
	}
	return f.Grid()
}

// Plan requests a path for breed. The grid is rebuilt as part of the request.
func (p *Planner) Plan(breed uint8, from, goal navigation.Vec2) (navigation.Result, error) {
	f := p.Finder(breed)
	if f == nil {
		return navigation.Result{}, fmt.Errorf("%w: %d", ErrUnknownBreed, breed)
	}
	res, err := f.RequestPath(from, goal)
	p.stale[breed] = false
	return res, err
}

// RandomGoal picks a walkable point that fits the breed's body.
func (p *Planner) RandomGoal(breed uint8, rng *rand.Rand, attempts int) (navigation.Vec2, error) {
	if p.Grid(breed) == nil {
		return navigation.Vec2{}, fmt.Errorf("%w: %d", ErrUnknownBreed, breed)
	}
	return p.finders[breed].RandomWalkablePoint(rng, p.breeds[breed].ProbeSize, attempts)
}

// SetHeuristic switches the heuristic of every breed.
func (p *Planner) SetHeuristic(h navigation.Heuristic) {
	for _, f := range p.finders {
		f.SetHeuristic(h)
	}
}

// SetCornerCutting toggles the diagonal corner rule of every breed.
func (p *Planner) SetCornerCutting(allowed bool) {
	for _, f := range p.finders {
		f.SetCornerCutting(allowed)
	}
}
