package systems

import (
	"errors"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/kennel/components"
	"github.com/pthm-cable/kennel/config"
	"github.com/pthm-cable/kennel/navigation"
	"github.com/pthm-cable/kennel/telemetry"
)

// PathRecorder receives the outcome of every path request.
type PathRecorder interface {
	RecordPath(s telemetry.PathSample)
}

// WanderSystem picks goals for idle dogs and replans walking dogs whose
// cached path went stale.
type WanderSystem struct {
	filter   ecs.Filter3[components.Position, components.Dog, components.PathFollow]
	planner  *Planner
	rng      *rand.Rand
	cfg      config.DogsConfig
	recorder PathRecorder

	rally    navigation.Vec2
	hasRally bool
}

// NewWanderSystem creates a new wander system.
func NewWanderSystem(w *ecs.World, planner *Planner, rng *rand.Rand, cfg config.DogsConfig, recorder PathRecorder) *WanderSystem {
	return &WanderSystem{
		filter:   *ecs.NewFilter3[components.Position, components.Dog, components.PathFollow](w),
		planner:  planner,
		rng:      rng,
		cfg:      cfg,
		recorder: recorder,
	}
}

// SetRally calls every dog to p. Walking dogs replan once the rally point
// drifts further than the configured tolerance from their goal.
func (s *WanderSystem) SetRally(p navigation.Vec2) {
	s.rally = p
	s.hasRally = true
}

// ClearRally lets dogs go back to wandering.
func (s *WanderSystem) ClearRally() { s.hasRally = false }

// Rally returns the current rally point.
func (s *WanderSystem) Rally() (navigation.Vec2, bool) { return s.rally, s.hasRally }

// Update runs one planning pass and returns the number of path requests made.
func (s *WanderSystem) Update(tick int32, dt float64) int {
	requests := 0

	query := s.filter.Query()
	for query.Next() {
		pos, dog, follow := query.Get()

		if dog.Activity == components.ActivityWalking {
			if follow.Index >= len(follow.Waypoints) {
				// Arrived; the movement system idles the dog.
				continue
			}
			goal := follow.Goal
			if s.hasRally {
				goal = s.rally
			}
			grid := s.planner.Grid(dog.Breed)
			if IsPathValid(follow, grid, goal, tick, s.cfg.RepathMaxAge, s.cfg.RepathTargetDrift) {
				continue
			}
			s.plan(tick, pos, dog, follow, goal)
			requests++
			continue
		}

		dog.IdleTimer -= dt
		if s.hasRally {
			grid := s.planner.Grid(dog.Breed)
			if grid == nil || grid.Snap(pos.Vec()) == grid.Snap(s.rally) {
				continue
			}
			// A new rally point is answered at once; a failed one waits out the idle timer.
			if follow.Goal != s.rally || dog.IdleTimer <= 0 {
				s.plan(tick, pos, dog, follow, s.rally)
				requests++
			}
			continue
		}
		if dog.IdleTimer > 0 {
			continue
		}

		goal, err := s.planner.RandomGoal(dog.Breed, s.rng, s.cfg.GoalAttempts)
		if err != nil {
			// Nowhere to go this time
			dog.Failures++
			dog.IdleTimer = RandomIdle(s.rng, s.cfg.IdleMin, s.cfg.IdleMax)
			continue
		}
		s.plan(tick, pos, dog, follow, goal)
		requests++
	}
	return requests
}

func (s *WanderSystem) plan(tick int32, pos *components.Position, dog *components.Dog, follow *components.PathFollow, goal navigation.Vec2) {
	dog.Requests++
	res, err := s.planner.Plan(dog.Breed, pos.Vec(), goal)

	if s.recorder != nil {
		s.recorder.RecordPath(telemetry.PathSample{
			Dog:        dog.ID,
			Breed:      s.planner.Breed(dog.Breed).Name,
			Status:     res.Status,
			Aborted:    errors.Is(err, navigation.ErrExpansionLimit),
			Cost:       res.Cost,
			Expansions: res.Expansions,
			Waypoints:  len(res.Path),
			BuildTime:  res.BuildTime,
			SearchTime: res.SearchTime,
		})
	}

	follow.Goal = goal
	if err != nil || !res.Found() {
		dog.Failures++
		follow.Clear()
		dog.Activity = components.ActivityIdle
		dog.IdleTimer = RandomIdle(s.rng, s.cfg.IdleMin, s.cfg.IdleMax)
		return
	}

	follow.Waypoints = append(follow.Waypoints[:0], SimplifyPath(res.Path, s.planner.Grid(dog.Breed), s.planner.Finder(dog.Breed).Options().CornerCutting)...)
	follow.Index = 0
	follow.ValidTick = tick
	follow.Active = true
	dog.Activity = components.ActivityWalking
}

// RandomIdle returns an idle duration in [lo, hi).
func RandomIdle(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}
