package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/kennel/components"
	"github.com/pthm-cable/kennel/config"
)

// MovementSystem walks dogs along their cached paths.
type MovementSystem struct {
	filter ecs.Filter4[components.Position, components.Velocity, components.Dog, components.PathFollow]
	rng    *rand.Rand
	cfg    config.DogsConfig
}

// NewMovementSystem creates a new movement system.
func NewMovementSystem(w *ecs.World, rng *rand.Rand, cfg config.DogsConfig) *MovementSystem {
	return &MovementSystem{
		filter: *ecs.NewFilter4[components.Position, components.Velocity, components.Dog, components.PathFollow](w),
		rng:    rng,
		cfg:    cfg,
	}
}

// Update advances every walking dog by one tick and returns how many moved.
func (s *MovementSystem) Update(dt float64) int {
	moving := 0

	query := s.filter.Query()
	for query.Next() {
		pos, vel, dog, follow := query.Get()

		if dog.Activity != components.ActivityWalking {
			*vel = components.Velocity{}
			continue
		}

		wp, ok := NextWaypoint(follow, pos.Vec(), s.cfg.ArrivalDist)
		if !ok {
			// Path finished
			*vel = components.Velocity{}
			follow.Clear()
			dog.Activity = components.ActivityIdle
			dog.IdleTimer = RandomIdle(s.rng, s.cfg.IdleMin, s.cfg.IdleMax)
			continue
		}

		moved, v := Move(pos, wp, dog.Speed, dt)
		*vel = v
		dog.Distance += moved
		if moved > 0 {
			moving++
		}
	}
	return moving
}
