package game

import (
	"github.com/pthm-cable/kennel/components"
	"github.com/pthm-cable/kennel/navigation"
	"github.com/pthm-cable/kennel/obstacles"
	"github.com/pthm-cable/kennel/stream"
	"github.com/pthm-cable/kennel/telemetry"
)

// Update handles input, then runs stepsPerUpdate simulation ticks unless paused.
func (g *Game) Update() {
	g.perfCollector.RecordFrame()
	g.handleInput()

	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// UpdateHeadless runs stepsPerUpdate ticks without touching raylib.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// simulationStep runs a single tick of the simulation.
func (g *Game) simulationStep() {
	dt := g.cfg.Physics.DT
	g.perfCollector.StartTick()

	// 1. Layout reloads and viewer commands
	g.perfCollector.StartPhase(telemetry.PhaseLayout)
	g.applyLayoutUpdates()
	g.applyCommands()

	// 2. Goal picks and replanning
	g.perfCollector.StartPhase(telemetry.PhasePlanning)
	g.wander.Update(g.tick, dt)

	// 3. Path following
	g.perfCollector.StartPhase(telemetry.PhaseMovement)
	g.walking = g.movement.Update(dt)
	g.updateSpatialGrid()

	// 4. Snapshot stream
	g.perfCollector.StartPhase(telemetry.PhaseStream)
	g.publishSnapshot()

	// 5. Stats windows
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
	g.tick++
}

// applyLayoutUpdates swaps in layouts delivered by the file watcher.
// Cached paths through newly blocked cells are dropped by the next validity check.
func (g *Game) applyLayoutUpdates() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case layout, ok := <-g.watcher.Layouts:
			if !ok {
				g.watcher = nil
				return
			}
			g.applyLayout(layout)
		case err := <-g.watcher.Errors:
			if err != nil {
				g.logger.Warn("layout reload failed", "path", g.layoutPath, "error", err)
			}
		default:
			return
		}
	}
}

func (g *Game) applyLayout(layout *obstacles.Layout) {
	space, err := obstacles.NewSpace(layout, g.cfg.Navigation.ObstacleLayers)
	if err != nil {
		g.logger.Warn("rejecting layout", "path", g.layoutPath, "error", err)
		return
	}
	if err := g.planner.SetSpace(space); err != nil {
		g.logger.Warn("rejecting layout", "path", g.layoutPath, "error", err)
		return
	}
	g.space = space
	g.layoutVersion++
	g.logger.Info("layout reloaded", "path", g.layoutPath, "obstacles", len(space.Obstacles()), "tick", g.tick)
}

// applyCommands drains viewer commands from the stream hub.
func (g *Game) applyCommands() {
	if g.hub == nil {
		return
	}
	for {
		select {
		case cmd := <-g.hub.Commands():
			switch cmd.Type {
			case stream.CommandRally:
				g.SetRally(navigation.Vec2{X: cmd.X, Y: cmd.Y})
			case stream.CommandClearRally:
				g.ClearRally()
			case stream.CommandMoveObstacle:
				if err := g.MoveObstacle(cmd.Name, navigation.Vec2{X: cmd.X, Y: cmd.Y}); err != nil {
					g.logger.Warn("move rejected", "name", cmd.Name, "error", err)
				}
			}
		default:
			return
		}
	}
}

// updateSpatialGrid rebuilds the spatial index.
func (g *Game) updateSpatialGrid() {
	g.spatialGrid.Clear()

	query := g.dogFilter.Query()
	for query.Next() {
		pos, _, _, _ := query.Get()
		g.spatialGrid.Insert(query.Entity(), pos.Vec())
	}
}

// publishSnapshot sends the yard to stream subscribers every interval_ticks.
func (g *Game) publishSnapshot() {
	if g.hub == nil {
		return
	}
	interval := int32(max(g.cfg.Stream.IntervalTicks, 1))
	if g.tick%interval != 0 {
		return
	}
	s := g.snapshot(g.publishedVersion != g.layoutVersion)
	if err := g.hub.Publish(s); err != nil {
		g.logger.Error("failed to publish snapshot", "error", err)
		return
	}
	g.publishedVersion = g.layoutVersion
}

// snapshot captures the yard. Obstacles are included when withLayout is set.
func (g *Game) snapshot(withLayout bool) stream.Snapshot {
	s := stream.Snapshot{Type: "snapshot", Tick: g.tick, Dogs: make([]stream.DogState, 0, g.cfg.Dogs.Count)}

	query := g.dogFilter.Query()
	for query.Next() {
		pos, _, dog, follow := query.Get()
		state := stream.DogState{
			ID:       dog.ID,
			Name:     dog.Name,
			Breed:    g.planner.Breed(dog.Breed).Name,
			X:        pos.X,
			Y:        pos.Y,
			Activity: dog.Activity.String(),
		}
		if dog.Activity == components.ActivityWalking {
			for _, wp := range follow.Remaining() {
				state.Waypoints = append(state.Waypoints, [2]float64{wp.X, wp.Y})
			}
		}
		s.Dogs = append(s.Dogs, state)
	}

	if rally, ok := g.wander.Rally(); ok {
		s.Rally = &[2]float64{rally.X, rally.Y}
	}

	s.Layout = withLayout
	if withLayout && g.space != nil {
		for _, o := range g.space.Obstacles() {
			s.Obstacles = append(s.Obstacles, stream.ObstacleState{
				Name: o.Name, Layer: o.Layer, Kind: o.Kind,
				X: o.X, Y: o.Y, W: o.W, H: o.H, R: o.R,
			})
		}
	}
	return s
}
