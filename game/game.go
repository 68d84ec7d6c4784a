// Package game ties the kennel together: the ECS world, the planner and
// systems, telemetry, the snapshot stream and, in graphical mode, drawing.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/kennel/camera"
	"github.com/pthm-cable/kennel/components"
	"github.com/pthm-cable/kennel/config"
	"github.com/pthm-cable/kennel/navigation"
	"github.com/pthm-cable/kennel/obstacles"
	"github.com/pthm-cable/kennel/renderer"
	"github.com/pthm-cable/kennel/stream"
	"github.com/pthm-cable/kennel/systems"
	"github.com/pthm-cable/kennel/telemetry"
	"github.com/pthm-cable/kennel/ui"
)

// SpatialCellSize is the bucket size of the dog lookup grid in world units.
const SpatialCellSize = 4.0

// selectRadius is how far from the cursor, in world units, a click still picks a dog.
const selectRadius = 2.0

var dogNames = []string{
	"Biscuit", "Pepper", "Maple", "Scout", "Juniper", "Waffles", "Bramble",
	"Nova", "Pickle", "Otis", "Clover", "Rufus", "Hazel", "Ziggy", "Mochi",
	"Bear", "Tansy", "Fig", "Rocket", "Luna",
}

// Options configures game initialization.
type Options struct {
	Config         *config.Config // nil = config.Cfg()
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = telemetry.stats_window
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
	LayoutPath     string // overrides obstacles.layout_path when set
	Stream         bool   // publish snapshots on Hub()
	Logger         *slog.Logger

	// StatsCallback receives every closed path stats window.
	StatsCallback func(telemetry.PathWindowStats)
}

// Game holds the complete kennel state.
type Game struct {
	cfg    *config.Config
	logger *slog.Logger
	world  *ecs.World
	rng    *rand.Rand
	seed   int64

	dogMapper *ecs.Map4[components.Position, components.Velocity, components.Dog, components.PathFollow]
	dogFilter *ecs.Filter4[components.Position, components.Velocity, components.Dog, components.PathFollow]
	posMap    *ecs.Map[components.Position]
	dogMap    *ecs.Map[components.Dog]
	followMap *ecs.Map[components.PathFollow]

	// Navigation
	layoutPath    string
	space         *obstacles.Space // nil for an open yard
	layoutVersion int
	watcher       *obstacles.Watcher
	planner       *systems.Planner
	heuristic     string
	cornerCutting bool

	// Systems
	wander      *systems.WanderSystem
	movement    *systems.MovementSystem
	spatialGrid *systems.SpatialGrid

	// Telemetry
	collector     *telemetry.PathCollector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.PathWindowStats)

	// Stream
	hub              *stream.Hub
	publishedVersion int

	// Graphics (nil when headless)
	camera      *camera.Camera
	yard        *renderer.YardRenderer
	uiOverlays  *ui.OverlayRegistry
	uiHUD       *ui.HUD
	uiControls  *ui.ControlsPanel
	uiInspector *ui.Inspector
	uiPerfPanel *ui.PerfPanel
	showPerf    bool

	// Selection
	selected     ecs.Entity
	hasSelection bool
	trace        []navigation.Coord
	traceDog     ecs.Entity
	traceValid   int32

	// State
	tick           int32
	paused         bool
	headless       bool
	stepsPerUpdate int
	nextID         uint32
	walking        int
	requests       int
	failures       int

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game with the given options.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}
	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:            cfg,
		logger:         logger,
		world:          world,
		rng:            rand.New(rand.NewSource(opts.Seed)),
		seed:           opts.Seed,
		dogMapper:      ecs.NewMap4[components.Position, components.Velocity, components.Dog, components.PathFollow](world),
		dogFilter:      ecs.NewFilter4[components.Position, components.Velocity, components.Dog, components.PathFollow](world),
		posMap:         ecs.NewMap[components.Position](world),
		dogMap:         ecs.NewMap[components.Dog](world),
		followMap:      ecs.NewMap[components.PathFollow](world),
		layoutPath:     cfg.Obstacles.LayoutPath,
		heuristic:      cfg.Navigation.Heuristic,
		cornerCutting:  cfg.Navigation.CornerCutting,
		collector:      telemetry.NewPathCollector(statsWindow, cfg.Derived.DT32),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		logStats:       opts.LogStats,
		statsCallback:  opts.StatsCallback,
		headless:       opts.Headless,
		stepsPerUpdate: steps,
		screenWidth:    cfg.Derived.ScreenW32,
		screenHeight:   cfg.Derived.ScreenH32,
	}
	if opts.LayoutPath != "" {
		g.layoutPath = opts.LayoutPath
	}
	// the first snapshot always carries the layout
	g.publishedVersion = -1

	if err := g.loadLayout(); err != nil {
		return nil, err
	}

	planner, err := systems.NewPlanner(g.space, cfg.Derived.Bounds, cfg.Breeds, logger, cfg.NavigationOptions()...)
	if err != nil {
		return nil, fmt.Errorf("creating planner: %w", err)
	}
	g.planner = planner
	g.wander = systems.NewWanderSystem(world, planner, g.rng, cfg.Dogs, g)
	g.movement = systems.NewMovementSystem(world, g.rng, cfg.Dogs)
	g.spatialGrid = systems.NewSpatialGrid(cfg.Derived.Bounds, SpatialCellSize)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if om != nil {
		if err := om.WriteConfig(cfg); err != nil {
			logger.Error("failed to write config snapshot", "error", err)
		}
	}

	if cfg.Obstacles.Watch && g.layoutPath != "" {
		w, err := obstacles.NewWatcher(g.layoutPath, logger)
		if err != nil {
			logger.Warn("layout watch disabled", "path", g.layoutPath, "error", err)
		} else {
			g.watcher = w
		}
	}

	if opts.Stream {
		g.hub = stream.NewHub(logger)
	}

	if !opts.Headless {
		g.initGraphics()
	}

	g.spawnDogs()
	g.updateSpatialGrid()

	logger.Info("kennel ready",
		"seed", opts.Seed,
		"dogs", g.Dogs(),
		"breeds", planner.Len(),
		"grid_cols", cfg.Derived.GridCols,
		"grid_rows", cfg.Derived.GridRows,
		"layout", g.layoutPath,
	)
	return g, nil
}

// loadLayout builds the obstacle space from the layout file. An empty path
// leaves the yard open.
func (g *Game) loadLayout() error {
	if g.layoutPath == "" {
		return nil
	}
	layout, err := obstacles.LoadLayout(g.layoutPath)
	if err != nil {
		return err
	}
	space, err := obstacles.NewSpace(layout, g.cfg.Navigation.ObstacleLayers)
	if err != nil {
		return fmt.Errorf("building obstacle space: %w", err)
	}
	g.space = space
	g.layoutVersion++
	return nil
}

func (g *Game) initGraphics() {
	g.camera = camera.New(g.screenWidth, g.screenHeight, g.cfg.Derived.Bounds)
	g.yard = renderer.NewYardRenderer(g.camera)
	g.uiOverlays = ui.NewOverlayRegistry()
	g.uiHUD = ui.NewHUD()
	g.uiControls = ui.NewControlsPanel(10, 140, 220)
	g.uiInspector = ui.NewInspector(int32(g.screenWidth)-250, 10, 240)
	g.uiPerfPanel = ui.NewPerfPanel(int32(g.screenWidth)-250, 330, 240)
}

// spawnDogs places the configured number of dogs on walkable points,
// cycling through the breeds.
func (g *Game) spawnDogs() {
	for i := 0; i < g.cfg.Dogs.Count; i++ {
		breed := uint8(i % g.planner.Len())
		p, err := g.planner.RandomGoal(breed, g.rng, g.cfg.Dogs.GoalAttempts)
		if err != nil {
			g.logger.Warn("no room for dog", "breed", g.planner.Breed(breed).Name, "error", err)
			continue
		}
		g.spawnDog(p, breed)
	}
}

// spawnDog creates a new idle dog at p.
func (g *Game) spawnDog(p navigation.Vec2, breed uint8) ecs.Entity {
	id := g.nextID
	g.nextID++

	b := g.planner.Breed(breed)
	name := dogNames[int(id)%len(dogNames)]
	if round := int(id) / len(dogNames); round > 0 {
		name = fmt.Sprintf("%s %d", name, round+1)
	}

	pos := components.Position{X: p.X, Y: p.Y}
	vel := components.Velocity{}
	dog := components.Dog{
		ID:    id,
		Name:  name,
		Breed: breed,
		Speed: g.cfg.Dogs.Speed * b.SpeedScale,
		// Stagger the first goal picks
		IdleTimer: systems.RandomIdle(g.rng, 0, g.cfg.Dogs.IdleMax),
	}
	follow := components.PathFollow{Goal: p}
	return g.dogMapper.NewEntity(&pos, &vel, &dog, &follow)
}

// RecordPath implements systems.PathRecorder.
func (g *Game) RecordPath(s telemetry.PathSample) {
	g.collector.Record(s)
	g.perfCollector.RecordSearch(s.BuildTime, s.SearchTime)
	g.requests++
	if s.Status != navigation.StateFound {
		g.failures++
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// Dogs returns the number of dogs in the yard.
func (g *Game) Dogs() int {
	n := 0
	query := g.dogFilter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Walking returns the number of dogs that moved on the last tick.
func (g *Game) Walking() int { return g.walking }

// Requests returns the path requests made so far and how many failed.
func (g *Game) Requests() (total, failed int) { return g.requests, g.failures }

// Hub returns the snapshot hub, or nil when streaming is off.
func (g *Game) Hub() *stream.Hub { return g.hub }

// Planner returns the per-breed planner.
func (g *Game) Planner() *systems.Planner { return g.planner }

// SetRally calls every dog to p.
func (g *Game) SetRally(p navigation.Vec2) {
	g.wander.SetRally(p)
	g.logger.Info("rally set", "x", p.X, "y", p.Y, "tick", g.tick)
}

// ClearRally sends the dogs back to wandering.
func (g *Game) ClearRally() {
	if _, ok := g.wander.Rally(); ok {
		g.wander.ClearRally()
		g.logger.Info("rally cleared", "tick", g.tick)
	}
}

// MoveObstacle relocates a named obstacle. Every breed's grid is rebuilt
// before its next use and cached paths are rechecked on their next step.
func (g *Game) MoveObstacle(name string, p navigation.Vec2) error {
	if g.space == nil {
		return fmt.Errorf("open yard: %w: %q", obstacles.ErrUnknownObstacle, name)
	}
	if err := g.space.Move(name, p.X, p.Y); err != nil {
		return err
	}
	g.planner.Invalidate()
	g.layoutVersion++
	g.logger.Info("obstacle moved", "name", name, "x", p.X, "y", p.Y, "tick", g.tick)
	return nil
}

// Unload releases all resources.
func (g *Game) Unload() {
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			g.logger.Warn("closing layout watcher", "error", err)
		}
	}
	if g.hub != nil {
		g.hub.Close()
	}
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			g.logger.Error("failed to close output", "error", err)
		}
		g.outputManager = nil
	}
}
