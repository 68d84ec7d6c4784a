// Package config provides configuration loading and access for the kennel.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/kennel/navigation"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config holds all kennel configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Navigation NavigationConfig `yaml:"navigation"`
	Obstacles  ObstaclesConfig  `yaml:"obstacles"`
	Dogs       DogsConfig       `yaml:"dogs"`
	Breeds     []BreedConfig    `yaml:"breeds"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Stream     StreamConfig     `yaml:"stream"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig is the yard the navigation grid covers, in world units.
type WorldConfig struct {
	CenterX float64 `yaml:"center_x"`
	CenterY float64 `yaml:"center_y"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
}

// NavigationConfig holds grid and search parameters.
type NavigationConfig struct {
	CellSize       float64  `yaml:"cell_size"`
	Heuristic      string   `yaml:"heuristic"`       // euclidean, squared_euclidean, manhattan, chebyshev, octile
	ProbeRadius    float64  `yaml:"probe_radius"`    // 0 = one cell size
	MaxExpansions  int      `yaml:"max_expansions"`  // 0 = unbounded
	CornerCutting  bool     `yaml:"corner_cutting"`  // allow diagonals past blocked corners
	ObstacleLayers []string `yaml:"obstacle_layers"` // empty = every layer blocks
}

// ObstaclesConfig locates the obstacle layout.
type ObstaclesConfig struct {
	LayoutPath string `yaml:"layout_path"` // empty = open yard
	Watch      bool   `yaml:"watch"`       // reload the layout when the file changes
}

// DogsConfig holds dog population and movement parameters.
type DogsConfig struct {
	Count             int     `yaml:"count"`
	Speed             float64 `yaml:"speed"`               // world units per second
	ArrivalDist       float64 `yaml:"arrival_dist"`        // waypoint reached within this distance
	IdleMin           float64 `yaml:"idle_min"`            // seconds
	IdleMax           float64 `yaml:"idle_max"`            // seconds
	GoalAttempts      int     `yaml:"goal_attempts"`       // random samples per goal pick
	RepathMaxAge      int32   `yaml:"repath_max_age"`      // ticks before a path is recomputed
	RepathTargetDrift float64 `yaml:"repath_target_drift"` // goal movement that invalidates a path
}

// BreedConfig is a dog template. Breeds differ in speed, body size and which
// obstacle layers they respect; each breed plans on its own pathfinder.
type BreedConfig struct {
	Name           string   `yaml:"name"`
	SpeedScale     float64  `yaml:"speed_scale"`     // multiplies dogs.speed (default 1.0)
	ProbeSize      float64  `yaml:"probe_size"`      // body width for goal checks (default cell size)
	ObstacleLayers []string `yaml:"obstacle_layers"` // overrides navigation.obstacle_layers when set
}

// PhysicsConfig holds simulation timing.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"`
}

// TelemetryConfig holds telemetry settings.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // seconds of sim time per path stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // ticks averaged by the perf collector
}

// StreamConfig holds websocket snapshot settings.
type StreamConfig struct {
	Addr          string `yaml:"addr"`           // empty = disabled
	IntervalTicks int    `yaml:"interval_ticks"` // ticks between snapshots
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32       float32           // Physics.DT as float32
	ScreenW32  float32           // Screen.Width as float32
	ScreenH32  float32           // Screen.Height as float32
	Bounds     navigation.Bounds // World as navigation bounds
	GridCols   int               // cells across the yard
	GridRows   int               // cells down the yard
	BreedIndex map[string]uint8  // name -> index for breed lookup
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns a copy of c that shares no breed slice with it.
func (c *Config) Clone() *Config {
	out := *c
	out.Breeds = make([]BreedConfig, len(c.Breeds))
	for i, b := range c.Breeds {
		b.ObstacleLayers = append([]string(nil), b.ObstacleLayers...)
		out.Breeds[i] = b
	}
	out.Navigation.ObstacleLayers = append([]string(nil), c.Navigation.ObstacleLayers...)
	return &out
}

// Recompute refreshes derived values and validates after fields were
// changed in code.
func (c *Config) Recompute() error {
	c.computeDerived()
	return c.Validate()
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	c.Derived.Bounds = navigation.Bounds{
		Center: navigation.Vec2{X: c.World.CenterX, Y: c.World.CenterY},
		Size:   navigation.Vec2{X: c.World.Width, Y: c.World.Height},
	}
	c.Derived.GridCols, c.Derived.GridRows = navigation.GridSize(c.Derived.Bounds.Size, c.Navigation.CellSize)

	// Synthesize a default breed if none specified
	if len(c.Breeds) == 0 {
		c.Breeds = []BreedConfig{{Name: "mutt"}}
	}
	for i := range c.Breeds {
		b := &c.Breeds[i]
		if b.SpeedScale == 0 {
			b.SpeedScale = 1.0
		}
		if b.ProbeSize == 0 {
			b.ProbeSize = c.Navigation.CellSize
		}
		if b.ObstacleLayers == nil {
			b.ObstacleLayers = c.Navigation.ObstacleLayers
		}
	}

	c.Derived.BreedIndex = make(map[string]uint8, len(c.Breeds))
	for i, b := range c.Breeds {
		c.Derived.BreedIndex[b.Name] = uint8(i)
	}
}

// Validate reports the first configuration value that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.World.Width <= 0 || c.World.Height <= 0:
		return fmt.Errorf("%w: world size %gx%g must be positive", ErrInvalid, c.World.Width, c.World.Height)
	case c.Navigation.CellSize <= 0:
		return fmt.Errorf("%w: navigation.cell_size %g must be positive", ErrInvalid, c.Navigation.CellSize)
	case c.Navigation.MaxExpansions < 0:
		return fmt.Errorf("%w: navigation.max_expansions must not be negative", ErrInvalid)
	case c.Physics.DT <= 0:
		return fmt.Errorf("%w: physics.dt must be positive", ErrInvalid)
	case c.Dogs.Count < 0:
		return fmt.Errorf("%w: dogs.count must not be negative", ErrInvalid)
	case c.Dogs.IdleMin < 0 || c.Dogs.IdleMax < c.Dogs.IdleMin:
		return fmt.Errorf("%w: dogs idle range [%g, %g]", ErrInvalid, c.Dogs.IdleMin, c.Dogs.IdleMax)
	case c.Dogs.ArrivalDist <= 0:
		return fmt.Errorf("%w: dogs.arrival_dist must be positive", ErrInvalid)
	case c.Dogs.GoalAttempts <= 0:
		return fmt.Errorf("%w: dogs.goal_attempts must be positive", ErrInvalid)
	case len(c.Breeds) > 256:
		return fmt.Errorf("%w: at most 256 breeds", ErrInvalid)
	}
	if _, err := navigation.HeuristicByName(c.Navigation.Heuristic); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if len(c.Derived.BreedIndex) != len(c.Breeds) {
		return fmt.Errorf("%w: duplicate breed names", ErrInvalid)
	}
	for _, b := range c.Breeds {
		if b.Name == "" {
			return fmt.Errorf("%w: breed without a name", ErrInvalid)
		}
		if b.SpeedScale <= 0 {
			return fmt.Errorf("%w: breed %s speed_scale must be positive", ErrInvalid, b.Name)
		}
	}
	return nil
}

// Heuristic resolves navigation.heuristic. Load has already validated it.
func (c *Config) Heuristic() navigation.Heuristic {
	h, err := navigation.HeuristicByName(c.Navigation.Heuristic)
	if err != nil {
		return navigation.Euclidean
	}
	return h
}

// NavigationOptions returns pathfinder options from the navigation section.
func (c *Config) NavigationOptions() []navigation.Option {
	return []navigation.Option{
		navigation.WithCellSize(c.Navigation.CellSize),
		navigation.WithHeuristic(c.Heuristic()),
		navigation.WithProbeRadius(c.Navigation.ProbeRadius),
		navigation.WithMaxExpansions(c.Navigation.MaxExpansions),
		navigation.WithCornerCutting(c.Navigation.CornerCutting),
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
