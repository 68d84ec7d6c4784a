package game

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/kennel/components"
	"github.com/pthm-cable/kennel/config"
	"github.com/pthm-cable/kennel/navigation"
	"github.com/pthm-cable/kennel/obstacles"
	"github.com/pthm-cable/kennel/stream"
	"github.com/pthm-cable/kennel/telemetry"
)

func testConfig(t *testing.T, layout string) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Obstacles.LayoutPath = layout
	return cfg
}

func newTestGame(t *testing.T, opts Options) *Game {
	t.Helper()
	opts.Headless = true
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(g.Unload)
	return g
}

func runTicks(g *Game, n int) {
	for i := 0; i < n; i++ {
		g.UpdateHeadless()
	}
}

func TestOpenYardDogsWander(t *testing.T) {
	cfg := testConfig(t, "")
	g := newTestGame(t, Options{Config: cfg, Seed: 1})

	if g.space != nil {
		t.Fatal("open yard should have no obstacle space")
	}
	if g.Dogs() != cfg.Dogs.Count {
		t.Fatalf("dogs = %d, want %d", g.Dogs(), cfg.Dogs.Count)
	}

	runTicks(g, 600)

	if g.Tick() != 600 {
		t.Errorf("tick = %d, want 600", g.Tick())
	}
	total, failed := g.Requests()
	if total == 0 {
		t.Fatal("no path requests after 10 seconds")
	}
	if failed != 0 {
		t.Errorf("%d of %d requests failed in an open yard", failed, total)
	}

	query := g.dogFilter.Query()
	for query.Next() {
		pos, _, dog, _ := query.Get()
		if !cfg.Derived.Bounds.Contains(pos.Vec()) {
			t.Errorf("%s left the yard at (%.2f, %.2f)", dog.Name, pos.X, pos.Y)
		}
	}
}

func TestYardGoalsAreWalkable(t *testing.T) {
	cfg := testConfig(t, filepath.Join("..", "layouts", "yard.yaml"))
	g := newTestGame(t, Options{Config: cfg, Seed: 7})

	if g.space == nil || len(g.space.Obstacles()) == 0 {
		t.Fatal("yard layout not loaded")
	}
	if g.Dogs() == 0 {
		t.Fatal("no dogs spawned")
	}

	runTicks(g, 900)

	total, failed := g.Requests()
	if total == 0 {
		t.Fatal("no path requests")
	}
	if failed == total {
		t.Fatalf("all %d requests failed", total)
	}

	var walked float64
	query := g.dogFilter.Query()
	for query.Next() {
		_, _, dog, follow := query.Get()
		walked += dog.Distance
		if dog.Activity != components.ActivityWalking {
			continue
		}
		grid := g.planner.Grid(dog.Breed)
		if !grid.IsWalkable(grid.Snap(follow.Goal)) {
			t.Errorf("%s (%s) is heading for a blocked cell at (%.2f, %.2f)",
				dog.Name, g.planner.Breed(dog.Breed).Name, follow.Goal.X, follow.Goal.Y)
		}
	}
	if walked == 0 {
		t.Error("no dog moved")
	}
}

func TestLayoutPathOption(t *testing.T) {
	cfg := testConfig(t, "")
	g := newTestGame(t, Options{Config: cfg, LayoutPath: filepath.Join("..", "layouts", "yard.yaml")})
	if g.space == nil {
		t.Fatal("LayoutPath option ignored")
	}
	if g.layoutVersion != 1 {
		t.Errorf("layout version = %d, want 1", g.layoutVersion)
	}
}

func TestMissingLayoutFails(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := NewGameWithOptions(Options{Config: cfg, Headless: true}); err == nil {
		t.Fatal("expected an error for a missing layout")
	}
}

func TestRallyGathersDogs(t *testing.T) {
	cfg := testConfig(t, "")
	g := newTestGame(t, Options{Config: cfg, Seed: 3})

	rally := navigation.Vec2{X: 10.5, Y: -5.5}
	g.SetRally(rally)
	runTicks(g, 2400)

	query := g.dogFilter.Query()
	for query.Next() {
		pos, _, dog, _ := query.Get()
		if d := pos.Vec().Dist(rally); d > 1.5 {
			t.Errorf("%s is %.2f from the rally point", dog.Name, d)
		}
		if dog.Activity != components.ActivityIdle {
			t.Errorf("%s still %s at the rally point", dog.Name, dog.Activity)
		}
	}

	g.ClearRally()
	if _, ok := g.wander.Rally(); ok {
		t.Error("rally not cleared")
	}
}

func TestOutputFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, "")

	var windows int
	g := newTestGame(t, Options{
		Config:         cfg,
		Seed:           5,
		OutputDir:      dir,
		StatsWindowSec: 1,
		StatsCallback: func(s telemetry.PathWindowStats) {
			windows++
			if s.DogsMoving+s.DogsIdle != cfg.Dogs.Count {
				t.Errorf("window counts %d moving + %d idle, want %d dogs", s.DogsMoving, s.DogsIdle, cfg.Dogs.Count)
			}
		},
	})

	runTicks(g, 200)
	g.Unload()

	if windows != 3 {
		t.Errorf("stats windows = %d, want 3", windows)
	}
	for _, name := range []string{"config.yaml", "paths.csv", "perf.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "paths.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("paths.csv has %d lines, want header + 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,") {
		t.Errorf("paths.csv header = %q", lines[0])
	}
}

func TestSnapshotIncludesLayoutOnce(t *testing.T) {
	cfg := testConfig(t, filepath.Join("..", "layouts", "yard.yaml"))
	g := newTestGame(t, Options{Config: cfg, Seed: 2, Stream: true})

	s := g.snapshot(true)
	if len(s.Dogs) != g.Dogs() {
		t.Errorf("snapshot dogs = %d, want %d", len(s.Dogs), g.Dogs())
	}
	if !s.Layout || len(s.Obstacles) != len(g.space.Obstacles()) {
		t.Errorf("snapshot obstacles = %d, want %d", len(s.Obstacles), len(g.space.Obstacles()))
	}

	// Tick 0 publishes with the layout, later ones without.
	runTicks(g, 1)
	if g.publishedVersion != g.layoutVersion {
		t.Fatalf("published layout %d, current %d", g.publishedVersion, g.layoutVersion)
	}
	if later := g.snapshot(g.publishedVersion != g.layoutVersion); later.Layout || len(later.Obstacles) != 0 {
		t.Error("unchanged layout sent again")
	}

	srv := httptest.NewServer(g.Hub().SnapshotHandler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got stream.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Tick != 0 || len(got.Obstacles) == 0 || len(got.Dogs) != g.Dogs() {
		t.Errorf("served snapshot tick=%d obstacles=%d dogs=%d", got.Tick, len(got.Obstacles), len(got.Dogs))
	}
}

func TestClearedLayoutReachesViewers(t *testing.T) {
	cfg := testConfig(t, filepath.Join("..", "layouts", "yard.yaml"))
	g := newTestGame(t, Options{Config: cfg, Seed: 5, Stream: true})
	runTicks(g, 1)

	empty, err := obstacles.ParseLayout([]byte("layers: [fence, building, garden, water]\n"))
	if err != nil {
		t.Fatal(err)
	}
	g.applyLayout(empty)
	if g.space == nil || len(g.space.Obstacles()) != 0 {
		t.Fatal("empty layout not applied")
	}
	runTicks(g, cfg.Stream.IntervalTicks)

	srv := httptest.NewServer(g.Hub().SnapshotHandler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got stream.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if !got.Layout || len(got.Obstacles) != 0 {
		t.Errorf("served layout=%v obstacles=%d, want an empty layout", got.Layout, len(got.Obstacles))
	}
}

func TestRallyCommandOverWebsocket(t *testing.T) {
	cfg := testConfig(t, "")
	g := newTestGame(t, Options{Config: cfg, Seed: 4, Stream: true})

	srv := httptest.NewServer(g.Hub().Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(stream.Command{Type: stream.CommandRally, X: 5, Y: 6}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		g.UpdateHeadless()
		if p, ok := g.wander.Rally(); ok {
			if p != (navigation.Vec2{X: 5, Y: 6}) {
				t.Errorf("rally = %+v", p)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("rally command never reached the simulation")
}

func TestSameSeedSameRun(t *testing.T) {
	cfg := testConfig(t, filepath.Join("..", "layouts", "yard.yaml"))
	a := newTestGame(t, Options{Config: cfg, Seed: 11})
	b := newTestGame(t, Options{Config: cfg, Seed: 11})

	runTicks(a, 300)
	runTicks(b, 300)

	sa, sb := a.snapshot(false), b.snapshot(false)
	if len(sa.Dogs) != len(sb.Dogs) {
		t.Fatalf("dog counts differ: %d vs %d", len(sa.Dogs), len(sb.Dogs))
	}
	for i := range sa.Dogs {
		if sa.Dogs[i].X != sb.Dogs[i].X || sa.Dogs[i].Y != sb.Dogs[i].Y {
			t.Errorf("dog %d diverged: (%v, %v) vs (%v, %v)",
				i, sa.Dogs[i].X, sa.Dogs[i].Y, sb.Dogs[i].X, sb.Dogs[i].Y)
		}
	}
}

func TestMoveObstacle(t *testing.T) {
	g := newTestGame(t, Options{Config: testConfig(t, "../layouts/yard.yaml"), Seed: 6})

	oldPos := navigation.Vec2{X: 22, Y: 20}
	newPos := navigation.Vec2{X: -20, Y: 0}
	grid := g.planner.Grid(0)
	if grid.IsWalkable(grid.Snap(oldPos)) || !grid.IsWalkable(grid.Snap(newPos)) {
		t.Fatal("unexpected walkability before the move")
	}

	version := g.layoutVersion
	if err := g.MoveObstacle("shed", newPos); err != nil {
		t.Fatal(err)
	}
	if g.layoutVersion != version+1 {
		t.Errorf("layout version = %d, want %d", g.layoutVersion, version+1)
	}
	grid = g.planner.Grid(0)
	if !grid.IsWalkable(grid.Snap(oldPos)) {
		t.Error("old shed position still blocked")
	}
	if grid.IsWalkable(grid.Snap(newPos)) {
		t.Error("new shed position not blocked")
	}

	if err := g.MoveObstacle("gazebo", newPos); !errors.Is(err, obstacles.ErrUnknownObstacle) {
		t.Errorf("unknown obstacle err = %v", err)
	}

	open := newTestGame(t, Options{Config: testConfig(t, ""), Seed: 6})
	if err := open.MoveObstacle("shed", newPos); !errors.Is(err, obstacles.ErrUnknownObstacle) {
		t.Errorf("open yard err = %v", err)
	}
}
