// Grid preview tool - interactive A* on a yard layout with sliders.
//
// Usage: go run ./cmd/gridpreview -layout layouts/yard.yaml -breed terrier
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/kennel/camera"
	"github.com/pthm-cable/kennel/config"
	"github.com/pthm-cable/kennel/navigation"
	"github.com/pthm-cable/kennel/obstacles"
	"github.com/pthm-cable/kennel/renderer"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewWidth = 720
	panelWidth   = windowWidth - previewWidth - 30
)

// previewParams holds the tunable search parameters.
type previewParams struct {
	CellSize    float32
	ProbeRadius float32 // 0 = one cell size
	Heuristic   int     // index into navigation.HeuristicNames
	Corners     bool
	Trace       bool
}

// yardQuery is what the preview needs from a layout.
type yardQuery struct {
	query     navigation.ObstacleQuery
	obstacles []obstacles.Obstacle
	active    func(layer string) bool
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	layoutPath := flag.String("layout", "", "Obstacle layout file (empty = obstacles.layout_path)")
	breedName := flag.String("breed", "", "Breed whose obstacle layers apply (empty = first breed)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	path := cfg.Obstacles.LayoutPath
	if *layoutPath != "" {
		path = *layoutPath
	}
	breed := cfg.Breeds[0]
	if *breedName != "" {
		i, ok := cfg.Derived.BreedIndex[*breedName]
		if !ok {
			slog.Error("unknown breed", "breed", *breedName)
			os.Exit(1)
		}
		breed = cfg.Breeds[i]
	}

	yard, err := loadYard(path, cfg.Navigation.ObstacleLayers, breed.ObstacleLayers)
	if err != nil {
		slog.Error("failed to load layout", "path", path, "error", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Grid Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	bounds := cfg.Derived.Bounds
	cam := camera.New(previewWidth, windowHeight, bounds)
	draw := renderer.NewYardRenderer(cam)

	heuristics := navigation.HeuristicNames()
	defaults := previewParams{
		CellSize:    float32(cfg.Navigation.CellSize),
		ProbeRadius: float32(cfg.Navigation.ProbeRadius),
		Heuristic:   indexOf(heuristics, cfg.Navigation.Heuristic),
		Corners:     cfg.Navigation.CornerCutting,
		Trace:       true,
	}
	params := defaults

	start := bounds.Min().Add(bounds.Size.Scale(0.1))
	goal := bounds.Max().Sub(bounds.Size.Scale(0.1))

	var (
		finder    *navigation.Pathfinder
		res       navigation.Result
		searchErr error
	)
	needsRebuild := true
	needsSearch := true

	for !rl.WindowShouldClose() {
		if needsRebuild {
			finder = newFinder(bounds, yard.query, params, heuristics)
			finder.BuildGrid()
			needsRebuild = false
			needsSearch = true
		}
		if needsSearch {
			finder.SetTrace(params.Trace)
			res, searchErr = finder.FindPath(start, goal)
			needsSearch = false
		}

		// Preview input: left click = start, right click = goal
		mouse := rl.GetMousePosition()
		if mouse.X < previewWidth {
			wx, wy := cam.ScreenToWorld(mouse.X, mouse.Y)
			p := navigation.Vec2{X: wx, Y: wy}
			if bounds.Contains(p) {
				if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
					start = p
					needsSearch = true
				}
				if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
					goal = p
					needsSearch = true
				}
			}
			if wheel := rl.GetMouseWheelMove(); wheel != 0 {
				cam.ZoomBy(1 + wheel*0.1)
			}
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Draw preview
		rl.BeginScissorMode(0, 0, previewWidth, windowHeight)
		rl.ClearBackground(rl.DarkGray)
		grid := finder.Grid()
		draw.DrawBackground(bounds)
		draw.DrawWalkability(grid)
		if params.Trace {
			draw.DrawSearch(grid, res.Expanded)
		}
		draw.DrawGridLines(grid)
		draw.DrawObstacles(yard.obstacles, yard.active)
		draw.DrawPath(start, res.Path, rl.Yellow)
		draw.DrawGoal(start, rl.SkyBlue)
		draw.DrawGoal(goal, rl.Orange)
		rl.EndScissorMode()

		// Control panel
		panelX := float32(previewWidth + 20)
		panelY := float32(10)

		rl.DrawText("Grid Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		// Cell size slider
		rl.DrawText("Cell size (world units)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newCell := gui.SliderBar(
			rl.Rectangle{X: panelX + 30, Y: panelY, Width: float32(panelWidth - 110), Height: 20},
			"0.25", "4.0",
			params.CellSize, 0.25, 4.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.CellSize), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newCell != params.CellSize {
			params.CellSize = newCell
			needsRebuild = true
		}
		panelY += 35

		// Probe radius slider
		rl.DrawText("Probe radius (0 = one cell)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newProbe := gui.SliderBar(
			rl.Rectangle{X: panelX + 30, Y: panelY, Width: float32(panelWidth - 110), Height: 20},
			"0", "3.0",
			params.ProbeRadius, 0, 3.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.ProbeRadius), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newProbe != params.ProbeRadius {
			params.ProbeRadius = newProbe
			needsRebuild = true
		}
		panelY += 45

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 160, Height: 30}, heuristics[params.Heuristic]) {
			params.Heuristic = (params.Heuristic + 1) % len(heuristics)
			h, _ := navigation.HeuristicByName(heuristics[params.Heuristic])
			finder.SetHeuristic(h)
			needsSearch = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 170, Y: panelY, Width: 160, Height: 30}, toggleText(params.Corners, "Corners: on", "Corners: off")) {
			params.Corners = !params.Corners
			finder.SetCornerCutting(params.Corners)
			needsSearch = true
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 160, Height: 30}, toggleText(params.Trace, "Trace: on", "Trace: off")) {
			params.Trace = !params.Trace
			needsSearch = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 170, Y: panelY, Width: 160, Height: 30}, "Reset All") {
			params = defaults
			needsRebuild = true
		}
		panelY += 55

		// Search result
		rl.DrawText("Search:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		lines := []string{
			fmt.Sprintf("status: %s", res.Status),
			fmt.Sprintf("grid: %d x %d", grid.Cols(), grid.Rows()),
			fmt.Sprintf("expansions: %d", res.Expansions),
			fmt.Sprintf("cost: %.2f", res.Cost),
			fmt.Sprintf("waypoints: %d", len(res.Path)),
			fmt.Sprintf("search: %s", res.SearchTime),
		}
		if searchErr != nil {
			lines = append(lines, fmt.Sprintf("error: %v", searchErr))
		}
		for _, line := range lines {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
		}
		panelY += 20

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		for _, line := range yamlLines(params, heuristics) {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		// Instructions
		rl.DrawText("Left click start, right click goal, C copies YAML", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)

		// Copy to clipboard on C key
		if rl.IsKeyPressed(rl.KeyC) {
			var yaml string
			for _, line := range yamlLines(params, heuristics) {
				yaml += line + "\n"
			}
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

// loadYard builds the breed's view of a layout. An empty path is an open yard.
func loadYard(path string, layers, breedLayers []string) (yardQuery, error) {
	if path == "" {
		return yardQuery{query: navigation.NoObstacles}, nil
	}
	layout, err := obstacles.LoadLayout(path)
	if err != nil {
		return yardQuery{}, err
	}
	space, err := obstacles.NewSpace(layout, layers)
	if err != nil {
		return yardQuery{}, err
	}
	view, err := space.View(breedLayers)
	if err != nil {
		return yardQuery{}, err
	}
	return yardQuery{query: view, obstacles: space.Obstacles(), active: view.Active}, nil
}

func newFinder(bounds navigation.Bounds, query navigation.ObstacleQuery, params previewParams, heuristics []string) *navigation.Pathfinder {
	h, err := navigation.HeuristicByName(heuristics[params.Heuristic])
	if err != nil {
		h = navigation.Euclidean
	}
	return navigation.NewPathfinder(bounds, query,
		navigation.WithCellSize(float64(params.CellSize)),
		navigation.WithProbeRadius(float64(params.ProbeRadius)),
		navigation.WithHeuristic(h),
		navigation.WithCornerCutting(params.Corners),
		navigation.WithTrace(params.Trace),
	)
}

func yamlLines(params previewParams, heuristics []string) []string {
	return []string{
		"navigation:",
		fmt.Sprintf("  cell_size: %.2f", params.CellSize),
		fmt.Sprintf("  probe_radius: %.2f", params.ProbeRadius),
		fmt.Sprintf("  heuristic: %s", heuristics[params.Heuristic]),
		fmt.Sprintf("  corner_cutting: %t", params.Corners),
	}
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return 0
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
