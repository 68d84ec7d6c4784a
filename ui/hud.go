package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/kennel/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	Dogs          int
	Walking       int
	Requests      int
	Failures      int
	Tick          int32
	Speed         int
	FPS           int32
	Paused        bool
	Heuristic     string
	CornerCutting bool
	Rally         bool
	RallyX        float64
	RallyY        float64
	Subscribers   int
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Dogs: %d | Walking: %d | Idle: %d", data.Dogs, data.Walking, data.Dogs-data.Walking),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", data.Tick, data.Speed, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	corner := "off"
	if data.CornerCutting {
		corner = "on"
	}
	rl.DrawText(
		fmt.Sprintf("Heuristic: %s | Corner cutting: %s | Paths: %d (%d failed)",
			data.Heuristic, corner, data.Requests, data.Failures),
		10, 75, 16, rl.LightGray,
	)

	y := int32(95)
	if data.Rally {
		rl.DrawText(fmt.Sprintf("Rally at (%.1f, %.1f)", data.RallyX, data.RallyY), 10, y, 16, rl.Orange)
		y += 20
	}
	if data.Subscribers > 0 {
		rl.DrawText(fmt.Sprintf("Viewers: %d", data.Subscribers), 10, y, 16, rl.SkyBlue)
		y += 20
	}
	if data.Paused {
		rl.DrawText("PAUSED", 10, y, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the tick phase breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	padding := r.Theme.Padding
	lines := int32(len(telemetry.Phases) + 4)
	r.DrawPanel(p.x, p.y, p.width, lines*14+padding*2+20)

	x := p.x + padding
	y := p.y + padding

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s (max %s)",
		stats.AvgTickDuration.Round(time.Microsecond), stats.MaxTickDuration.Round(time.Microsecond)),
		x, y, 14, rl.Yellow)
	y += 16

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, phaseColor(pct),
		)
		y += 14
	}

	rl.DrawText(fmt.Sprintf("  grid build %8s %5.1f%%", stats.AvgGridBuild.Round(time.Microsecond), stats.GridBuildPct),
		x, y, 12, phaseColor(stats.GridBuildPct))
	y += 14
	rl.DrawText(fmt.Sprintf("  search     %8s %5.1f%%", stats.AvgSearch.Round(time.Microsecond), stats.SearchPct),
		x, y, 12, phaseColor(stats.SearchPct))
	y += 14
	rl.DrawText(fmt.Sprintf("Requests/s: %.0f", stats.RequestsPerSec), x, y, 12, rl.LightGray)
}

func phaseColor(pct float64) rl.Color {
	switch {
	case pct > 50:
		return rl.Red
	case pct > 20:
		return rl.Orange
	}
	return rl.LightGray
}
