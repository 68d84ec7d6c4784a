package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// DogView is the inspector's read-only copy of a selected dog.
type DogView struct {
	Name       string
	Breed      string
	BreedColor rl.Color
	Activity   string
	X, Y       float64
	Speed      float64
	IdleTimer  float64

	Walking   bool
	GoalX     float64
	GoalY     float64
	Waypoints int
	Remaining int
	PathAge   int32 // ticks since the path was planned

	Requests int
	Failures int
	Distance float64
}

// Progress is the share of the current path already walked.
func (d *DogView) Progress() float32 {
	if d.Waypoints == 0 {
		return 0
	}
	return 1 - float32(d.Remaining)/float32(d.Waypoints)
}

// SuccessRate is the share of path requests that found a path.
func (d *DogView) SuccessRate() float32 {
	if d.Requests == 0 {
		return 1
	}
	return float32(d.Requests-d.Failures) / float32(d.Requests)
}

func dog(data any) *DogView { return data.(*DogView) }

// DogSections describes the inspector layout.
func DogSections() []SectionDescriptor {
	return []SectionDescriptor{
		{
			ID: "identity",
			Fields: []FieldDescriptor{
				{ID: "breed", Label: "Breed", Widget: WidgetText, TextGetter: func(d any) string { return dog(d).Breed }},
				{ID: "breed_color", Label: "Color", Widget: WidgetColorSwatch, ColorGetter: func(d any) rl.Color { return dog(d).BreedColor }},
				{ID: "activity", Label: "Activity", Widget: WidgetText, TextGetter: func(d any) string { return dog(d).Activity }},
				{ID: "position", Label: "Position", Widget: WidgetText, TextGetter: func(d any) string {
					return fmt.Sprintf("(%.1f, %.1f)", dog(d).X, dog(d).Y)
				}},
				{ID: "speed", Label: "Speed", Widget: WidgetText, Format: "%.2f u/s", Getter: func(d any) float32 { return float32(dog(d).Speed) }},
				{ID: "idle", Label: "Idle for", Widget: WidgetText, Format: "%.1f s",
					Getter:  func(d any) float32 { return float32(dog(d).IdleTimer) },
					Visible: func(d any) bool { return !dog(d).Walking },
				},
			},
		},
		{
			ID:      "path",
			Title:   "Path",
			Visible: func(d any) bool { return dog(d).Walking },
			Fields: []FieldDescriptor{
				{ID: "goal", Label: "Goal", Widget: WidgetText, TextGetter: func(d any) string {
					return fmt.Sprintf("(%.1f, %.1f)", dog(d).GoalX, dog(d).GoalY)
				}},
				{ID: "waypoints", Label: "Waypoints", Widget: WidgetText, TextGetter: func(d any) string {
					return fmt.Sprintf("%d of %d left", dog(d).Remaining, dog(d).Waypoints)
				}},
				{ID: "progress", Label: "Progress", Widget: WidgetBar, Getter: func(d any) float32 { return dog(d).Progress() }},
				{ID: "age", Label: "Age", Widget: WidgetText, TextGetter: func(d any) string {
					return fmt.Sprintf("%d ticks", dog(d).PathAge)
				}},
			},
		},
		{
			ID:    "history",
			Title: "History",
			Fields: []FieldDescriptor{
				{ID: "requests", Label: "Requests", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 { return float32(dog(d).Requests) }},
				{ID: "success", Label: "Found", Widget: WidgetBar, Getter: func(d any) float32 { return dog(d).SuccessRate() }},
				{ID: "distance", Label: "Walked", Widget: WidgetText, Format: "%.1f u", Getter: func(d any) float32 { return float32(dog(d).Distance) }},
			},
		},
	}
}

// Inspector renders the selected dog's panel.
type Inspector struct {
	renderer *Renderer
	sections []SectionDescriptor
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		sections: DogSections(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel for the given dog.
func (ins *Inspector) Draw(data *DogView) int32 {
	r := ins.renderer
	padding := r.Theme.Padding

	height := padding*2 + r.Theme.LineHeight + 4
	for _, sd := range ins.sections {
		height += r.SectionHeight(sd, data)
	}
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	y := ins.y + padding
	rl.DrawText(data.Name, ins.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	for _, sd := range ins.sections {
		y = r.DrawSection(ins.x+padding, y, sd, data, ins.width-padding*2)
	}
	return y
}
