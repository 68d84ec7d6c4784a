// Package obstacles loads yard obstacle layouts and answers navigation
// obstacle queries against them through a chipmunk broad-phase space.
package obstacles

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownLayer is returned when a layer name is not declared by the layout.
	ErrUnknownLayer = errors.New("obstacles: unknown layer")
	// ErrUnknownObstacle is returned when an obstacle name is not in the space.
	ErrUnknownObstacle = errors.New("obstacles: unknown obstacle")
	// ErrInvalidLayout is returned for malformed layouts.
	ErrInvalidLayout = errors.New("obstacles: invalid layout")
)

// maxLayers is the number of layer bits available in a shape filter.
const maxLayers = 32

// Shape kinds.
const (
	KindBox    = "box"
	KindCircle = "circle"
)

// Obstacle is one static obstacle. Boxes use W and H, circles use R. X and Y
// are always the center.
type Obstacle struct {
	Name  string  `yaml:"name"`
	Layer string  `yaml:"layer"`
	Kind  string  `yaml:"kind,omitempty"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	W     float64 `yaml:"w,omitempty"`
	H     float64 `yaml:"h,omitempty"`
	R     float64 `yaml:"r,omitempty"`
}

// TileMap is an optional ASCII block of solid tiles. Any character in Solid
// marks a tile as blocked. Row 0 is the top line of the block and sits at the
// highest Y.
type TileMap struct {
	Layer    string   `yaml:"layer"`
	OriginX  float64  `yaml:"origin_x"`
	OriginY  float64  `yaml:"origin_y"`
	TileSize float64  `yaml:"tile_size"`
	Solid    string   `yaml:"solid"`
	Rows     []string `yaml:"rows"`
}

// Layout is the on-disk description of a yard.
type Layout struct {
	Layers    []string   `yaml:"layers"`
	Obstacles []Obstacle `yaml:"obstacles"`
	Tiles     *TileMap   `yaml:"tiles,omitempty"`
}

// LoadLayout reads and validates a layout file.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	l, err := ParseLayout(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// ParseLayout decodes and validates layout YAML. Layers that obstacles use
// but the layers list omits are appended in first-seen order.
func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}
	l.normalize()
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

func (l *Layout) normalize() {
	seen := make(map[string]bool, len(l.Layers))
	for _, name := range l.Layers {
		seen[name] = true
	}
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			l.Layers = append(l.Layers, name)
		}
	}
	for i := range l.Obstacles {
		o := &l.Obstacles[i]
		if o.Layer == "" {
			o.Layer = "default"
		}
		if o.Kind == "" {
			o.Kind = KindBox
		}
		add(o.Layer)
	}
	if l.Tiles != nil {
		if l.Tiles.Layer == "" {
			l.Tiles.Layer = "default"
		}
		if l.Tiles.Solid == "" {
			l.Tiles.Solid = "#"
		}
		add(l.Tiles.Layer)
	}
}

// Validate checks obstacle geometry and layer references.
func (l *Layout) Validate() error {
	if len(l.Layers) > maxLayers {
		return fmt.Errorf("%w: %d layers, at most %d", ErrInvalidLayout, len(l.Layers), maxLayers)
	}
	names := make(map[string]bool, len(l.Obstacles))
	for i, o := range l.Obstacles {
		if o.Name != "" {
			if names[o.Name] {
				return fmt.Errorf("%w: duplicate obstacle name %q", ErrInvalidLayout, o.Name)
			}
			names[o.Name] = true
		}
		if _, err := l.layerIndex(o.Layer); err != nil {
			return fmt.Errorf("obstacle %d: %w", i, err)
		}
		switch o.Kind {
		case KindBox:
			if o.W <= 0 || o.H <= 0 {
				return fmt.Errorf("%w: box %d (%s) needs positive w and h", ErrInvalidLayout, i, o.Name)
			}
		case KindCircle:
			if o.R <= 0 {
				return fmt.Errorf("%w: circle %d (%s) needs positive r", ErrInvalidLayout, i, o.Name)
			}
		default:
			return fmt.Errorf("%w: obstacle %d has unknown kind %q", ErrInvalidLayout, i, o.Kind)
		}
	}
	if t := l.Tiles; t != nil && len(t.Rows) > 0 && t.TileSize <= 0 {
		return fmt.Errorf("%w: tiles need a positive tile_size", ErrInvalidLayout)
	}
	return nil
}

func (l *Layout) layerIndex(name string) (int, error) {
	for i, n := range l.Layers {
		if n == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
}

// LayerMask returns the category bits for the named layers. An empty list
// selects every layer.
func (l *Layout) LayerMask(names []string) (uint, error) {
	if len(names) == 0 {
		return allLayers, nil
	}
	var mask uint
	for _, name := range names {
		i, err := l.layerIndex(name)
		if err != nil {
			return 0, err
		}
		mask |= 1 << uint(i)
	}
	return mask, nil
}

// TileRects merges contiguous solid tiles into rectangles, widest run first
// and then as tall as the run allows. Rectangles are returned as obstacles on
// the tile layer.
func (t *TileMap) TileRects() []Obstacle {
	if t == nil || len(t.Rows) == 0 || t.TileSize <= 0 {
		return nil
	}
	height := len(t.Rows)
	width := 0
	for _, row := range t.Rows {
		width = max(width, len(row))
	}
	solid := func(x, y int) bool {
		row := t.Rows[y]
		return x < len(row) && strings.IndexByte(t.Solid, row[x]) >= 0
	}

	processed := make([]bool, width*height)
	var out []Obstacle
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if processed[idx] || !solid(x, y) {
				processed[idx] = true
				continue
			}

			w := 1
			for x+w < width && !processed[y*width+x+w] && solid(x+w, y) {
				w++
			}
			h := 1
		grow:
			for y+h < height {
				for xi := x; xi < x+w; xi++ {
					if processed[(y+h)*width+xi] || !solid(xi, y+h) {
						break grow
					}
				}
				h++
			}
			for yy := y; yy < y+h; yy++ {
				for xx := x; xx < x+w; xx++ {
					processed[yy*width+xx] = true
				}
			}

			ts := t.TileSize
			top := t.OriginY + float64(height)*ts - float64(y)*ts
			out = append(out, Obstacle{
				Name:  fmt.Sprintf("tiles_%d_%d", x, y),
				Layer: t.Layer,
				Kind:  KindBox,
				X:     t.OriginX + (float64(x)+float64(w)/2)*ts,
				Y:     top - float64(h)*ts/2,
				W:     float64(w) * ts,
				H:     float64(h) * ts,
			})
		}
	}
	return out
}

// All returns the explicit obstacles followed by merged tile rectangles.
func (l *Layout) All() []Obstacle {
	out := make([]Obstacle, 0, len(l.Obstacles))
	out = append(out, l.Obstacles...)
	return append(out, l.Tiles.TileRects()...)
}
