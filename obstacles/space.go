package obstacles

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/pthm-cable/kennel/navigation"
)

const allLayers = ^uint(0)

// Space holds the obstacles of one layout as static chipmunk shapes. Each
// shape carries its layer bit as filter category, so queries can select a
// subset of layers.
//
// Space is not safe for concurrent use.
type Space struct {
	space  *cp.Space
	layout *Layout
	mask   uint

	obstacles []Obstacle
	shapes    []*cp.Shape
	byName    map[string]int
}

var (
	_ navigation.ObstacleQuery = (*Space)(nil)
	_ navigation.BoxQuery      = (*Space)(nil)
)

// NewSpace builds a space from layout. layers selects the layers that block
// navigation; empty means all of them.
func NewSpace(layout *Layout, layers []string) (*Space, error) {
	if layout == nil {
		layout = &Layout{}
	}
	mask, err := layout.LayerMask(layers)
	if err != nil {
		return nil, err
	}

	s := &Space{
		space:  cp.NewSpace(),
		layout: layout,
		mask:   mask,
		byName: make(map[string]int),
	}
	for _, o := range layout.All() {
		if err := s.add(o); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Space) add(o Obstacle) error {
	layer, err := s.layout.layerIndex(o.Layer)
	if err != nil {
		return err
	}
	idx := len(s.obstacles)
	shape := s.newShape(o)
	shape.Filter = cp.NewShapeFilter(cp.NO_GROUP, 1<<uint(layer), cp.ALL_CATEGORIES)
	shape.UserData = idx
	s.space.AddShape(shape)

	s.obstacles = append(s.obstacles, o)
	s.shapes = append(s.shapes, shape)
	if o.Name != "" {
		s.byName[o.Name] = idx
	}
	return nil
}

func (s *Space) newShape(o Obstacle) *cp.Shape {
	body := s.space.StaticBody
	if o.Kind == KindCircle {
		return cp.NewCircle(body, o.R, cp.Vector{X: o.X, Y: o.Y})
	}
	bb := cp.NewBBForExtents(cp.Vector{X: o.X, Y: o.Y}, o.W/2, o.H/2)
	return cp.NewBox2(body, bb, 0)
}

// Layout returns the layout the space was built from.
func (s *Space) Layout() *Layout { return s.layout }

// Obstacles returns the current obstacles including merged tile rectangles.
// Callers must not modify the slice.
func (s *Space) Obstacles() []Obstacle { return s.obstacles }

// Len returns the number of shapes in the space.
func (s *Space) Len() int { return len(s.shapes) }

// Active reports whether obstacles on layer take part in queries.
func (s *Space) Active(layer string) bool {
	i, err := s.layout.layerIndex(layer)
	return err == nil && s.mask&(1<<uint(i)) != 0
}

func queryFilter(mask uint) cp.ShapeFilter {
	return cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, mask)
}

// IsBlocked reports whether any selected obstacle lies within radius of p.
// A point inside an obstacle is always blocked.
func (s *Space) IsBlocked(p navigation.Vec2, radius float64) bool {
	return s.isBlocked(p, radius, s.mask)
}

// IsBoxBlocked reports whether any selected obstacle overlaps the open box
// with the given center and half extents. Touching edges do not block.
func (s *Space) IsBoxBlocked(center, half navigation.Vec2) bool {
	return s.isBoxBlocked(center, half, s.mask)
}

func (s *Space) isBlocked(p navigation.Vec2, radius float64, mask uint) bool {
	info := s.space.PointQueryNearest(cp.Vector{X: p.X, Y: p.Y}, math.Max(radius, 0), queryFilter(mask))
	return info.Shape != nil
}

func (s *Space) isBoxBlocked(center, half navigation.Vec2, mask uint) bool {
	bb := cp.NewBBForExtents(cp.Vector{X: center.X, Y: center.Y}, half.X, half.Y)
	blocked := false
	s.space.BBQuery(bb, queryFilter(mask), func(shape *cp.Shape, _ interface{}) {
		if blocked {
			return
		}
		idx, ok := shape.UserData.(int)
		if ok && overlapsBox(s.obstacles[idx], center, half) {
			blocked = true
		}
	}, nil)
	return blocked
}

// View is an obstacle query over its own subset of a space's layers. Views
// share the space, so Move is visible through every view.
type View struct {
	space *Space
	mask  uint
}

var (
	_ navigation.ObstacleQuery = (*View)(nil)
	_ navigation.BoxQuery      = (*View)(nil)
)

// View returns a query that only sees the named layers; empty means all.
func (s *Space) View(layers []string) (*View, error) {
	mask, err := s.layout.LayerMask(layers)
	if err != nil {
		return nil, err
	}
	return &View{space: s, mask: mask}, nil
}

// IsBlocked is Space.IsBlocked restricted to the view's layers.
func (v *View) IsBlocked(p navigation.Vec2, radius float64) bool {
	return v.space.isBlocked(p, radius, v.mask)
}

// IsBoxBlocked is Space.IsBoxBlocked restricted to the view's layers.
func (v *View) IsBoxBlocked(center, half navigation.Vec2) bool {
	return v.space.isBoxBlocked(center, half, v.mask)
}

// Active reports whether obstacles on layer are visible to the view.
func (v *View) Active(layer string) bool {
	i, err := v.space.layout.layerIndex(layer)
	return err == nil && v.mask&(1<<uint(i)) != 0
}

func overlapsBox(o Obstacle, center, half navigation.Vec2) bool {
	if o.Kind == KindCircle {
		nx := math.Max(center.X-half.X, math.Min(o.X, center.X+half.X))
		ny := math.Max(center.Y-half.Y, math.Min(o.Y, center.Y+half.Y))
		return math.Hypot(o.X-nx, o.Y-ny) < o.R
	}
	return math.Abs(o.X-center.X) < o.W/2+half.X &&
		math.Abs(o.Y-center.Y) < o.H/2+half.Y
}

// Move relocates a named obstacle. The next grid build sees the new position.
func (s *Space) Move(name string, x, y float64) error {
	idx, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownObstacle, name)
	}
	o := s.obstacles[idx]
	o.X, o.Y = x, y

	old := s.shapes[idx]
	s.space.RemoveShape(old)
	shape := s.newShape(o)
	shape.Filter = old.Filter
	shape.UserData = idx
	s.space.AddShape(shape)

	s.obstacles[idx] = o
	s.shapes[idx] = shape
	return nil
}
