package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/kennel/components"
	"github.com/pthm-cable/kennel/navigation"
)

func TestSpatialGridQueries(t *testing.T) {
	w := ecs.NewWorld()
	mapper := ecs.NewMap1[components.Position](w)
	posMap := ecs.NewMap[components.Position](w)

	grid := NewSpatialGrid(yard, 2)
	spawn := func(x, y float64) ecs.Entity {
		e := mapper.NewEntity(&components.Position{X: x, Y: y})
		grid.Insert(e, v(x, y))
		return e
	}
	a := spawn(1, 1)
	b := spawn(2, 1)
	c := spawn(8, 8)
	outside := spawn(-5, 20) // clamped into the corner cell

	got := grid.QueryRadiusInto(nil, v(1, 1), 1.5, a, posMap)
	if len(got) != 1 || got[0].E != b || got[0].DX != 1 || got[0].DistSq != 1 {
		t.Errorf("neighbors of a = %+v", got)
	}

	if e, ok := grid.Nearest(v(7.6, 7.9), 1, posMap); !ok || e != c {
		t.Errorf("Nearest = %v %v, want c", e, ok)
	}
	if _, ok := grid.Nearest(v(5, 5), 1, posMap); ok {
		t.Error("nothing should be near the center")
	}
	if e, ok := grid.Nearest(v(-5, 20), 0.1, posMap); !ok || e != outside {
		t.Errorf("out-of-yard entity not found: %v %v", e, ok)
	}

	grid.Clear()
	if got := grid.QueryRadiusInto(nil, v(1, 1), 5, ecs.Entity{}, posMap); len(got) != 0 {
		t.Errorf("cleared grid returned %d neighbors", len(got))
	}
}

func TestSpatialGridQueryCap(t *testing.T) {
	w := ecs.NewWorld()
	mapper := ecs.NewMap1[components.Position](w)
	posMap := ecs.NewMap[components.Position](w)
	grid := NewSpatialGrid(navigation.Bounds{Size: navigation.Vec2{X: 4, Y: 4}}, 1)

	for i := 0; i < MaxQueryResults+10; i++ {
		e := mapper.NewEntity(&components.Position{})
		grid.Insert(e, navigation.Vec2{})
	}
	if got := grid.QueryRadiusInto(nil, navigation.Vec2{}, 1, ecs.Entity{}, posMap); len(got) != MaxQueryResults {
		t.Errorf("got %d neighbors, want cap %d", len(got), MaxQueryResults)
	}
}
