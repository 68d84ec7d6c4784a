package systems

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/kennel/config"
	"github.com/pthm-cable/kennel/navigation"
	"github.com/pthm-cable/kennel/obstacles"
)

// hedgeLayout splits the yard with a hedge along column 5.
func hedgeLayout() *obstacles.Layout {
	return &obstacles.Layout{
		Layers: []string{"wall", "hedge"},
		Obstacles: []obstacles.Obstacle{
			{Name: "hedge", Layer: "hedge", Kind: obstacles.KindBox, X: 5.5, Y: 5, W: 1, H: 10},
		},
	}
}

var testBreeds = []config.BreedConfig{
	{Name: "terrier", SpeedScale: 1, ProbeSize: 0.5, ObstacleLayers: []string{"wall"}},
	{Name: "newfoundland", SpeedScale: 1, ProbeSize: 0.5},
}

func newTestPlanner(t *testing.T, space *obstacles.Space) *Planner {
	t.Helper()
	p, err := NewPlanner(space, yard, testBreeds, nil, navigation.WithProbeRadius(0.25))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func mustSpace(t *testing.T, l *obstacles.Layout) *obstacles.Space {
	t.Helper()
	s, err := obstacles.NewSpace(l, nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestPlannerPerBreedLayers(t *testing.T) {
	p := newTestPlanner(t, mustSpace(t, hedgeLayout()))

	res, err := p.Plan(0, v(0.5, 0.5), v(9.5, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found() || math.Abs(res.Cost-9) > 1e-9 {
		t.Errorf("terrier: status %v cost %v, want found with cost 9", res.Status, res.Cost)
	}

	res, err = p.Plan(1, v(0.5, 0.5), v(9.5, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	if res.Found() {
		t.Error("newfoundland should not get past the hedge")
	}
}

func TestPlannerSetSpace(t *testing.T) {
	p := newTestPlanner(t, mustSpace(t, hedgeLayout()))

	if p.Grid(1).IsWalkable(navigation.Coord{Col: 5, Row: 0}) {
		t.Fatal("hedge cell should be blocked")
	}

	if err := p.SetSpace(mustSpace(t, &obstacles.Layout{Layers: []string{"wall", "hedge"}})); err != nil {
		t.Fatal(err)
	}
	if !p.Grid(1).IsWalkable(navigation.Coord{Col: 5, Row: 0}) {
		t.Error("grid not rebuilt after the space changed")
	}
	res, err := p.Plan(1, v(0.5, 0.5), v(9.5, 0.5))
	if err != nil || !res.Found() {
		t.Errorf("newfoundland: status %v err %v, want found", res.Status, err)
	}

	// a layout without the breed's layers cannot serve it
	if err := p.SetSpace(mustSpace(t, &obstacles.Layout{})); !errors.Is(err, obstacles.ErrUnknownLayer) {
		t.Errorf("err = %v, want ErrUnknownLayer", err)
	}
}

func TestPlannerInvalidate(t *testing.T) {
	space := mustSpace(t, hedgeLayout())
	p := newTestPlanner(t, space)

	if p.Grid(1).IsWalkable(navigation.Coord{Col: 5, Row: 0}) {
		t.Fatal("hedge cell should be blocked")
	}
	if err := space.Move("hedge", 20, 20); err != nil {
		t.Fatal(err)
	}
	if p.Grid(1).IsWalkable(navigation.Coord{Col: 5, Row: 0}) {
		t.Error("grid should stay cached until invalidated")
	}
	p.Invalidate()
	if !p.Grid(1).IsWalkable(navigation.Coord{Col: 5, Row: 0}) {
		t.Error("grid not rebuilt after Invalidate")
	}
}

func TestPlannerRandomGoal(t *testing.T) {
	p := newTestPlanner(t, mustSpace(t, hedgeLayout()))
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 50; i++ {
		goal, err := p.RandomGoal(1, rng, 32)
		if err != nil {
			t.Fatal(err)
		}
		if goal.X > 5 && goal.X < 6 {
			t.Fatalf("goal %v lies in the hedge", goal)
		}
		if !yard.Contains(goal) {
			t.Fatalf("goal %v outside the yard", goal)
		}
	}
}

func TestPlannerUnknownBreed(t *testing.T) {
	p := newTestPlanner(t, nil)

	if p.Len() != 2 || p.Breed(1).Name != "newfoundland" {
		t.Errorf("breeds = %d, breed 1 = %q", p.Len(), p.Breed(1).Name)
	}
	if p.Finder(7) != nil || p.Grid(7) != nil {
		t.Error("unknown breed should have no pathfinder")
	}
	if _, err := p.Plan(7, v(0, 0), v(1, 1)); !errors.Is(err, ErrUnknownBreed) {
		t.Errorf("Plan err = %v, want ErrUnknownBreed", err)
	}
	if _, err := p.RandomGoal(7, rand.New(rand.NewSource(1)), 4); !errors.Is(err, ErrUnknownBreed) {
		t.Errorf("RandomGoal err = %v, want ErrUnknownBreed", err)
	}
}

func TestPlannerSettingsApplyToEveryBreed(t *testing.T) {
	p := newTestPlanner(t, nil)

	p.SetHeuristic(navigation.Manhattan)
	p.SetCornerCutting(false)
	for i := 0; i < p.Len(); i++ {
		opts := p.Finder(uint8(i)).Options()
		if opts.CornerCutting {
			t.Errorf("breed %d still cuts corners", i)
		}
		if opts.Heuristic(3, 4) != 7 {
			t.Errorf("breed %d heuristic not switched", i)
		}
	}
}
