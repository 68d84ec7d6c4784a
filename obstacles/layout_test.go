package obstacles

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLayout(t *testing.T) {
	l, err := LoadLayout(filepath.Join("testdata", "small.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Obstacles) != 2 {
		t.Fatalf("got %d obstacles, want 2", len(l.Obstacles))
	}
	if l.Obstacles[0].Kind != KindBox {
		t.Errorf("default kind = %q, want box", l.Obstacles[0].Kind)
	}
	if l.Obstacles[1].Kind != KindCircle || l.Obstacles[1].R != 1 {
		t.Errorf("circle decoded as %+v", l.Obstacles[1])
	}
}

func TestLoadYardLayout(t *testing.T) {
	l, err := LoadLayout(filepath.Join("..", "layouts", "yard.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewSpace(l, nil); err != nil {
		t.Fatal(err)
	}
}

func TestLoadLayoutMissingFile(t *testing.T) {
	if _, err := LoadLayout(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestParseLayoutAddsUndeclaredLayers(t *testing.T) {
	l, err := ParseLayout([]byte(`
layers: [fence]
obstacles:
  - {x: 0, y: 0, w: 1, h: 1}
  - {layer: pond, kind: circle, x: 3, y: 3, r: 1}
  - {layer: fence, x: 0, y: 5, w: 1, h: 1}
`))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"fence", "default", "pond"}
	if len(l.Layers) != len(want) {
		t.Fatalf("layers = %v, want %v", l.Layers, want)
	}
	for i := range want {
		if l.Layers[i] != want[i] {
			t.Fatalf("layers = %v, want %v", l.Layers, want)
		}
	}
}

func TestParseLayoutRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero width box", `obstacles: [{x: 0, y: 0, w: 0, h: 1}]`},
		{"circle without radius", `obstacles: [{kind: circle, x: 0, y: 0}]`},
		{"unknown kind", `obstacles: [{kind: star, x: 0, y: 0, w: 1, h: 1}]`},
		{"duplicate name", `obstacles: [{name: a, x: 0, y: 0, w: 1, h: 1}, {name: a, x: 2, y: 0, w: 1, h: 1}]`},
		{"tiles without size", "tiles:\n  rows: [\"#\"]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseLayout([]byte(tc.yaml)); !errors.Is(err, ErrInvalidLayout) {
				t.Errorf("err = %v, want ErrInvalidLayout", err)
			}
		})
	}
}

func TestParseLayoutBadYAML(t *testing.T) {
	if _, err := ParseLayout([]byte("obstacles: [")); err == nil {
		t.Error("expected a parse error")
	}
}

func TestLayerMask(t *testing.T) {
	l := &Layout{Layers: []string{"a", "b", "c"}}

	mask, err := l.LayerMask([]string{"a", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if mask != 0b101 {
		t.Errorf("mask = %b, want 101", mask)
	}
	if all, _ := l.LayerMask(nil); all != allLayers {
		t.Errorf("empty selection = %b, want all layers", all)
	}
	if _, err := l.LayerMask([]string{"d"}); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("err = %v, want ErrUnknownLayer", err)
	}
}

func TestTileRectsMerge(t *testing.T) {
	tm := &TileMap{
		Layer:    "fence",
		TileSize: 2,
		Solid:    "#",
		Rows: []string{
			"####",
			"#..#",
			"#..#",
		},
	}
	rects := tm.TileRects()
	// top run, then left and right columns below it
	if len(rects) != 3 {
		t.Fatalf("got %d rects: %+v", len(rects), rects)
	}

	top := rects[0]
	if top.W != 8 || top.H != 2 || top.X != 4 || top.Y != 5 {
		t.Errorf("top rect = %+v", top)
	}
	left := rects[1]
	if left.W != 2 || left.H != 4 || left.X != 1 || left.Y != 2 {
		t.Errorf("left rect = %+v", left)
	}

	var area float64
	for _, r := range rects {
		area += r.W * r.H
		if r.Layer != "fence" {
			t.Errorf("rect layer = %q", r.Layer)
		}
	}
	if area != 8*4 {
		t.Errorf("covered area = %f, want one per solid tile", area)
	}
}

func TestTileRectsRaggedRows(t *testing.T) {
	tm := &TileMap{TileSize: 1, Solid: "#", Rows: []string{"#", "###"}}
	var area float64
	for _, r := range tm.TileRects() {
		area += r.W * r.H
	}
	if area != 4 {
		t.Errorf("area = %f, want 4", area)
	}
}
