package ui

import (
	"slices"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestOverlayDefaults(t *testing.T) {
	reg := NewOverlayRegistry()

	got := reg.EnabledOverlays()
	want := []OverlayID{OverlayObstacles, OverlayPaths}
	if !slices.Equal(got, want) {
		t.Errorf("enabled at startup = %v, want %v", got, want)
	}
	if cats := reg.Categories(); !slices.Equal(cats, []string{"yard", "navigation"}) {
		t.Errorf("categories = %v", cats)
	}
	if n := len(reg.ByCategory("navigation")); n != 4 {
		t.Errorf("navigation overlays = %d, want 4", n)
	}
}

func TestOverlayExclusive(t *testing.T) {
	reg := NewOverlayRegistry()

	if !reg.Toggle(OverlayWalkability) {
		t.Fatal("walkability should turn on")
	}
	reg.SetEnabled(OverlaySearch, true)
	if reg.IsEnabled(OverlayWalkability) {
		t.Error("enabling the search trace should hide walkability")
	}

	// disabling does not touch the exclusive partner
	reg.SetEnabled(OverlaySearch, false)
	if reg.IsEnabled(OverlayWalkability) || reg.IsEnabled(OverlaySearch) {
		t.Error("both overlays should be off")
	}
}

func TestOverlayKeys(t *testing.T) {
	reg := NewOverlayRegistry()

	id, on, ok := reg.HandleKeyPress(rl.KeyP)
	if !ok || id != OverlayPaths || on {
		t.Errorf("P toggled (%q, %v, %v), want paths off", id, on, ok)
	}
	if _, _, ok := reg.HandleKeyPress(rl.KeySpace); ok {
		t.Error("space is not an overlay key")
	}

	seen := map[int32]OverlayID{}
	for _, d := range reg.All() {
		if prev, dup := seen[d.Key]; dup {
			t.Errorf("%s and %s share a key", prev, d.ID)
		}
		seen[d.Key] = d.ID
	}
}

func TestToggleUnknownOverlay(t *testing.T) {
	reg := NewOverlayRegistry()
	if reg.Toggle("sonar") {
		t.Error("unknown overlay should not turn on")
	}
	if _, ok := reg.Get("sonar"); ok {
		t.Error("unknown overlay should not be registered")
	}
}
