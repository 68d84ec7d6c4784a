package main

import (
	"testing"

	"github.com/pthm-cable/kennel/config"
	"github.com/pthm-cable/kennel/telemetry"
)

func TestScoreWindowsSkipsWarmup(t *testing.T) {
	windows := []telemetry.PathWindowStats{
		{Requests: 100, Found: 0, ExpansionsMean: 1000},
		{Requests: 10, Found: 9, ExpansionsMean: 50},
		{Requests: 30, Found: 30, ExpansionsMean: 10},
	}
	s := scoreWindows(windows, 100)

	if want := 39.0 / 40.0; s.Success != want {
		t.Errorf("success = %v, want %v", s.Success, want)
	}
	// (10*150 + 30*110) / 40
	if want := 120.0; s.Effort != want {
		t.Errorf("effort = %v, want %v", s.Effort, want)
	}

	if got := scoreWindows(windows[:1], 100); got != (runScore{}) {
		t.Errorf("warmup only = %+v, want zero", got)
	}
}

func TestFitnessPrefersSuccessThenEffort(t *testing.T) {
	const w = 0.05
	good := runScore{Success: 1, Effort: 1000}
	cheap := runScore{Success: 1, Effort: 100}
	poor := runScore{Success: 0.5, Effort: 100}

	if !(cheap.fitness(w) < good.fitness(w)) {
		t.Error("less effort at equal success should score better")
	}
	if !(good.fitness(w) < poor.fitness(w)) {
		t.Error("higher success should outweigh effort")
	}
}

func TestParamVectorRoundTrip(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector(cfg)

	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if d := back[i] - raw[i]; d > 1e-9 || d < -1e-9 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}

	c := cfg.Clone()
	if err := pv.ApplyToConfig(c, []float64{0.5, 0, 0.2, 120, 1}); err != nil {
		t.Fatal(err)
	}
	if c.Navigation.CellSize != 0.5 || c.Derived.GridCols != 160 {
		t.Errorf("cell size %v, cols %d", c.Navigation.CellSize, c.Derived.GridCols)
	}
	got := pv.ExtractFromConfig(c)
	if got[3] != 120 || got[2] != 0.2 {
		t.Errorf("extracted %v", got)
	}

	clamped := pv.Clamp([]float64{-1, 99, 0, 0, 0})
	if clamped[0] != 0.25 || clamped[1] != 2.0 {
		t.Errorf("clamp = %v", clamped)
	}
}
