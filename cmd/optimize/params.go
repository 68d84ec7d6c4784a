// Package main provides CMA-ES tuning of kennel navigation parameters.
package main

import (
	"github.com/pthm-cable/kennel/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the tunable parameters, defaulting to cfg's values.
func NewParamVector(cfg *config.Config) *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Grid
			{Name: "cell_size", Path: "navigation.cell_size", Min: 0.25, Max: 2.0, Default: cfg.Navigation.CellSize},
			{Name: "probe_radius", Path: "navigation.probe_radius", Min: 0, Max: 2.0, Default: cfg.Navigation.ProbeRadius},
			// Path following
			{Name: "arrival_dist", Path: "dogs.arrival_dist", Min: 0.05, Max: 1.0, Default: cfg.Dogs.ArrivalDist},
			{Name: "repath_max_age", Path: "dogs.repath_max_age", Min: 30, Max: 600, Default: float64(cfg.Dogs.RepathMaxAge)},
			{Name: "repath_target_drift", Path: "dogs.repath_target_drift", Min: 0.1, Max: 4.0, Default: cfg.Dogs.RepathTargetDrift},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes parameter values into cfg and refreshes its derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	cfg.Navigation.CellSize = clamped[0]
	cfg.Navigation.ProbeRadius = clamped[1]
	cfg.Dogs.ArrivalDist = clamped[2]
	cfg.Dogs.RepathMaxAge = int32(clamped[3])
	cfg.Dogs.RepathTargetDrift = clamped[4]

	return cfg.Recompute()
}

// ExtractFromConfig extracts current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Navigation.CellSize,
		cfg.Navigation.ProbeRadius,
		cfg.Dogs.ArrivalDist,
		float64(cfg.Dogs.RepathMaxAge),
		cfg.Dogs.RepathTargetDrift,
	}
}
