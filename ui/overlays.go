package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayObstacles   OverlayID = "obstacles"
	OverlayNames       OverlayID = "names"
	OverlayGoals       OverlayID = "goals"
	OverlayWalkability OverlayID = "walkability"
	OverlayGridLines   OverlayID = "grid_lines"
	OverlaySearch      OverlayID = "search"
	OverlayPaths       OverlayID = "paths"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID   // Unique identifier
	Name        string      // Display name
	Description string      // What this overlay shows
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display (e.g., "S", "V")
	Category    string      // Grouping (e.g., "yard", "navigation")
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
	Default     bool        // Enabled at startup
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
	order       []OverlayID // Maintains insertion order for display
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds standard overlays.
func (r *OverlayRegistry) registerDefaults() {
	// Yard overlays
	r.Register(OverlayDescriptor{
		ID:          OverlayObstacles,
		Name:        "Obstacles",
		Description: "Draw obstacle shapes colored by layer",
		Key:         rl.KeyO,
		KeyLabel:    "O",
		Category:    "yard",
		Default:     true,
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayNames,
		Name:        "Names",
		Description: "Label dogs with their names",
		Key:         rl.KeyN,
		KeyLabel:    "N",
		Category:    "yard",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayGoals,
		Name:        "Goals",
		Description: "Mark each walking dog's goal",
		Key:         rl.KeyT,
		KeyLabel:    "T",
		Category:    "yard",
	})

	// Navigation overlays
	r.Register(OverlayDescriptor{
		ID:          OverlayWalkability,
		Name:        "Walkability",
		Description: "Shade blocked cells of the selected breed's grid",
		Key:         rl.KeyG,
		KeyLabel:    "G",
		Category:    "navigation",
		Exclusive:   []OverlayID{OverlaySearch},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayGridLines,
		Name:        "Grid Lines",
		Description: "Draw cell boundaries",
		Key:         rl.KeyL,
		KeyLabel:    "L",
		Category:    "navigation",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlaySearch,
		Name:        "Search Trace",
		Description: "Shade cells expanded by the selected dog's last search",
		Key:         rl.KeyE,
		KeyLabel:    "E",
		Category:    "navigation",
		Exclusive:   []OverlayID{OverlayWalkability},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayPaths,
		Name:        "Paths",
		Description: "Draw remaining waypoints",
		Key:         rl.KeyP,
		KeyLabel:    "P",
		Category:    "navigation",
		Default:     true,
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.order = append(r.order, desc.ID)
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	newState := !r.enabled[id]
	r.SetEnabled(id, newState)
	return newState
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}

	r.enabled[id] = enabled

	// If enabling, disable exclusive overlays
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// Get returns an overlay descriptor by ID.
func (r *OverlayRegistry) Get(id OverlayID) (OverlayDescriptor, bool) {
	desc, ok := r.byID[id]
	return desc, ok
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			newState := r.Toggle(desc.ID)
			return desc.ID, newState, true
		}
	}
	return "", false, false
}

// EnabledOverlays returns a list of currently enabled overlay IDs.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var result []OverlayID
	for _, id := range r.order {
		if r.enabled[id] {
			result = append(result, id)
		}
	}
	return result
}
