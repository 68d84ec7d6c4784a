// Package stream publishes kennel snapshots to websocket clients and
// relays their commands back to the simulation.
package stream

// DogState is one dog in a snapshot.
type DogState struct {
	ID        uint32       `json:"id"`
	Name      string       `json:"name"`
	Breed     string       `json:"breed"`
	X         float64      `json:"x"`
	Y         float64      `json:"y"`
	Activity  string       `json:"activity"`
	Waypoints [][2]float64 `json:"waypoints,omitempty"` // remaining path
}

// ObstacleState is one obstacle in a snapshot.
type ObstacleState struct {
	Name  string  `json:"name,omitempty"`
	Layer string  `json:"layer"`
	Kind  string  `json:"kind"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w,omitempty"`
	H     float64 `json:"h,omitempty"`
	R     float64 `json:"r,omitempty"`
}

// Snapshot is the message sent to clients. Layout is set when Obstacles
// holds the complete current layout, which may be empty: on the first
// snapshot, after the layout changed, and in the copy replayed to new
// subscribers. Otherwise Obstacles is left out.
type Snapshot struct {
	Type      string          `json:"type"`
	Tick      int32           `json:"tick"`
	Dogs      []DogState      `json:"dogs"`
	Layout    bool            `json:"layout,omitempty"`
	Obstacles []ObstacleState `json:"obstacles,omitempty"`
	Rally     *[2]float64     `json:"rally,omitempty"`
}

// Command types accepted from clients.
const (
	CommandRally        = "rally"
	CommandClearRally   = "clear_rally"
	CommandMoveObstacle = "move_obstacle"
)

// Command is a client request.
type Command struct {
	Type string  `json:"type"`
	Name string  `json:"name,omitempty"` // obstacle for move_obstacle
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}
