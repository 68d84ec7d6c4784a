package navigation

// ObstacleQuery answers whether anything blocking lies within radius of p.
// It is supplied by a spatial collaborator (physics space, bitmap, test mock).
type ObstacleQuery interface {
	IsBlocked(p Vec2, radius float64) bool
}

// BoxQuery is optionally implemented by an ObstacleQuery that can test an
// axis-aligned box directly.
type BoxQuery interface {
	IsBoxBlocked(center, half Vec2) bool
}

// ObstacleFunc adapts a plain function to ObstacleQuery.
type ObstacleFunc func(p Vec2, radius float64) bool

// IsBlocked calls f.
func (f ObstacleFunc) IsBlocked(p Vec2, radius float64) bool { return f(p, radius) }

// NoObstacles never reports a block.
var NoObstacles ObstacleQuery = ObstacleFunc(func(Vec2, float64) bool { return false })
