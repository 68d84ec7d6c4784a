package navigation

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownHeuristic is returned by HeuristicByName for unrecognised names.
var ErrUnknownHeuristic = errors.New("navigation: unknown heuristic")

// Heuristic estimates the traversal cost for a displacement of
// (dCol, dRow) cells. Implementations are pure and non-negative.
type Heuristic func(dCol, dRow int) float64

// Euclidean is the straight-line distance.
func Euclidean(dCol, dRow int) float64 {
	return math.Sqrt(float64(dCol*dCol + dRow*dRow))
}

// SquaredEuclidean skips the square root. It orders candidates like Euclidean
// but is not a distance.
func SquaredEuclidean(dCol, dRow int) float64 {
	return float64(dCol*dCol + dRow*dRow)
}

// Manhattan is the 4-connected distance.
func Manhattan(dCol, dRow int) float64 {
	return float64(absInt(dCol) + absInt(dRow))
}

// Chebyshev treats diagonal and straight steps alike.
func Chebyshev(dCol, dRow int) float64 {
	return float64(max(absInt(dCol), absInt(dRow)))
}

// Octile charges sqrt2 per diagonal step and 1 per straight step.
func Octile(dCol, dRow int) float64 {
	a, b := absInt(dCol), absInt(dRow)
	lo, hi := min(a, b), max(a, b)
	return math.Sqrt2*float64(lo) + float64(hi-lo)
}

// Distance applies h to the displacement between a and b.
func Distance(h Heuristic, a, b Coord) float64 {
	return h(b.Col-a.Col, b.Row-a.Row)
}

var heuristicsByName = map[string]Heuristic{
	"euclidean":         Euclidean,
	"squared_euclidean": SquaredEuclidean,
	"manhattan":         Manhattan,
	"chebyshev":         Chebyshev,
	"octile":            Octile,
}

// HeuristicNames lists the names accepted by HeuristicByName.
func HeuristicNames() []string {
	return []string{"euclidean", "squared_euclidean", "manhattan", "chebyshev", "octile"}
}

// HeuristicByName resolves a configured heuristic name.
func HeuristicByName(name string) (Heuristic, error) {
	h, ok := heuristicsByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHeuristic, name)
	}
	return h, nil
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
