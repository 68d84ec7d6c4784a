package game

import (
	"fmt"
	"io"

	"github.com/pthm-cable/kennel/components"
)

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

type breedTally struct {
	dogs     int
	walking  int
	requests int
	failures int
	distance float64
}

// logBreedSummary logs per-breed activity and path success.
func (g *Game) logBreedSummary() {
	tallies := make([]breedTally, g.planner.Len())

	query := g.dogFilter.Query()
	for query.Next() {
		_, _, dog, _ := query.Get()
		if int(dog.Breed) >= len(tallies) {
			continue
		}
		t := &tallies[dog.Breed]
		t.dogs++
		if dog.Activity == components.ActivityWalking {
			t.walking++
		}
		t.requests += dog.Requests
		t.failures += dog.Failures
		t.distance += dog.Distance
	}

	rally := "none"
	if p, ok := g.wander.Rally(); ok {
		rally = fmt.Sprintf("(%.1f, %.1f)", p.X, p.Y)
	}

	Logf("=== Kennel @ Tick %d | heuristic %s | rally %s ===", g.tick, g.heuristic, rally)
	for i, t := range tallies {
		if t.dogs == 0 {
			continue
		}
		found := 100.0
		if t.requests > 0 {
			found = float64(t.requests-t.failures) / float64(t.requests) * 100
		}
		Logf("  %-14s dogs=%-3d walking=%-3d requests=%-5d found=%5.1f%% walked=%.1f u/dog",
			g.planner.Breed(uint8(i)).Name, t.dogs, t.walking, t.requests, found, t.distance/float64(t.dogs))
	}
	Logf("")
}
