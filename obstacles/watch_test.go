package obstacles

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherReloadsLayout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "yard.yaml")
	writeFile(t, path, "obstacles: [{name: a, x: 0, y: 0, w: 1, h: 1}]\n")

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	// unrelated files in the same directory are ignored
	writeFile(t, filepath.Join(dir, "other.yaml"), "obstacles: []\n")
	writeFile(t, path, "obstacles: [{name: a, x: 0, y: 0, w: 1, h: 1}, {name: b, x: 4, y: 0, w: 1, h: 1}]\n")

	select {
	case l := <-w.Layouts:
		if len(l.Obstacles) != 2 {
			t.Errorf("reloaded %d obstacles, want 2", len(l.Obstacles))
		}
	case err := <-w.Errors:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "yard.yaml")
	writeFile(t, path, "obstacles: []\n")

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	writeFile(t, path, "obstacles: [{kind: star, x: 0, y: 0}]\n")

	select {
	case err := <-w.Errors:
		if err == nil {
			t.Fatal("nil error")
		}
	case <-w.Layouts:
		t.Fatal("invalid layout should not be delivered")
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for error")
	}
}

func TestWatcherCloseClosesChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yard.yaml")
	writeFile(t, path, "obstacles: []\n")

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := <-w.Layouts; ok {
		t.Error("Layouts still open after Close")
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
