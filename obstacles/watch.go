package obstacles

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events editors emit for a single save.
const reloadDelay = 100 * time.Millisecond

// Watcher reloads a layout file whenever it changes on disk. Successfully
// parsed layouts arrive on Layouts; read and parse failures on Errors. Both
// channels are closed once the watcher stops.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	Layouts chan *Layout
	Errors  chan error

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher watches the directory holding path so that atomic renames by
// editors are seen as well as in-place writes.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		path:    abs,
		watcher: w,
		logger:  logger,
		Layouts: make(chan *Layout, 4),
		Errors:  make(chan error, 4),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer func() {
		close(w.Layouts)
		close(w.Errors)
		close(w.done)
	}()

	timer := time.NewTimer(reloadDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			timer.Reset(reloadDelay)
		case <-timer.C:
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("layout watcher error", "error", err)
			w.emitError(err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	layout, err := LoadLayout(w.path)
	if err != nil {
		w.logger.Warn("layout reload failed", "path", w.path, "error", err)
		w.emitError(err)
		return
	}
	w.logger.Info("layout reloaded", "path", w.path, "obstacles", len(layout.Obstacles))
	select {
	case w.Layouts <- layout:
	case <-w.closeCh:
	}
}

func (w *Watcher) emitError(err error) {
	select {
	case w.Errors <- err:
	default:
		// full; already logged
	}
}
