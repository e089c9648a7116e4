// Package watch follows changes to the response directory tree so that
// round-robin cursors restart when the set of files in a directory changes.
package watch

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/picklenerd/counterfeit/pkg/logging"
)

// Op names the kind of change.
type Op string

// Change kinds.
const (
	OpCreate Op = "create"
	OpRemove Op = "remove"
	OpRename Op = "rename"
)

// Event reports a file added to or removed from Dir.
type Event struct {
	Dir  string
	Path string
	Op   Op
}

// Watcher watches a directory tree with fsnotify. New subdirectories are
// added as they appear.
type Watcher struct {
	root     string
	onChange func(Event)
	log      *slog.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	running bool
	doneCh  chan struct{}
}

// New creates a watcher for root. onChange runs on the watcher goroutine.
func New(root string, onChange func(Event), log *slog.Logger) *Watcher {
	if log == nil {
		log = logging.Nop()
	}
	return &Watcher{root: root, onChange: onChange, log: log}
}

// Start begins watching. Calling Start on a running watcher does nothing.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := addTree(fsw, w.root); err != nil {
		_ = fsw.Close()
		return err
	}

	w.fsw = fsw
	w.doneCh = make(chan struct{})
	w.running = true
	go w.loop(fsw, w.doneCh)

	w.log.Debug("watching response directory", "root", w.root)
	return nil
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	fsw, doneCh := w.fsw, w.doneCh
	w.mu.Unlock()

	err := fsw.Close()
	<-doneCh
	return err
}

func (w *Watcher) loop(fsw *fsnotify.Watcher, doneCh chan<- struct{}) {
	defer close(doneCh)

	for {
		select {
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handle(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	var op Op
	switch {
	case ev.Has(fsnotify.Create):
		op = OpCreate
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := addTree(fsw, ev.Name); err != nil {
				w.log.Warn("failed to watch new directory", "dir", ev.Name, "error", err)
			}
		}
	case ev.Has(fsnotify.Remove):
		op = OpRemove
	case ev.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}

	change := Event{Dir: filepath.Dir(ev.Name), Path: ev.Name, Op: op}
	w.log.Debug("response files changed", "dir", change.Dir, "path", change.Path, "op", string(op))
	if w.onChange != nil {
		w.onChange(change)
	}
}

// addTree adds root and every directory below it.
func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != root && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return fsw.Add(path)
	})
}
