// # internal/core/watcher/watcher.go
package watcher

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"rfocxt/internal/shared/observability"
)

// Watcher reports changed Rust sources and crate manifests under a project
// root, debounced into batches.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	debounce  time.Duration
	exclude   []glob.Glob
	onChange  func([]string)
	// callbackMu keeps batches from overlapping when a rebuild outlasts the
	// debounce window.
	callbackMu sync.Mutex

	pending   map[string]struct{}
	pendingMu sync.Mutex
	timer     *time.Timer
}

// manifestNames are the non-source files whose edits change the crate.
var manifestNames = map[string]bool{"cargo.toml": true, "rfocxt.toml": true}

// NewWatcher compiles exclude as globs over slash separated paths relative
// to root, e.g. "target/**".
func NewWatcher(root string, debounce time.Duration, exclude []string, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}

	compiled := make([]glob.Glob, 0, len(exclude))
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, g)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsw,
		root:      filepath.Clean(root),
		debounce:  debounce,
		exclude:   compiled,
		onChange:  onChange,
		pending:   make(map[string]struct{}),
	}, nil
}

// Watch registers the root recursively and starts the event loop.
func (w *Watcher) Watch() error {
	if err := w.addTree(w.root, false); err != nil {
		return err
	}
	go w.run()
	return nil
}

// addTree watches every non-excluded directory under dir. With schedule
// set, files already present are reported too; a directory created or moved
// into the tree may arrive with its sources in place.
func (w *Watcher) addTree(dir string, schedule bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if w.shouldExcludeDir(path) {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}
		if schedule && !w.shouldExcludeFile(path) {
			w.schedule(path)
		}
		return nil
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()
			w.handle(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.shouldExcludeDir(event.Name) {
				return
			}
			if err := w.addTree(event.Name, true); err != nil {
				slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if w.shouldExcludeFile(event.Name) {
		return
	}
	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.schedule(event.Name)
	}
}

// schedule adds path to the pending batch and restarts the debounce timer.
func (w *Watcher) schedule(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)
	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

// rel returns path relative to the root in slash form, or "" outside it.
func (w *Watcher) rel(path string) string {
	r, err := filepath.Rel(w.root, path)
	if err != nil || r == "." || strings.HasPrefix(r, "..") {
		return ""
	}
	return filepath.ToSlash(r)
}

func (w *Watcher) excluded(rel string) bool {
	for _, g := range w.exclude {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

func (w *Watcher) shouldExcludeDir(path string) bool {
	rel := w.rel(path)
	if rel == "" {
		return false
	}
	return w.excluded(rel) || w.excluded(rel+"/")
}

// shouldExcludeFile keeps only .rs sources and manifests outside the
// excluded trees.
func (w *Watcher) shouldExcludeFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if !manifestNames[base] && filepath.Ext(base) != ".rs" {
		return true
	}
	rel := w.rel(path)
	return rel != "" && w.excluded(rel)
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}
