package watcher

import (
	"crypto/sha256"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"tsurface/internal/shared/observability"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

type Options struct {
	Debounce     time.Duration
	ExcludeDirs  []string // glob patterns matched against directory base names
	ExcludeFiles []string // glob patterns matched against file base names
	Extensions   []string // empty accepts every file
	// Triggers are paths reported on any event, even when they are excluded
	// or are directories.
	Triggers []string
}

// Watcher reports batches of changed source files under a set of roots.
// Events for one file are coalesced until the tree has been quiet for the
// debounce interval.
type Watcher struct {
	fsWatcher    *fsnotify.Watcher
	debounce     time.Duration
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	extensions   []string
	triggers     map[string]bool
	onChange     func([]string)
	callbackMu   sync.Mutex

	pending   map[string]time.Time
	hashes    map[string][sha256.Size]byte
	pendingMu sync.Mutex
	timer     *time.Timer
}

func New(opts Options, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}

	compiledDirs, err := compileAll(opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	compiledFiles, err := compileAll(opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}

	extensions := make([]string, 0, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		extensions = append(extensions, normalized)
	}

	triggers := make(map[string]bool, len(opts.Triggers))
	for _, path := range opts.Triggers {
		triggers[filepath.Clean(path)] = true
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher:    fsw,
		debounce:     opts.Debounce,
		excludeDirs:  compiledDirs,
		excludeFiles: compiledFiles,
		extensions:   extensions,
		triggers:     triggers,
		onChange:     onChange,
		pending:      make(map[string]time.Time),
		hashes:       make(map[string][sha256.Size]byte),
	}, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

// Watch registers every non-excluded directory under paths and starts the
// event loop.
func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		if err := w.watchRecursive(path, true); err != nil {
			return err
		}
	}

	go w.run()
	return nil
}

// watchRecursive adds root and its subdirectories. With seed set, the
// content hashes of existing files are recorded so that rewriting identical
// content is not reported.
func (w *Watcher) watchRecursive(root string, seed bool) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && w.shouldExcludeDir(path) {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}

		if seed && !w.shouldExcludeFile(path) {
			if sum, ok := hashFile(path); ok {
				w.pendingMu.Lock()
				w.hashes[path] = sum
				w.pendingMu.Unlock()
			}
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

			if w.triggers[filepath.Clean(event.Name)] {
				w.scheduleChange(event.Name)
				continue
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if !w.shouldExcludeDir(event.Name) {
						if err := w.watchRecursive(event.Name, false); err != nil {
							slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
						} else {
							w.enqueueExistingFiles(event.Name)
						}
					}
					continue
				}
			}

			if w.shouldExcludeFile(event.Name) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = time.Now()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		w.flushChanges()
	})
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	candidates := make([]string, 0, len(w.pending))
	for path := range w.pending {
		candidates = append(candidates, path)
	}
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	paths := w.contentChanged(candidates)
	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

// contentChanged drops paths whose content hash matches the last one seen.
// Paths that cannot be read, such as deleted files and directories, are
// always reported.
func (w *Watcher) contentChanged(paths []string) []string {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	changed := make([]string, 0, len(paths))
	for _, path := range paths {
		sum, ok := hashFile(path)
		if !ok {
			delete(w.hashes, path)
			changed = append(changed, path)
			continue
		}
		if prev, seen := w.hashes[path]; seen && prev == sum {
			continue
		}
		w.hashes[path] = sum
		changed = append(changed, path)
	}
	return changed
}

func hashFile(path string) ([sha256.Size]byte, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return [sha256.Size]byte{}, false
	}
	return sha256.Sum256(content), true
}

func (w *Watcher) shouldExcludeDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Watcher) shouldExcludeFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))

	if len(w.extensions) > 0 && !hasAnySuffix(base, w.extensions) {
		return true
	}

	for _, g := range w.excludeFiles {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}

func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		if w.shouldExcludeFile(path) {
			return nil
		}
		w.scheduleChange(path)
		return nil
	})
}
