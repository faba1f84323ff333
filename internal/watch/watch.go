// Package watch reports debounced changes to the token files of a workspace.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/yacobolo/tokenforge/internal/loader"
)

// Change lists the files touched during one debounce window.
type Change struct {
	Paths []string
}

// Config holds watcher configuration options.
type Config struct {
	Loader   loader.Config
	Debounce time.Duration
	Logger   *zap.Logger
	// Ignore lists directories whose events are dropped, such as the
	// export output directory.
	Ignore []string
}

// DefaultDebounce coalesces editor save bursts.
const DefaultDebounce = 300 * time.Millisecond

// Watcher monitors workspace directories and sends a Change after each burst
// of edits.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	cfg       Config
	log       *zap.Logger
	ignore    []string // absolute
	onChange  chan Change
	done      chan struct{}
}

// New creates a watcher. Nothing is watched until Start.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Loader.Root == "" {
		cfg.Loader.Root = "."
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ignore := make([]string, 0, len(cfg.Ignore))
	for _, dir := range cfg.Ignore {
		if abs, err := filepath.Abs(dir); err == nil {
			ignore = append(ignore, abs)
		}
	}
	return &Watcher{
		fsWatcher: fsw,
		cfg:       cfg,
		log:       log,
		ignore:    ignore,
		onChange:  make(chan Change, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start subscribes to every directory holding workspace files, plus the
// root, and returns the change channel.
func (w *Watcher) Start() (<-chan Change, error) {
	dirs, err := loader.Walk(w.cfg.Loader.Root, w.cfg.Loader)
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if w.ignored(dir) {
			continue
		}
		if err := w.fsWatcher.Add(dir); err != nil {
			return nil, fmt.Errorf("watching directory %s: %w", dir, err)
		}
		w.log.Debug("watching", zap.String("dir", dir))
	}

	go w.loop()
	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending = make(map[string]bool)
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.ignored(event.Name) {
				continue
			}
			w.follow(event)
			if !relevant(event) {
				continue
			}
			pending[event.Name] = true

			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.cfg.Debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if len(pending) == 0 {
				continue
			}
			change := Change{Paths: make([]string, 0, len(pending))}
			for p := range pending {
				change.Paths = append(change.Paths, p)
			}
			sort.Strings(change.Paths)
			pending = make(map[string]bool)

			// Drop the change when the previous one is still unread; the
			// reader reloads the whole workspace anyway.
			select {
			case w.onChange <- change:
			default:
				w.log.Debug("change coalesced", zap.Strings("paths", change.Paths))
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// follow subscribes to directories created after Start.
func (w *Watcher) follow(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() || hidden(event.Name) {
		return
	}
	if err := w.fsWatcher.Add(event.Name); err != nil {
		w.log.Warn("watch new directory", zap.String("dir", event.Name), zap.Error(err))
	}
}

func (w *Watcher) ignored(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	for _, dir := range w.ignore {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

var extensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
	".tmpl": true,
	".tpl":  true,
}

// relevant keeps edits to token, theme, document and template files and
// ignores editor swap files.
func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if hidden(event.Name) || strings.HasSuffix(event.Name, "~") {
		return false
	}
	return extensions[strings.ToLower(filepath.Ext(event.Name))]
}

func hidden(name string) bool {
	return strings.HasPrefix(filepath.Base(name), ".")
}
