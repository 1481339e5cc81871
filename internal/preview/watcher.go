package preview

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
	"git.home.luguber.info/inful/justhtml/internal/logfields"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 300 * time.Millisecond

// sourceWatcher keeps an fsnotify watch on the content and template
// directories plus the directory holding the config file. Directories are
// flat so no recursion is needed.
type sourceWatcher struct {
	w         *fsnotify.Watcher
	logger    *slog.Logger
	configAbs string

	mu      sync.Mutex
	sources map[string]struct{}
	added   map[string]struct{}
}

func newSourceWatcher(logger *slog.Logger, configPath string) (*sourceWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, foundationerrors.RuntimeError("cannot start file watcher").WithCause(err).Build()
	}
	sw := &sourceWatcher{w: w, logger: logger, added: map[string]struct{}{}}
	if configPath != "" {
		if abs, err := filepath.Abs(configPath); err == nil {
			sw.configAbs = abs
		}
	}
	return sw, nil
}

// sync points the watch list at dirs. Directories no longer named are
// dropped; missing ones are retried on the next sync.
func (sw *sourceWatcher) sync(dirs ...string) {
	sources := absSet(dirs...)
	want := make(map[string]struct{}, len(sources)+1)
	for d := range sources {
		want[d] = struct{}{}
	}
	if sw.configAbs != "" {
		want[filepath.Dir(sw.configAbs)] = struct{}{}
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.sources = sources
	for d := range sw.added {
		if _, keep := want[d]; keep {
			continue
		}
		if err := sw.w.Remove(d); err != nil {
			sw.logger.Debug("Watch remove failed", logfields.Path(d), logfields.Error(err))
		}
		delete(sw.added, d)
	}
	for d := range want {
		if _, ok := sw.added[d]; ok {
			continue
		}
		if st, err := os.Stat(d); err != nil || !st.IsDir() {
			sw.logger.Warn("Not watching missing directory", logfields.Path(d))
			continue
		}
		if err := sw.w.Add(d); err != nil {
			sw.logger.Warn("Watch add failed", logfields.Path(d), logfields.Error(err))
			continue
		}
		sw.added[d] = struct{}{}
	}
}

// relevant reports whether ev should trigger a rebuild.
func (sw *sourceWatcher) relevant(ev fsnotify.Event) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return relevant(ev, sw.sources, sw.configAbs)
}

func (sw *sourceWatcher) Close() error { return sw.w.Close() }

// newDebouncer returns a request channel and a trigger that sends on it
// once no further trigger arrived for delay.
func newDebouncer(delay time.Duration) (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	req := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case req <- struct{}{}:
			default:
			}
		})
	}
	return req, trigger
}

// shouldIgnoreEvent reports filesystem events that never warrant a rebuild.
func shouldIgnoreEvent(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return true
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")) {
		return true
	}
	return base == "Thumbs.db"
}
