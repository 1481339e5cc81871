// Package preview serves the build directory over HTTP and rebuilds the site
// when content, templates or the config file change.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/justhtml/internal/config"
	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
	"git.home.luguber.info/inful/justhtml/internal/logfields"
	"git.home.luguber.info/inful/justhtml/internal/metrics"
	"git.home.luguber.info/inful/justhtml/internal/site"
)

// Options tune the preview server. Zero values fall back to the config.
type Options struct {
	// ConfigPath is reloaded on change when watching. Empty disables reloads.
	ConfigPath string
	Port       int
	NoWatch    bool
	Debounce   time.Duration
	Logger     *slog.Logger
	// Listener overrides the TCP listener, mainly for tests.
	Listener net.Listener
}

// Server is a running preview.
type Server struct {
	opts     Options
	logger   *slog.Logger
	registry *prom.Registry
	recorder metrics.Recorder
	status   *buildStatus

	mu     sync.Mutex
	cfg    *config.Config
	builds int
}

// New prepares a preview server for cfg.
func New(cfg *config.Config, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Port == 0 {
		opts.Port = cfg.Development.Port
	}
	s := &Server{
		opts:     opts,
		logger:   opts.Logger,
		cfg:      cfg,
		status:   &buildStatus{},
		recorder: metrics.NoopRecorder{},
	}
	if cfg.Development.Metrics {
		s.registry = prom.NewRegistry()
		s.recorder = metrics.NewPrometheusRecorder(s.registry)
	}
	return s
}

// Serve runs an initial build, then serves the build directory until ctx is
// done. A failed initial build does not stop the server; the error page is
// served until a rebuild succeeds.
func Serve(ctx context.Context, cfg *config.Config, opts Options) error {
	return New(cfg, opts).Run(ctx)
}

// Run is Serve on a prepared Server.
func (s *Server) Run(ctx context.Context) error {
	s.rebuild(ctx)

	cfg := s.config()
	ln := s.opts.Listener
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(s.opts.Port)))
		if err != nil {
			return foundationerrors.ServerError("cannot listen").
				WithCause(err).
				WithContext("port", s.opts.Port).
				UserAction().
				Build()
		}
	}

	srv := &http.Server{
		Handler:           newHandler(cfg.Build.BuildDirectory, s.status, s.registry, s.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	s.logger.Info("Preview server listening",
		logfields.Addr(ln.Addr().String()),
		slog.String("url", fmt.Sprintf("http://localhost:%d", tcpPort(ln))))

	watching := !s.opts.NoWatch && cfg.Development.WatchEnabled()
	interval := cfg.Development.RebuildEvery()
	var loopErr error
	if watching || interval > 0 {
		loopErr = s.loop(ctx, serveErr, watching, interval)
	} else {
		select {
		case <-ctx.Done():
		case loopErr = <-serveErr:
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	if loopErr != nil && !errors.Is(loopErr, http.ErrServerClosed) {
		return foundationerrors.ServerError("preview server stopped").WithCause(loopErr).Build()
	}
	s.logger.Info("Preview server stopped")
	return nil
}

// loop feeds file events and scheduled ticks into the debounced rebuild
// worker until ctx is done or the HTTP server fails.
func (s *Server) loop(ctx context.Context, serveErr <-chan error, watching bool, interval time.Duration) error {
	var sw *sourceWatcher
	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if watching {
		var err error
		sw, err = newSourceWatcher(s.logger, s.opts.ConfigPath)
		if err != nil {
			return err
		}
		defer func() { _ = sw.Close() }()
		cfg := s.config()
		sw.sync(cfg.ContentDir, cfg.TemplatesDirectory)
		events, watchErrs = sw.w.Events, sw.w.Errors
	}

	req, trigger := newDebouncer(s.opts.Debounce)
	done := make(chan struct{})
	defer close(done)
	go s.rebuildWorker(ctx, req, done, sw)

	if interval > 0 {
		sched, err := newRebuildScheduler(interval, trigger)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Shutdown(); err != nil {
				s.logger.Warn("Scheduler shutdown error", logfields.Error(err))
			}
		}()
		s.logger.Info("Periodic rebuild enabled", slog.String("interval", interval.String()))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-serveErr:
			return err
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !sw.relevant(ev) {
				continue
			}
			s.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			trigger()
		case err, ok := <-watchErrs:
			if !ok {
				return nil
			}
			s.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// rebuildWorker serializes rebuilds. Requests arriving during a build are
// coalesced into one follow-up build. sw is nil when not watching.
func (s *Server) rebuildWorker(ctx context.Context, req chan struct{}, done <-chan struct{}, sw *sourceWatcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-req:
			if s.reloadConfig() && sw != nil {
				cfg := s.config()
				sw.sync(cfg.ContentDir, cfg.TemplatesDirectory)
			}
			s.rebuild(ctx)
		}
	}
}

// reloadConfig swaps in the config file when its build settings changed and
// reports whether it did. An invalid file is logged and the previous config
// kept. The build root is served for the life of the server, so a changed
// build_directory is not applied and the current build paths are kept.
func (s *Server) reloadConfig() bool {
	if s.opts.ConfigPath == "" {
		return false
	}
	next, err := config.Load(s.opts.ConfigPath)
	if err != nil {
		s.logger.Warn("Keeping previous configuration", logfields.Path(s.opts.ConfigPath), logfields.Error(err))
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if next.Snapshot() == s.cfg.Snapshot() {
		return false
	}
	if filepath.Clean(next.Build.BuildDirectory) != filepath.Clean(s.cfg.Build.BuildDirectory) {
		s.logger.Warn("build_directory changed, restart the preview server to apply it",
			logfields.Path(s.opts.ConfigPath),
			slog.String("build_directory", next.Build.BuildDirectory),
			slog.String("serving", s.cfg.Build.BuildDirectory))
		next.Build.BuildDirectory = s.cfg.Build.BuildDirectory
		next.Build.ContentDirectory = s.cfg.Build.ContentDirectory
	}
	s.logger.Info("Configuration changed", logfields.Path(s.opts.ConfigPath))
	s.cfg = next
	return true
}

// rebuild runs a full build. A failure classified as retryable gets one
// immediate second attempt; anything else waits for the user to fix the
// input.
func (s *Server) rebuild(ctx context.Context) {
	err := s.buildOnce(ctx)
	if err == nil {
		return
	}
	if !retryable(err) {
		s.logger.Warn("Build failed, fix the input to trigger a rebuild", logfields.Error(err))
		return
	}
	s.logger.Warn("Build failed, retrying", logfields.Error(err))
	if err := s.buildOnce(ctx); err != nil {
		s.logger.Warn("Retry failed, waiting for the next change", logfields.Error(err))
	}
}

func (s *Server) buildOnce(ctx context.Context) error {
	cfg := s.config()
	rep, err := site.NewBuilder(cfg, site.WithLogger(s.logger), site.WithRecorder(s.recorder)).Build(ctx)
	s.status.set(rep, err)
	s.mu.Lock()
	s.builds++
	s.mu.Unlock()
	return err
}

func retryable(err error) bool {
	classified, ok := foundationerrors.AsClassified(err)
	return ok && classified.CanRetry()
}

func (s *Server) config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Builds reports how many builds have completed.
func (s *Server) Builds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builds
}

// relevant reports whether ev touches a watched source directory or the
// config file itself.
func relevant(ev fsnotify.Event, watched map[string]struct{}, configAbs string) bool {
	if shouldIgnoreEvent(ev) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	if configAbs != "" && abs == configAbs {
		return true
	}
	_, ok := watched[filepath.Dir(abs)]
	return ok
}

func absSet(dirs ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(dirs))
	for _, d := range dirs {
		if abs, err := filepath.Abs(d); err == nil {
			out[abs] = struct{}{}
		}
	}
	return out
}

func tcpPort(ln net.Listener) int {
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}
