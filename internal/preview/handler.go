package preview

import (
	"html"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/justhtml/internal/logfields"
	"git.home.luguber.info/inful/justhtml/internal/metrics"
)

// BuildIDHeader carries the ID of the build being served.
const BuildIDHeader = "X-Justhtml-Build"

// newHandler serves root as a static site. When reg is non-nil its metrics
// are exposed on /metrics.
func newHandler(root string, status *buildStatus, reg *prom.Registry, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	if reg != nil {
		mux.Handle("GET /metrics", metrics.HTTPHandler(reg))
	}
	files := http.FileServer(http.Dir(root))
	mux.Handle("/", siteHandler(files, status))
	return logRequests(noCache(mux), logger)
}

// siteHandler serves files, or the last build error while no build has
// ever succeeded.
func siteHandler(files http.Handler, status *buildStatus) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rep, good, err := status.get()
		if rep != nil {
			w.Header().Set(BuildIDHeader, rep.ID)
		}
		if err != nil && !good {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("<!DOCTYPE html><html><body><h1>Build failed</h1><pre>" +
				html.EscapeString(err.Error()) + "</pre></body></html>\n"))
			return
		}
		files.ServeHTTP(w, r)
	})
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("HTTP request",
			logfields.Method(r.Method),
			logfields.Path(r.URL.Path),
			logfields.Status(rec.status),
			logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	})
}
