package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeySource     = "source"
	KeyOutput     = "output"
	KeyStem       = "stem"
	KeyPages      = "pages"
	KeyTemplate   = "template"
	KeyLine       = "line"
	KeyDurationMS = "duration_ms"
	KeyAddr       = "addr"
	KeyPath       = "path"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Source(path string) slog.Attr    { return slog.String(KeySource, path) }
func Output(path string) slog.Attr    { return slog.String(KeyOutput, path) }
func Stem(s string) slog.Attr         { return slog.String(KeyStem, s) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func Template(path string) slog.Attr  { return slog.String(KeyTemplate, path) }
func Line(n int) slog.Attr            { return slog.Int(KeyLine, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
