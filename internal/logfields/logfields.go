package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyTool       = "tool"
	KeyMode       = "mode"
	KeyImage      = "image"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyOutput     = "output"
	KeyExitCode   = "exit_code"
	KeyDurationMS = "duration_ms"
	KeyStage      = "stage"
	KeyCount      = "count"
	KeyCause      = "cause"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Tool(name string) slog.Attr      { return slog.String(KeyTool, name) }
func Mode(m string) slog.Attr         { return slog.String(KeyMode, m) }
func Image(ref string) slog.Attr      { return slog.String(KeyImage, ref) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Output(dir string) slog.Attr     { return slog.String(KeyOutput, dir) }
func ExitCode(code int) slog.Attr     { return slog.Int(KeyExitCode, code) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Cause(c string) slog.Attr        { return slog.String(KeyCause, c) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
