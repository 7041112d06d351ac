package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced via SetLogger so tests and embedding applications can
// redirect or mute solver diagnostics.
var Logf func(format string, v ...interface{}) = log.Printf

// Warnf logs non-fatal solver warnings (boundary-crossing placements,
// clipped geometry, and similar). It shares the Logf sink with a "warning:"
// prefix so a single SetLogger call captures everything.
func Warnf(format string, v ...interface{}) {
	Logf("warning: "+format, v...)
}

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
