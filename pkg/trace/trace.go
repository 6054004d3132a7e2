// Package trace emits structured trace events for store and diff
// internals, in the spirit of GIT_TRACE: output is off unless the
// GROVE_TRACE environment variable asks for it.
//
// GROVE_TRACE=1 (or any other truthy value) writes human-readable
// events to stderr; GROVE_TRACE=json writes raw JSON lines.
package trace

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var logger = newLogger(os.Getenv("GROVE_TRACE"))

func newLogger(mode string) zerolog.Logger {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "0", "false", "off":
		return zerolog.Nop()
	case "json":
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	default:
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
}

// Enabled reports whether trace output is turned on.
func Enabled() bool {
	return logger.GetLevel() != zerolog.Disabled
}

// Event starts a trace event tagged with an operation name, e.g.
// "object.read". When tracing is off the returned event discards all
// fields without formatting cost, so call sites need no guard.
func Event(op string) *zerolog.Event {
	return logger.Trace().Str("op", op)
}
