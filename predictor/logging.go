package predictor

import (
	"os"

	"github.com/rs/zerolog"
)

// defaultLogger is the engine's diagnostic sink: construction failures,
// successful construction, and ResetStats invocations. It is deliberately
// separate from Trace/StatsDump, which emit the exact wire format §6 and
// §8 pin down and must not be routed through a structured-logging
// formatter. The teacher repo this package is grounded on has no logging
// of its own (it is a pure reference model); this is adopted from the rest
// of the retrieved pack, where github.com/rs/zerolog is the concrete
// backend wired under joeycumines-go-utilpkg/logiface/zerolog.
func defaultLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
		With().
		Timestamp().
		Str("component", "vpred").
		Logger()
}
