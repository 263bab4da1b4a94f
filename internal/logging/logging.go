// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds the base logger: a console writer in development, JSON to stderr in production, and, when filepath is
// non-empty, a second sink appending to that file. original_source/config.py rotates its loguru file sink by size
// and retention; zerolog has no bundled rotation writer and none of the pack's dependencies provide one, so this
// append-only file handle is the stdlib-backed piece of the ambient logging stack (see DESIGN.md).
func New(development bool, filepath string) zerolog.Logger {
	var writers []io.Writer

	if development {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		writers = append(writers, os.Stderr)
	}

	if filepath != "" {
		if f, err := os.OpenFile(filepath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
			writers = append(writers, f)
		}
	}

	var out io.Writer
	if len(writers) == 1 {
		out = writers[0]
	} else {
		out = zerolog.MultiLevelWriter(writers...)
	}

	return zerolog.New(out).With().Timestamp().Logger()
}
