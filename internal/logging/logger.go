// Copyright (c) 2025 Passgate
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a zerolog logger writing console output to w at the given level.
// Unknown level strings fall back to info. Timestamps are attached so refresh
// scheduling can be correlated with token expiry when debugging.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// Default returns a logger for CLI use, writing to stderr.
func Default(level string) zerolog.Logger {
	return New(os.Stderr, level)
}
