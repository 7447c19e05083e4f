// Package logging builds the zerolog loggers used by the provisioner, the
// repository and the padron CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger construction. The zero value logs info and above
// to stderr in console format.
type Options struct {
	Level string
	JSON  bool
	Out   io.Writer

	// File, when set, receives a copy of every entry as JSON, rotated by
	// size. Zero limits select DefaultMaxSizeMB and DefaultMaxFiles.
	File      string
	MaxSizeMB int
	MaxFiles  int
}

// New returns a logger and a close function that releases the rotating file,
// if any. The close function is never nil.
func New(opts Options) (zerolog.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), func() error { return nil }, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	var w io.Writer = out
	if !opts.JSON {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	closeFn := func() error { return nil }
	if opts.File != "" {
		rw, err := Rotation{
			File:      opts.File,
			MaxSizeMB: opts.MaxSizeMB,
			MaxFiles:  opts.MaxFiles,
		}.Writer()
		if err != nil {
			return zerolog.Nop(), closeFn, err
		}
		w = zerolog.MultiLevelWriter(w, rw)
		closeFn = rw.Close
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logger, closeFn, nil
}

// ParseLevel maps a case-insensitive level name to a zerolog level. An empty
// name means info.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level %q: %w", name, err)
	}
	return level, nil
}
