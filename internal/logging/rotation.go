package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits applied when the configured value is zero.
const (
	DefaultMaxSizeMB = 10
	DefaultMaxFiles  = 3
)

var errNoLogFile = errors.New("log file path must not be empty")

// Rotation describes the on-disk copy of the log. The file is rotated once
// it reaches MaxSizeMB and at most MaxFiles old copies are kept, compressed.
type Rotation struct {
	File      string
	MaxSizeMB int
	MaxFiles  int
}

// Writer creates the log directory and returns the rotating writer. The
// caller closes it when the command finishes.
func (r Rotation) Writer() (*lumberjack.Logger, error) {
	if r.File == "" {
		return nil, errNoLogFile
	}
	if err := os.MkdirAll(filepath.Dir(r.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   r.File,
		MaxSize:    orDefault(r.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: orDefault(r.MaxFiles, DefaultMaxFiles),
		Compress:   true,
	}, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
