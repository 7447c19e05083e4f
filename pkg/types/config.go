package types

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the database location and runtime parameters for a Registry.
type Config struct {
	DataDir     string        `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	DBName      string        `json:"db_name" yaml:"db_name" mapstructure:"db_name"`
	AssetPath   string        `json:"asset_path" yaml:"asset_path" mapstructure:"asset_path"`
	BusyTimeout time.Duration `json:"busy_timeout" yaml:"busy_timeout" mapstructure:"busy_timeout"`
	LogLevel    string        `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogFile     string        `json:"log_file" yaml:"log_file" mapstructure:"log_file"`

	// LogFormat is "console" (the default) or "json".
	LogFormat string `json:"log_format" yaml:"log_format" mapstructure:"log_format"`
	// Rotation limits for LogFile; zero selects the logging defaults.
	LogMaxSizeMB int `json:"log_max_size_mb" yaml:"log_max_size_mb" mapstructure:"log_max_size_mb"`
	LogMaxFiles  int `json:"log_max_files" yaml:"log_max_files" mapstructure:"log_max_files"`
}

// Defaults applied by Config accessors when a field is empty.
const (
	DefaultDBName      = "padron.db"
	DefaultBusyTimeout = 5 * time.Second
)

// Config validation errors.
var (
	ErrAssetPathEmpty  = errors.New("asset path must not be empty")
	ErrDBNameInvalid   = errors.New("db name must be a bare file name")
	ErrLogLevelUnknown = errors.New("unknown log level")
	ErrBusyTimeout     = errors.New("busy timeout must not be negative")
	ErrLogFormat       = errors.New("log format must be console or json")
	ErrLogRotation     = errors.New("log rotation limits must not be negative")
)

// Log formats accepted in Config.LogFormat.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

var knownLogLevels = map[string]bool{
	"":      true,
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"fatal": true,
	"panic": true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure. AssetPath is checked separately by
// RequireAsset because embedded datasets do not need it.
func (c Config) Validate() error {
	if c.DBName != "" && (filepath.Base(c.DBName) != c.DBName || c.DBName == "." || c.DBName == "..") {
		return ErrDBNameInvalid
	}
	if !knownLogLevels[strings.ToLower(c.LogLevel)] {
		return ErrLogLevelUnknown
	}
	if c.BusyTimeout < 0 {
		return ErrBusyTimeout
	}
	switch strings.ToLower(c.LogFormat) {
	case "", LogFormatConsole, LogFormatJSON:
	default:
		return ErrLogFormat
	}
	if c.LogMaxSizeMB < 0 || c.LogMaxFiles < 0 {
		return ErrLogRotation
	}
	return nil
}

// LogJSON reports whether log entries are written as JSON lines.
func (c Config) LogJSON() bool {
	return strings.EqualFold(c.LogFormat, LogFormatJSON)
}

// RequireAsset validates c and additionally requires an asset path.
func (c Config) RequireAsset() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.AssetPath) == "" {
		return ErrAssetPathEmpty
	}
	return nil
}

// DBPath returns the writable database location inside DataDir.
func (c Config) DBPath() string {
	dir := c.DataDir
	if dir == "" {
		dir = "."
	}
	name := c.DBName
	if name == "" {
		name = DefaultDBName
	}
	return filepath.Join(dir, name)
}

// EffectiveBusyTimeout returns BusyTimeout or DefaultBusyTimeout when unset.
func (c Config) EffectiveBusyTimeout() time.Duration {
	if c.BusyTimeout <= 0 {
		return DefaultBusyTimeout
	}
	return c.BusyTimeout
}
