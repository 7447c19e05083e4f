// Package paths resolves the configuration directory, the private data
// directory that holds the writable database, and the bundled asset location.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "padron"

// Environment variable names for directory and asset overrides.
const (
	EnvConfigDir = "PADRON_CONFIG_DIR"
	EnvDataDir   = "PADRON_DATA_DIR"
	EnvAssetPath = "PADRON_ASSET_PATH"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/padron (fallback ~/.config/padron)
// macOS:   ~/Library/Application Support/padron
// Windows: %APPDATA%/padron
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appDirName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDirName), nil
	}
}

// DefaultDataDir returns the platform-specific private data directory. The
// provisioned database lives in its SQLite subdirectory.
//
// Linux:   $XDG_DATA_HOME/padron/SQLite (fallback ~/.local/share/padron/SQLite)
// macOS:   ~/Library/Application Support/padron/SQLite
// Windows: %APPDATA%/padron/SQLite
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName, "SQLite"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", appDirName, "SQLite"), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDirName, "SQLite"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > PADRON_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > PADRON_DATA_DIR env > DefaultDataDir().
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultDataDir()
}

// ResolveAssetPath returns the bundled dataset path following the precedence
// chain: flag > configYAMLValue > PADRON_ASSET_PATH env. An empty result means
// no asset was configured.
func ResolveAssetPath(flag, configYAMLValue string) (string, error) {
	for _, v := range []string{flag, configYAMLValue, os.Getenv(EnvAssetPath)} {
		if v != "" {
			return filepath.Abs(v)
		}
	}
	return "", nil
}
