package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/padron/internal/logging"
	"github.com/mesh-intelligence/padron/internal/paths"
	"github.com/mesh-intelligence/padron/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "PADRON"

	cfgKeyDataDir     = "data_dir"
	cfgKeyDBName      = "db_name"
	cfgKeyAssetPath   = "asset_path"
	cfgKeyBusyTimeout = "busy_timeout"
	cfgKeyLogLevel    = "log_level"
	cfgKeyLogFile     = "log_file"
	cfgKeyLogFormat   = "log_format"
	cfgKeyLogMaxSize  = "log_max_size_mb"
	cfgKeyLogMaxFiles = "log_max_files"

	defaultLogLevel = "warn"
)

// configFile holds the structure written to config.yaml on first run.
type configFile struct {
	DBName      string `yaml:"db_name"`
	BusyTimeout string `yaml:"busy_timeout"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	DataDir     string `yaml:"data_dir,omitempty"`
	AssetPath   string `yaml:"asset_path,omitempty"`
	LogFile     string `yaml:"log_file,omitempty"`
	LogMaxSize  int    `yaml:"log_max_size_mb,omitempty"`
	LogMaxFiles int    `yaml:"log_max_files,omitempty"`
}

// setup loads .env, config.yaml and the environment into a.cfg, applies
// flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return userError(fmt.Errorf("load .env: %w", err))
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return userError(fmt.Errorf("decode config: %w", err))
	}
	if cfg.DataDir, err = paths.ResolveDataDir(a.flags.dataDir, v.GetString(cfgKeyDataDir)); err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	if cfg.AssetPath, err = paths.ResolveAssetPath(a.flags.asset, v.GetString(cfgKeyAssetPath)); err != nil {
		return sysError(fmt.Errorf("resolve asset path: %w", err))
	}
	if a.flags.logLevel != "" {
		cfg.LogLevel = a.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return userError(fmt.Errorf("invalid config: %w", err))
	}

	log, closeLog, err := logging.New(logging.Options{
		Level:     cfg.LogLevel,
		JSON:      cfg.LogJSON(),
		Out:       cmd.ErrOrStderr(),
		File:      cfg.LogFile,
		MaxSizeMB: cfg.LogMaxSizeMB,
		MaxFiles:  cfg.LogMaxFiles,
	})
	if err != nil {
		return userError(fmt.Errorf("configure logging: %w", err))
	}

	a.cfg = cfg
	a.log = log.With().Str("config_dir", configDir).Logger()
	a.closeLog = closeLog
	return nil
}

// loadConfig reads config.yaml from configDir using Viper. PADRON_* variables
// override the file. It creates the directory and
// a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt)); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyDBName, types.DefaultDBName)
	v.SetDefault(cfgKeyBusyTimeout, types.DefaultBusyTimeout)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyAssetPath, "")
	v.SetDefault(cfgKeyLogFile, "")
	v.SetDefault(cfgKeyLogFormat, types.LogFormatConsole)
	v.SetDefault(cfgKeyLogMaxSize, 0)
	v.SetDefault(cfgKeyLogMaxFiles, 0)
	v.SetEnvPrefix(envPrefix)
	// data_dir and asset_path read their env vars in internal/paths, below
	// the config file.
	for _, key := range []string{
		cfgKeyDBName, cfgKeyBusyTimeout, cfgKeyLogLevel, cfgKeyLogFile,
		cfgKeyLogFormat, cfgKeyLogMaxSize, cfgKeyLogMaxFiles,
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist.
func writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&configFile{
		DBName:      types.DefaultDBName,
		BusyTimeout: types.DefaultBusyTimeout.String(),
		LogLevel:    defaultLogLevel,
		LogFormat:   types.LogFormatConsole,
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cfg.DBName == "" {
				cfg.DBName = types.DefaultDBName
			}
			cfg.BusyTimeout = cfg.EffectiveBusyTimeout()
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), cfg)
			}
			data, err := yaml.Marshal(&configFile{
				DBName:      cfg.DBName,
				BusyTimeout: cfg.BusyTimeout.String(),
				LogLevel:    cfg.LogLevel,
				DataDir:     cfg.DataDir,
				AssetPath:   cfg.AssetPath,
				LogFormat:   cfg.LogFormat,
				LogFile:     cfg.LogFile,
				LogMaxSize:  cfg.LogMaxSizeMB,
				LogMaxFiles: cfg.LogMaxFiles,
			})
			if err != nil {
				return sysError(fmt.Errorf("marshal config: %w", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s# database: %s\n", data, cfg.DBPath())
			return nil
		},
	}
}
