package types

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "zero config is valid",
			config:  Config{},
			wantErr: nil,
		},
		{
			name:    "db name with directory returns ErrDBNameInvalid",
			config:  Config{DBName: "sub/padron.db"},
			wantErr: ErrDBNameInvalid,
		},
		{
			name:    "dot db name returns ErrDBNameInvalid",
			config:  Config{DBName: ".."},
			wantErr: ErrDBNameInvalid,
		},
		{
			name:    "unknown log level returns ErrLogLevelUnknown",
			config:  Config{LogLevel: "verbose"},
			wantErr: ErrLogLevelUnknown,
		},
		{
			name:    "log level is case insensitive",
			config:  Config{LogLevel: "DEBUG"},
			wantErr: nil,
		},
		{
			name:    "negative busy timeout returns ErrBusyTimeout",
			config:  Config{BusyTimeout: -time.Second},
			wantErr: ErrBusyTimeout,
		},
		{
			name:    "json log format is valid",
			config:  Config{LogFormat: "JSON", LogMaxSizeMB: 10, LogMaxFiles: 2},
			wantErr: nil,
		},
		{
			name:    "unknown log format returns ErrLogFormat",
			config:  Config{LogFormat: "xml"},
			wantErr: ErrLogFormat,
		},
		{
			name:    "negative max size returns ErrLogRotation",
			config:  Config{LogMaxSizeMB: -1},
			wantErr: ErrLogRotation,
		},
		{
			name:    "negative max files returns ErrLogRotation",
			config:  Config{LogMaxFiles: -3},
			wantErr: ErrLogRotation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigRequireAsset(t *testing.T) {
	if err := (Config{}).RequireAsset(); !errors.Is(err, ErrAssetPathEmpty) {
		t.Fatalf("expected ErrAssetPathEmpty, got %v", err)
	}
	if err := (Config{AssetPath: "assets/padron.db"}).RequireAsset(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestConfigDBPath(t *testing.T) {
	if got := (Config{}).DBPath(); got != filepath.Join(".", DefaultDBName) {
		t.Errorf("DBPath() = %q", got)
	}
	got := Config{DataDir: "/data", DBName: "other.db"}.DBPath()
	if got != filepath.Join("/data", "other.db") {
		t.Errorf("DBPath() = %q", got)
	}
}

func TestConfigEffectiveBusyTimeout(t *testing.T) {
	if got := (Config{}).EffectiveBusyTimeout(); got != DefaultBusyTimeout {
		t.Errorf("EffectiveBusyTimeout() = %v, want %v", got, DefaultBusyTimeout)
	}
	if got := (Config{BusyTimeout: time.Second}).EffectiveBusyTimeout(); got != time.Second {
		t.Errorf("EffectiveBusyTimeout() = %v, want 1s", got)
	}
}

func TestConfigLogJSON(t *testing.T) {
	if (Config{}).LogJSON() {
		t.Errorf("LogJSON() = true for empty format")
	}
	if !(Config{LogFormat: "Json"}).LogJSON() {
		t.Errorf("LogJSON() = false for Json")
	}
}
