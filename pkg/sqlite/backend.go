// Package sqlite provides the public factory for the SQLite padron registry.
// Implementation details stay in internal/sqlite and internal/provision.
package sqlite

import (
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/padron/internal/provision"
	"github.com/mesh-intelligence/padron/internal/sqlite"
	"github.com/mesh-intelligence/padron/pkg/types"
)

// Open returns a Registry whose writable database lives at cfg.DBPath() and
// is provisioned from the dataset file at cfg.AssetPath on first use.
//
// Example:
//
//	reg, err := sqlite.Open(types.Config{
//	    DataDir:   "/var/lib/padron",
//	    AssetPath: "/usr/share/padron/padron.db",
//	}, zerolog.Nop())
//	if _, err := reg.Provision(ctx); err != nil { ... }
func Open(cfg types.Config, log zerolog.Logger) (types.Registry, error) {
	if err := cfg.RequireAsset(); err != nil {
		return nil, err
	}
	return newRegistry(cfg, provision.FileAsset(cfg.AssetPath), log), nil
}

// OpenFS is like Open but reads the bundled dataset from name inside fsys,
// typically an embed.FS. cfg.AssetPath is ignored.
func OpenFS(cfg types.Config, fsys fs.FS, name string, log zerolog.Logger) (types.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newRegistry(cfg, provision.FSAsset{FS: fsys, Name: name}, log), nil
}

func newRegistry(cfg types.Config, src provision.AssetSource, log zerolog.Logger) *sqlite.Repository {
	p := provision.New(cfg.DBPath(), src, log)
	return sqlite.NewRepository(p, log, sqlite.WithBusyTimeout(cfg.EffectiveBusyTimeout()))
}
