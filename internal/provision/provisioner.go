// Package provision materializes the bundled padron dataset into writable
// storage. The copy happens once; later calls only check that the file exists.
package provision

//go:generate mockgen -source=provisioner.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/mesh-intelligence/padron/pkg/types"
)

// AssetSource resolves the bundled dataset to a readable local file.
// Materialize may extract or download the asset; it returns the local path.
type AssetSource interface {
	Materialize(ctx context.Context) (string, error)
}

// Releaser is implemented by sources that create temporary files in
// Materialize. Release is called with the materialized path after the copy.
type Releaser interface {
	Release(path string) error
}

var errAssetUnresolved = errors.New("asset resolved to an empty path")

// Provisioner owns the presence check and the one-time copy of the bundled
// dataset to Target.
type Provisioner struct {
	target string
	source AssetSource
	log    zerolog.Logger
	group  singleflight.Group
}

// New returns a Provisioner that copies source to target on first Ensure.
func New(target string, source AssetSource, log zerolog.Logger) *Provisioner {
	return &Provisioner{
		target: target,
		source: source,
		log:    log.With().Str("component", "provisioner").Logger(),
	}
}

// Ensure returns the target path, copying the bundled dataset first when the
// target does not exist. Failures are *types.ProvisioningError; the target is
// never left holding a partial copy.
func (p *Provisioner) Ensure(ctx context.Context) (string, error) {
	present, err := p.present()
	if err != nil {
		return "", err
	}
	if present {
		p.log.Debug().Str("path", p.target).Msg("database already present")
		return p.target, nil
	}

	_, err, _ = p.group.Do(p.target, func() (any, error) {
		// A concurrent caller may have finished the copy between the
		// check above and entering the group.
		present, err := p.present()
		if err != nil || present {
			return nil, err
		}
		return nil, p.provision(ctx)
	})
	if err != nil {
		return "", err
	}
	return p.target, nil
}

func (p *Provisioner) present() (bool, error) {
	info, err := os.Stat(p.target)
	if err == nil {
		if info.IsDir() {
			return false, &types.ProvisioningError{Op: "stat", Path: p.target, Err: fmt.Errorf("target is a directory")}
		}
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, &types.ProvisioningError{Op: "stat", Path: p.target, Err: err}
}

func (p *Provisioner) provision(ctx context.Context) error {
	p.log.Info().Str("path", p.target).Msg("copying database")

	src, err := p.source.Materialize(ctx)
	if err == nil && src == "" {
		err = errAssetUnresolved
	}
	if err != nil {
		p.log.Error().Err(err).Msg("bundled dataset unavailable")
		return &types.ProvisioningError{Op: "materialize", Path: p.target, Err: err}
	}
	if r, ok := p.source.(Releaser); ok {
		defer func() {
			if err := r.Release(src); err != nil {
				p.log.Warn().Err(err).Str("asset", src).Msg("release materialized asset")
			}
		}()
	}

	if err := os.MkdirAll(filepath.Dir(p.target), 0o755); err != nil {
		p.log.Error().Err(err).Msg("create data directory")
		return &types.ProvisioningError{Op: "mkdir", Path: p.target, Err: err}
	}

	n, err := copyFileAtomic(src, p.target)
	if err != nil {
		p.log.Error().Err(err).Str("asset", src).Msg("copy database")
		return &types.ProvisioningError{Op: "copy", Path: p.target, Err: err}
	}

	p.log.Info().Str("path", p.target).Int64("bytes", n).Msg("database copied")
	return nil
}
