package provision

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// FileAsset is a bundled dataset already present on the local filesystem.
type FileAsset string

// Materialize checks that the file exists and returns its path.
func (a FileAsset) Materialize(ctx context.Context) (string, error) {
	info, err := os.Stat(string(a))
	if err != nil {
		return "", fmt.Errorf("stat asset: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("asset %s is a directory", string(a))
	}
	return string(a), nil
}

// FSAsset is a bundled dataset stored inside an fs.FS, typically an
// embed.FS compiled into the binary. Materialize extracts it to a temporary
// file which Release removes.
type FSAsset struct {
	FS   fs.FS
	Name string

	// TempDir holds the extracted file. Empty means os.TempDir().
	TempDir string
}

// Materialize extracts the asset and returns the temporary path.
func (a FSAsset) Materialize(ctx context.Context) (string, error) {
	if a.FS == nil {
		return "", fmt.Errorf("asset filesystem is nil")
	}
	in, err := a.FS.Open(a.Name)
	if err != nil {
		return "", fmt.Errorf("open embedded asset: %w", err)
	}
	defer in.Close()

	out, err := os.CreateTemp(a.TempDir, "padron-asset-*.db")
	if err != nil {
		return "", fmt.Errorf("create extraction file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("extract embedded asset: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("close extraction file: %w", err)
	}
	return out.Name(), nil
}

// Release removes the extracted file.
func (a FSAsset) Release(path string) error {
	return os.Remove(path)
}
