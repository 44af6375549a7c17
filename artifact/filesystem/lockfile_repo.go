// Package filesystem provides file-based repositories for the infrastructure layer.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/reglet-dev/extcompat/artifact/entities"
)

// FileLockfileRepository implements ports.LockfileRepository using the local filesystem.
type FileLockfileRepository struct{}

// NewFileLockfileRepository creates a new FileLockfileRepository.
func NewFileLockfileRepository() *FileLockfileRepository {
	return &FileLockfileRepository{}
}

// Load reads a lockfile from the given path. A missing file yields (nil, nil).
func (r *FileLockfileRepository) Load(ctx context.Context, path string) (*entities.Lockfile, error) {
	dir, base := filepath.Split(filepath.Clean(path))
	if dir == "" {
		dir = "."
	}

	// Confine access to the lockfile's directory.
	root, err := os.OpenRoot(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open directory %q: %w", dir, err)
	}
	defer func() { _ = root.Close() }()

	file, err := root.Open(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open lockfile %q: %w", base, err)
	}
	defer func() { _ = file.Close() }()

	var out Lockfile
	if err := yaml.NewDecoder(file).DecodeContext(ctx, &out); err != nil {
		return nil, fmt.Errorf("decoding lockfile YAML: %w", err)
	}

	lock := out.ToEntity()
	if err := lock.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lockfile: %w", err)
	}
	return lock, nil
}

// Save writes a lockfile atomically: it encodes to a sibling temporary file
// and renames it over path.
func (r *FileLockfileRepository) Save(ctx context.Context, lockfile *entities.Lockfile, path string) error {
	if err := lockfile.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid lockfile: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %q: %w", dir, err)
	}

	data, err := yaml.MarshalContext(ctx, FromEntity(lockfile))
	if err != nil {
		return fmt.Errorf("encoding lockfile: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary lockfile: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing lockfile: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("setting lockfile mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing lockfile: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing lockfile %q: %w", path, err)
	}
	return nil
}

// Exists checks if a lockfile exists at the given path.
func (r *FileLockfileRepository) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
