package ports

import (
	"context"

	"github.com/reglet-dev/extcompat/artifact/entities"
)

// LockfileRepository manages lockfile persistence.
type LockfileRepository interface {
	Load(ctx context.Context, path string) (*entities.Lockfile, error)
	Save(ctx context.Context, lockfile *entities.Lockfile, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}
