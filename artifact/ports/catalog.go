// Package ports declares the interfaces the resolution use case depends on.
package ports

import (
	"context"

	"github.com/reglet-dev/extcompat/artifact/entities"
	"github.com/reglet-dev/extcompat/artifact/values"
	"github.com/reglet-dev/extcompat/capability"
)

// CatalogClient provides access to a remote artifact registry.
type CatalogClient interface {
	// Query returns the catalog entry for id. The version order of the
	// returned entry is the registry's preference order.
	Query(ctx context.Context, id values.ArtifactID) (*entities.CatalogEntry, error)
}

// PackageFetcher downloads a version's package to a temporary file.
// The caller owns the returned file and must remove it.
type PackageFetcher interface {
	Fetch(ctx context.Context, url string) (path string, digest values.Digest, err error)
}

// ManifestExtractor reads the declared capability requirements from a
// downloaded package.
type ManifestExtractor interface {
	Extract(path string) ([]capability.Requirement, error)
}

// EngineComparator decides whether a host version satisfies an engine
// requirement.
type EngineComparator interface {
	IsCompatible(hostVersion, requirement string) bool
}
