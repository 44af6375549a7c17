package resolvers

import (
	"context"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/reglet-dev/extcompat/artifact/entities"
	"github.com/reglet-dev/extcompat/artifact/ports"
	"github.com/reglet-dev/extcompat/artifact/values"
)

const DefaultCatalogTTL = 10 * time.Minute
const DefaultCatalogCleanupInterval = 30 * time.Minute

// CachedCatalogClient memoizes successful catalog queries in memory.
// Failures are never cached. The cache lives as long as the client, so it
// pays off for long-lived embedders that resolve the same artifacts again.
type CachedCatalogClient struct {
	next   ports.CatalogClient
	cache  *gocache.Cache
	logger *slog.Logger
	ttl    time.Duration
}

// NewCachedCatalogClient wraps next with an in-memory cache. A ttl of zero
// or less uses DefaultCatalogTTL.
func NewCachedCatalogClient(next ports.CatalogClient, ttl time.Duration, logger *slog.Logger) *CachedCatalogClient {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedCatalogClient{
		next:   next,
		cache:  gocache.New(ttl, DefaultCatalogCleanupInterval),
		logger: logger,
		ttl:    ttl,
	}
}

// Query returns the cached entry for id or delegates to the wrapped client.
func (c *CachedCatalogClient) Query(ctx context.Context, id values.ArtifactID) (*entities.CatalogEntry, error) {
	key := id.Key()
	if value, found := c.cache.Get(key); found {
		if entry, ok := value.(*entities.CatalogEntry); ok {
			c.logger.Debug("catalog cache hit", "artifact", id.String())
			return entry, nil
		}
		c.logger.Error("wrong type in catalog cache", "artifact", id.String())
		c.cache.Delete(key)
	}

	entry, err := c.next.Query(ctx, id)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, entry, c.ttl)
	return entry, nil
}

// Invalidate drops the cached entry for id.
func (c *CachedCatalogClient) Invalidate(id values.ArtifactID) {
	c.cache.Delete(id.Key())
}
