package artifacts

import (
	"context"
	"log/slog"
)

// Cache is created once per invocation. A stage is fresh only when its
// artifact is on disk and the registry holds the key it is about to build
// with; anything else, including a registry error, means rebuild.
type Cache struct {
	registry Registry
	force    bool
}

type CacheOption func(*Cache)

// WithForce makes every stage rebuild regardless of what the registry holds.
func WithForce(force bool) CacheOption {
	return func(c *Cache) { c.force = force }
}

func NewCache(registry Registry, opts ...CacheOption) *Cache {
	c := &Cache{registry: registry}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Fresh(ctx context.Context, stage, key, artifactPath string) bool {
	if c.force || !Exists(artifactPath) {
		return false
	}

	stored, ok, err := c.registry.Lookup(ctx, stage)
	if err != nil {
		slog.Warn("[Cache] Registry lookup failed, rebuilding",
			slog.String("stage", stage),
			slog.String("error", err.Error()))
		return false
	}
	if !ok || stored != key {
		return false
	}

	slog.Info("[Cache] Reusing artifact",
		slog.String("stage", stage),
		slog.String("path", artifactPath),
		slog.String("key", key))
	return true
}

// Commit records key for stage once its artifact has been written.
func (c *Cache) Commit(ctx context.Context, stage, key string) error {
	return c.registry.Record(ctx, stage, key)
}
