package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CacheCounter counts lookups against a named cache
type CacheCounter struct {
	lookups metric.Int64Counter
	name    string
}

// NewCacheCounter registers the cache lookup counter on the global meter
// provider. Call after Init so the configured exporter receives it.
func NewCacheCounter(name string) *CacheCounter {
	lookups, err := otel.Meter("yatube").Int64Counter(
		"yatube_cache_lookups_total",
		metric.WithDescription("Response cache lookups by result"),
	)
	if err != nil {
		otel.Handle(err)
	}
	return &CacheCounter{lookups: lookups, name: name}
}

// Hit records a cache hit
func (c *CacheCounter) Hit(ctx context.Context) {
	c.add(ctx, "hit")
}

// Miss records a cache miss
func (c *CacheCounter) Miss(ctx context.Context) {
	c.add(ctx, "miss")
}

func (c *CacheCounter) add(ctx context.Context, result string) {
	if c == nil || c.lookups == nil {
		return
	}
	c.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache", c.name),
		attribute.String("result", result),
	))
}
