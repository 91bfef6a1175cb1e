package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/yatube/yatube/pkg/config"
	"github.com/yatube/yatube/pkg/logging"
)

var (
	// ErrMiss is returned by Get when the key is absent or expired
	ErrMiss = errors.New("cache miss")

	// ErrCacheDisabled is returned when cache operations are attempted but cache is disabled
	ErrCacheDisabled = errors.New("cache is disabled")
)

// Store is a process-wide byte cache with per-entry expiry. Entries are
// only ever removed by expiry or Clear.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}

// New returns a Redis-backed store when a Redis URL is configured and an
// in-process store otherwise
func New(cfg *config.RedisConfig) (Store, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Redis cache disabled, using in-memory cache")
		return NewMemoryStore(), nil
	}
	return NewRedisStore(cfg)
}

// HashKey builds a fixed-length key from its parts
func HashKey(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}
