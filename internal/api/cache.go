package api

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/cache"
	"github.com/yatube/yatube/pkg/logging"
	"github.com/yatube/yatube/pkg/telemetry"
)

const (
	indexCachePrefix = "index_page"
	cacheHeader      = "X-Cache"
	jsonContentType  = "application/json; charset=utf-8"
)

// PageCache caches successful rendered responses for a fixed TTL. Entries are
// keyed by prefix and request URI, so every page number is cached on its own.
// Writes never invalidate it.
type PageCache struct {
	store   cache.Store
	prefix  string
	ttl     time.Duration
	counter *telemetry.CacheCounter
	logger  *zap.Logger
}

// NewPageCache creates a response cache under prefix
func NewPageCache(store cache.Store, prefix string, ttl time.Duration) *PageCache {
	return &PageCache{
		store:   store,
		prefix:  prefix,
		ttl:     ttl,
		counter: telemetry.NewCacheCounter(prefix),
		logger:  logging.WithComponent("page-cache"),
	}
}

type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Handler serves cached responses and stores fresh ones
func (p *PageCache) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := cache.HashKey(p.prefix, c.Request.URL.RequestURI())

		body, err := p.store.Get(ctx, key)
		if err == nil {
			p.counter.Hit(ctx)
			c.Header(cacheHeader, "HIT")
			c.Data(http.StatusOK, jsonContentType, body)
			c.Abort()
			return
		}
		if !errors.Is(err, cache.ErrMiss) {
			p.logger.Warn("Cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		p.counter.Miss(ctx)

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Header(cacheHeader, "MISS")
		c.Next()

		if w.Status() != http.StatusOK || w.body.Len() == 0 {
			return
		}
		if err := p.store.Set(ctx, key, w.body.Bytes(), p.ttl); err != nil {
			p.logger.Warn("Cache store failed", zap.String("key", key), zap.Error(err))
		}
	}
}
