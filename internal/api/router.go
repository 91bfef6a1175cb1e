package api

import (
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/auth"
	"github.com/yatube/yatube/internal/cache"
	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/feed"
	"github.com/yatube/yatube/internal/follow"
	"github.com/yatube/yatube/internal/media"
	"github.com/yatube/yatube/internal/posts"
	"github.com/yatube/yatube/pkg/config"
	"github.com/yatube/yatube/pkg/logging"
	"github.com/yatube/yatube/pkg/telemetry"
)

// Options configures the router
type Options struct {
	PageSize      int
	IndexCacheTTL time.Duration
	LoginURL      string
	MediaURL      string
	MediaRoot     string
	CORSOrigin    string
	ServiceName   string
	Sentry        bool
	Metrics       bool
}

// OptionsFromConfig builds router options from the loaded configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PageSize:      cfg.Feed.PageSize,
		IndexCacheTTL: cfg.Feed.IndexCacheTTL,
		LoginURL:      cfg.Auth.LoginURL,
		MediaURL:      cfg.Media.URL,
		MediaRoot:     cfg.Media.Root,
		CORSOrigin:    cfg.Server.CORSOrigin,
		ServiceName:   cfg.Telemetry.ServiceName,
		Sentry:        cfg.Telemetry.SentryDSN != "",
		Metrics:       cfg.Telemetry.Enabled && cfg.Telemetry.PrometheusEnabled,
	}
}

// Router sets up the site routes
type Router struct {
	db        *db.DB
	cache     cache.Store
	issuer    *auth.Issuer
	limiter   *IPRateLimiter
	handlers  *Handlers
	pageCache *PageCache
	opts      Options
	logger    *zap.Logger
}

// NewRouter creates a new router. A nil limiter disables rate limiting.
func NewRouter(database *db.DB, store cache.Store, mediaStore media.Store, issuer *auth.Issuer, limiter *IPRateLimiter, opts Options) *Router {
	repo := db.NewRepository(database.DB)
	return &Router{
		db:      database,
		cache:   store,
		issuer:  issuer,
		limiter: limiter,
		handlers: NewHandlers(
			feed.NewService(repo, opts.PageSize),
			follow.NewService(repo),
			posts.NewService(repo),
			mediaStore,
			opts.LoginURL,
		),
		pageCache: NewPageCache(store, indexCachePrefix, opts.IndexCacheTTL),
		opts:      opts,
		logger:    logging.WithComponent("api-router"),
	}
}

// SetupRoutes installs middleware and routes on engine
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(gin.Recovery())
	if r.opts.ServiceName != "" {
		engine.Use(otelgin.Middleware(r.opts.ServiceName))
	}
	if r.opts.Sentry {
		engine.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	engine.Use(requestLogger(r.logger))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))
	if r.opts.CORSOrigin != "" {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     []string{r.opts.CORSOrigin},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", cacheHeader},
			AllowCredentials: true,
		}))
	}

	// Health check endpoints
	engine.GET("/health", r.health)
	engine.GET("/.well-known/healthcheck.json", r.health)
	if r.opts.Metrics {
		engine.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))
	}
	if r.opts.MediaURL != "" && r.opts.MediaRoot != "" {
		engine.Static(r.opts.MediaURL, r.opts.MediaRoot)
	}

	h := r.handlers
	site := engine.Group("/", auth.Middleware(r.issuer, db.NewUserRepository(db.NewRepository(r.db.DB))))
	login := auth.LoginRequired(r.opts.LoginURL)
	limit := RateLimitMiddleware(r.limiter)

	site.GET("/", r.pageCache.Handler(), h.index)
	site.GET("/group/:slug/", h.groupPosts)
	site.GET("/profile/:username/", h.profile)
	site.GET("/posts/:post_id/", h.postDetail)

	site.GET("/create/", login, h.postCreateForm)
	site.POST("/create/", login, limit, h.postCreate)
	site.GET("/posts/:post_id/edit/", login, h.postEditForm)
	site.POST("/posts/:post_id/edit/", login, limit, h.postEdit)
	site.POST("/posts/:post_id/comment/", login, limit, h.addComment)

	site.GET("/follow/", login, h.followIndex)
	site.GET("/profile/:username/follow/", login, limit, h.profileFollow)
	site.GET("/profile/:username/unfollow/", login, limit, h.profileUnfollow)

	engine.NoRoute(func(c *gin.Context) {
		h.render(c, http.StatusNotFound, "core/404.html", gin.H{"path": c.Request.URL.Path})
	})
}

// health reports database and cache reachability
func (r *Router) health(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	body := gin.H{
		"status":   "OK",
		"service":  "yatube",
		"database": "OK",
		"cache":    "OK",
	}

	if err := r.db.Health(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "DEGRADED"
		body["database"] = err.Error()
	}
	if err := r.cache.Health(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "DEGRADED"
		body["cache"] = err.Error()
	}
	c.JSON(status, body)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("Request served", fields...)
			return
		}
		logger.Debug("Request served", fields...)
	}
}
