// Package httpapi assembles the Gin engine: the middleware chain, the
// router fallbacks, the operational endpoints (/health, /metrics, /swagger)
// and the versioned API mounted under the configured base path.
//
// Every failure renders in the errors envelope. Handler errors and panics go
// through the handlers.Dispatcher; throttled requests and unmatched routes
// use its Renderer directly.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-api-base/docs" // registers the OpenAPI document
	"github.com/tbourn/go-api-base/internal/config"
	"github.com/tbourn/go-api-base/internal/domain"
	"github.com/tbourn/go-api-base/internal/expect"
	"github.com/tbourn/go-api-base/internal/http/handlers"
	"github.com/tbourn/go-api-base/internal/http/middleware"
	"github.com/tbourn/go-api-base/internal/repo"
	"github.com/tbourn/go-api-base/internal/services"
)

// corsAllowHeaders lists the request headers browsers may send.
var corsAllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID}

// NewRegistry returns the entity registry used by the expectation checker:
// "user" and "project", both resolved by external id.
func NewRegistry(db *gorm.DB) *expect.Registry {
	reg := expect.NewRegistry()
	expect.Register(reg, "user", func(ctx context.Context, eid string) (*domain.User, error) {
		return repo.FindUserByEID(ctx, db, eid)
	})
	expect.Register(reg, "project", func(ctx context.Context, eid string) (*domain.Project, error) {
		return repo.FindProjectByEID(ctx, db, eid)
	})
	return reg
}

// userFinder adapts repo.FindUserByEID to middleware.UserFinder, reporting
// unknown users as absent.
func userFinder(db *gorm.DB) middleware.UserFinder {
	return func(ctx context.Context, eid string) (*domain.User, error) {
		u, err := repo.FindUserByEID(ctx, db, eid)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return u, err
	}
}

// RegisterRoutes installs middleware and routes on r. Order matters:
//
//  1. otelgin span
//  2. RequestID
//  3. RedactingLogger, which also attaches the request-scoped logger
//  4. dispatcher Recovery
//  5. 1 MiB body cap
//  6. Prometheus metrics; /metrics is registered here and skips the rest
//  7. Authenticate, so the limiter can key on the user
//  8. rate limiter
//  9. CORS, security headers and optional gzip
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	render := handlers.NewRenderer(handlers.DefaultPresenters())
	disp := handlers.NewDispatcher(render, cfg.Verbose)

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{MaskHeaders: []string{"X-API-Key"}}))

	// 4) Panic recovery through the dispatcher
	r.Use(disp.Recover())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Resolve the caller from X-User-ID
	r.Use(middleware.Authenticate(userFinder(db), disp.Handle))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(middleware.RateLimitOptions{
		RPS:   cfg.RateRPS,
		Burst: cfg.RateBurst,
		Key:   middleware.KeyByUserOrIP(),
	})
	r.Use(rl.Handler(func(c *gin.Context, _ time.Duration) {
		render.Fail(c, http.StatusTooManyRequests, "rate limit exceeded")
	}))

	// 9) CORS, security headers, optional gzip
	r.Use(corsHandlers(cfg.CORS.AllowedOrigins, func(c *gin.Context) {
		render.Fail(c, http.StatusForbidden, "origin not allowed")
	})...)

	// Security headers (HSTS only when enabled and request is HTTPS).
	// API responses carry user records and are never cached.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:      cfg.Security.EnableHSTS,
		HSTSMaxAge:      cfg.Security.HSTSMaxAge,
		NoStore:         true,
		NoStorePrefixes: []string{cfg.APIBasePath},
		EnablePolicy:    true,
	}))

	if cfg.GzipEnabled {
		r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	}

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		render.Fail(c, http.StatusNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		render.Fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: handlers ← services ← repo/db
	h := handlers.New(
		services.NewUserService(db),
		services.NewProjectService(db),
		NewRegistry(db),
		render,
	)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath) // e.g. "/api/v1"
	{
		// Users
		api.POST("/users", disp.Wrap(h.CreateUser))
		api.GET("/users/:id", disp.Wrap(h.GetUser))
		api.PUT("/users/:id", disp.Wrap(h.UpdateUser))

		// Projects
		api.GET("/projects", disp.Wrap(h.ListProjects))
		api.POST("/projects", disp.Wrap(h.CreateProject))
		api.GET("/projects/:project", disp.Wrap(h.GetProject))

		// Lookup
		api.GET("/lookup", disp.Wrap(h.Lookup))
	}
}

// corsHandlers returns the CORS chain for the configured origins. With no
// allowlist every origin gets "*" (credentials stay off); otherwise an allowed
// Origin is echoed back with Vary: Origin. The ACAO header is set up front so
// it is present even on requests gin-contrib/cors ignores, such as those
// without an Origin header.
//
// A cross-origin request from an unlisted origin is handed to deny and
// aborted before gin-contrib/cors would answer it with a bare 403.
func corsHandlers(origins []string, deny gin.HandlerFunc) []gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  corsAllowHeaders,
		ExposeHeaders: []string{"X-Request-ID", "Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	var pre gin.HandlerFunc
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
		pre = func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Next()
		}
	} else {
		cc.AllowOrigins = origins
		allowed := make(map[string]struct{}, len(origins))
		for _, o := range origins {
			allowed[o] = struct{}{}
		}
		pre = func(c *gin.Context) {
			origin := c.GetHeader("Origin")
			_, ok := allowed[origin]
			switch {
			case ok:
				c.Header("Access-Control-Allow-Origin", origin)
				c.Writer.Header().Add("Vary", "Origin")
			case origin != "" && !sameHost(origin, c.Request.Host) && deny != nil:
				deny(c)
				c.Abort()
				return
			}
			c.Next()
		}
	}
	return []gin.HandlerFunc{pre, cors.New(cc)}
}

// sameHost reports whether origin points at host, which gin-contrib/cors
// treats as a same-origin request.
func sameHost(origin, host string) bool {
	u, err := url.Parse(origin)
	return err == nil && u.Host == host
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
