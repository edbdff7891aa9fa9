package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/shared/config"
	"jobmatch-backend/internal/shared/metrics"
	"jobmatch-backend/internal/shared/server/middleware"
	"jobmatch-backend/internal/shared/server/respond"
)

// RouteRegistrar attaches routes to a group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
	RegisterEngineRoutes(rg *gin.RouterGroup)
}

// RouterDeps holds dependencies for building the router.
type RouterDeps struct {
	Config config.Config
	API    RouteRegistrar
	// Limiter is shared across routers built from the same app. Nil gets a
	// fresh limiter.
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.API != nil {
		engine := api.Group("/engine", middleware.EngineToken(cfg.EngineToken))
		deps.API.RegisterEngineRoutes(engine)
	}

	authed := api.Group("")
	authed.Use(
		middleware.Auth(),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: middleware.MethodGroup,
			Limiter:  deps.Limiter,
			Rules: map[string]middleware.RateLimitRule{
				middleware.GroupWrite: {Rate: cfg.WriteRatePerSec, Burst: cfg.WriteRateBurst},
			},
		}),
	)
	registerMeRoutes(authed)
	if deps.API != nil {
		deps.API.RegisterRoutes(authed)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
