// Package router assembles the gin engine and HTTP server.
package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/turtacn/authcore/internal/config"
	"github.com/turtacn/authcore/internal/domain/service"
	"github.com/turtacn/authcore/internal/infrastructure/monitoring"
	"github.com/turtacn/authcore/internal/interfaces/http/handlers"
	"github.com/turtacn/authcore/internal/interfaces/http/middleware"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/logger"
)

// Router wires middleware, handlers and the HTTP server.
type Router struct {
	engine  *gin.Engine
	config  *config.Config
	log     logger.Logger
	server  *http.Server
	tokens  service.TokenService
	limiter service.RateLimitService
	metrics *monitoring.Metrics

	health   *handlers.HealthHandler
	auth     *handlers.AuthHandler
	sessions *handlers.SessionHandler
	devices  *handlers.DeviceHandler
	admin    *handlers.AdminHandler
}

// NewRouter creates the router. Routes are registered by SetupRoutes.
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	tokens service.TokenService,
	limiter service.RateLimitService,
	metrics *monitoring.Metrics,
	health *handlers.HealthHandler,
	auth *handlers.AuthHandler,
	sessions *handlers.SessionHandler,
	devices *handlers.DeviceHandler,
	admin *handlers.AdminHandler,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{
		engine:   gin.New(),
		config:   cfg,
		log:      log.WithComponent("http"),
		tokens:   tokens,
		limiter:  limiter,
		metrics:  metrics,
		health:   health,
		auth:     auth,
		sessions: sessions,
		devices:  devices,
		admin:    admin,
	}
}

// SetupRoutes registers the middleware chain and all routes.
func (r *Router) SetupRoutes() {
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Observability(otel.Tracer("authcore/http"), r.metrics))

	r.engine.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", constants.HeaderRequestID, "X-Trust-Token"},
		ExposeHeaders: []string{
			constants.HeaderRequestID,
			constants.HeaderRateLimitLimit,
			constants.HeaderRateLimitRemaining,
			constants.HeaderRateLimitReset,
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.engine.GET("/health/live", r.health.Live)
	r.engine.GET("/health/ready", r.health.Ready)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if r.config.Server.PprofEnabled {
		pprof.Register(r.engine)
	}

	requireAuth := middleware.RequireAuth(r.tokens, r.metrics, r.log)
	requireAdmin := middleware.RequireRole(constants.RoleAdmin)

	v1 := r.engine.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login",
				middleware.RateLimit(r.limiter, constants.RateLimitOpLogin, r.metrics, r.log),
				r.auth.Login)
			auth.POST("/refresh",
				middleware.RateLimit(r.limiter, constants.RateLimitOpRefresh, r.metrics, r.log),
				r.auth.Refresh)
			auth.POST("/logout", requireAuth, r.auth.Logout)
		}

		sessions := v1.Group("/sessions")
		sessions.Use(requireAuth)
		{
			sessions.GET("", r.sessions.List)
			sessions.DELETE("/:id", r.sessions.Terminate)
		}

		devices := v1.Group("/devices")
		devices.Use(requireAuth)
		{
			devices.POST("/trust", r.devices.Trust)
			devices.GET("/:id/trusted", r.devices.TrustStatus)
		}

		admin := v1.Group("/admin")
		admin.Use(requireAuth, requireAdmin)
		{
			admin.POST("/users/:id/logout", r.admin.ForceLogout)
			admin.POST("/families/:id/revoke", r.admin.RevokeFamily)
			admin.POST("/devices/:id/revoke", r.admin.RevokeDeviceTrust)
		}
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "The requested resource was not found",
		})
	})
}

// Start runs the HTTP server until it is shut down.
func (r *Router) Start() error {
	r.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    r.config.Server.ReadTimeout,
		WriteTimeout:   r.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	r.log.Info(context.Background(), "starting HTTP server", logger.String("address", addr))

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	r.log.Info(ctx, "stopping HTTP server")
	return r.server.Shutdown(ctx)
}

// Engine exposes the gin engine for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
