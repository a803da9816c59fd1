package routes

import (
	"log/slog"
	"net/http"

	"yasn/config"
	"yasn/handlers"
	"yasn/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionCookieName = "session"

// SetupRouter wires middleware and routes onto a fresh engine. reg receives
// the HTTP metrics and backs /metrics.
func SetupRouter(cfg config.Config, h *handlers.Handler, logger *slog.Logger, reg *prometheus.Registry) *gin.Engine {
	router := gin.New()
	metrics := middleware.NewMetrics(reg)

	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		metrics.Handler(),
		middleware.SecurityHeaders(),
		cors.New(corsConfig(cfg)),
		sessions.Sessions(sessionCookieName, sessionStore(cfg)),
		middleware.OptionalAuth(cfg.JWTSecret),
	)

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	h.Register(router)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Endpoint not found",
			"path":  c.Request.URL.Path,
		})
	})

	return router
}

// corsConfig is fully open for "*", otherwise an allow-list with credentials.
func corsConfig(cfg config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader}
	corsCfg.ExposeHeaders = []string{"Content-Length", "Content-Type", middleware.RequestIDHeader}

	if cfg.AllowsAllOrigins() {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = cfg.AllowedOrigins
	corsCfg.AllowCredentials = true
	return corsCfg
}

func sessionStore(cfg config.Config) sessions.Store {
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store
}
