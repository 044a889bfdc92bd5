package routes

import (
	"net/http"
	"strings"
	"time"

	"eventura/config"
	"eventura/handlers"
	"eventura/middleware"
	"eventura/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterAIRoutes registers the chat agent and AI vendor search endpoints.
func RegisterAIRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	{
		api.POST("/agent/prompt", hb.AgentPromptHandler)
		api.POST("/eventura/ai-search", hb.AISearchHandler)
	}
}

// RegisterVendorRoutes registers the read-only vendor catalogue.
func RegisterVendorRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	vendors := r.Group("/api/eventura/vendors")
	{
		vendors.GET("", hb.ListVendorsHandler)
		vendors.GET("/:id", hb.GetVendorHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		health := utils.GetHealthStatus()
		status, state := http.StatusOK, "ok"
		if !health.Mongo || !health.Redis {
			status, state = http.StatusServiceUnavailable, "degraded"
		}
		c.JSON(status, gin.H{"status": state, "message": "Hi, I'm Eventura", "services": health})
	})
}

// RegisterMetricsRoute exposes Prometheus metrics.
func RegisterMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func allowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(config.AppConfig.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	origins := allowedOrigins()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: len(origins) != 1 || origins[0] != "*",
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	RegisterAIRoutes(r, hb)
	RegisterVendorRoutes(r, hb)
	RegisterHealthRoute(r)
	RegisterMetricsRoute(r)
}
