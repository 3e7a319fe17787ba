package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/smart-faq/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.CORS.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/", handler.Home)
	router.GET("/healthz", handler.Health)

	api := router.Group("/api", rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger))
	{
		api.POST("/seed", handler.Seed)
		api.POST("/search", handler.Search)
		api.POST("/answer", handler.Answer)
		api.POST("/feedback", handler.Feedback)
		api.GET("/faqs", handler.ListFAQs)
		api.POST("/faqs", handler.UpsertFAQ)
		api.DELETE("/faqs/:id", handler.DeleteFAQ)
		api.GET("/analytics", handler.Analytics)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
