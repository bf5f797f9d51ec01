package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/DezMoon/habit-tracker/internal/adapters/handler/http/middleware"
	"github.com/DezMoon/habit-tracker/internal/core/services"
)

type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type RouterDependencies struct {
	HabitHandler *HabitHandler
	StatsHandler *StatsHandler
	TokenService *services.TokenService
	Redis        *redis.Client
	RateLimit    int
	HealthChecks []HealthCheck
	Logger       *zap.Logger
	StartTime    time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PATCH, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	if deps.Redis != nil && deps.RateLimit > 0 {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, time.Minute, deps.Logger))
	}

	router.GET("/health", func(c *gin.Context) {
		statusCode := http.StatusOK
		body := gin.H{
			"status": "ok",
			"uptime": time.Since(deps.StartTime).String(),
		}

		for _, hc := range deps.HealthChecks {
			if err := hc.Check(c.Request.Context()); err != nil {
				body[hc.Name] = "unreachable"
				body["status"] = "degraded"
				statusCode = http.StatusServiceUnavailable
				continue
			}
			body[hc.Name] = "connected"
		}

		c.JSON(statusCode, body)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	if deps.TokenService != nil {
		apiV1.Use(middleware.AuthMiddleware(deps.TokenService))
	}
	{
		deps.HabitHandler.RegisterRoutes(apiV1)
		deps.StatsHandler.RegisterRoutes(apiV1)
	}

	return router
}
