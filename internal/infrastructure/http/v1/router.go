// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockreceipt/internal/core/security"
	"stockreceipt/internal/domain/receiving"
	"stockreceipt/internal/infrastructure/http/v1/handlers"
	"stockreceipt/internal/infrastructure/http/v1/middleware"
	"stockreceipt/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Service *receiving.Service
	Logger  *logger.Logger

	// JWTValidator guards /api/v1. Nil disables authentication.
	JWTValidator middleware.JWTValidator

	// ReadinessChecks are run by /health/ready.
	ReadinessChecks map[string]handlers.ReadinessCheck
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	router := gin.New()

	// Recovery sits inside ErrorHandler so a recovered panic is still rendered.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(log))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	healthHandler := handlers.NewHealthHandler(cfg.ReadinessChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	v1 := router.Group("/api/v1")
	var executeGuards []gin.HandlerFunc
	if cfg.JWTValidator != nil {
		v1.Use(middleware.Auth(cfg.JWTValidator))
		executeGuards = append(executeGuards, middleware.RequireRole(security.RoleReceiver))
	}

	receivingHandler := handlers.NewReceivingHandler(handlers.NewBaseHandler(), cfg.Service)
	receivingHandler.RegisterRoutes(v1.Group("/receiving"), executeGuards...)

	return router
}
