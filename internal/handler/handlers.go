package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Lifeline/internal/alert"
	"Lifeline/pkg/config"
	"Lifeline/pkg/logger"
	"Lifeline/pkg/metrics"
	"Lifeline/pkg/middleware"
)

type Handlers struct {
	db        *gorm.DB
	lifecycle *alert.Lifecycle
}

func NewHandlers(db *gorm.DB, lifecycle *alert.Lifecycle) *Handlers {
	return &Handlers{
		db:        db,
		lifecycle: lifecycle,
	}
}

func (h *Handlers) Register(engine *gin.Engine) {
	engine.Use(middleware.RequestLogger())

	r := engine.Group(config.GlobalConfig.APIPrefix)

	h.registerSystemRoutes(r)
	h.registerEmergencyRoutes(r)

	engine.GET("/metrics", metrics.Handler())
}

func (h *Handlers) registerEmergencyRoutes(r *gin.RouterGroup) {
	emergency := r.Group("emergency")
	{
		emergency.POST("/contacts", h.handleSaveContacts)

		emergency.GET("/contacts/:ownerId", h.handleGetContacts)

		emergency.POST("/sos", h.sosMiddleware()...)

		emergency.GET("/alerts/:ownerId", h.handleListAlerts)

		emergency.GET("/track/:trackingCode", h.handleTrackAlert)

		emergency.POST("/resolve/:alertId", h.handleResolveAlert)

		emergency.GET("/stats/:ownerId", h.handleOwnerStats)
	}
}

// sosMiddleware assembles the trigger chain: rate limit, optional
// idempotency-key dedupe, then the handler itself.
func (h *Handlers) sosMiddleware() []gin.HandlerFunc {
	cfg := config.GlobalConfig
	var chain []gin.HandlerFunc

	if cfg.SOSRateLimit != "" {
		limit, err := middleware.RateLimit(cfg.SOSRateLimit)
		if err != nil {
			logger.Warn("invalid sos rate limit, disabled", zap.String("rate", cfg.SOSRateLimit), zap.Error(err))
		} else {
			chain = append(chain, limit)
		}
	}
	if cfg.IdempotencyEnabled {
		var store middleware.IdemStore
		if cfg.RedisAddr != "" {
			store = middleware.NewRedisIdemStore(cfg.RedisAddr)
		}
		chain = append(chain, middleware.Idempotency(middleware.IdempotencyConfig{
			TTL:   cfg.IdempotencyTTL,
			Store: store,
		}))
	}
	return append(chain, h.handleTriggerSOS)
}

func (h *Handlers) registerSystemRoutes(r *gin.RouterGroup) {
	system := r.Group("system")
	{
		system.GET("/health", h.HealthCheck)
	}
}
