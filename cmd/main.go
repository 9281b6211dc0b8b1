package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Lifeline/internal/alert"
	handlers "Lifeline/internal/handler"
	"Lifeline/internal/models"
	"Lifeline/pkg/config"
	"Lifeline/pkg/logger"
	"Lifeline/pkg/notification"
	"Lifeline/pkg/util"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg := config.GlobalConfig

	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	db, err := util.OpenDatabase(&gorm.Config{}, cfg.DBDriver, cfg.DSN)
	if err != nil {
		logger.Error("open database failed", zap.Error(err))
		return
	}
	if err := db.AutoMigrate(&models.ContactList{}, &models.Alert{}); err != nil {
		logger.Error("migrate failed", zap.Error(err))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The dispatcher is bound to the process lifetime, never to a request:
	// a client timeout must not collapse the inter-send pacing.
	channel := notification.NewChannel(cfg.Twilio, logger.L())
	dispatcher := alert.NewDispatcher(ctx, channel, cfg.PacingInterval, logger.L())
	lifecycle := alert.NewLifecycle(db, dispatcher, logger.L())

	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	handlers.NewHandlers(db, lifecycle).Register(engine)

	srv := &http.Server{Addr: cfg.Addr, Handler: engine}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Give in-flight dispatch loops time to finish; they observe the
	// shutdown only at pacing points.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown did not complete cleanly", zap.Error(err))
	}
}
