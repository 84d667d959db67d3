package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"equipment_lending_client/app"
	"equipment_lending_client/config"
	"equipment_lending_client/models"
	"equipment_lending_client/routes"
)

func main() {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := app.NewLogger(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("timezone", zap.Error(err))
	}
	models.Location = loc

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer application.Close()

	routes.RegisterRoutes(application.Router, application)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go application.Registry.Run(ctx, time.Minute)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}
