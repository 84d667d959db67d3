package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"equipment_lending_client/apiclient"
	"equipment_lending_client/config"
	"equipment_lending_client/db"
	"equipment_lending_client/session"
	"equipment_lending_client/store"
)

// Short aliases for handlers.
type Ctx = gin.Context
type H = gin.H

// idleSession is how long an unused in-memory store survives. The redis
// session outlives it and rebuilds the store on the next request.
const idleSession = 30 * time.Minute

// App holds every dependency the handlers share.
type App struct {
	Router *gin.Engine
	DB     *gorm.DB // nil when DATABASE_URL is unset
	RDB    *redis.Client
	Config config.Config
	Log    *zap.Logger

	API      *apiclient.Client
	Sessions *session.AppSessionStore
	Reads    *session.ReadCache
	Registry *store.Registry
	Audit    db.Recorder
}

// New opens redis and, when configured, postgres, then assembles the app.
func New(cfg config.Config, log *zap.Logger) (*App, error) {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}

	var gdb *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		if gdb, err = db.Connect(cfg.DatabaseURL, log); err != nil {
			_ = rdb.Close()
			return nil, err
		}
	} else {
		log.Info("DATABASE_URL not set, audit log disabled")
	}
	return Assemble(cfg, log, rdb, gdb)
}

// Assemble wires the app around connections that are already open.
func Assemble(cfg config.Config, log *zap.Logger, rdb *redis.Client, gdb *gorm.DB) (*App, error) {
	identity, err := cfg.Identity()
	if err != nil {
		return nil, err
	}

	api := apiclient.New(cfg.APIBaseURL,
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithLogger(log.Named("api")),
	)
	registry := store.NewRegistry(
		func(token string, onUnauthorized func()) store.API {
			return api.WithToken(token).OnUnauthorized(onUnauthorized)
		},
		store.Options{Identity: identity, AlertTimeout: cfg.AlertTimeout, Logger: log.Named("store")},
		idleSession,
	)

	var audit db.Recorder = db.NopRecorder{}
	if gdb != nil {
		audit = db.NewRepo(gdb)
	}

	r := gin.New()
	r.Use(ErrorHandler(log))
	r.Use(gin.Logger())
	r.Use(RateLimit(cfg.RateLimitPerMin, log))
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router:   r,
		DB:       gdb,
		RDB:      rdb,
		Config:   cfg,
		Log:      log,
		API:      api,
		Sessions: session.NewAppSessionStore(rdb, cfg.SessionTTL),
		Reads:    session.NewReadCache(rdb, cfg.SessionTTL, cfg.ReadSyncInterval),
		Registry: registry,
		Audit:    audit,
	}, nil
}

// Close waits for pending read-state writes, then closes the connections.
func (a *App) Close() {
	a.Registry.Wait()
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.RDB.Close()
}
