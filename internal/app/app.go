package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emogo-app/core/internal/config"
	"github.com/emogo-app/core/internal/database"
	"github.com/emogo-app/core/internal/middleware"
	pkgcron "github.com/emogo-app/core/internal/pkg/cron"
	pkgredis "github.com/emogo-app/core/internal/pkg/redis"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *database.Database
	rdb    *pkgredis.Client
	sched  *pkgcron.Scheduler
	logger *zap.Logger
	cancel context.CancelFunc
}

// New initializes the application: config → MongoDB → Redis → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	applyRuntimeSettings(cfg)

	ctx, cancel := context.WithCancel(context.Background())

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("database: %w", err)
	}

	// Redis only backs rate limiting and task tracking, so a missing
	// instance degrades those instead of failing the boot.
	rdb, err := pkgredis.Connect(cfg.Redis.URLValue())
	if err != nil {
		logger.Warn("redis 連線失敗，限流與任務追蹤停用", zap.Error(err))
		rdb = nil
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))

	sched := pkgcron.New()
	registerCronJobs(sched, db, cfg, logger)
	sched.Start(ctx)

	app := &App{
		cfg:    cfg,
		router: router,
		db:     db,
		rdb:    rdb,
		sched:  sched,
		logger: logger,
		cancel: cancel,
	}
	app.registerRoutes()

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background jobs and closes the store connections.
func (a *App) Shutdown(ctx context.Context) {
	a.cancel()
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Warn("redis close failed", zap.Error(err))
		}
	}
	if err := a.db.Close(ctx); err != nil {
		a.logger.Warn("mongodb close failed", zap.Error(err))
	}
}

var processStart = time.Now()
