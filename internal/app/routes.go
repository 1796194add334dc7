package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/emogo-app/core/internal/middleware"
	"github.com/emogo-app/core/internal/modules/backup"
	"github.com/emogo-app/core/internal/modules/export"
	"github.com/emogo-app/core/internal/modules/health"
	"github.com/emogo-app/core/internal/modules/records"
	"github.com/emogo-app/core/internal/modules/servertime"
	"github.com/emogo-app/core/internal/pkg/response"
	"github.com/emogo-app/core/internal/pkg/taskqueue"
)

func (a *App) registerRoutes() {
	r := a.router
	cfg := a.cfg

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	var rawRedis *goredis.Client
	var taskSvc *taskqueue.Service
	if a.rdb != nil {
		rawRedis = a.rdb.Raw()
		taskSvc = taskqueue.NewService(a.rdb)
	}

	r.Use(middleware.RateLimit(rawRedis))

	// Submissions must be visible in the very next export, so everything
	// touching records is uncacheable.
	r.Use(middleware.CacheControl(
		middleware.CachePolicy{Pattern: "/export*", Directive: middleware.CacheNoStore},
		middleware.CachePolicy{Pattern: "/records*", Directive: middleware.CacheNoStore},
		middleware.CachePolicy{Pattern: "/server-time", Directive: middleware.CacheNoStore},
		middleware.CachePolicy{Pattern: "/health*", Directive: middleware.CacheNoStore},
		middleware.CachePolicy{Pattern: "/", Directive: middleware.CachePublicShort},
		middleware.CachePolicy{Pattern: "/ping", Directive: middleware.CachePublicShort},
	))

	// Shared services
	store := records.NewMongoStore(a.db.Collection(cfg.MongoDB.CollectionName()))
	recordsSvc := records.NewService(store, a.logger)
	exportSvc := export.NewService(store)
	backupSvc := backup.NewService(store, cfg, a.logger)

	root := r.Group("")
	records.NewHandler(recordsSvc, a.logger).RegisterRoutes(root)
	export.NewHandler(exportSvc, a.logger).RegisterRoutes(root)
	servertime.RegisterRoutes(root)

	// Operational surface
	health.NewHandler(a.db, a.rdb, a.sched, taskSvc, a.logger).RegisterRoutes(root)
	backup.NewHandler(backupSvc, taskSvc, a.logger).RegisterRoutes(root.Group("/health"))

	r.GET("/", func(c *gin.Context) {
		c.PureJSON(http.StatusOK, gin.H{
			"message": "Emogo backend is running",
			"version": "1.0.0",
			"uptime":  humanizeDuration(time.Since(processStart)),
			"endpoints": gin.H{
				"POST /records":   "Submit emotion records from the app",
				"GET /export":     "View all records as HTML table",
				"GET /export/csv": "Download all records as CSV file",
			},
		})
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": "pong"})
	})
}
