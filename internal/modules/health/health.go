package health

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emogo-app/core/internal/database"
	"github.com/emogo-app/core/internal/pkg/cron"
	"github.com/emogo-app/core/internal/pkg/nativelog"
	redisc "github.com/emogo-app/core/internal/pkg/redis"
	"github.com/emogo-app/core/internal/pkg/response"
	"github.com/emogo-app/core/internal/pkg/taskqueue"
)

type logItem struct {
	Size     string `json:"size"`
	Filename string `json:"filename"`
	Created  int64  `json:"created"`
}

// Handler exposes liveness and the operational endpoints grouped under
// /health: cron jobs, background tasks and native log files.
type Handler struct {
	db    *database.Database
	rdb   *redisc.Client
	sched *cron.Scheduler
	tasks *taskqueue.Service
	log   *zap.Logger
}

func NewHandler(db *database.Database, rdb *redisc.Client, sched *cron.Scheduler, tasks *taskqueue.Service, log *zap.Logger) *Handler {
	return &Handler{db: db, rdb: rdb, sched: sched, tasks: tasks, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.status)

	group := rg.Group("/health")
	cronGroup := group.Group("/cron")
	{
		cronGroup.GET("", h.cronList)
		cronGroup.POST("/run/:name", h.cronRun)
		cronGroup.GET("/task/:name", h.cronTask)
	}

	taskGroup := group.Group("/tasks")
	{
		taskGroup.GET("", h.taskList)
		taskGroup.GET("/:id", h.taskGet)
	}

	logGroup := group.Group("/log")
	{
		logGroup.GET("/list", h.logList)
		logGroup.GET("", h.logRead)
		logGroup.DELETE("", h.logDelete)
	}
}

// status reports liveness. The document store is load-bearing; Redis only
// degrades rate limiting and task tracking, so it never flips the status.
func (h *Handler) status(c *gin.Context) {
	ctx := c.Request.Context()

	dbOK := h.db != nil && h.db.Ping(ctx) == nil
	redisOK := h.rdb != nil && h.rdb.Ping(ctx) == nil

	status := "ok"
	code := http.StatusOK
	if !dbOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":   status,
		"database": dbOK,
		"redis":    redisOK,
	})
}

func (h *Handler) cronList(c *gin.Context) {
	items := h.sched.List()
	byName := make(map[string]cron.ListItem, len(items))
	for _, item := range items {
		byName[item.Name] = item
	}
	response.OK(c, byName)
}

func (h *Handler) cronRun(c *gin.Context) {
	if err := h.sched.Run(c.Request.Context(), c.Param("name")); err != nil {
		response.NotFoundMsg(c, err.Error())
		return
	}
	response.OK(c, gin.H{"message": "job triggered"})
}

func (h *Handler) cronTask(c *gin.Context) {
	result, err := h.sched.GetTask(c.Param("name"))
	if err != nil {
		response.NotFoundMsg(c, err.Error())
		return
	}
	response.OK(c, result)
}

func (h *Handler) taskList(c *gin.Context) {
	if h.tasks == nil {
		response.UnprocessableEntity(c, "task tracking requires redis")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, err := h.tasks.List(c.Request.Context(), limit)
	if err != nil {
		h.log.Warn("list tasks failed", zap.Error(err))
		response.ServerError(c, "failed to list tasks")
		return
	}
	response.OK(c, items)
}

func (h *Handler) taskGet(c *gin.Context) {
	if h.tasks == nil {
		response.UnprocessableEntity(c, "task tracking requires redis")
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Warn("get task failed", zap.Error(err))
		response.ServerError(c, "failed to read task")
		return
	}
	if task == nil {
		response.NotFoundMsg(c, "task not found")
		return
	}
	response.OK(c, task)
}

func (h *Handler) logList(c *gin.Context) {
	entries, err := os.ReadDir(nativelog.ResolveDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			response.OK(c, []logItem{})
			return
		}
		response.BadRequest(c, "log dir not exists")
		return
	}

	items := make([]logItem, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, logItem{
			Size:     formatByteSize(info.Size()),
			Filename: entry.Name(),
			Created:  info.ModTime().UnixMilli(),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Created > items[j].Created
	})
	response.OK(c, items)
}

func (h *Handler) logRead(c *gin.Context) {
	dir := nativelog.ResolveDir()
	if _, err := os.Stat(dir); err != nil {
		response.BadRequest(c, "log dir not exists")
		return
	}

	filename, ok := sanitizeLogFilename(c.Query("filename"))
	if !ok {
		response.UnprocessableEntity(c, "filename must be string")
		return
	}

	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		response.BadRequest(c, "log file not exists")
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}

// logDelete removes a log file. The active daily file is truncated
// instead of removed so the writer keeps a valid target.
func (h *Handler) logDelete(c *gin.Context) {
	dir := nativelog.ResolveDir()

	filename, ok := sanitizeLogFilename(c.Query("filename"))
	if !ok {
		response.UnprocessableEntity(c, "filename must be string")
		return
	}

	targetPath := filepath.Join(dir, filename)
	todayPath := filepath.Join(dir, nativelog.TodayFilename(time.Now()))
	if samePath(targetPath, todayPath) {
		if err := os.WriteFile(targetPath, []byte(""), 0o644); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.log.Warn("truncate log failed", zap.String("file", filename), zap.Error(err))
			response.ServerError(c, "failed to truncate log")
			return
		}
	} else if err := os.Remove(targetPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		h.log.Warn("remove log failed", zap.String("file", filename), zap.Error(err))
		response.ServerError(c, "failed to remove log")
		return
	}

	response.NoContent(c)
}

func sanitizeLogFilename(raw string) (string, bool) {
	filename := filepath.Base(strings.TrimSpace(raw))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return "", false
	}
	return filename, true
}

func formatByteSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

func samePath(a, b string) bool {
	left := filepath.Clean(a)
	right := filepath.Clean(b)
	if runtime.GOOS == "windows" {
		return strings.EqualFold(left, right)
	}
	return left == right
}
