package backup

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emogo-app/core/internal/pkg/response"
	"github.com/emogo-app/core/internal/pkg/taskqueue"
)

const taskTimeout = 10 * time.Minute

// Handler exposes the admin backup surface: list archives, trigger a new
// one, download one by name.
type Handler struct {
	svc   *Service
	tasks *taskqueue.Service
	log   *zap.Logger
}

func NewHandler(svc *Service, tasks *taskqueue.Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, tasks: tasks, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/backup")

	g.GET("", h.list)
	g.POST("", h.trigger)
	g.GET("/:filename", h.download)
}

func (h *Handler) list(c *gin.Context) {
	response.OK(c, h.svc.ListArchives())
}

// trigger runs the backup through the task queue so the caller can poll
// its state. Without Redis the backup runs inline instead.
func (h *Handler) trigger(c *gin.Context) {
	if h.tasks != nil {
		task, err := h.enqueueRun(c.Request.Context())
		if err == nil {
			c.JSON(http.StatusAccepted, gin.H{"task_id": task.ID, "status": task.Status})
			return
		}
		h.log.Warn("task enqueue failed, running backup inline", zap.Error(err))
	}

	artifact, err := h.svc.CreateArchive(c.Request.Context())
	if err != nil {
		h.log.Error("backup failed", zap.Error(err))
		response.ServerError(c, "backup failed")
		return
	}
	response.OK(c, artifact)
}

// enqueueRun tracks one archive run in the task queue. A dedup hit hands
// back the run already in flight; only a freshly created task may launch
// another archive, and it is marked running before the handler returns so
// a rapid second trigger can never start a second run.
func (h *Handler) enqueueRun(ctx context.Context) (*taskqueue.Task, error) {
	task, err := h.tasks.Enqueue(ctx, "backup", nil, "backup")
	if err != nil {
		return nil, err
	}
	if task.Status != taskqueue.TaskPending {
		return task, nil
	}
	if err := h.tasks.UpdateStatus(ctx, task.ID, taskqueue.TaskRunning, nil, ""); err != nil {
		return nil, err
	}
	task.Status = taskqueue.TaskRunning

	go h.runTask(task.ID)
	return task, nil
}

func (h *Handler) runTask(taskID string) {
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	artifact, err := h.svc.CreateArchive(ctx)
	if err != nil {
		h.log.Error("backup task failed", zap.String("task_id", taskID), zap.Error(err))
		_ = h.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, nil, err.Error())
		return
	}
	_ = h.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskCompleted, artifact, "")
}

func (h *Handler) download(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	if !strings.HasPrefix(filename, "backup-") || !strings.HasSuffix(filename, ".zip") {
		response.BadRequest(c, "invalid filename")
		return
	}

	data, err := os.ReadFile(filepath.Join(h.svc.Dir(), filename))
	if err != nil {
		if os.IsNotExist(err) {
			response.NotFound(c)
			return
		}
		h.log.Error("backup read failed", zap.String("file", filename), zap.Error(err))
		response.ServerError(c, "failed to read backup")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/zip", data)
}
