package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emogo-app/core/internal/pkg/cron"
	"github.com/emogo-app/core/internal/pkg/nativelog"
)

func newTestRouter(sched *cron.Scheduler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(nil, nil, sched, nil, zap.NewNop())
	h.RegisterRoutes(r.Group(""))
	return r
}

func do(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestStatusDegradedWithoutBackends(t *testing.T) {
	r := newTestRouter(cron.New())

	w := do(r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Contains(t, w.Body.String(), `"database":false`)
	assert.Contains(t, w.Body.String(), `"redis":false`)
}

func TestCronEndpoints(t *testing.T) {
	sched := cron.New()
	var ran atomic.Bool
	sched.Register(cron.Job{
		Name:        "auto_backup",
		Description: "定時備份心情紀錄",
		Interval:    time.Hour,
		Fn: func(context.Context) error {
			ran.Store(true)
			return nil
		},
	})
	r := newTestRouter(sched)

	w := do(r, http.MethodGet, "/health/cron")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"auto_backup"`)

	w = do(r, http.MethodPost, "/health/cron/run/auto_backup")
	require.Equal(t, http.StatusOK, w.Code)
	require.Eventually(t, ran.Load, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		w := do(r, http.MethodGet, "/health/cron/task/auto_backup")
		return w.Code == http.StatusOK && strings.Contains(w.Body.String(), `"fulfill"`)
	}, time.Second, 10*time.Millisecond)

	w = do(r, http.MethodPost, "/health/cron/run/no_such_job")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTasksRequireRedis(t *testing.T) {
	r := newTestRouter(cron.New())

	assert.Equal(t, http.StatusUnprocessableEntity, do(r, http.MethodGet, "/health/tasks").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(r, http.MethodGet, "/health/tasks/abc").Code)
}

func TestLogListAndRead(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(nativelog.EnvLogDir, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stdout_1-2-26.log"), []byte("hello log"), 0o644))

	r := newTestRouter(cron.New())

	w := do(r, http.MethodGet, "/health/log/list")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stdout_1-2-26.log")
	assert.Contains(t, w.Body.String(), "9 B")

	w = do(r, http.MethodGet, "/health/log?filename=stdout_1-2-26.log")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello log", w.Body.String())

	assert.Equal(t, http.StatusUnprocessableEntity, do(r, http.MethodGet, "/health/log").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/health/log?filename=missing.log").Code)

	// Path traversal collapses to the base name inside the log dir.
	w = do(r, http.MethodGet, "/health/log?filename=..%2F..%2Fetc%2Fpasswd")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogDelete(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(nativelog.EnvLogDir, dir)

	old := filepath.Join(dir, "stdout_1-2-26.log")
	require.NoError(t, os.WriteFile(old, []byte("old"), 0o644))
	today := filepath.Join(dir, nativelog.TodayFilename(time.Now()))
	require.NoError(t, os.WriteFile(today, []byte("active"), 0o644))

	r := newTestRouter(cron.New())

	w := do(r, http.MethodDelete, "/health/log?filename=stdout_1-2-26.log")
	require.Equal(t, http.StatusNoContent, w.Code)
	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))

	// The active daily file is truncated, not removed.
	w = do(r, http.MethodDelete, "/health/log?filename="+nativelog.TodayFilename(time.Now()))
	require.Equal(t, http.StatusNoContent, w.Code)
	info, err := os.Stat(today)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}
