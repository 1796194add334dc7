package export

import (
	"bytes"
	"encoding/csv"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emogo-app/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/export", h.html)
	rg.GET("/export/csv", h.csv)
}

func (h *Handler) html(c *gin.Context) {
	rows, err := h.svc.Rows(c.Request.Context())
	if err != nil {
		h.log.Error("export query failed", zap.Error(err))
		response.ServerError(c, "failed to load records")
		return
	}

	page, err := renderExportPage(rows)
	if err != nil {
		h.log.Error("export render failed", zap.Error(err))
		response.ServerError(c, "failed to render export")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (h *Handler) csv(c *gin.Context) {
	rows, err := h.svc.Rows(c.Request.Context())
	if err != nil {
		h.log.Error("export query failed", zap.Error(err))
		response.ServerError(c, "failed to load records")
		return
	}

	data, err := writeCSV(rows)
	if err != nil {
		h.log.Error("export csv failed", zap.Error(err))
		response.ServerError(c, "failed to render export")
		return
	}

	c.Header("Content-Disposition", "attachment; filename=emogo_records.csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// writeCSV renders the header line plus one line per row, RFC 4180 quoting.
func writeCSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return nil, err
	}
	for i := range rows {
		if err := w.Write(rows[i].Values()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
