package records

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
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
	rg.POST("/records", h.submit)
	rg.GET("/records/:id/video", h.video)
}

func (h *Handler) submit(c *gin.Context) {
	var dto SubmitRecordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, bindErrorMessage(err))
		return
	}

	id, err := h.svc.Submit(c.Request.Context(), &dto)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(c, verr.Error())
			return
		}
		h.log.Error("record insert failed", zap.Error(err))
		response.ServerError(c, "failed to store record")
		return
	}

	response.Created(c, gin.H{"id": id})
}

func (h *Handler) video(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid record id")
		return
	}

	rec, err := h.svc.Video(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFoundMsg(c, "Record not found")
		case errors.Is(err, ErrNoVideo):
			response.NotFoundMsg(c, "No video stored for this record")
		default:
			h.log.Error("video lookup failed", zap.String("id", c.Param("id")), zap.Error(err))
			response.ServerError(c, "Internal server error")
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "emogo_record_"+id.Hex()+".mp4"))
	c.Data(http.StatusOK, "video/mp4", rec.VideoData)
}
