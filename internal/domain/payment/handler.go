package payment

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"photosession/internal/domain/audit"
	"photosession/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetPaymentStatus(c *gin.Context) {
	id, ok := pathID(c, "invalid booking id")
	if !ok {
		return
	}
	status, err := h.service.GetPaymentStatus(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, status)
}

func (h *Handler) RecordPayment(c *gin.Context) {
	id, ok := pathID(c, "invalid booking id")
	if !ok {
		return
	}
	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	t, err := h.service.RecordPayment(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, t)
}

func (h *Handler) Refund(c *gin.Context) {
	id, ok := pathID(c, "invalid transaction id")
	if !ok {
		return
	}
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	t, err := h.service.Refund(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, t)
}

func (h *Handler) Complete(c *gin.Context) { h.settle(c, h.service.Complete) }
func (h *Handler) Fail(c *gin.Context)     { h.settle(c, h.service.Fail) }
func (h *Handler) Cancel(c *gin.Context)   { h.settle(c, h.service.Cancel) }

type settleFunc func(ctx context.Context, actor audit.Actor, id int64) (*Transaction, error)

func (h *Handler) settle(c *gin.Context, fn settleFunc) {
	id, ok := pathID(c, "invalid transaction id")
	if !ok {
		return
	}
	t, err := fn(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func actorFrom(c *gin.Context) audit.Actor {
	return audit.Actor{ID: c.GetInt64("user_id"), Role: audit.Role(c.GetString("role"))}
}

func pathID(c *gin.Context, msg string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", msg)
		return 0, false
	}
	return id, true
}
