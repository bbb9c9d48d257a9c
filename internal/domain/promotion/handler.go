package promotion

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"photosession/internal/domain/audit"
	"photosession/internal/pkg/apperror"
	"photosession/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	p, err := h.service.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func (h *Handler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	date, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		response.FromError(c, apperror.FieldError("booking_date", "must be YYYY-MM-DD"))
		return
	}

	p, ev, err := h.service.EvaluatePromo(c.Request.Context(), req.Code, req.TotalAmount, date)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, EvaluateResponse{
		Code:        p.Code,
		Evaluation:  ev,
		FinalAmount: req.TotalAmount.Sub(ev.DiscountAmount).ClampZero(),
	})
}

func actorFrom(c *gin.Context) audit.Actor {
	return audit.Actor{ID: c.GetInt64("user_id"), Role: audit.Role(c.GetString("role"))}
}
