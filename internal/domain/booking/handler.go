package booking

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"photosession/internal/domain/audit"
	"photosession/internal/domain/schedule"
	"photosession/internal/pkg/apperror"
	"photosession/internal/pkg/response"
	"photosession/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	detail, err := h.service.GetByID(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

func (h *Handler) UpdateServices(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req UpdateServicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	b, err := h.service.UpdateServices(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) Confirm(c *gin.Context)  { h.transition(c, Confirm{}) }
func (h *Handler) Start(c *gin.Context)    { h.transition(c, Start{}) }
func (h *Handler) Complete(c *gin.Context) { h.transition(c, Complete{}) }

func (h *Handler) Cancel(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	h.transition(c, Cancel{Reason: req.Reason})
}

func (h *Handler) Reschedule(c *gin.Context) {
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.FromError(c, apperror.Validation(errs))
		return
	}
	start, err := schedule.ParseClock(req.StartTime)
	if err != nil {
		response.FromError(c, apperror.FieldError("start_time", "must be HH:MM"))
		return
	}
	h.transition(c, Reschedule{Date: req.BookingDate, StartTime: start})
}

func (h *Handler) transition(c *gin.Context, action Action) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.Transition(c.Request.Context(), actorFrom(c), id, action)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) Deactivate(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.Deactivate(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) Restore(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.Restore(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func actorFrom(c *gin.Context) audit.Actor {
	return audit.Actor{ID: c.GetInt64("user_id"), Role: audit.Role(c.GetString("role"))}
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid booking id")
		return 0, false
	}
	return id, true
}
