package schedule

import (
	"net/http"
	"strconv"

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

func (h *Handler) GetSchedule(c *gin.Context) {
	id, ok := photographerID(c)
	if !ok {
		return
	}
	sched, err := h.service.GetSchedule(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sched)
}

func (h *Handler) SaveSchedule(c *gin.Context) {
	id, ok := photographerID(c)
	if !ok {
		return
	}
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	actor := audit.Actor{ID: c.GetInt64("user_id"), Role: audit.Role(c.GetString("role"))}
	sched, err := h.service.SaveSchedule(c.Request.Context(), actor, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sched)
}

// GetAvailability handles GET /photographers/:id/availability?date=&duration=
func (h *Handler) GetAvailability(c *gin.Context) {
	id, ok := photographerID(c)
	if !ok {
		return
	}
	duration := 60
	if raw := c.Query("duration"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			response.FromError(c, apperror.FieldError("duration", "must be an integer"))
			return
		}
		duration = v
	}

	av, err := h.service.GetAvailableSlots(c.Request.Context(), id, c.Query("date"), duration)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, av)
}

// CheckAvailability handles GET /photographers/:id/availability/check?date=&start=&end=
func (h *Handler) CheckAvailability(c *gin.Context) {
	id, ok := photographerID(c)
	if !ok {
		return
	}
	start, err := ParseClock(c.Query("start"))
	if err != nil {
		response.FromError(c, apperror.FieldError("start", "must be HH:MM"))
		return
	}
	end, err := ParseClock(c.Query("end"))
	if err != nil {
		response.FromError(c, apperror.FieldError("end", "must be HH:MM"))
		return
	}

	check, err := h.service.IsSlotAvailable(c.Request.Context(), id, c.Query("date"), TimeSlot{Start: start, End: end})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, check)
}

func photographerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid photographer id")
		return 0, false
	}
	return id, true
}
