package schedule

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	photographers := rg.Group("/photographers/:id")
	{
		photographers.GET("/schedule", h.GetSchedule)
		photographers.PUT("/schedule", h.SaveSchedule)
		photographers.GET("/availability", h.GetAvailability)
		photographers.GET("/availability/check", h.CheckAvailability)
	}
}
