package booking

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts booking endpoints. writeLimit throttles mutating
// calls; adminOnly guards deactivation.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, writeLimit, adminOnly gin.HandlerFunc) {
	bookings := rg.Group("/bookings")
	{
		bookings.POST("", writeLimit, h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id/services", writeLimit, h.UpdateServices)

		bookings.POST("/:id/confirm", writeLimit, h.Confirm)
		bookings.POST("/:id/start", writeLimit, h.Start)
		bookings.POST("/:id/complete", writeLimit, h.Complete)
		bookings.POST("/:id/cancel", writeLimit, h.Cancel)
		bookings.POST("/:id/reschedule", writeLimit, h.Reschedule)

		bookings.DELETE("/:id", adminOnly, h.Deactivate)
		bookings.POST("/:id/restore", adminOnly, h.Restore)
	}
}
