package payment

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the ledger endpoints. Booking-scoped reads and writes
// hang off /bookings/:id; settlement works on a transaction id.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, writeLimit gin.HandlerFunc) {
	rg.GET("/bookings/:id/payment-status", h.GetPaymentStatus)
	rg.POST("/bookings/:id/transactions", writeLimit, h.RecordPayment)

	txns := rg.Group("/transactions")
	{
		txns.POST("/:id/complete", writeLimit, h.Complete)
		txns.POST("/:id/fail", writeLimit, h.Fail)
		txns.POST("/:id/cancel", writeLimit, h.Cancel)
		txns.POST("/:id/refund", writeLimit, h.Refund)
	}
}
