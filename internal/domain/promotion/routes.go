package promotion

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts promotion endpoints. adminOnly guards creation.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	promotions := rg.Group("/promotions")
	{
		promotions.POST("", adminOnly, h.Create)
		promotions.POST("/evaluate", h.Evaluate)
	}
}
