package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers photo routes. Reads are public.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	g.GET("/properties/:id/photos", h.List)
	g.POST("/properties/:id/photos", authMiddleware, h.Upload)

	group := g.Group("/photos")
	group.GET("/:id", h.Serve)
	group.GET("/:id/thumbnail", h.ServeThumbnail)
	group.DELETE("/:id", authMiddleware, h.Delete)
}
