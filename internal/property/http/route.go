package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *PropertyHandler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/properties")

	// === Public Routes ===
	group.GET("", h.List)
	group.GET("/:id", h.Get)

	// === Authenticated Routes ===
	group.GET("/mine", authMiddleware, h.Mine)
	group.POST("", authMiddleware, h.Create)
	group.PUT("/:id", authMiddleware, h.Replace)
	group.PATCH("/:id", authMiddleware, h.Update)
	group.DELETE("/:id", authMiddleware, h.Delete)

	g.GET("/my-properties", authMiddleware, h.Mine)
}
