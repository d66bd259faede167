package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *BookingHandler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings", authMiddleware)

	group.GET("", h.Mine)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Reschedule)
	group.PATCH("/:id", h.Reschedule)
	group.DELETE("/:id", h.Delete)

	g.GET("/my-bookings", authMiddleware, h.Mine)
	g.GET("/host-bookings", authMiddleware, h.Hosted)
}
