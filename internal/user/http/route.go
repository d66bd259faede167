package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the auth endpoints and /me.
// limiter guards the credential endpoints against brute force.
func RegisterRoutes(g *gin.RouterGroup, h *UserHandler, authMiddleware, limiter gin.HandlerFunc) {
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/register", limiter, h.Register)
		authGroup.POST("/login", limiter, h.Login)
		authGroup.POST("/refresh", limiter, h.Refresh)
		authGroup.POST("/logout", authMiddleware, h.Logout)
		authGroup.GET("/verify", authMiddleware, h.Verify)
	}

	g.GET("/me", authMiddleware, h.Me)
}
