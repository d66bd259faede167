package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/response"
)

// AuthRequired is a Gin middleware that validates the token from Authorization: Bearer <token>
// through the injected verifier.
func AuthRequired(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, ErrMissingToken)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Abort(c, ErrBadHeader)
			return
		}

		id, err := v.Verify(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			response.Abort(c, err)
			return
		}

		// Store user info into Gin context for later handlers.
		c.Set(userIDKey, id.UserID)
		c.Set(usernameKey, id.Username)
		c.Set(identityKey, id)

		c.Next()
	}
}
