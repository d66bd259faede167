package auth

import "github.com/gin-gonic/gin"

const (
	userIDKey   = "userID"
	usernameKey = "username"
	identityKey = "identity"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// GetUsername returns the authenticated user's username or empty string.
func GetUsername(c *gin.Context) string {
	return c.GetString(usernameKey)
}

// GetIdentity returns the identity stored by AuthRequired, or nil.
func GetIdentity(c *gin.Context) *Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*Identity); ok {
			return id
		}
	}
	return nil
}
