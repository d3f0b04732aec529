package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verdanthq/verdant/internal/models"
)

// GetUserFromContext pulls the authenticated user loaded by the auth
// middleware. On a missing user it writes a 401 and returns false, so
// handlers can bail with a bare return.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return nil, false
	}
	userPtr, ok := user.(*models.User)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid user data in context"})
		return nil, false
	}
	return userPtr, true
}

// GetUserIDFromContext is the cheaper variant for handlers that only
// need the viewer's ID. Same contract: writes a 401 and returns false
// when the request is unauthenticated.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	userIDStr, ok := userID.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid user ID in context"})
		return "", false
	}
	return userIDStr, true
}
