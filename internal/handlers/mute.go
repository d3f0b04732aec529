package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verdanthq/verdant/internal/database"
	"github.com/verdanthq/verdant/internal/logger"
	"github.com/verdanthq/verdant/internal/models"
	"github.com/verdanthq/verdant/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MuteUser mutes a user for the current user.
// Muting hides the muted user's posts from the feed without unfollowing.
// POST /api/v1/users/:id/mute
func (h *Handlers) MuteUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("id")
	if userID == targetID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot mute yourself"})
		return
	}

	var target models.User
	if err := database.DB.First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
		return
	}

	var existing models.MutedUser
	err := database.DB.Where("user_id = ? AND muted_user_id = ?", userID, targetID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"message": "User already muted", "muted": true})
		return
	}

	mute := models.MutedUser{UserID: userID, MutedUserID: targetID}
	if err := database.DB.Create(&mute).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mute user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "User muted successfully",
		"muted":    true,
		"muted_at": mute.CreatedAt,
	})
}

// UnmuteUser unmutes a user for the current user
// DELETE /api/v1/users/:id/mute
func (h *Handlers) UnmuteUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("id")

	result := database.DB.Where("user_id = ? AND muted_user_id = ?", userID, targetID).Delete(&models.MutedUser{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unmute user"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User was not muted"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unmuted successfully", "muted": false})
}

// GetMutedUsers returns the current user's muted users list
// GET /api/v1/users/me/muted
func (h *Handlers) GetMutedUsers(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseLimit(c.DefaultQuery("limit", "50"), 50, 100)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	var mutes []models.MutedUser
	err := database.DB.
		Preload("MutedUser").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&mutes).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get muted users"})
		return
	}

	var totalCount int64
	if err := database.DB.Model(&models.MutedUser{}).Where("user_id = ?", userID).Count(&totalCount).Error; err != nil {
		logger.Log.Warn("failed to count muted users", logger.WithUserID(userID), zap.Error(err))
		totalCount = 0
	}

	users := make([]gin.H, len(mutes))
	for i, mu := range mutes {
		users[i] = gin.H{
			"id":           mu.MutedUser.ID,
			"username":     mu.MutedUser.Username,
			"display_name": mu.MutedUser.DisplayName,
			"avatar_url":   mu.MutedUser.AvatarURL,
			"muted_at":     mu.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"users":       users,
		"total_count": totalCount,
		"limit":       limit,
		"offset":      offset,
		"has_more":    offset+len(users) < int(totalCount),
	})
}
