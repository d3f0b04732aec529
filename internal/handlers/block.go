package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verdanthq/verdant/internal/database"
	"github.com/verdanthq/verdant/internal/models"
	"github.com/verdanthq/verdant/internal/util"
	"gorm.io/gorm"
)

// BlockUser blocks a user. Any follow edges between the two users are
// severed in the same transaction.
// POST /api/v1/users/:id/block
func (h *Handlers) BlockUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("id")
	if userID == targetID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot block yourself"})
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

	var existing models.UserBlock
	err := database.DB.Where("blocker_id = ? AND blocked_id = ?", userID, targetID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"message": "User already blocked", "blocked": true})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		block := models.UserBlock{BlockerID: userID, BlockedID: targetID}
		if err := tx.Create(&block).Error; err != nil {
			return err
		}

		// Sever follows in both directions
		return tx.Where(
			"(follower_id = ? AND followee_id = ?) OR (follower_id = ? AND followee_id = ?)",
			userID, targetID, targetID, userID,
		).Delete(&models.Follow{}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to block user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User blocked successfully", "blocked": true})
}

// UnblockUser removes a block
// DELETE /api/v1/users/:id/block
func (h *Handlers) UnblockUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("id")

	result := database.DB.Where("blocker_id = ? AND blocked_id = ?", userID, targetID).Delete(&models.UserBlock{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unblock user"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User was not blocked"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unblocked successfully", "blocked": false})
}

// GetBlockedUsers returns the current user's block list
// GET /api/v1/users/me/blocked
func (h *Handlers) GetBlockedUsers(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseLimit(c.DefaultQuery("limit", "50"), 50, 100)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	var blocks []models.UserBlock
	err := database.DB.
		Preload("Blocked").
		Where("blocker_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&blocks).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get blocked users"})
		return
	}

	users := make([]gin.H, len(blocks))
	for i, b := range blocks {
		users[i] = gin.H{
			"id":           b.Blocked.ID,
			"username":     b.Blocked.Username,
			"display_name": b.Blocked.DisplayName,
			"avatar_url":   b.Blocked.AvatarURL,
			"blocked_at":   b.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"users":  users,
		"limit":  limit,
		"offset": offset,
	})
}
