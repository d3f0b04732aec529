package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verdanthq/verdant/internal/database"
	"github.com/verdanthq/verdant/internal/models"
	"github.com/verdanthq/verdant/internal/util"
	"github.com/verdanthq/verdant/internal/visibility"
)

// GetNotifications returns the viewer's notifications, newest first.
// Rows whose actor the viewer has since blocked or muted are filtered
// like any other listing surface.
// GET /api/v1/notifications
func (h *Handlers) GetNotifications(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseLimit(c.DefaultQuery("limit", "30"), 30, 100)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	unreadOnly := c.Query("unread") == "true"

	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, userID, visibility.FeedFlags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
		return
	}

	q := database.DB.
		Scopes(visibility.ExcludeAuthors(excluded, "actor_id")).
		Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	err = q.Preload("Actor").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&notifications).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
		return
	}

	var unreadCount int64
	database.DB.Model(&models.Notification{}).
		Scopes(visibility.ExcludeAuthors(excluded, "actor_id")).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unreadCount)

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unreadCount,
		"limit":         limit,
		"offset":        offset,
	})
}

// MarkNotificationsRead marks the given notifications (or all) as read
// POST /api/v1/notifications/read
func (h *Handlers) MarkNotificationsRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		IDs []string `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q := database.DB.Model(&models.Notification{}).Where("user_id = ?", userID)
	if len(req.IDs) > 0 {
		q = q.Where("id IN ?", req.IDs)
	}

	if err := q.Update("is_read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications marked read"})
}
