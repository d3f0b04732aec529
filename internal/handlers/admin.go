package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/verdanthq/verdant/internal/database"
	apierrors "github.com/verdanthq/verdant/internal/errors"
	"github.com/verdanthq/verdant/internal/moderation"
	"github.com/verdanthq/verdant/internal/models"
	"github.com/verdanthq/verdant/internal/util"
	"gorm.io/gorm"
)

// GetReports returns the moderation queue, newest first
// GET /api/v1/admin/reports
func (h *Handlers) GetReports(c *gin.Context) {
	_, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	query := moderation.ListReportsQuery{
		Status:     models.ReportStatus(c.Query("status")),
		TargetType: models.ReportTargetType(c.Query("target_type")),
		Limit:      util.ParseLimit(c.DefaultQuery("limit", "50"), 50, 200),
		Offset:     util.ParseInt(c.DefaultQuery("offset", "0"), 0),
	}

	reports, total, err := h.moderation.ListReports(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports":     reports,
		"total_count": total,
		"limit":       query.Limit,
		"offset":      query.Offset,
	})
}

// UpdateReport moves a report through the review state machine
// PUT /api/v1/admin/reports/:id
func (h *Handlers) UpdateReport(c *gin.Context) {
	adminID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var input moderation.UpdateReportStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.moderation.UpdateReportStatus(c.Request.Context(), adminID, c.Param("id"), input)
	if err != nil {
		var apiErr *apierrors.APIError
		if errors.As(err, &apiErr) {
			util.RespondWithAPIError(c, apiErr)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// DeleteReportedContent removes the content behind a report and
// resolves every open report against that target
// DELETE /api/v1/admin/reports/:id/content
func (h *Handlers) DeleteReportedContent(c *gin.Context) {
	adminID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	err := h.moderation.DeleteReportedContent(c.Request.Context(), adminID, c.Param("id"))
	if err != nil {
		var apiErr *apierrors.APIError
		if errors.As(err, &apiErr) {
			util.RespondWithAPIError(c, apiErr)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove content"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Content removed"})
}

// GetAdminNotifications lists back-office notifications, unread first
// GET /api/v1/admin/notifications
func (h *Handlers) GetAdminNotifications(c *gin.Context) {
	_, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseLimit(c.DefaultQuery("limit", "50"), 50, 200)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	query := database.DB.Model(&models.AdminNotification{})
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.AdminNotification
	err := query.Order("is_read ASC, created_at DESC").
		Limit(limit).Offset(offset).
		Find(&notifications).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
		return
	}

	var unread int64
	database.DB.Model(&models.AdminNotification{}).Where("is_read = ?", false).Count(&unread)

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkAdminNotificationsRead marks back-office notifications as read.
// With no ids in the body, everything unread is marked.
// PUT /api/v1/admin/notifications/read
func (h *Handlers) MarkAdminNotificationsRead(c *gin.Context) {
	_, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	// Empty body means mark everything unread
	var req struct {
		IDs []string `json:"ids"`
	}
	_ = c.ShouldBindJSON(&req)

	query := database.DB.Model(&models.AdminNotification{}).Where("is_read = ?", false)
	if len(req.IDs) > 0 {
		query = query.Where("id IN ?", req.IDs)
	}

	result := query.Update("is_read", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked_read": result.RowsAffected})
}

// SuspendUser suspends an account. Suspended users cannot log in and
// their content disappears from feeds and search.
// POST /api/v1/admin/users/:id/suspend
func (h *Handlers) SuspendUser(c *gin.Context) {
	adminID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("id")
	if targetID == adminID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot suspend yourself"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	if user.IsSuspended {
		c.JSON(http.StatusOK, gin.H{"message": "User already suspended"})
		return
	}

	now := time.Now().UTC()
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.User{}).Where("id = ?", targetID).
			Updates(map[string]interface{}{
				"is_suspended": true,
				"suspended_at": now,
			}).Error
		if err != nil {
			return err
		}

		audit := models.AuditLog{
			AdminID:    adminID,
			Action:     "user_suspended",
			TargetType: "user",
			TargetID:   targetID,
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to suspend user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User suspended"})
}

// UnsuspendUser lifts a suspension
// DELETE /api/v1/admin/users/:id/suspend
func (h *Handlers) UnsuspendUser(c *gin.Context) {
	adminID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("id")

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ? AND is_suspended = ?", targetID, true).
			Updates(map[string]interface{}{
				"is_suspended": false,
				"suspended_at": nil,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		audit := models.AuditLog{
			AdminID:    adminID,
			Action:     "user_unsuspended",
			TargetType: "user",
			TargetID:   targetID,
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No suspended user with that id"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsuspend user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Suspension lifted"})
}

// GetAuditLog lists back-office actions, newest first
// GET /api/v1/admin/audit-log
func (h *Handlers) GetAuditLog(c *gin.Context) {
	_, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseLimit(c.DefaultQuery("limit", "50"), 50, 200)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	query := database.DB.Model(&models.AuditLog{})
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}

	var entries []models.AuditLog
	err := query.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load audit log"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
