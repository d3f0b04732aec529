package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/verdanthq/verdant/internal/database"
	"github.com/verdanthq/verdant/internal/models"
	"github.com/verdanthq/verdant/internal/util"
	"github.com/verdanthq/verdant/internal/visibility"
	"gorm.io/gorm"
)

// CreateEvent publishes a community event
// POST /api/v1/events
func (h *Handlers) CreateEvent(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Title       string     `json:"title" binding:"required,max=200"`
		Description string     `json:"description" binding:"max=5000"`
		Location    string     `json:"location" binding:"required,max=500"`
		StartsAt    time.Time  `json:"starts_at" binding:"required"`
		EndsAt      *time.Time `json:"ends_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.StartsAt.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event must start in the future"})
		return
	}
	if req.EndsAt != nil && req.EndsAt.Before(req.StartsAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event cannot end before it starts"})
		return
	}

	event := models.Event{
		CreatorID:   userID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}
	if err := database.DB.Create(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"event": event})
}

// GetEvents lists upcoming events, soonest first
// GET /api/v1/events
func (h *Handlers) GetEvents(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseLimit(c.DefaultQuery("limit", "20"), 20, 100)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, viewerID, visibility.FeedFlags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
		return
	}

	var events []models.Event
	err = database.DB.WithContext(c.Request.Context()).
		Model(&models.Event{}).
		Where("starts_at > ?", time.Now()).
		Scopes(
			visibility.NotHidden,
			visibility.ExcludeAuthors(excluded, "creator_id"),
			visibility.ExcludeSuspendedAuthors("creator_id"),
		).
		Preload("Creator").
		Order("starts_at ASC").
		Limit(limit).Offset(offset).
		Find(&events).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"limit":  limit,
		"offset": offset,
	})
}

// GetEvent returns a single event
// GET /api/v1/events/:id
func (h *Handlers) GetEvent(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	eventID := c.Param("id")

	var event models.Event
	err := database.DB.
		Scopes(visibility.NotHidden).
		Preload("Creator").
		First(&event, "id = ?", eventID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event"})
		return
	}

	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, viewerID, visibility.ProfileFlags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event"})
		return
	}
	if excluded.Contains(event.CreatorID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event})
}

// DeleteEvent removes the creator's own event
// DELETE /api/v1/events/:id
func (h *Handlers) DeleteEvent(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	eventID := c.Param("id")

	var event models.Event
	if err := database.DB.First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event"})
		return
	}

	if event.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your event"})
		return
	}

	if err := database.DB.Delete(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}
