package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verdanthq/verdant/internal/database"
	"github.com/verdanthq/verdant/internal/models"
	"github.com/verdanthq/verdant/internal/util"
	"github.com/verdanthq/verdant/internal/visibility"
	"gorm.io/gorm"
)

// GetConversations lists the viewer's DM threads, most recent first
// GET /api/v1/conversations
func (h *Handlers) GetConversations(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var conversations []models.Conversation
	err := database.DB.
		Preload("UserA").Preload("UserB").
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("last_message_at DESC NULLS LAST").
		Find(&conversations).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// CreateConversation opens (or returns) the thread with another user.
// Blocks in either direction forbid messaging.
// POST /api/v1/conversations
func (h *Handlers) CreateConversation(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.UserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot message yourself"})
		return
	}

	var other models.User
	if err := database.DB.First(&other, "id = ?", req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
		return
	}

	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, userID, visibility.ProfileFlags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open conversation"})
		return
	}
	if excluded.Contains(req.UserID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Store participants in lexicographic order so each pair maps to
	// one row
	a, b := userID, req.UserID
	if b < a {
		a, b = b, a
	}

	var conversation models.Conversation
	err = database.DB.
		Where("user_a_id = ? AND user_b_id = ?", a, b).
		FirstOrCreate(&conversation, models.Conversation{UserAID: a, UserBID: b}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation": conversation})
}

// GetMessages lists a conversation's messages, oldest first
// GET /api/v1/conversations/:id/messages
func (h *Handlers) GetMessages(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	conversation, ok := h.loadConversation(c, userID)
	if !ok {
		return
	}

	limit := util.ParseLimit(c.DefaultQuery("limit", "50"), 50, 200)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	var messages []models.DirectMessage
	err := database.DB.
		Where("conversation_id = ?", conversation.ID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&messages).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}

	// Everything the other side sent is now read
	database.DB.Model(&models.DirectMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversation.ID, userID, false).
		Update("is_read", true)

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"limit":    limit,
		"offset":   offset,
	})
}

// SendMessage appends a message to a conversation
// POST /api/v1/conversations/:id/messages
func (h *Handlers) SendMessage(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	conversation, ok := h.loadConversation(c, userID)
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body" binding:"required,max=5000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// A block created after the thread was opened still cuts it off
	recipientID := conversation.OtherParticipant(userID)
	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, userID, visibility.ProfileFlags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}
	if excluded.Contains(recipientID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot message this user"})
		return
	}

	message := models.DirectMessage{
		ConversationID: conversation.ID,
		SenderID:       userID,
		Body:           req.Body,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Conversation{}).Where("id = ?", conversation.ID).
			Update("last_message_at", message.CreatedAt).Error; err != nil {
			return err
		}

		notification := models.Notification{
			UserID:     recipientID,
			Type:       models.NotificationMessage,
			ActorID:    userID,
			EntityType: "conversation",
			EntityID:   conversation.ID,
			Message:    "sent you a message",
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": message})
}

func (h *Handlers) loadConversation(c *gin.Context, userID string) (*models.Conversation, bool) {
	conversationID := c.Param("id")

	var conversation models.Conversation
	if err := database.DB.First(&conversation, "id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load conversation"})
		return nil, false
	}

	if !conversation.HasParticipant(userID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return nil, false
	}

	return &conversation, true
}
