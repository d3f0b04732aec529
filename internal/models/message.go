package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is a two-party direct message thread. UserAID and
// UserBID are stored in lexicographic order so each pair maps to
// exactly one conversation.
type Conversation struct {
	ID      string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserAID string `gorm:"not null;index" json:"user_a_id"`
	UserA   User   `gorm:"foreignKey:UserAID" json:"user_a,omitempty"`
	UserBID string `gorm:"not null;index" json:"user_b_id"`
	UserB   User   `gorm:"foreignKey:UserBID" json:"user_b,omitempty"`

	LastMessageAt *time.Time `gorm:"index" json:"last_message_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasParticipant reports whether the given user is part of the thread
func (c *Conversation) HasParticipant(userID string) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// OtherParticipant returns the conversation partner of the given user
func (c *Conversation) OtherParticipant(userID string) string {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

// DirectMessage is one message inside a conversation
type DirectMessage struct {
	ID             string       `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ConversationID string       `gorm:"not null;index" json:"conversation_id"`
	Conversation   Conversation `gorm:"foreignKey:ConversationID" json:"-"`
	SenderID       string       `gorm:"not null;index" json:"sender_id"`
	Sender         User         `gorm:"foreignKey:SenderID" json:"sender,omitempty"`

	Body   string `gorm:"type:text;not null" json:"body"`
	IsRead bool   `gorm:"default:false" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName for direct messages
func (DirectMessage) TableName() string {
	return "direct_messages"
}

// BeforeCreate hooks

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

func (m *DirectMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = generateUUID()
	}
	return nil
}
