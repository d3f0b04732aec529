package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType categorizes user-facing notifications
type NotificationType string

const (
	NotificationFollow  NotificationType = "follow"
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationMention NotificationType = "mention"
	NotificationMessage NotificationType = "message"
)

// Notification is delivered to a single user
type Notification struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	Type    NotificationType `gorm:"not null" json:"type"`
	ActorID string           `gorm:"index" json:"actor_id"`
	Actor   User             `gorm:"foreignKey:ActorID" json:"actor,omitempty"`

	// Optional referenced entity (post, comment, conversation)
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`

	Message string `gorm:"type:text" json:"message"`
	IsRead  bool   `gorm:"default:false;index" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}

// AdminNotification alerts the moderation team about events that need
// attention, such as content crossing the auto-hide threshold.
type AdminNotification struct {
	ID string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`

	Kind        string `gorm:"not null;index" json:"kind"`
	TargetType  string `gorm:"not null" json:"target_type"`
	TargetID    string `gorm:"not null;index" json:"target_id"`
	ReportCount int    `gorm:"default:0" json:"report_count"`
	Message     string `gorm:"type:text" json:"message"`

	IsRead bool `gorm:"default:false;index" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName for admin alerts
func (AdminNotification) TableName() string {
	return "admin_notifications"
}

// BeforeCreate hooks

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}

func (a *AdminNotification) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = generateUUID()
	}
	return nil
}
