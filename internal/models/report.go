package models

import (
	"time"

	"gorm.io/gorm"
)

// ReportTargetType identifies what kind of entity a report points at
type ReportTargetType string

const (
	ReportTargetPost    ReportTargetType = "post"
	ReportTargetComment ReportTargetType = "comment"
	ReportTargetUser    ReportTargetType = "user"
	ReportTargetEvent   ReportTargetType = "event"
	ReportTargetShop    ReportTargetType = "shop"
	ReportTargetReview  ReportTargetType = "review"
)

// Valid reports whether the target type is one of the known variants
func (t ReportTargetType) Valid() bool {
	switch t {
	case ReportTargetPost, ReportTargetComment, ReportTargetUser,
		ReportTargetEvent, ReportTargetShop, ReportTargetReview:
		return true
	}
	return false
}

// ReportReason is the reporter-selected category
type ReportReason string

const (
	ReasonSpam          ReportReason = "spam"
	ReasonHarassment    ReportReason = "harassment"
	ReasonInappropriate ReportReason = "inappropriate"
	ReasonCopyright     ReportReason = "copyright"
	ReasonOther         ReportReason = "other"
)

// Valid reports whether the reason is a known category
func (r ReportReason) Valid() bool {
	switch r {
	case ReasonSpam, ReasonHarassment, ReasonInappropriate,
		ReasonCopyright, ReasonOther:
		return true
	}
	return false
}

// ReportStatus tracks a report through review
type ReportStatus string

const (
	ReportPending    ReportStatus = "pending"
	ReportReviewed   ReportStatus = "reviewed"
	ReportResolved   ReportStatus = "resolved"
	ReportDismissed  ReportStatus = "dismissed"
	ReportAutoHidden ReportStatus = "auto_hidden"
)

// Valid reports whether the status is a known state
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportReviewed, ReportResolved,
		ReportDismissed, ReportAutoHidden:
		return true
	}
	return false
}

// Terminal reports whether the status accepts no further transitions.
// Auto-hidden reports are closed in bulk when a moderator removes the
// content, not moved one by one.
func (s ReportStatus) Terminal() bool {
	return s == ReportResolved || s == ReportDismissed || s == ReportAutoHidden
}

// CanTransitionTo validates the report state machine. Pending reports
// may move to any review outcome; reviewed reports may still be closed
// out; resolved, dismissed, and auto_hidden are terminal.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	if s.Terminal() {
		return false
	}
	switch s {
	case ReportPending:
		return next == ReportReviewed || next == ReportResolved ||
			next == ReportDismissed || next == ReportAutoHidden
	case ReportReviewed:
		return next == ReportResolved || next == ReportDismissed
	}
	return false
}

// Report represents a user flagging content or another user for review
type Report struct {
	ID         string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ReporterID string `gorm:"not null;index" json:"reporter_id"`
	Reporter   User   `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`

	TargetType ReportTargetType `gorm:"not null;index" json:"target_type"`
	TargetID   string           `gorm:"not null;index" json:"target_id"`
	// Denormalized owner of the target at report time, so reports on
	// deleted content still identify who was reported.
	TargetUserID string `gorm:"index" json:"target_user_id"`

	Reason  ReportReason `gorm:"not null" json:"reason"`
	Details string       `gorm:"type:text" json:"details"`

	Status     ReportStatus `gorm:"not null;default:'pending';index" json:"status"`
	ReviewedBy *string      `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time   `json:"reviewed_at,omitempty"`
	Resolution string       `gorm:"type:text" json:"resolution,omitempty"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AuditLog records admin moderation actions for accountability
type AuditLog struct {
	ID      string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	AdminID string `gorm:"not null;index" json:"admin_id"`
	Admin   User   `gorm:"foreignKey:AdminID" json:"admin,omitempty"`

	Action     string `gorm:"not null" json:"action"`
	TargetType string `gorm:"not null" json:"target_type"`
	TargetID   string `gorm:"not null;index" json:"target_id"`
	Detail     string `gorm:"type:text" json:"detail"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName for audit entries
func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate hooks

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	if r.Status == "" {
		r.Status = ReportPending
	}
	return nil
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = generateUUID()
	}
	return nil
}
