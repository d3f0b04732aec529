package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is a community happening: a workshop, swap meet, or club show
type Event struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CreatorID string `gorm:"not null;index" json:"creator_id"`
	Creator   User   `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`

	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Location    string    `gorm:"type:text" json:"location"`
	StartsAt    time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`

	IsHidden bool       `gorm:"default:false;index" json:"-"`
	HiddenAt *time.Time `json:"-"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Shop is a directory listing for a nursery or specialty store
type Shop struct {
	ID      string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	OwnerID string `gorm:"not null;index" json:"owner_id"`
	Owner   User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Name        string      `gorm:"not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Location    string      `gorm:"type:text" json:"location"`
	Website     string      `json:"website"`
	Genres      StringArray `gorm:"type:text[]" json:"genres"`

	// Cached review stats
	ReviewCount   int     `gorm:"default:0" json:"review_count"`
	AverageRating float64 `gorm:"default:0" json:"average_rating"`

	IsHidden bool       `gorm:"default:false;index" json:"-"`
	HiddenAt *time.Time `json:"-"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ShopReview is a rating plus optional text on a shop listing
type ShopReview struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ShopID   string `gorm:"not null;index" json:"shop_id"`
	Shop     Shop   `gorm:"foreignKey:ShopID" json:"-"`
	AuthorID string `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Rating int    `gorm:"not null" json:"rating"` // 1 to 5
	Body   string `gorm:"type:text" json:"body"`

	IsHidden bool       `gorm:"default:false;index" json:"-"`
	HiddenAt *time.Time `json:"-"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName for shop reviews
func (ShopReview) TableName() string {
	return "shop_reviews"
}

// BeforeCreate hooks

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = generateUUID()
	}
	return nil
}

func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = generateUUID()
	}
	return nil
}

func (r *ShopReview) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	return nil
}
