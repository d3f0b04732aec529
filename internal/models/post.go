package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a piece of user content in the feed
type Post struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	AuthorID string `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Body     string      `gorm:"type:text;not null" json:"body"`
	ImageURL string      `json:"image_url"`
	Genres   StringArray `gorm:"type:text[]" json:"genres"`

	// Moderation state. Hidden posts are invisible to everyone except
	// admins; HiddenAt records when the threshold was crossed or an
	// admin intervened.
	IsHidden bool       `gorm:"default:false;index" json:"-"`
	HiddenAt *time.Time `json:"-"`

	// Cached engagement stats
	LikeCount    int `gorm:"default:0" json:"like_count"`
	CommentCount int `gorm:"default:0" json:"comment_count"`

	Hashtags []Hashtag `gorm:"many2many:post_hashtags" json:"hashtags,omitempty"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Comment represents a reply on a post
type Comment struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	PostID   string `gorm:"not null;index" json:"post_id"`
	Post     Post   `gorm:"foreignKey:PostID" json:"-"`
	AuthorID string `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	// ParentID threads replies under a top-level comment
	ParentID *string `gorm:"type:uuid;index" json:"parent_id,omitempty"`

	Body string `gorm:"type:text;not null" json:"body"`

	IsHidden bool       `gorm:"default:false;index" json:"-"`
	HiddenAt *time.Time `json:"-"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Like represents a user liking a post
type Like struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PostID string `gorm:"not null;index" json:"post_id"`
	Post   Post   `gorm:"foreignKey:PostID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName for likes
func (Like) TableName() string {
	return "likes"
}

// Hashtag is a normalized lowercase tag extracted from post bodies
type Hashtag struct {
	ID   string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`

	CreatedAt time.Time `json:"created_at"`
}

// PostHashtag is the join table between posts and hashtags
type PostHashtag struct {
	PostID    string `gorm:"primaryKey;type:uuid" json:"post_id"`
	HashtagID string `gorm:"primaryKey;type:uuid" json:"hashtag_id"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName for the post/hashtag join table
func (PostHashtag) TableName() string {
	return "post_hashtags"
}

// BeforeCreate hooks

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

func (h *Hashtag) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = generateUUID()
	}
	return nil
}
