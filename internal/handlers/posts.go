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

// CreatePost publishes a new post. Hashtags are extracted from the
// body and linked; trending scores are bumped out of band.
// POST /api/v1/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Body     string   `json:"body" binding:"required,max=5000"`
		ImageURL string   `json:"image_url"`
		Genres   []string `json:"genres"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := models.Post{
		AuthorID: userID,
		Body:     req.Body,
		ImageURL: req.ImageURL,
		Genres:   models.StringArray(req.Genres),
	}

	tags := util.ExtractHashtags(req.Body)
	mentions := util.ExtractMentions(req.Body)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}

		for _, name := range tags {
			var tag models.Hashtag
			if err := tx.Where("name = ?", name).FirstOrCreate(&tag, models.Hashtag{Name: name}).Error; err != nil {
				return err
			}
			link := models.PostHashtag{PostID: post.ID, HashtagID: tag.ID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}

		if len(mentions) > 0 {
			var mentioned []models.User
			if err := tx.Where("LOWER(username) IN ?", mentions).Find(&mentioned).Error; err != nil {
				return err
			}
			for _, u := range mentioned {
				if u.ID == userID {
					continue
				}
				notification := models.Notification{
					UserID:     u.ID,
					Type:       models.NotificationMention,
					ActorID:    userID,
					EntityType: "post",
					EntityID:   post.ID,
					Message:    "mentioned you in a post",
				}
				if err := tx.Create(&notification).Error; err != nil {
					return err
				}
			}
		}

		return tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("post_count", gorm.Expr("post_count + 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	if h.trending != nil && len(tags) > 0 {
		h.trending.BumpTags(c.Request.Context(), tags)
	}
	if h.search != nil {
		h.search.IndexPost(c.Request.Context(), &post)
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// GetPost returns a single post
// GET /api/v1/posts/:id
func (h *Handlers) GetPost(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")

	var post models.Post
	err := database.DB.
		Scopes(visibility.NotHidden).
		Preload("Author").
		Preload("Hashtags").
		First(&post, "id = ?", postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}

	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, viewerID, visibility.ProfileFlags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}
	if excluded.Contains(post.AuthorID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var liked bool
	var like models.Like
	if err := database.DB.Where("user_id = ? AND post_id = ?", viewerID, postID).First(&like).Error; err == nil {
		liked = true
	}

	c.JSON(http.StatusOK, gin.H{"post": post, "liked": liked})
}

// DeletePost deletes the authenticated user's own post
// DELETE /api/v1/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}

	if post.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your post"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&post).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ? AND post_count > 0", userID).
			UpdateColumn("post_count", gorm.Expr("post_count - 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	if h.search != nil {
		h.search.RemovePost(c.Request.Context(), postID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// LikePost likes a post
// POST /api/v1/posts/:id/like
func (h *Handlers) LikePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")

	var post models.Post
	err := database.DB.Scopes(visibility.NotHidden).First(&post, "id = ?", postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}

	var existing models.Like
	if err := database.DB.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Already liked", "liked": true})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		like := models.Like{UserID: userID, PostID: postID}
		if err := tx.Create(&like).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
			return err
		}

		// No notification for liking your own post
		if post.AuthorID == userID {
			return nil
		}
		notification := models.Notification{
			UserID:     post.AuthorID,
			Type:       models.NotificationLike,
			ActorID:    userID,
			EntityType: "post",
			EntityID:   postID,
			Message:    "liked your post",
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to like post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post liked", "liked": true})
}

// UnlikePost removes a like
// DELETE /api/v1/posts/:id/like
func (h *Handlers) UnlikePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Post{}).Where("id = ? AND like_count > 0", postID).
			UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post was not liked"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlike post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Like removed", "liked": false})
}
