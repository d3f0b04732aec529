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

// CreateComment adds a comment to a post
// POST /api/v1/posts/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")

	var req struct {
		Body     string  `json:"body" binding:"required,max=2000"`
		ParentID *string `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

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

	// Blocked users cannot comment on each other's posts
	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, userID, visibility.ProfileFlags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}
	if excluded.Contains(post.AuthorID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if req.ParentID != nil {
		var parent models.Comment
		err := database.DB.Where("id = ? AND post_id = ?", *req.ParentID, postID).First(&parent).Error
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent comment not found"})
			return
		}
	}

	comment := models.Comment{
		PostID:   postID,
		AuthorID: userID,
		ParentID: req.ParentID,
		Body:     req.Body,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
			return err
		}

		if post.AuthorID == userID {
			return nil
		}
		notification := models.Notification{
			UserID:     post.AuthorID,
			Type:       models.NotificationComment,
			ActorID:    userID,
			EntityType: "post",
			EntityID:   postID,
			Message:    "commented on your post",
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// GetComments lists a post's comments, oldest first, with hidden
// comments and excluded authors filtered out
// GET /api/v1/posts/:id/comments
func (h *Handlers) GetComments(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")
	limit := util.ParseLimit(c.DefaultQuery("limit", "50"), 50, 200)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, viewerID, visibility.FeedFlags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comments"})
		return
	}

	var comments []models.Comment
	err = database.DB.WithContext(c.Request.Context()).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Scopes(
			visibility.NotHidden,
			visibility.ExcludeAuthors(excluded, "author_id"),
			visibility.ExcludeSuspendedAuthors("author_id"),
		).
		Preload("Author").
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&comments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"limit":    limit,
		"offset":   offset,
	})
}

// DeleteComment deletes the authenticated user's own comment
// DELETE /api/v1/comments/:id
func (h *Handlers) DeleteComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	commentID := c.Param("id")

	var comment models.Comment
	if err := database.DB.First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comment"})
		return
	}

	if comment.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your comment"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ? AND comment_count > 0", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
