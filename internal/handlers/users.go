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

// GetProfile returns a user's public profile
// GET /api/v1/users/:id/profile
func (h *Handlers) GetProfile(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("id")

	var user models.User
	if err := database.DB.First(&user, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
		return
	}

	if user.IsSuspended {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Blocks hide profiles in both directions; mutes do not apply to
	// direct profile views
	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, viewerID, visibility.ProfileFlags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	if excluded.Contains(targetID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var isFollowing bool
	if viewerID != targetID {
		var follow models.Follow
		err := database.DB.Where("follower_id = ? AND followee_id = ?", viewerID, targetID).First(&follow).Error
		isFollowing = err == nil
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"is_following": isFollowing,
	})
}

// UpdateMe updates the authenticated user's profile
// PUT /api/v1/users/me
func (h *Handlers) UpdateMe(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req struct {
		DisplayName *string  `json:"display_name"`
		Bio         *string  `json:"bio"`
		Location    *string  `json:"location"`
		AvatarURL   *string  `json:"avatar_url"`
		Genres      []string `json:"genres"`
		IsPrivate   *bool    `json:"is_private"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}
	if req.Genres != nil {
		user.Genres = models.StringArray(req.Genres)
	}
	if req.IsPrivate != nil {
		user.IsPrivate = *req.IsPrivate
	}

	if err := database.DB.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	if h.search != nil {
		h.search.IndexUser(c.Request.Context(), user)
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetUserPosts returns a user's posts, exclusion-filtered and cursor
// paginated
// GET /api/v1/users/:id/posts
func (h *Handlers) GetUserPosts(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("id")

	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, viewerID, visibility.ProfileFlags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
		return
	}
	if excluded.Contains(targetID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	cursor := visibility.Cursor{
		AfterID: c.Query("cursor"),
		Limit:   util.ParseLimit(c.DefaultQuery("limit", "20"), 20, 100),
	}

	var posts []models.Post
	q := database.DB.WithContext(c.Request.Context()).
		Model(&models.Post{}).
		Where("author_id = ?", targetID).
		Scopes(visibility.NotHidden).
		Preload("Author")
	if err := cursor.Apply(q, "posts").Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       posts,
		"next_cursor": visibility.NextCursor(postIDs(posts), cursor.Limit),
	})
}

// GetFollowers lists a user's followers
// GET /api/v1/users/:id/followers
func (h *Handlers) GetFollowers(c *gin.Context) {
	h.listFollowEdges(c, "followee_id", "Follower")
}

// GetFollowing lists who a user follows
// GET /api/v1/users/:id/following
func (h *Handlers) GetFollowing(c *gin.Context) {
	h.listFollowEdges(c, "follower_id", "Followee")
}

func (h *Handlers) listFollowEdges(c *gin.Context, column, preload string) {
	if _, ok := util.GetUserIDFromContext(c); !ok {
		return
	}

	targetID := c.Param("id")
	limit := util.ParseLimit(c.DefaultQuery("limit", "50"), 50, 100)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	var follows []models.Follow
	err := database.DB.
		Preload(preload).
		Where(column+" = ?", targetID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&follows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load follows"})
		return
	}

	users := make([]gin.H, 0, len(follows))
	for _, f := range follows {
		var u models.User
		if preload == "Follower" {
			u = f.Follower
		} else {
			u = f.Followee
		}
		users = append(users, gin.H{
			"id":           u.ID,
			"username":     u.Username,
			"display_name": u.DisplayName,
			"avatar_url":   u.AvatarURL,
			"followed_at":  f.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"users":  users,
		"limit":  limit,
		"offset": offset,
	})
}

func postIDs(posts []models.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}
