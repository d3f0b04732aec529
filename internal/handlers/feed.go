package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/verdanthq/verdant/internal/database"
	"github.com/verdanthq/verdant/internal/middleware"
	"github.com/verdanthq/verdant/internal/models"
	"github.com/verdanthq/verdant/internal/util"
	"github.com/verdanthq/verdant/internal/visibility"
	"gorm.io/gorm"
)

// GetFeed returns posts from users the viewer follows, newest first,
// cursor paginated, with the viewer's exclusion set applied
// GET /api/v1/feed
func (h *Handlers) GetFeed(c *gin.Context) {
	h.feed(c, "following")
}

// GetGlobalFeed returns the sitewide feed with the same filtering
// GET /api/v1/feed/global
func (h *Handlers) GetGlobalFeed(c *gin.Context) {
	h.feed(c, "global")
}

func (h *Handlers) feed(c *gin.Context, feedType string) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	start := time.Now()

	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, viewerID, visibility.FeedFlags)
	if err != nil {
		middleware.RecordError("exclusion_resolve", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load feed"})
		return
	}

	cursor := visibility.Cursor{
		AfterID: c.Query("cursor"),
		Limit:   util.ParseLimit(c.DefaultQuery("limit", "20"), 20, 100),
	}

	q := database.DB.WithContext(c.Request.Context()).
		Model(&models.Post{}).
		Scopes(
			visibility.NotHidden,
			visibility.ExcludeAuthors(excluded, "author_id"),
			visibility.ExcludeSuspendedAuthors("author_id"),
			visibility.MatchGenres(util.ParseGenreArray(c.Query("genres"))),
		).
		Preload("Author")

	if feedType == "following" {
		q = q.Where("author_id IN (?)",
			database.DB.Session(&gorm.Session{NewDB: true}).
				Table("follows").
				Select("followee_id").
				Where("follower_id = ?", viewerID))
	}

	var posts []models.Post
	if err := cursor.Apply(q, "posts").Find(&posts).Error; err != nil {
		middleware.RecordError("feed_query", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load feed"})
		return
	}

	middleware.RecordFeedGeneration(feedType, time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"posts":       posts,
		"next_cursor": visibility.NextCursor(postIDs(posts), cursor.Limit),
	})
}
