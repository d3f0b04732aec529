package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/verdanthq/verdant/internal/database"
	"github.com/verdanthq/verdant/internal/util"
	"github.com/verdanthq/verdant/internal/visibility"
)

// searchParams pulls the common query string arguments out of a search
// request. A blank q is rejected here so the services never see one.
func searchParams(c *gin.Context) (query string, limit, offset int, ok bool) {
	query = strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
		return "", 0, 0, false
	}
	limit = util.ParseLimit(c.DefaultQuery("limit", "20"), 20, 100)
	offset = util.ParseInt(c.DefaultQuery("offset", "0"), 0)
	return query, limit, offset, true
}

// SearchPosts searches post bodies
// GET /api/v1/search/posts
func (h *Handlers) SearchPosts(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	query, limit, offset, ok := searchParams(c)
	if !ok {
		return
	}

	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, viewerID, visibility.FeedFlags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	posts, total, err := h.search.SearchPosts(c.Request.Context(), excluded, query, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       posts,
		"total_count": total,
		"query":       query,
	})
}

// SearchUsers searches usernames, display names, and bios
// GET /api/v1/search/users
func (h *Handlers) SearchUsers(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	query, limit, offset, ok := searchParams(c)
	if !ok {
		return
	}

	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, viewerID, visibility.FeedFlags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	users, total, err := h.search.SearchUsers(c.Request.Context(), excluded, query, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":       users,
		"total_count": total,
		"query":       query,
	})
}

// SearchShops searches the shop directory
// GET /api/v1/search/shops
func (h *Handlers) SearchShops(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	query, limit, offset, ok := searchParams(c)
	if !ok {
		return
	}

	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, viewerID, visibility.FeedFlags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	shops, total, err := h.search.SearchShops(c.Request.Context(), excluded, query, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shops":       shops,
		"total_count": total,
		"query":       query,
	})
}
