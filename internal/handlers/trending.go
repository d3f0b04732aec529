package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verdanthq/verdant/internal/util"
)

// GetTrendingTags returns the current trending hashtags
// GET /api/v1/trending/tags
func (h *Handlers) GetTrendingTags(c *gin.Context) {
	_, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	tags, err := h.trending.TopTags(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load trending tags"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// GetGenres returns the interest catalog
// GET /api/v1/genres
func (h *Handlers) GetGenres(c *gin.Context) {
	genres := h.trending.GenreCatalog(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}
