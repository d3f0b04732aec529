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

// CreateShop adds a shop listing to the directory
// POST /api/v1/shops
func (h *Handlers) CreateShop(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Name        string   `json:"name" binding:"required,max=200"`
		Description string   `json:"description" binding:"max=5000"`
		Location    string   `json:"location" binding:"required,max=500"`
		Website     string   `json:"website" binding:"max=500"`
		Genres      []string `json:"genres"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop := models.Shop{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Website:     req.Website,
		Genres:      models.StringArray(req.Genres),
	}
	if err := database.DB.Create(&shop).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create shop"})
		return
	}

	if h.search != nil {
		h.search.IndexShop(c.Request.Context(), &shop)
	}

	c.JSON(http.StatusCreated, gin.H{"shop": shop})
}

// GetShops lists directory shops, best reviewed first
// GET /api/v1/shops
func (h *Handlers) GetShops(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseLimit(c.DefaultQuery("limit", "20"), 20, 100)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, viewerID, visibility.FeedFlags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load shops"})
		return
	}

	var shops []models.Shop
	err = database.DB.WithContext(c.Request.Context()).
		Model(&models.Shop{}).
		Scopes(
			visibility.NotHidden,
			visibility.ExcludeAuthors(excluded, "owner_id"),
			visibility.MatchGenres(util.ParseGenreArray(c.Query("genres"))),
		).
		Order("average_rating DESC, review_count DESC").
		Limit(limit).Offset(offset).
		Find(&shops).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load shops"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shops":  shops,
		"limit":  limit,
		"offset": offset,
	})
}

// GetShop returns a single shop listing
// GET /api/v1/shops/:id
func (h *Handlers) GetShop(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	shopID := c.Param("id")

	var shop models.Shop
	err := database.DB.
		Scopes(visibility.NotHidden).
		Preload("Owner").
		First(&shop, "id = ?", shopID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shop not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load shop"})
		return
	}

	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, viewerID, visibility.ProfileFlags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load shop"})
		return
	}
	if excluded.Contains(shop.OwnerID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shop not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shop": shop})
}

// CreateShopReview rates a shop. One review per user per shop; the
// shop's cached rating aggregates update in the same transaction.
// POST /api/v1/shops/:id/reviews
func (h *Handlers) CreateShopReview(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	shopID := c.Param("id")

	var req struct {
		Rating int    `json:"rating" binding:"required,min=1,max=5"`
		Body   string `json:"body" binding:"max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var shop models.Shop
	err := database.DB.Scopes(visibility.NotHidden).First(&shop, "id = ?", shopID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shop not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load shop"})
		return
	}

	if shop.OwnerID == userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot review your own shop"})
		return
	}

	var existing models.ShopReview
	if err := database.DB.Where("shop_id = ? AND author_id = ?", shopID, userID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "You have already reviewed this shop"})
		return
	}

	review := models.ShopReview{
		ShopID:   shopID,
		AuthorID: userID,
		Rating:   req.Rating,
		Body:     req.Body,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return tx.Model(&models.Shop{}).Where("id = ?", shopID).
			Updates(map[string]interface{}{
				"review_count": gorm.Expr("review_count + 1"),
				"average_rating": gorm.Expr(
					"(average_rating * review_count + ?) / (review_count + 1)", req.Rating),
			}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// GetShopReviews lists a shop's reviews, newest first
// GET /api/v1/shops/:id/reviews
func (h *Handlers) GetShopReviews(c *gin.Context) {
	viewerID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	shopID := c.Param("id")
	limit := util.ParseLimit(c.DefaultQuery("limit", "20"), 20, 100)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	excluded, err := visibility.Resolve(c.Request.Context(), database.DB, viewerID, visibility.FeedFlags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reviews"})
		return
	}

	var reviews []models.ShopReview
	err = database.DB.WithContext(c.Request.Context()).
		Model(&models.ShopReview{}).
		Where("shop_id = ?", shopID).
		Scopes(
			visibility.NotHidden,
			visibility.ExcludeAuthors(excluded, "author_id"),
		).
		Preload("Author").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reviews).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"limit":   limit,
		"offset":  offset,
	})
}
