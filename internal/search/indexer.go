package search

import (
	"context"
	"fmt"

	"github.com/verdanthq/verdant/internal/logger"
	"github.com/verdanthq/verdant/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IndexPost pushes a post document into the search index. A nil client
// makes this a no-op so call sites don't need to branch.
func (s *Service) IndexPost(ctx context.Context, post *models.Post) {
	if s.client == nil {
		return
	}
	doc := map[string]interface{}{
		"id":         post.ID,
		"author_id":  post.AuthorID,
		"body":       post.Body,
		"genres":     []string(post.Genres),
		"like_count": post.LikeCount,
		"created_at": post.CreatedAt,
	}
	if err := s.client.IndexDocument(ctx, IndexPosts, post.ID, doc); err != nil {
		logger.Log.Warn("failed to index post", zap.String("post_id", post.ID), zap.Error(err))
	}
}

// IndexUser pushes a user document into the search index
func (s *Service) IndexUser(ctx context.Context, user *models.User) {
	if s.client == nil {
		return
	}
	doc := map[string]interface{}{
		"id":             user.ID,
		"username":       user.Username,
		"display_name":   user.DisplayName,
		"bio":            user.Bio,
		"genres":         []string(user.Genres),
		"follower_count": user.FollowerCount,
		"created_at":     user.CreatedAt,
	}
	if err := s.client.IndexDocument(ctx, IndexUsers, user.ID, doc); err != nil {
		logger.Log.Warn("failed to index user", zap.String("user_id", user.ID), zap.Error(err))
	}
}

// IndexShop pushes a shop document into the search index
func (s *Service) IndexShop(ctx context.Context, shop *models.Shop) {
	if s.client == nil {
		return
	}
	doc := map[string]interface{}{
		"id":           shop.ID,
		"owner_id":     shop.OwnerID,
		"name":         shop.Name,
		"description":  shop.Description,
		"location":     shop.Location,
		"genres":       []string(shop.Genres),
		"review_count": shop.ReviewCount,
		"created_at":   shop.CreatedAt,
	}
	if err := s.client.IndexDocument(ctx, IndexShops, shop.ID, doc); err != nil {
		logger.Log.Warn("failed to index shop", zap.String("shop_id", shop.ID), zap.Error(err))
	}
}

// RemovePost deletes a post from the search index
func (s *Service) RemovePost(ctx context.Context, postID string) {
	if s.client == nil {
		return
	}
	if err := s.client.DeleteDocument(ctx, IndexPosts, postID); err != nil {
		logger.Log.Warn("failed to remove post from index", zap.String("post_id", postID), zap.Error(err))
	}
}

// RemoveShop deletes a shop from the search index
func (s *Service) RemoveShop(ctx context.Context, shopID string) {
	if s.client == nil {
		return
	}
	if err := s.client.DeleteDocument(ctx, IndexShops, shopID); err != nil {
		logger.Log.Warn("failed to remove shop from index", zap.String("shop_id", shopID), zap.Error(err))
	}
}

// ReindexAll rebuilds the search indices from the primary store in
// batches. Used by the CLI after mapping changes or index loss.
func (s *Service) ReindexAll(ctx context.Context, db *gorm.DB) error {
	if s.client == nil {
		return fmt.Errorf("search client not configured")
	}

	if err := s.client.InitializeIndices(ctx); err != nil {
		return err
	}

	const batchSize = 500

	var users []models.User
	err := db.WithContext(ctx).FindInBatches(&users, batchSize, func(tx *gorm.DB, _ int) error {
		for i := range users {
			s.IndexUser(ctx, &users[i])
		}
		return nil
	}).Error
	if err != nil {
		return fmt.Errorf("reindex users: %w", err)
	}

	var posts []models.Post
	err = db.WithContext(ctx).FindInBatches(&posts, batchSize, func(tx *gorm.DB, _ int) error {
		for i := range posts {
			s.IndexPost(ctx, &posts[i])
		}
		return nil
	}).Error
	if err != nil {
		return fmt.Errorf("reindex posts: %w", err)
	}

	var shops []models.Shop
	err = db.WithContext(ctx).FindInBatches(&shops, batchSize, func(tx *gorm.DB, _ int) error {
		for i := range shops {
			s.IndexShop(ctx, &shops[i])
		}
		return nil
	}).Error
	if err != nil {
		return fmt.Errorf("reindex shops: %w", err)
	}

	logger.Log.Info("search reindex complete")
	return nil
}
