package trending

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/verdanthq/verdant/internal/cache"
	"github.com/verdanthq/verdant/internal/logger"
	"github.com/verdanthq/verdant/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	tagScoresKey     = "trending:tags"
	tagsCacheKey     = "trending:tags:page"
	genresCacheKey   = "catalog:genres"
	tagsCacheTTL     = 5 * time.Minute
	genresCacheTTL   = 1 * time.Hour
	trendingPageSize = 20
)

// Genres is the curated interest catalog shown in onboarding and used
// for post and shop tagging.
var Genres = []string{
	"bonsai", "succulent", "orchid", "houseplant", "aroid",
	"cactus", "fern", "carnivorous", "herb", "vegetable",
	"native", "aquatic", "moss", "alpine", "fruit-tree",
}

// Service tracks hashtag popularity in a Redis sorted set and serves
// cached trending pages.
type Service struct {
	db *gorm.DB
}

// NewService creates a trending service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Tag is one trending entry
type Tag struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// BumpTags increments popularity scores for tags used in a new post.
// Redis being down only costs freshness, so errors are logged and
// swallowed.
func (s *Service) BumpTags(ctx context.Context, tags []string) {
	rc := cache.GetRedisClient()
	if rc == nil {
		return
	}
	for _, tag := range tags {
		if err := rc.ZIncrBy(ctx, tagScoresKey, 1, tag); err != nil {
			logger.Log.Warn("failed to bump trending tag", zap.String("tag", tag), zap.Error(err))
			return
		}
	}
}

// TopTags returns the current trending tags, served from a short-lived
// cache in front of the sorted set. Without Redis it falls back to
// hashtag rows in the primary store.
func (s *Service) TopTags(ctx context.Context) ([]Tag, error) {
	rc := cache.GetRedisClient()
	if rc == nil {
		return s.topTagsFromDB(ctx)
	}

	if cached, err := rc.Get(ctx, tagsCacheKey); err == nil && cached != "" {
		var tags []Tag
		if err := json.Unmarshal([]byte(cached), &tags); err == nil {
			return tags, nil
		}
	}

	entries, err := rc.ZRevRangeWithScores(ctx, tagScoresKey, 0, trendingPageSize-1)
	if err != nil {
		return nil, fmt.Errorf("fetch trending tags: %w", err)
	}

	tags := make([]Tag, 0, len(entries))
	for _, e := range entries {
		name, ok := e.Member.(string)
		if !ok {
			continue
		}
		tags = append(tags, Tag{Name: name, Score: e.Score})
	}

	if encoded, err := json.Marshal(tags); err == nil {
		if err := rc.SetEx(ctx, tagsCacheKey, string(encoded), tagsCacheTTL); err != nil {
			logger.Log.Warn("failed to cache trending tags", zap.Error(err))
		}
	}

	return tags, nil
}

// topTagsFromDB ranks tags by how many posts reference them
func (s *Service) topTagsFromDB(ctx context.Context) ([]Tag, error) {
	type row struct {
		Name  string
		Count int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&models.PostHashtag{}).
		Select("hashtags.name AS name, COUNT(*) AS count").
		Joins("JOIN hashtags ON hashtags.id = post_hashtags.hashtag_id").
		Group("hashtags.name").
		Order("count DESC").
		Limit(trendingPageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("rank tags: %w", err)
	}

	tags := make([]Tag, 0, len(rows))
	for _, r := range rows {
		tags = append(tags, Tag{Name: r.Name, Score: float64(r.Count)})
	}
	return tags, nil
}

// GenreCatalog returns the interest catalog, cached in Redis so the
// onboarding screens don't hit the process on every load.
func (s *Service) GenreCatalog(ctx context.Context) []string {
	rc := cache.GetRedisClient()
	if rc == nil {
		return Genres
	}

	if cached, err := rc.Get(ctx, genresCacheKey); err == nil && cached != "" {
		var genres []string
		if err := json.Unmarshal([]byte(cached), &genres); err == nil {
			return genres
		}
	}

	if encoded, err := json.Marshal(Genres); err == nil {
		if err := rc.SetEx(ctx, genresCacheKey, string(encoded), genresCacheTTL); err != nil {
			logger.Log.Warn("failed to cache genre catalog", zap.Error(err))
		}
	}

	return Genres
}
