package search

import (
	"context"
	"fmt"
	"time"

	"github.com/verdanthq/verdant/internal/metrics"
	"github.com/verdanthq/verdant/internal/models"
	"github.com/verdanthq/verdant/internal/visibility"
	"gorm.io/gorm"
)

// Mode selects the search backend
type Mode string

const (
	// ModeLike uses ILIKE substring matching in the primary store.
	// Results come back newest first.
	ModeLike Mode = "like"
	// ModeFulltext queries Elasticsearch and hydrates rows from the
	// primary store, preserving relevance order.
	ModeFulltext Mode = "fulltext"
)

// Service answers search requests over posts, users, and shops. When
// no Elasticsearch client is configured it degrades to like mode.
type Service struct {
	db     *gorm.DB
	client *Client
}

// NewService creates a search service. client may be nil.
func NewService(db *gorm.DB, client *Client) *Service {
	return &Service{db: db, client: client}
}

// ActiveMode reports which backend requests will use
func (s *Service) ActiveMode() Mode {
	if s.client == nil {
		return ModeLike
	}
	return ModeFulltext
}

func (s *Service) record(index string, start time.Time, err error) {
	m := metrics.Get()
	mode := string(s.ActiveMode())
	status := "success"
	if err != nil {
		status = "error"
	}
	m.SearchRequestsTotal.WithLabelValues(index, mode, status).Inc()
	m.SearchRequestDuration.WithLabelValues(index, mode).Observe(time.Since(start).Seconds())
}

// SearchPosts finds posts matching the query, with the viewer's
// exclusion set and all hidden/suspended filtering applied before
// ranking positions are assigned.
func (s *Service) SearchPosts(ctx context.Context, excluded visibility.Set, query string, limit, offset int) ([]models.Post, int, error) {
	start := time.Now()
	posts, total, err := s.searchPosts(ctx, excluded, query, limit, offset)
	s.record(IndexPosts, start, err)
	return posts, total, err
}

func (s *Service) searchPosts(ctx context.Context, excluded visibility.Set, query string, limit, offset int) ([]models.Post, int, error) {
	base := s.db.WithContext(ctx).Model(&models.Post{}).
		Scopes(
			visibility.NotHidden,
			visibility.ExcludeAuthors(excluded, "author_id"),
			visibility.ExcludeSuspendedAuthors("author_id"),
		).
		Preload("Author")

	if s.client == nil {
		var posts []models.Post
		err := base.
			Scopes(visibility.MatchKeyword(query, "body")).
			Order("created_at DESC, id DESC").
			Limit(limit).Offset(offset).
			Find(&posts).Error
		if err != nil {
			return nil, 0, fmt.Errorf("search posts: %w", err)
		}
		return posts, len(posts), nil
	}

	hits, total, err := s.client.SearchIDs(ctx, IndexPosts, matchQuery(query, limit, offset,
		field{"body", 1.0},
	))
	if err != nil {
		return nil, 0, fmt.Errorf("search posts: %w", err)
	}
	if len(hits) == 0 {
		return []models.Post{}, total, nil
	}

	ids := hitIDs(hits)
	var posts []models.Post
	if err := base.Where("posts.id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, 0, fmt.Errorf("hydrate posts: %w", err)
	}

	ordered := OrderByIDs(posts, ids, func(p models.Post) string { return p.ID })
	return ordered, total, nil
}

// SearchUsers finds users matching the query. Suspended users and
// members of the viewer's exclusion set never appear.
func (s *Service) SearchUsers(ctx context.Context, excluded visibility.Set, query string, limit, offset int) ([]models.User, int, error) {
	start := time.Now()
	users, total, err := s.searchUsers(ctx, excluded, query, limit, offset)
	s.record(IndexUsers, start, err)
	return users, total, err
}

func (s *Service) searchUsers(ctx context.Context, excluded visibility.Set, query string, limit, offset int) ([]models.User, int, error) {
	base := s.db.WithContext(ctx).Model(&models.User{}).
		Where("is_suspended = ?", false).
		Scopes(visibility.ExcludeAuthors(excluded, "users.id"))

	if s.client == nil {
		var users []models.User
		err := base.
			Scopes(visibility.MatchKeyword(query, "username", "display_name")).
			Order("follower_count DESC, created_at DESC").
			Limit(limit).Offset(offset).
			Find(&users).Error
		if err != nil {
			return nil, 0, fmt.Errorf("search users: %w", err)
		}
		return users, len(users), nil
	}

	hits, total, err := s.client.SearchIDs(ctx, IndexUsers, matchQuery(query, limit, offset,
		field{"username", 2.0},
		field{"display_name", 1.5},
		field{"bio", 0.5},
	))
	if err != nil {
		return nil, 0, fmt.Errorf("search users: %w", err)
	}
	if len(hits) == 0 {
		return []models.User{}, total, nil
	}

	ids := hitIDs(hits)
	var users []models.User
	if err := base.Where("users.id IN ?", ids).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("hydrate users: %w", err)
	}

	ordered := OrderByIDs(users, ids, func(u models.User) string { return u.ID })
	return ordered, total, nil
}

// SearchShops finds shop listings matching the query
func (s *Service) SearchShops(ctx context.Context, excluded visibility.Set, query string, limit, offset int) ([]models.Shop, int, error) {
	start := time.Now()
	shops, total, err := s.searchShops(ctx, excluded, query, limit, offset)
	s.record(IndexShops, start, err)
	return shops, total, err
}

func (s *Service) searchShops(ctx context.Context, excluded visibility.Set, query string, limit, offset int) ([]models.Shop, int, error) {
	base := s.db.WithContext(ctx).Model(&models.Shop{}).
		Scopes(
			visibility.NotHidden,
			visibility.ExcludeAuthors(excluded, "owner_id"),
		)

	if s.client == nil {
		var shops []models.Shop
		err := base.
			Scopes(visibility.MatchKeyword(query, "name", "description", "location")).
			Order("review_count DESC, created_at DESC").
			Limit(limit).Offset(offset).
			Find(&shops).Error
		if err != nil {
			return nil, 0, fmt.Errorf("search shops: %w", err)
		}
		return shops, len(shops), nil
	}

	hits, total, err := s.client.SearchIDs(ctx, IndexShops, matchQuery(query, limit, offset,
		field{"name", 2.0},
		field{"description", 1.0},
		field{"location", 1.0},
	))
	if err != nil {
		return nil, 0, fmt.Errorf("search shops: %w", err)
	}
	if len(hits) == 0 {
		return []models.Shop{}, total, nil
	}

	ids := hitIDs(hits)
	var shops []models.Shop
	if err := base.Where("shops.id IN ?", ids).Find(&shops).Error; err != nil {
		return nil, 0, fmt.Errorf("hydrate shops: %w", err)
	}

	ordered := OrderByIDs(shops, ids, func(sh models.Shop) string { return sh.ID })
	return ordered, total, nil
}

// field pairs a document field with its relevance boost
type field struct {
	name  string
	boost float64
}

// matchQuery builds a fuzzy multi-field query sorted by relevance
func matchQuery(query string, limit, offset int, fields ...field) map[string]interface{} {
	should := make([]map[string]interface{}, 0, len(fields))
	for _, f := range fields {
		should = append(should, map[string]interface{}{
			"match": map[string]interface{}{
				f.name: map[string]interface{}{
					"query":     query,
					"boost":     f.boost,
					"fuzziness": "AUTO",
				},
			},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
		"sort": []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
		},
		"from": offset,
		"size": limit,
	}
}

func hitIDs(hits []Hit) []string {
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	return ids
}

// OrderByIDs reorders rows hydrated with an IN query back into the
// order the IDs were ranked in. Rows filtered out during hydration
// (hidden, suspended, excluded) drop out without leaving gaps.
func OrderByIDs[T any](rows []T, ids []string, idOf func(T) string) []T {
	byID := make(map[string]T, len(rows))
	for _, row := range rows {
		byID[idOf(row)] = row
	}

	ordered := make([]T, 0, len(rows))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered
}
