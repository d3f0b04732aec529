package handlers

import (
	"github.com/verdanthq/verdant/internal/auth"
	"github.com/verdanthq/verdant/internal/moderation"
	"github.com/verdanthq/verdant/internal/search"
	"github.com/verdanthq/verdant/internal/trending"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	auth       *auth.Service
	moderation *moderation.Service
	search     *search.Service
	trending   *trending.Service
}

// NewHandlers creates a new handlers instance
func NewHandlers(authService *auth.Service, moderationService *moderation.Service) *Handlers {
	return &Handlers{
		auth:       authService,
		moderation: moderationService,
	}
}

// SetSearchService sets the search service
func (h *Handlers) SetSearchService(searchService *search.Service) {
	h.search = searchService
}

// SetTrendingService sets the trending service
func (h *Handlers) SetTrendingService(trendingService *trending.Service) {
	h.trending = trendingService
}
