package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/verdanthq/verdant/internal/auth"
	"github.com/verdanthq/verdant/internal/handlers"
	"github.com/verdanthq/verdant/internal/middleware"
)

func registerRoutes(r *gin.Engine, h *handlers.Handlers, authService *auth.Service, rateLimit bool) {
	api := r.Group("/api/v1")

	if rateLimit {
		api.Use(middleware.RedisRateLimitMiddleware(300, time.Minute))
	}

	// Public auth routes
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/me", authService.Middleware(), h.Me)
	}

	// Everything below requires a valid token
	protected := api.Group("")
	protected.Use(authService.Middleware())

	users := protected.Group("/users")
	{
		users.GET("/me", h.Me)
		users.PUT("/me", h.UpdateMe)
		users.GET("/me/blocked", h.GetBlockedUsers)
		users.GET("/me/muted", h.GetMutedUsers)

		users.GET("/:id/profile", h.GetProfile)
		users.GET("/:id/posts", h.GetUserPosts)
		users.GET("/:id/followers", h.GetFollowers)
		users.GET("/:id/following", h.GetFollowing)

		users.POST("/:id/follow", h.FollowUser)
		users.DELETE("/:id/follow", h.UnfollowUser)
		users.POST("/:id/block", h.BlockUser)
		users.DELETE("/:id/block", h.UnblockUser)
		users.POST("/:id/mute", h.MuteUser)
		users.DELETE("/:id/mute", h.UnmuteUser)
	}

	feed := protected.Group("/feed")
	{
		feed.GET("", h.GetFeed)
		feed.GET("/global", h.GetGlobalFeed)
	}

	posts := protected.Group("/posts")
	{
		posts.POST("", h.CreatePost)
		posts.GET("/:id", h.GetPost)
		posts.DELETE("/:id", h.DeletePost)
		posts.POST("/:id/like", h.LikePost)
		posts.DELETE("/:id/like", h.UnlikePost)
		posts.POST("/:id/comments", h.CreateComment)
		posts.GET("/:id/comments", h.GetComments)
	}

	protected.DELETE("/comments/:id", h.DeleteComment)

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", h.GetNotifications)
		notifications.POST("/read", h.MarkNotificationsRead)
	}

	conversations := protected.Group("/conversations")
	{
		conversations.GET("", h.GetConversations)
		conversations.POST("", h.CreateConversation)
		conversations.GET("/:id/messages", h.GetMessages)
		conversations.POST("/:id/messages", h.SendMessage)
	}

	events := protected.Group("/events")
	{
		events.POST("", h.CreateEvent)
		events.GET("", h.GetEvents)
		events.GET("/:id", h.GetEvent)
		events.DELETE("/:id", h.DeleteEvent)
	}

	shops := protected.Group("/shops")
	{
		shops.POST("", h.CreateShop)
		shops.GET("", h.GetShops)
		shops.GET("/:id", h.GetShop)
		shops.POST("/:id/reviews", h.CreateShopReview)
		shops.GET("/:id/reviews", h.GetShopReviews)
	}

	searchGroup := protected.Group("/search")
	{
		searchGroup.GET("/posts", h.SearchPosts)
		searchGroup.GET("/users", h.SearchUsers)
		searchGroup.GET("/shops", h.SearchShops)
	}

	protected.GET("/trending/tags", h.GetTrendingTags)
	protected.GET("/genres", h.GetGenres)

	protected.POST("/reports", h.CreateReport)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/reports", h.GetReports)
		admin.PUT("/reports/:id", h.UpdateReport)
		admin.DELETE("/reports/:id/content", h.DeleteReportedContent)
		admin.GET("/notifications", h.GetAdminNotifications)
		admin.PUT("/notifications/read", h.MarkAdminNotificationsRead)
		admin.POST("/users/:id/suspend", h.SuspendUser)
		admin.DELETE("/users/:id/suspend", h.UnsuspendUser)
		admin.GET("/audit-log", h.GetAuditLog)
	}
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
