package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/verdanthq/verdant/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize creates and configures the database connection. Postgres
// is the production driver; set DATABASE_DRIVER=sqlite for local
// scratch environments (partial indexes are skipped there).
func Initialize() error {
	var dialector gorm.Dialector

	switch os.Getenv("DATABASE_DRIVER") {
	case "sqlite":
		path := getEnvOrDefault("DATABASE_PATH", "verdant.db")
		dialector = sqlite.Open(path)
	default:
		databaseURL := os.Getenv("DATABASE_URL")
		if databaseURL == "" {
			// Fallback to individual components
			host := getEnvOrDefault("DB_HOST", "localhost")
			port := getEnvOrDefault("DB_PORT", "5432")
			user := getEnvOrDefault("DB_USER", "postgres")
			password := getEnvOrDefault("DB_PASSWORD", "")
			dbname := getEnvOrDefault("DB_NAME", "verdant")
			sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

			databaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
				host, port, user, password, dbname, sslmode)
		}
		dialector = postgres.Open(databaseURL)
	}

	// Configure GORM logger
	gormLogger := logger.Default
	if os.Getenv("ENVIRONMENT") == "development" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	log.Println("✅ Database connected successfully")

	return nil
}

// IsPostgres reports whether the active connection uses the postgres driver
func IsPostgres() bool {
	return DB != nil && DB.Dialector.Name() == "postgres"
}

// Migrate runs auto-migration for all models
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if IsPostgres() {
		// gen_random_uuid() ships with pgcrypto on older clusters
		err := DB.Exec("CREATE EXTENSION IF NOT EXISTS \"pgcrypto\"").Error
		if err != nil {
			log.Printf("Warning: Could not create pgcrypto extension: %v", err)
		}
	}

	// Auto-migrate all models
	err := DB.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.UserBlock{},
		&models.MutedUser{},
		&models.Report{},
		&models.AuditLog{},
		&models.Notification{},
		&models.AdminNotification{},
		&models.Conversation{},
		&models.DirectMessage{},
		&models.Event{},
		&models.Shop{},
		&models.ShopReview{},
		&models.Hashtag{},
		&models.PostHashtag{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if IsPostgres() {
		if err := createIndexes(); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	log.Println("✅ Database migrations completed")
	return nil
}

// createIndexes creates performance and uniqueness indexes.
// Postgres only: partial unique indexes guard edge tables against
// duplicate rows even under concurrent writes.
func createIndexes() error {
	// User indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username))")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_genres ON users USING GIN (genres)")

	// Post indexes for feed queries
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_posts_author_created ON posts (author_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_posts_visible ON posts (created_at DESC) WHERE is_hidden = false AND deleted_at IS NULL")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_posts_genres ON posts USING GIN (genres)")

	// Full-text search fallback when Elasticsearch is not configured
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_posts_body_search ON posts USING gin(to_tsvector('english', body)) WHERE deleted_at IS NULL")

	// Comment indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments (post_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_comments_author ON comments (author_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_comments_post_visible ON comments (post_id, created_at ASC) WHERE is_hidden = false AND deleted_at IS NULL")

	// Like indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_likes_post ON likes (post_id)")
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_unique ON likes (user_id, post_id)")

	// Follow indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_follows_follower ON follows (follower_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_follows_followee ON follows (followee_id)")
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_follows_unique ON follows (follower_id, followee_id)")

	// Report indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_reports_reporter ON reports (reporter_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_reports_target ON reports (target_type, target_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_reports_target_user ON reports (target_user_id) WHERE target_user_id IS NOT NULL")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_reports_status ON reports (status)")
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_reports_unique ON reports (reporter_id, target_type, target_id) WHERE deleted_at IS NULL")

	// User block indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_user_blocks_blocker ON user_blocks (blocker_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_user_blocks_blocked ON user_blocks (blocked_id)")
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_user_blocks_unique ON user_blocks (blocker_id, blocked_id) WHERE deleted_at IS NULL")

	// Mute indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_muted_users_user ON muted_users (user_id)")
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_muted_users_unique ON muted_users (user_id, muted_user_id)")

	// Notification indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications (user_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications (user_id) WHERE is_read = false")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_admin_notifications_unread ON admin_notifications (created_at DESC) WHERE is_read = false")

	// Conversation and message indexes
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_conversations_pair ON conversations (user_a_id, user_b_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_direct_messages_conversation ON direct_messages (conversation_id, created_at ASC)")

	// Event and shop indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_events_starts ON events (starts_at) WHERE is_hidden = false AND deleted_at IS NULL")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_shops_genres ON shops USING GIN (genres)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_shop_reviews_shop ON shop_reviews (shop_id, created_at DESC)")
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_shop_reviews_unique ON shop_reviews (shop_id, author_id) WHERE deleted_at IS NULL")

	// Hashtag indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_hashtags_name ON hashtags (name)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_post_hashtags_post ON post_hashtags (post_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_post_hashtags_hashtag ON post_hashtags (hashtag_id)")

	// Audit log indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_audit_logs_admin ON audit_logs (admin_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_audit_logs_target ON audit_logs (target_type, target_id)")

	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
