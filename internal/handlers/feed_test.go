package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/verdanthq/verdant/internal/database"
	"github.com/verdanthq/verdant/internal/logger"
	"github.com/verdanthq/verdant/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// FeedHandlerTestSuite exercises the feed endpoints over HTTP with
// exclusion filtering and cursor pagination
type FeedHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine

	viewer   models.User
	followed models.User
	muted    models.User
	stranger models.User
}

type feedResponse struct {
	Posts      []models.Post `json:"posts"`
	NextCursor string        `json:"next_cursor"`
}

func (suite *FeedHandlerTestSuite) SetupSuite() {
	require.NoError(suite.T(), logger.Initialize("error", filepath.Join(suite.T().TempDir(), "test.log")))
	gin.SetMode(gin.TestMode)

	db, err := openTestDB()
	if err != nil {
		suite.T().Skipf("Skipping feed handler tests: database not available (%v)", err)
		return
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.UserBlock{},
		&models.MutedUser{},
		&models.Post{},
		&models.Hashtag{},
	)
	require.NoError(suite.T(), err)

	database.DB = db
	suite.db = db

	h := &Handlers{}
	suite.router = gin.New()
	feed := suite.router.Group("/feed")
	feed.Use(func(c *gin.Context) {
		c.Set("user_id", suite.viewer.ID)
	})
	feed.GET("", h.GetFeed)
	feed.GET("/global", h.GetGlobalFeed)
}

func (suite *FeedHandlerTestSuite) TearDownSuite() {
	if suite.db == nil {
		return
	}
	suite.db.Exec("DROP TABLE IF EXISTS post_hashtags, hashtags, posts, follows, user_blocks, muted_users, users CASCADE")
	sqlDB, _ := suite.db.DB()
	sqlDB.Close()
}

func (suite *FeedHandlerTestSuite) SetupTest() {
	t := suite.T()
	for _, table := range []string{"posts", "follows", "user_blocks", "muted_users", "users"} {
		suite.db.Exec("DELETE FROM " + table)
	}

	suite.viewer = suite.createUser("viewer")
	suite.followed = suite.createUser("followed")
	suite.muted = suite.createUser("muted")
	suite.stranger = suite.createUser("stranger")

	require.NoError(t, suite.db.Create(&models.Follow{
		FollowerID: suite.viewer.ID, FolloweeID: suite.followed.ID,
	}).Error)
	require.NoError(t, suite.db.Create(&models.Follow{
		FollowerID: suite.viewer.ID, FolloweeID: suite.muted.ID,
	}).Error)
	require.NoError(t, suite.db.Create(&models.MutedUser{
		UserID: suite.viewer.ID, MutedUserID: suite.muted.ID,
	}).Error)
}

func (suite *FeedHandlerTestSuite) createUser(name string) models.User {
	user := models.User{
		Email:       name + "@example.com",
		Username:    name,
		DisplayName: name,
	}
	require.NoError(suite.T(), suite.db.Create(&user).Error)
	return user
}

func (suite *FeedHandlerTestSuite) createPost(authorID, body string, at time.Time) models.Post {
	post := models.Post{AuthorID: authorID, Body: body}
	require.NoError(suite.T(), suite.db.Create(&post).Error)
	// Pin created_at so ordering in tests is deterministic
	require.NoError(suite.T(), suite.db.Model(&models.Post{}).
		Where("id = ?", post.ID).Update("created_at", at).Error)
	return post
}

func (suite *FeedHandlerTestSuite) get(path string) (*httptest.ResponseRecorder, feedResponse) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	suite.router.ServeHTTP(w, req)

	var body feedResponse
	if w.Code == http.StatusOK {
		require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func (suite *FeedHandlerTestSuite) TestFollowingFeedFiltersMutedAuthors() {
	t := suite.T()
	now := time.Now().UTC()

	suite.createPost(suite.followed.ID, "repotting day", now.Add(-1*time.Minute))
	suite.createPost(suite.muted.ID, "noise", now.Add(-2*time.Minute))
	suite.createPost(suite.stranger.ID, "not followed", now.Add(-3*time.Minute))

	w, body := suite.get("/feed")
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, body.Posts, 1)
	assert.Equal(t, suite.followed.ID, body.Posts[0].AuthorID)
	assert.Empty(t, body.NextCursor, "short page has no next cursor")
}

func (suite *FeedHandlerTestSuite) TestGlobalFeedIncludesStrangers() {
	t := suite.T()
	now := time.Now().UTC()

	suite.createPost(suite.followed.ID, "repotting day", now.Add(-1*time.Minute))
	suite.createPost(suite.stranger.ID, "new to the forum", now.Add(-2*time.Minute))
	suite.createPost(suite.muted.ID, "noise", now.Add(-3*time.Minute))

	w, body := suite.get("/feed/global")
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, body.Posts, 2)
	assert.Equal(t, suite.followed.ID, body.Posts[0].AuthorID)
	assert.Equal(t, suite.stranger.ID, body.Posts[1].AuthorID)
}

func (suite *FeedHandlerTestSuite) TestGlobalFeedHidesBlockedBothDirections() {
	t := suite.T()
	now := time.Now().UTC()

	blocker := suite.createUser("blocker")
	require.NoError(t, suite.db.Create(&models.UserBlock{
		BlockerID: blocker.ID, BlockedID: suite.viewer.ID,
	}).Error)

	suite.createPost(blocker.ID, "you cannot see this", now.Add(-1*time.Minute))
	suite.createPost(suite.stranger.ID, "visible", now.Add(-2*time.Minute))

	w, body := suite.get("/feed/global")
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, body.Posts, 1)
	assert.Equal(t, suite.stranger.ID, body.Posts[0].AuthorID)
}

func (suite *FeedHandlerTestSuite) TestGlobalFeedHidesSuspendedAndHidden() {
	t := suite.T()
	now := time.Now().UTC()

	suspended := suite.createUser("suspended")
	require.NoError(t, suite.db.Model(&models.User{}).
		Where("id = ?", suspended.ID).Update("is_suspended", true).Error)

	suite.createPost(suspended.ID, "gone", now.Add(-1*time.Minute))
	hidden := suite.createPost(suite.stranger.ID, "flagged", now.Add(-2*time.Minute))
	require.NoError(t, suite.db.Model(&models.Post{}).
		Where("id = ?", hidden.ID).Update("is_hidden", true).Error)
	suite.createPost(suite.stranger.ID, "visible", now.Add(-3*time.Minute))

	w, body := suite.get("/feed/global")
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, body.Posts, 1)
	assert.Equal(t, "visible", body.Posts[0].Body)
}

func (suite *FeedHandlerTestSuite) TestCursorPagination() {
	t := suite.T()
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		suite.createPost(suite.stranger.ID, fmt.Sprintf("post %d", i),
			now.Add(time.Duration(-i)*time.Minute))
	}

	w, page1 := suite.get("/feed/global?limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, page1.Posts, 2)
	require.NotEmpty(t, page1.NextCursor)
	assert.Equal(t, "post 0", page1.Posts[0].Body)
	assert.Equal(t, "post 1", page1.Posts[1].Body)

	w, page2 := suite.get("/feed/global?limit=2&cursor=" + page1.NextCursor)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, page2.Posts, 2)
	assert.Equal(t, "post 2", page2.Posts[0].Body)
	assert.Equal(t, "post 3", page2.Posts[1].Body)

	w, page3 := suite.get("/feed/global?limit=2&cursor=" + page2.NextCursor)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, page3.Posts, 1)
	assert.Equal(t, "post 4", page3.Posts[0].Body)
	assert.Empty(t, page3.NextCursor)
}

func (suite *FeedHandlerTestSuite) TestCursorWithMissingAnchorReturnsFirstPage() {
	t := suite.T()
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		suite.createPost(suite.stranger.ID, fmt.Sprintf("post %d", i),
			now.Add(time.Duration(-i)*time.Minute))
	}

	// The anchor post was removed between page fetches
	w, page := suite.get("/feed/global?limit=2&cursor=" + uuid.NewString())
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, "post 0", page.Posts[0].Body)
	assert.Equal(t, "post 1", page.Posts[1].Body)
}

func (suite *FeedHandlerTestSuite) TestFeedRequiresAuth() {
	// A router without the auth stub rejects the request
	router := gin.New()
	h := &Handlers{}
	router.GET("/feed", h.GetFeed)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	router.ServeHTTP(w, req)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func TestFeedHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(FeedHandlerTestSuite))
}

func openTestDB() (*gorm.DB, error) {
	host := envOrDefault("POSTGRES_HOST", "localhost")
	port := envOrDefault("POSTGRES_PORT", "5432")
	user := envOrDefault("POSTGRES_USER", "postgres")
	password := os.Getenv("POSTGRES_PASSWORD")
	dbname := envOrDefault("POSTGRES_DB", "verdant_test")

	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable", host, port, user, dbname)
	if password != "" {
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbname)
	}

	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
