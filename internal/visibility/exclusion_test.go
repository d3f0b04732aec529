package visibility

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/verdanthq/verdant/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ExclusionTestSuite exercises Resolve against a real database
type ExclusionTestSuite struct {
	suite.Suite
	db *gorm.DB

	viewer  models.User
	blocked models.User
	blocker models.User
	muted   models.User
	plain   models.User
}

func (suite *ExclusionTestSuite) SetupSuite() {
	db, err := openTestDB()
	if err != nil {
		suite.T().Skipf("Skipping exclusion tests: database not available (%v)", err)
		return
	}

	err = db.AutoMigrate(&models.User{}, &models.UserBlock{}, &models.MutedUser{})
	require.NoError(suite.T(), err)

	suite.db = db
}

func (suite *ExclusionTestSuite) TearDownSuite() {
	if suite.db == nil {
		return
	}
	suite.db.Exec("DROP TABLE IF EXISTS user_blocks, muted_users, users CASCADE")
	sqlDB, _ := suite.db.DB()
	sqlDB.Close()
}

func (suite *ExclusionTestSuite) SetupTest() {
	t := suite.T()
	suite.db.Exec("DELETE FROM user_blocks")
	suite.db.Exec("DELETE FROM muted_users")
	suite.db.Exec("DELETE FROM users")

	suite.viewer = suite.createUser("viewer")
	suite.blocked = suite.createUser("blocked")
	suite.blocker = suite.createUser("blocker")
	suite.muted = suite.createUser("muted")
	suite.plain = suite.createUser("plain")

	// viewer blocked "blocked", "blocker" blocked viewer, viewer muted "muted"
	require.NoError(t, suite.db.Create(&models.UserBlock{
		BlockerID: suite.viewer.ID, BlockedID: suite.blocked.ID,
	}).Error)
	require.NoError(t, suite.db.Create(&models.UserBlock{
		BlockerID: suite.blocker.ID, BlockedID: suite.viewer.ID,
	}).Error)
	require.NoError(t, suite.db.Create(&models.MutedUser{
		UserID: suite.viewer.ID, MutedUserID: suite.muted.ID,
	}).Error)
}

func (suite *ExclusionTestSuite) createUser(name string) models.User {
	user := models.User{
		Email:       name + "@example.com",
		Username:    name,
		DisplayName: name,
	}
	require.NoError(suite.T(), suite.db.Create(&user).Error)
	return user
}

func (suite *ExclusionTestSuite) TestZeroFlagsReturnsEmptySet() {
	set, err := Resolve(context.Background(), suite.db, suite.viewer.ID, Flags{})
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), set)
}

func (suite *ExclusionTestSuite) TestFeedFlagsIncludeAllEdges() {
	t := suite.T()
	set, err := Resolve(context.Background(), suite.db, suite.viewer.ID, FeedFlags)
	require.NoError(t, err)

	assert.True(t, set.Contains(suite.blocked.ID), "blocked user should be excluded")
	assert.True(t, set.Contains(suite.blocker.ID), "blocks apply in both directions")
	assert.True(t, set.Contains(suite.muted.ID), "muted user should be excluded")
	assert.False(t, set.Contains(suite.plain.ID))
	assert.Len(t, set, 3)
}

func (suite *ExclusionTestSuite) TestProfileFlagsSkipMutes() {
	t := suite.T()
	set, err := Resolve(context.Background(), suite.db, suite.viewer.ID, ProfileFlags)
	require.NoError(t, err)

	assert.True(t, set.Contains(suite.blocked.ID))
	assert.True(t, set.Contains(suite.blocker.ID))
	assert.False(t, set.Contains(suite.muted.ID), "mutes do not hide profiles")
}

func (suite *ExclusionTestSuite) TestMutedOnly() {
	t := suite.T()
	set, err := Resolve(context.Background(), suite.db, suite.viewer.ID, Flags{Muted: true})
	require.NoError(t, err)

	assert.Len(t, set, 1)
	assert.True(t, set.Contains(suite.muted.ID))
}

func (suite *ExclusionTestSuite) TestViewerNeverInOwnSet() {
	t := suite.T()

	// A stray self-block must not hide the viewer from themselves
	require.NoError(t, suite.db.Create(&models.UserBlock{
		BlockerID: suite.viewer.ID, BlockedID: suite.viewer.ID,
	}).Error)

	set, err := Resolve(context.Background(), suite.db, suite.viewer.ID, FeedFlags)
	require.NoError(t, err)
	assert.False(t, set.Contains(suite.viewer.ID))
}

func (suite *ExclusionTestSuite) TestEmptyViewerID() {
	set, err := Resolve(context.Background(), suite.db, "", FeedFlags)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), set)
}

func TestExclusionTestSuite(t *testing.T) {
	suite.Run(t, new(ExclusionTestSuite))
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
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
