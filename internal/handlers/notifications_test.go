package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/verdanthq/verdant/internal/database"
	"github.com/verdanthq/verdant/internal/logger"
	"github.com/verdanthq/verdant/internal/models"
	"gorm.io/gorm"
)

// NotificationHandlerTestSuite checks that the notification listing is
// filtered through the viewer's exclusion set like every other surface
type NotificationHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine

	viewer   models.User
	blocked  models.User
	muted    models.User
	friendly models.User
}

type notificationsResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}

func (suite *NotificationHandlerTestSuite) SetupSuite() {
	require.NoError(suite.T(), logger.Initialize("error", filepath.Join(suite.T().TempDir(), "test.log")))
	gin.SetMode(gin.TestMode)

	db, err := openTestDB()
	if err != nil {
		suite.T().Skipf("Skipping notification handler tests: database not available (%v)", err)
		return
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.UserBlock{},
		&models.MutedUser{},
		&models.Notification{},
	)
	require.NoError(suite.T(), err)

	database.DB = db
	suite.db = db

	h := &Handlers{}
	suite.router = gin.New()
	notifications := suite.router.Group("/notifications")
	notifications.Use(func(c *gin.Context) {
		c.Set("user_id", suite.viewer.ID)
	})
	notifications.GET("", h.GetNotifications)
}

func (suite *NotificationHandlerTestSuite) TearDownSuite() {
	if suite.db == nil {
		return
	}
	suite.db.Exec("DROP TABLE IF EXISTS notifications, user_blocks, muted_users, users CASCADE")
	sqlDB, _ := suite.db.DB()
	sqlDB.Close()
}

func (suite *NotificationHandlerTestSuite) SetupTest() {
	t := suite.T()
	for _, table := range []string{"notifications", "user_blocks", "muted_users", "users"} {
		suite.db.Exec("DELETE FROM " + table)
	}

	suite.viewer = suite.createNotificationUser("viewer")
	suite.blocked = suite.createNotificationUser("blocked")
	suite.muted = suite.createNotificationUser("muted")
	suite.friendly = suite.createNotificationUser("friendly")

	require.NoError(t, suite.db.Create(&models.MutedUser{
		UserID: suite.viewer.ID, MutedUserID: suite.muted.ID,
	}).Error)
}

func (suite *NotificationHandlerTestSuite) createNotificationUser(name string) models.User {
	user := models.User{
		Email:       name + "@example.com",
		Username:    name,
		DisplayName: name,
	}
	require.NoError(suite.T(), suite.db.Create(&user).Error)
	return user
}

func (suite *NotificationHandlerTestSuite) notify(actorID, message string) {
	require.NoError(suite.T(), suite.db.Create(&models.Notification{
		UserID:  suite.viewer.ID,
		Type:    models.NotificationComment,
		ActorID: actorID,
		Message: message,
	}).Error)
}

func (suite *NotificationHandlerTestSuite) list() (*httptest.ResponseRecorder, notificationsResponse) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	suite.router.ServeHTTP(w, req)

	var body notificationsResponse
	if w.Code == http.StatusOK {
		require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func (suite *NotificationHandlerTestSuite) TestListingHidesBlockedActor() {
	t := suite.T()

	// The notification predates the block; listing must still drop it
	suite.notify(suite.blocked.ID, "commented on your post")
	suite.notify(suite.friendly.ID, "liked your post")
	require.NoError(t, suite.db.Create(&models.UserBlock{
		BlockerID: suite.viewer.ID, BlockedID: suite.blocked.ID,
	}).Error)

	w, body := suite.list()
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, body.Notifications, 1)
	assert.Equal(t, suite.friendly.ID, body.Notifications[0].ActorID)
	assert.Equal(t, int64(1), body.UnreadCount)
}

func (suite *NotificationHandlerTestSuite) TestListingHidesReverseBlockActor() {
	t := suite.T()

	blocker := suite.createNotificationUser("blocker")
	require.NoError(t, suite.db.Create(&models.UserBlock{
		BlockerID: blocker.ID, BlockedID: suite.viewer.ID,
	}).Error)
	suite.notify(blocker.ID, "followed you")
	suite.notify(suite.friendly.ID, "followed you")

	w, body := suite.list()
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, body.Notifications, 1)
	assert.Equal(t, suite.friendly.ID, body.Notifications[0].ActorID)
}

func (suite *NotificationHandlerTestSuite) TestListingHidesMutedActor() {
	t := suite.T()

	suite.notify(suite.muted.ID, "commented on your post")
	suite.notify(suite.friendly.ID, "commented on your post")

	w, body := suite.list()
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, body.Notifications, 1)
	assert.Equal(t, suite.friendly.ID, body.Notifications[0].ActorID)
	assert.Equal(t, int64(1), body.UnreadCount)
}

func TestNotificationHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationHandlerTestSuite))
}
