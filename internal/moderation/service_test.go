package moderation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	apierrors "github.com/verdanthq/verdant/internal/errors"
	"github.com/verdanthq/verdant/internal/logger"
	"github.com/verdanthq/verdant/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testThreshold = 3

// ModerationTestSuite exercises the report pipeline end to end against
// a real database
type ModerationTestSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *Service

	author models.User
	admin  models.User
	post   models.Post
}

func (suite *ModerationTestSuite) SetupSuite() {
	require.NoError(suite.T(), logger.Initialize("error", filepath.Join(suite.T().TempDir(), "test.log")))

	db, err := openTestDB()
	if err != nil {
		suite.T().Skipf("Skipping moderation tests: database not available (%v)", err)
		return
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Event{},
		&models.Shop{},
		&models.ShopReview{},
		&models.Report{},
		&models.AdminNotification{},
		&models.AuditLog{},
		&models.Hashtag{},
	)
	require.NoError(suite.T(), err)

	suite.db = db
	suite.svc = NewService(db, testThreshold)
}

func (suite *ModerationTestSuite) TearDownSuite() {
	if suite.db == nil {
		return
	}
	suite.db.Exec("DROP TABLE IF EXISTS reports, admin_notifications, audit_logs, post_hashtags, hashtags, comments, posts, shop_reviews, shops, events, users CASCADE")
	sqlDB, _ := suite.db.DB()
	sqlDB.Close()
}

func (suite *ModerationTestSuite) SetupTest() {
	t := suite.T()
	for _, table := range []string{"reports", "admin_notifications", "audit_logs", "comments", "posts", "shop_reviews", "shops", "events", "users"} {
		suite.db.Exec("DELETE FROM " + table)
	}

	suite.author = suite.createUser("author")
	suite.admin = suite.createUser("admin")

	suite.post = models.Post{AuthorID: suite.author.ID, Body: "my prized juniper"}
	require.NoError(t, suite.db.Create(&suite.post).Error)
}

func (suite *ModerationTestSuite) createUser(name string) models.User {
	user := models.User{
		Email:       name + "@example.com",
		Username:    name,
		DisplayName: name,
	}
	require.NoError(suite.T(), suite.db.Create(&user).Error)
	return user
}

func (suite *ModerationTestSuite) report(reporterID string) (*models.Report, error) {
	return suite.svc.CreateReport(context.Background(), reporterID, CreateReportInput{
		TargetType: models.ReportTargetPost,
		TargetID:   suite.post.ID,
		Reason:     models.ReasonSpam,
	})
}

func (suite *ModerationTestSuite) TestCreateReport() {
	t := suite.T()
	reporter := suite.createUser("reporter")

	report, err := suite.report(reporter.ID)
	require.NoError(t, err)

	assert.Equal(t, models.ReportPending, report.Status)
	assert.Equal(t, suite.author.ID, report.TargetUserID)
	assert.Equal(t, models.ReasonSpam, report.Reason)
}

func (suite *ModerationTestSuite) TestSelfReportRejected() {
	t := suite.T()

	_, err := suite.report(suite.author.ID)
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
}

func (suite *ModerationTestSuite) TestDuplicateReportRejected() {
	t := suite.T()
	reporter := suite.createUser("reporter")

	_, err := suite.report(reporter.ID)
	require.NoError(t, err)

	_, err = suite.report(reporter.ID)
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Status)
}

func (suite *ModerationTestSuite) TestMissingTargetRejected() {
	t := suite.T()
	reporter := suite.createUser("reporter")

	_, err := suite.svc.CreateReport(context.Background(), reporter.ID, CreateReportInput{
		TargetType: models.ReportTargetPost,
		TargetID:   "00000000-0000-0000-0000-000000000000",
		Reason:     models.ReasonSpam,
	})
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func (suite *ModerationTestSuite) TestInvalidInputRejected() {
	t := suite.T()
	reporter := suite.createUser("reporter")

	_, err := suite.svc.CreateReport(context.Background(), reporter.ID, CreateReportInput{
		TargetType: "story",
		TargetID:   suite.post.ID,
		Reason:     models.ReasonSpam,
	})
	assert.Error(t, err)

	_, err = suite.svc.CreateReport(context.Background(), reporter.ID, CreateReportInput{
		TargetType: models.ReportTargetPost,
		TargetID:   suite.post.ID,
		Reason:     "because",
	})
	assert.Error(t, err)
}

func (suite *ModerationTestSuite) TestAutoHideAtThreshold() {
	t := suite.T()

	for i := 0; i < testThreshold-1; i++ {
		reporter := suite.createUser(fmt.Sprintf("reporter%d", i))
		_, err := suite.report(reporter.ID)
		require.NoError(t, err)
	}

	// Below the threshold nothing is hidden
	var post models.Post
	require.NoError(t, suite.db.First(&post, "id = ?", suite.post.ID).Error)
	assert.False(t, post.IsHidden)

	lastReporter := suite.createUser("last-reporter")
	_, err := suite.report(lastReporter.ID)
	require.NoError(t, err)

	// The crossing report hides the post
	require.NoError(t, suite.db.First(&post, "id = ?", suite.post.ID).Error)
	assert.True(t, post.IsHidden)
	assert.NotNil(t, post.HiddenAt)

	// All pending reports flip to auto_hidden
	var reports []models.Report
	require.NoError(t, suite.db.Where("target_id = ?", suite.post.ID).Find(&reports).Error)
	require.Len(t, reports, testThreshold)
	for _, r := range reports {
		assert.Equal(t, models.ReportAutoHidden, r.Status)
		assert.NotNil(t, r.ReviewedAt)
	}

	// Exactly one admin notification, carrying the count at crossing
	var notifications []models.AdminNotification
	require.NoError(t, suite.db.Where("target_id = ?", suite.post.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, "auto_hide", notifications[0].Kind)
	assert.Equal(t, testThreshold, notifications[0].ReportCount)
}

func (suite *ModerationTestSuite) TestNoSecondNotificationPastThreshold() {
	t := suite.T()

	for i := 0; i < testThreshold+2; i++ {
		reporter := suite.createUser(fmt.Sprintf("reporter%d", i))
		_, err := suite.report(reporter.ID)
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, suite.db.Model(&models.AdminNotification{}).
		Where("target_id = ?", suite.post.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "one notification per threshold crossing")
}

func (suite *ModerationTestSuite) TestAdminHiddenContentSkipsNotification() {
	t := suite.T()

	// An admin hid the post before the report count crossed
	require.NoError(t, suite.db.Model(&models.Post{}).Where("id = ?", suite.post.ID).
		Update("is_hidden", true).Error)

	for i := 0; i < testThreshold; i++ {
		reporter := suite.createUser(fmt.Sprintf("reporter%d", i))
		_, err := suite.report(reporter.ID)
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, suite.db.Model(&models.AdminNotification{}).
		Where("target_id = ?", suite.post.ID).Count(&count).Error)
	assert.Zero(t, count)

	// Reports stay pending for human review
	var pending int64
	require.NoError(t, suite.db.Model(&models.Report{}).
		Where("target_id = ? AND status = ?", suite.post.ID, models.ReportPending).
		Count(&pending).Error)
	assert.Equal(t, int64(testThreshold), pending)
}

func (suite *ModerationTestSuite) TestHideClaimsTransitionOnce() {
	t := suite.T()

	handler, ok := targetFor(models.ReportTargetPost)
	require.True(t, ok)

	now := time.Now().UTC()
	first, err := handler.Hide(suite.db, suite.post.ID, now)
	require.NoError(t, err)
	assert.True(t, first, "first hide makes the transition")

	second, err := handler.Hide(suite.db, suite.post.ID, now)
	require.NoError(t, err)
	assert.False(t, second, "already-hidden content cannot be claimed again")
}

func (suite *ModerationTestSuite) TestSuspendClaimsTransitionOnce() {
	t := suite.T()
	troll := suite.createUser("troll")

	handler, ok := targetFor(models.ReportTargetUser)
	require.True(t, ok)

	now := time.Now().UTC()
	first, err := handler.Hide(suite.db, troll.ID, now)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := handler.Hide(suite.db, troll.ID, now)
	require.NoError(t, err)
	assert.False(t, second)
}

func (suite *ModerationTestSuite) TestUserTargetSuspendsAtThreshold() {
	t := suite.T()
	troll := suite.createUser("troll")

	for i := 0; i < testThreshold; i++ {
		reporter := suite.createUser(fmt.Sprintf("reporter%d", i))
		_, err := suite.svc.CreateReport(context.Background(), reporter.ID, CreateReportInput{
			TargetType: models.ReportTargetUser,
			TargetID:   troll.ID,
			Reason:     models.ReasonHarassment,
		})
		require.NoError(t, err)
	}

	var user models.User
	require.NoError(t, suite.db.First(&user, "id = ?", troll.ID).Error)
	assert.True(t, user.IsSuspended)
	assert.NotNil(t, user.SuspendedAt)
}

func (suite *ModerationTestSuite) TestUpdateReportStatus() {
	t := suite.T()
	reporter := suite.createUser("reporter")

	report, err := suite.report(reporter.ID)
	require.NoError(t, err)

	updated, err := suite.svc.UpdateReportStatus(context.Background(), suite.admin.ID, report.ID,
		UpdateReportStatusInput{Status: models.ReportReviewed})
	require.NoError(t, err)
	assert.Equal(t, models.ReportReviewed, updated.Status)
	require.NotNil(t, updated.ReviewedBy)
	assert.Equal(t, suite.admin.ID, *updated.ReviewedBy)

	updated, err = suite.svc.UpdateReportStatus(context.Background(), suite.admin.ID, report.ID,
		UpdateReportStatusInput{Status: models.ReportDismissed, Resolution: "not actionable"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportDismissed, updated.Status)
	assert.Equal(t, "not actionable", updated.Resolution)

	// Dismissed is terminal
	_, err = suite.svc.UpdateReportStatus(context.Background(), suite.admin.ID, report.ID,
		UpdateReportStatusInput{Status: models.ReportResolved})
	require.Error(t, err)

	// Each transition leaves an audit entry
	var audits int64
	require.NoError(t, suite.db.Model(&models.AuditLog{}).
		Where("target_id = ?", report.ID).Count(&audits).Error)
	assert.Equal(t, int64(2), audits)
}

func (suite *ModerationTestSuite) TestDeleteReportedContent() {
	t := suite.T()
	reporter := suite.createUser("reporter")

	report, err := suite.report(reporter.ID)
	require.NoError(t, err)

	err = suite.svc.DeleteReportedContent(context.Background(), suite.admin.ID, report.ID)
	require.NoError(t, err)

	// Post is soft-deleted
	var post models.Post
	err = suite.db.First(&post, "id = ?", suite.post.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Every report against the target is purged from the queue
	var remaining int64
	require.NoError(t, suite.db.Model(&models.Report{}).
		Where("target_type = ? AND target_id = ?", models.ReportTargetPost, suite.post.ID).
		Count(&remaining).Error)
	assert.Zero(t, remaining)

	// The audit log is the surviving record
	var audit models.AuditLog
	require.NoError(t, suite.db.First(&audit, "target_id = ?", suite.post.ID).Error)
	assert.Equal(t, "content_removed", audit.Action)
}

func (suite *ModerationTestSuite) TestListReports() {
	t := suite.T()
	reporter := suite.createUser("reporter")

	_, err := suite.report(reporter.ID)
	require.NoError(t, err)

	reports, total, err := suite.svc.ListReports(context.Background(), ListReportsQuery{
		Status: models.ReportPending,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, reports, 1)

	reports, total, err = suite.svc.ListReports(context.Background(), ListReportsQuery{
		Status: models.ReportResolved,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, reports)
}

func TestModerationTestSuite(t *testing.T) {
	suite.Run(t, new(ModerationTestSuite))
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
