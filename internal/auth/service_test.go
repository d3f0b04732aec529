package auth

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/verdanthq/verdant/internal/database"
	"github.com/verdanthq/verdant/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AuthServiceTestSuite contains auth service tests
type AuthServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	authService *Service
}

func (suite *AuthServiceTestSuite) SetupSuite() {
	host := envOrDefault("POSTGRES_HOST", "localhost")
	port := envOrDefault("POSTGRES_PORT", "5432")
	user := envOrDefault("POSTGRES_USER", "postgres")
	password := os.Getenv("POSTGRES_PASSWORD")
	dbname := envOrDefault("POSTGRES_DB", "verdant_test")

	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable", host, port, user, dbname)
	if password != "" {
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbname)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		suite.T().Skipf("Skipping auth tests: database not available (%v)", err)
		return
	}

	// The service reads the package-level connection
	database.DB = db

	require.NoError(suite.T(), db.AutoMigrate(&models.User{}))

	suite.db = db
	suite.authService = NewService([]byte("test_jwt_secret_key"))
}

func (suite *AuthServiceTestSuite) TearDownSuite() {
	if suite.db == nil {
		return
	}
	suite.db.Exec("DROP TABLE IF EXISTS users CASCADE")
	sqlDB, _ := suite.db.DB()
	sqlDB.Close()
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM users")
}

func (suite *AuthServiceTestSuite) register() (*AuthResponse, error) {
	return suite.authService.Register(RegisterRequest{
		Email:       "fern@example.com",
		Username:    "fernkeeper",
		Password:    "leafmeallone",
		DisplayName: "Fern Keeper",
	})
}

func (suite *AuthServiceTestSuite) TestRegister() {
	t := suite.T()

	resp, err := suite.register()
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "fernkeeper", resp.User.Username)
	require.NotNil(t, resp.User.PasswordHash)
	assert.NotEqual(t, "leafmeallone", *resp.User.PasswordHash, "password must be hashed")
}

func (suite *AuthServiceTestSuite) TestRegisterDuplicateEmail() {
	t := suite.T()

	_, err := suite.register()
	require.NoError(t, err)

	_, err = suite.authService.Register(RegisterRequest{
		Email:       "FERN@example.com", // email matching is case-insensitive
		Username:    "otherusername",
		Password:    "leafmeallone",
		DisplayName: "Other",
	})
	assert.ErrorIs(t, err, ErrUserExists)
}

func (suite *AuthServiceTestSuite) TestRegisterDuplicateUsername() {
	t := suite.T()

	_, err := suite.register()
	require.NoError(t, err)

	_, err = suite.authService.Register(RegisterRequest{
		Email:       "other@example.com",
		Username:    "FernKeeper",
		Password:    "leafmeallone",
		DisplayName: "Other",
	})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func (suite *AuthServiceTestSuite) TestLogin() {
	t := suite.T()

	_, err := suite.register()
	require.NoError(t, err)

	resp, err := suite.authService.Login(LoginRequest{
		Email:    "fern@example.com",
		Password: "leafmeallone",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func (suite *AuthServiceTestSuite) TestLoginWrongPassword() {
	t := suite.T()

	_, err := suite.register()
	require.NoError(t, err)

	_, err = suite.authService.Login(LoginRequest{
		Email:    "fern@example.com",
		Password: "wrongpassword",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestLoginUnknownEmail() {
	_, err := suite.authService.Login(LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(suite.T(), err, ErrUserNotFound)
}

func (suite *AuthServiceTestSuite) TestLoginSuspendedUser() {
	t := suite.T()

	resp, err := suite.register()
	require.NoError(t, err)

	require.NoError(t, suite.db.Model(&models.User{}).
		Where("id = ?", resp.User.ID).
		Update("is_suspended", true).Error)

	_, err = suite.authService.Login(LoginRequest{
		Email:    "fern@example.com",
		Password: "leafmeallone",
	})
	assert.ErrorIs(t, err, ErrUserSuspended)
}

func (suite *AuthServiceTestSuite) TestValidateToken() {
	t := suite.T()

	resp, err := suite.register()
	require.NoError(t, err)

	user, err := suite.authService.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
}

func (suite *AuthServiceTestSuite) TestValidateTokenWrongSecret() {
	t := suite.T()

	resp, err := suite.register()
	require.NoError(t, err)

	other := NewService([]byte("a_different_secret"))
	_, err = other.ValidateToken(resp.Token)
	assert.Error(t, err)
}

func (suite *AuthServiceTestSuite) TestValidateTokenGarbage() {
	_, err := suite.authService.ValidateToken("not.a.token")
	assert.Error(suite.T(), err)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
