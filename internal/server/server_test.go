package server

import (
	"testing"
	"time"

	"murmur/internal/config"
	"murmur/internal/database"
	"murmur/internal/models"
	"murmur/internal/parser"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret-not-for-production",
		Port:            "0",
		Env:             "test",
		TagPattern:      parser.DefaultTagPattern,
		UsernamePattern: parser.DefaultUsernamePattern,
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// newTestServer builds a Server over an in-memory sqlite database with no
// Redis. Each call gets a fresh schema.
func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	s, err := NewServerWithDeps(testConfig(), db, nil)
	require.NoError(t, err)
	return s, db
}

// newTestApp returns an app that injects the given user into locals,
// sidestepping token issuance in handler tests that aren't about auth.
// Tests register just the routes they exercise, the way the handlers are
// mounted in SetupRoutes.
func newTestApp(userID uint) *fiber.App {
	app := fiber.New()
	if userID != 0 {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("userID", userID)
			return c.Next()
		})
	}
	return app
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
	}
	require.NoError(t, db.Create(u).Error)
	require.NoError(t, db.Create(&models.UserInfo{UserID: u.ID}).Error)
	return u
}

func seedDevice(t *testing.T, db *gorm.DB, name string) *models.Device {
	t.Helper()
	d := &models.Device{Name: name}
	require.NoError(t, db.Create(d).Error)
	return d
}

func seedNotice(t *testing.T, db *gorm.DB, authorID, viaID uint, text string) *models.Notice {
	t.Helper()
	n := &models.Notice{
		Posted:   time.Now(),
		AuthorID: authorID,
		Text:     text,
		ViaID:    viaID,
	}
	require.NoError(t, db.Create(n).Error)
	return n
}
