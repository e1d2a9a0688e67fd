package controllers

import (
	"strconv"
	"testing"

	"Codehub-api/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB opens an in-memory SQLite database, runs the migrations
// and sets the package-global DB used by the handlers.
func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Repository{}, &models.Star{}, &models.Follow{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	DB = db
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("testpassword"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{Name: name, Email: email, PasswordHash: string(hash)}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// simulateAuthMiddleware sets the caller identity directly, standing in
// for the JWT middleware in handler tests.
func simulateAuthMiddleware(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}
