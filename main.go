package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"Codehub-api/config"
	"Codehub-api/controllers"
	"Codehub-api/middleware"
	"Codehub-api/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var db *gorm.DB
	var err error
	gormConfig := &gorm.Config{TranslateError: true}
	if config.AppConfig.Env == "production" {
		db, err = gorm.Open(mysql.Open(config.AppConfig.DBDSN), gormConfig)
	} else {
		db, err = gorm.Open(sqlite.Open(config.AppConfig.DBDSN), gormConfig)
	}
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Repository{}, &models.Star{}, &models.Follow{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	controllers.DB = db

	r := gin.Default()

	r.Use(middleware.SecurityHeadersMiddleware())

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", config.AppConfig.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.POST("/auth/register", controllers.RegisterHandler)
	r.POST("/auth/login", controllers.LoginHandler)
	r.GET("/auth/me", middleware.RequireAuth(), controllers.MeHandler)

	r.GET("/repositories", middleware.OptionalAuth(), controllers.ListRepositories)
	r.GET("/repositories/:id", middleware.OptionalAuth(), controllers.GetRepository)
	r.POST("/repositories", middleware.RequireAuth(), controllers.CreateRepository)
	r.PATCH("/repositories/:id", middleware.RequireAuth(), controllers.UpdateRepository)
	r.DELETE("/repositories/:id", middleware.RequireAuth(), controllers.DeleteRepository)
	r.POST("/repositories/:id/star", middleware.RequireAuth(), controllers.StarRepository)
	r.DELETE("/repositories/:id/star", middleware.RequireAuth(), controllers.UnstarRepository)
	r.GET("/repositories/user/:userId", middleware.OptionalAuth(), controllers.GetRepositoriesByUser)

	r.GET("/users/:id", middleware.OptionalAuth(), controllers.GetUserProfile)
	r.PATCH("/users/me", middleware.RequireAuth(), controllers.UpdateProfile)
	r.POST("/users/:id/follow", middleware.RequireAuth(), controllers.FollowUser)
	r.DELETE("/users/:id/follow", middleware.RequireAuth(), controllers.UnfollowUser)
	r.GET("/users/:id/followers", middleware.OptionalAuth(), controllers.ListFollowers)
	r.GET("/users/:id/following", middleware.OptionalAuth(), controllers.ListFollowing)
	r.GET("/users/:id/starred", middleware.OptionalAuth(), controllers.ListStarredRepositories)

	if err := r.Run(":" + config.AppConfig.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
