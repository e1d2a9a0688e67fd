package controllers

import (
	"errors"
	"net/http"

	"Codehub-api/middleware"
	"Codehub-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errNotStarred = errors.New("not starred")

// StarRepository inserts the star row and bumps the denormalized
// counter in the same transaction. The unique index on (user, repo)
// makes a duplicate star a constraint violation, not a racy pre-check.
func StarRepository(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
		return
	}

	var repo models.Repository
	if err := DB.Where("uuid = ?", c.Param("id")).First(&repo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Repository not found"})
		return
	}

	err := DB.Transaction(func(tx *gorm.DB) error {
		star := models.Star{UserID: userID, RepositoryID: repo.ID}
		if err := tx.Create(&star).Error; err != nil {
			return err
		}
		return tx.Model(&models.Repository{}).
			Where("id = ?", repo.ID).
			UpdateColumn("stars_count", gorm.Expr("stars_count + ?", 1)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Already starred"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Star failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Repository starred", "stars_count": repo.StarsCount + 1})
}

// UnstarRepository removes the star row and decrements the counter,
// clamped so stars_count never drops below zero.
func UnstarRepository(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
		return
	}

	var repo models.Repository
	if err := DB.Where("uuid = ?", c.Param("id")).First(&repo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Repository not found"})
		return
	}

	err := DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND repository_id = ?", userID, repo.ID).Delete(&models.Star{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNotStarred
		}
		return tx.Model(&models.Repository{}).
			Where("id = ? AND stars_count > 0", repo.ID).
			UpdateColumn("stars_count", gorm.Expr("stars_count - ?", 1)).Error
	})
	if err != nil {
		if errors.Is(err, errNotStarred) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Not starred"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unstar failed"})
		return
	}

	if err := DB.First(&repo, repo.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Repository unstarred", "stars_count": repo.StarsCount})
}
