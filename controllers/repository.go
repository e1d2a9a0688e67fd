package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"Codehub-api/middleware"
	"Codehub-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type repositorySummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	OwnerID       uint      `json:"owner_id"`
	Language      string    `json:"language,omitempty"`
	StarsCount    int       `json:"stars_count"`
	ForksCount    int       `json:"forks_count"`
	WatchersCount int       `json:"watchers_count"`
	IsPrivate     bool      `json:"is_private"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type repositoryDetail struct {
	repositorySummary
	Readme    string      `json:"readme,omitempty"`
	Owner     userSummary `json:"owner"`
	IsStarred bool        `json:"is_starred"`
}

func toRepositorySummary(repo *models.Repository) repositorySummary {
	return repositorySummary{
		ID:            repo.UUID,
		Name:          repo.Name,
		Description:   repo.Description,
		OwnerID:       repo.OwnerID,
		Language:      repo.Language,
		StarsCount:    repo.StarsCount,
		ForksCount:    repo.ForksCount,
		WatchersCount: repo.WatchersCount,
		IsPrivate:     repo.IsPrivate,
		CreatedAt:     repo.CreatedAt,
		UpdatedAt:     repo.UpdatedAt,
	}
}

func toRepositorySummaries(repos []models.Repository) []repositorySummary {
	summaries := make([]repositorySummary, 0, len(repos))
	for i := range repos {
		summaries = append(summaries, toRepositorySummary(&repos[i]))
	}
	return summaries
}

func parsePagination(c *gin.Context) (limit, offset int) {
	limit = 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}
	offset = 0
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}

var repositorySortColumns = map[string]string{
	"stars":   "stars_count DESC",
	"forks":   "forks_count DESC",
	"name":    "name ASC",
	"updated": "updated_at DESC",
}

func defaultReadme(name, description string) string {
	if description == "" {
		return fmt.Sprintf("# %s\n", name)
	}
	return fmt.Sprintf("# %s\n\n%s\n", name, description)
}

// ListRepositories returns public repositories, filtered, sorted and
// paginated. total is the count of all matching rows, not the page size.
func ListRepositories(c *gin.Context) {
	limit, offset := parsePagination(c)

	query := DB.Model(&models.Repository{}).Where("is_private = ?", false)

	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if language := c.Query("language"); language != "" {
		query = query.Where("language = ?", language)
	}

	order, ok := repositorySortColumns[c.DefaultQuery("sortBy", "updated")]
	if !ok {
		order = repositorySortColumns["updated"]
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
		return
	}

	var repos []models.Repository
	if err := query.Order(order).Limit(limit).Offset(offset).Find(&repos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"repositories": toRepositorySummaries(repos),
		"total":        total,
		"limit":        limit,
		"offset":       offset,
	})
}

// GetRepository returns full detail for one repository. A private
// repository is reported as not found to anyone but its owner.
func GetRepository(c *gin.Context) {
	var repo models.Repository
	if err := DB.Preload("Owner").Where("uuid = ?", c.Param("id")).First(&repo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Repository not found"})
		return
	}

	userID, authed := middleware.CurrentUserID(c)
	if repo.IsPrivate && (!authed || userID != repo.OwnerID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Repository not found"})
		return
	}

	isStarred := false
	if authed {
		var count int64
		if err := DB.Model(&models.Star{}).
			Where("user_id = ? AND repository_id = ?", userID, repo.ID).
			Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
			return
		}
		isStarred = count > 0
	}

	c.JSON(http.StatusOK, repositoryDetail{
		repositorySummary: toRepositorySummary(&repo),
		Readme:            repo.Readme,
		Owner:             toUserSummary(&repo.Owner),
		IsStarred:         isStarred,
	})
}

type createRepositoryPayload struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description"`
	Language    string `json:"language"`
	IsPrivate   bool   `json:"is_private"`
	Readme      string `json:"readme"`
}

func CreateRepository(c *gin.Context) {
	var payload createRepositoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
		return
	}

	repo := models.Repository{
		Name:        payload.Name,
		Description: payload.Description,
		OwnerID:     userID,
		Language:    payload.Language,
		IsPrivate:   payload.IsPrivate,
		Readme:      payload.Readme,
	}
	if repo.Readme == "" {
		repo.Readme = defaultReadme(repo.Name, repo.Description)
	}

	if err := DB.Create(&repo).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Repository name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Creation failed"})
		return
	}

	c.JSON(http.StatusCreated, repositoryDetail{
		repositorySummary: toRepositorySummary(&repo),
		Readme:            repo.Readme,
	})
}

type updateRepositoryPayload struct {
	Description *string `json:"description"`
	Language    *string `json:"language"`
	Readme      *string `json:"readme"`
}

// UpdateRepository mutates description, language and readme only. Name,
// counters and visibility are immutable through this path.
func UpdateRepository(c *gin.Context) {
	var payload updateRepositoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var repo models.Repository
	if err := DB.Where("uuid = ?", c.Param("id")).First(&repo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Repository not found"})
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok || userID != repo.OwnerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "No permission"})
		return
	}

	updates := map[string]interface{}{}
	if payload.Description != nil {
		updates["description"] = *payload.Description
	}
	if payload.Language != nil {
		updates["language"] = *payload.Language
	}
	if payload.Readme != nil {
		updates["readme"] = *payload.Readme
	}

	if len(updates) > 0 {
		if err := DB.Model(&repo).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed"})
			return
		}
		if err := DB.First(&repo, repo.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
			return
		}
	}

	c.JSON(http.StatusOK, repositoryDetail{
		repositorySummary: toRepositorySummary(&repo),
		Readme:            repo.Readme,
	})
}

func DeleteRepository(c *gin.Context) {
	var repo models.Repository
	if err := DB.Where("uuid = ?", c.Param("id")).First(&repo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Repository not found"})
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok || userID != repo.OwnerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "No permission"})
		return
	}

	// Transaction
	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("repository_id = ?", repo.ID).Delete(&models.Star{}).Error; err != nil {
			return err
		}
		return tx.Delete(&repo).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Deletion failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Repository deleted", "id": repo.UUID})
}

// GetRepositoriesByUser lists a user's repositories. Private ones are
// included only when the caller is that user.
func GetRepositoriesByUser(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	limit, offset := parsePagination(c)

	query := DB.Model(&models.Repository{}).Where("owner_id = ?", uint(targetID))
	userID, authed := middleware.CurrentUserID(c)
	if !authed || userID != uint(targetID) {
		query = query.Where("is_private = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
		return
	}

	var repos []models.Repository
	if err := query.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&repos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"repositories": toRepositorySummaries(repos),
		"total":        total,
		"limit":        limit,
		"offset":       offset,
	})
}
