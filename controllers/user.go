package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"Codehub-api/middleware"
	"Codehub-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type userSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	Bio   string `json:"bio,omitempty"`
}

func toUserSummary(u *models.User) userSummary {
	return userSummary{
		ID:    u.ID,
		Name:  u.Name,
		Image: u.Image,
		Bio:   u.Bio,
	}
}

type userProfile struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Image     string    `json:"image,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserProfile(u *models.User) userProfile {
	return userProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Image:     u.Image,
		Bio:       u.Bio,
		Location:  u.Location,
		CreatedAt: u.CreatedAt,
	}
}

func parseUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return 0, false
	}
	return uint(id), true
}

// GetUserProfile returns the profile plus aggregate counts computed at
// read time from the Follow and Repository tables.
func GetUserProfile(c *gin.Context) {
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}

	var user models.User
	if err := DB.First(&user, targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var followersCount, followingCount, repositoriesCount int64
	if err := DB.Model(&models.Follow{}).Where("following_id = ?", targetID).Count(&followersCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
		return
	}
	if err := DB.Model(&models.Follow{}).Where("follower_id = ?", targetID).Count(&followingCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
		return
	}
	if err := DB.Model(&models.Repository{}).
		Where("owner_id = ? AND is_private = ?", targetID, false).
		Count(&repositoriesCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
		return
	}

	isFollowing := false
	if callerID, authed := middleware.CurrentUserID(c); authed && callerID != targetID {
		var count int64
		if err := DB.Model(&models.Follow{}).
			Where("follower_id = ? AND following_id = ?", callerID, targetID).
			Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
			return
		}
		isFollowing = count > 0
	}

	c.JSON(http.StatusOK, gin.H{
		"user":               toUserProfile(&user),
		"followers_count":    followersCount,
		"following_count":    followingCount,
		"repositories_count": repositoriesCount,
		"is_following":       isFollowing,
	})
}

type updateProfilePayload struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
}

// UpdateProfile partially updates the caller's own record. There is no
// path to update another user's profile.
func UpdateProfile(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
		return
	}

	var payload updateProfilePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var user models.User
	if err := DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	updates := map[string]interface{}{}
	if payload.Name != nil {
		updates["name"] = *payload.Name
	}
	if payload.Bio != nil {
		updates["bio"] = *payload.Bio
	}
	if payload.Location != nil {
		updates["location"] = *payload.Location
	}

	if len(updates) > 0 {
		if err := DB.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed"})
			return
		}
		if err := DB.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserProfile(&user)})
}

// FollowUser creates the follow relation. Self-follow is rejected and a
// duplicate surfaces as a unique-constraint violation.
func FollowUser(c *gin.Context) {
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}

	callerID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
		return
	}
	if callerID == targetID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot follow yourself"})
		return
	}

	var target models.User
	if err := DB.First(&target, targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	follow := models.Follow{FollowerID: callerID, FollowingID: targetID}
	if err := DB.Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Already following"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Follow failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Now following", "user_id": targetID})
}

func UnfollowUser(c *gin.Context) {
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}

	callerID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
		return
	}

	res := DB.Where("follower_id = ? AND following_id = ?", callerID, targetID).Delete(&models.Follow{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unfollow failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not following"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed", "user_id": targetID})
}

// ListFollowers returns the users following :id. Follow relations are
// always public.
func ListFollowers(c *gin.Context) {
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}
	limit, offset := parsePagination(c)

	base := DB.Model(&models.User{}).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ?", targetID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
		return
	}

	var followers []userSummary
	if err := base.Select("users.id, users.name, users.image, users.bio").
		Order("follows.created_at DESC").
		Limit(limit).Offset(offset).
		Scan(&followers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": followers, "total": total, "limit": limit, "offset": offset})
}

// ListFollowing returns the users :id follows.
func ListFollowing(c *gin.Context) {
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}
	limit, offset := parsePagination(c)

	base := DB.Model(&models.User{}).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ?", targetID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
		return
	}

	var following []userSummary
	if err := base.Select("users.id, users.name, users.image, users.bio").
		Order("follows.created_at DESC").
		Limit(limit).Offset(offset).
		Scan(&following).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": following, "total": total, "limit": limit, "offset": offset})
}

// ListStarredRepositories returns public repositories the user has
// starred, most recently starred first.
func ListStarredRepositories(c *gin.Context) {
	targetID, ok := parseUserID(c)
	if !ok {
		return
	}
	limit, offset := parsePagination(c)

	base := DB.Model(&models.Repository{}).
		Joins("JOIN stars ON stars.repository_id = repositories.id").
		Where("stars.user_id = ? AND repositories.is_private = ?", targetID, false)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed"})
		return
	}

	var repos []models.Repository
	if err := base.Select("repositories.*").
		Order("stars.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&repos).Error; err != nil {
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
