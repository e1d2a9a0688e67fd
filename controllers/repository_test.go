package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"Codehub-api/middleware"
	"Codehub-api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func performRequest(router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func performRaw(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func repositoryRouter(userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if userID != 0 {
		router.Use(simulateAuthMiddleware(userID))
	}
	router.GET("/repositories", ListRepositories)
	router.GET("/repositories/:id", GetRepository)
	router.POST("/repositories", CreateRepository)
	router.PATCH("/repositories/:id", UpdateRepository)
	router.DELETE("/repositories/:id", DeleteRepository)
	router.GET("/repositories/user/:userId", GetRepositoriesByUser)
	return router
}

func TestCreateRepository(t *testing.T) {
	db := SetupTestDB(t)
	user := createTestUser(t, db, "alice", "alice@example.com")
	router := repositoryRouter(user.ID)

	w := performRequest(router, "POST", "/repositories", gin.H{
		"name":        "demo",
		"description": "a demo repository",
		"language":    "Go",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var created repositoryDetail
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "demo", created.Name)
	assert.Equal(t, user.ID, created.OwnerID)
	assert.Equal(t, 0, created.StarsCount)
	assert.Equal(t, "# demo\n\na demo repository\n", created.Readme)
}

func TestCreateRepositoryDuplicateName(t *testing.T) {
	db := SetupTestDB(t)
	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")

	aliceRouter := repositoryRouter(alice.ID)
	w := performRequest(aliceRouter, "POST", "/repositories", gin.H{"name": "demo"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Same name under the same owner conflicts.
	w = performRequest(aliceRouter, "POST", "/repositories", gin.H{"name": "demo"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")

	// Same name under a different owner is fine.
	bobRouter := repositoryRouter(bob.ID)
	w = performRequest(bobRouter, "POST", "/repositories", gin.H{"name": "demo"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestGetRepositoryVisibility(t *testing.T) {
	db := SetupTestDB(t)
	owner := createTestUser(t, db, "owner", "owner@example.com")
	other := createTestUser(t, db, "other", "other@example.com")

	repo := models.Repository{Name: "secret", OwnerID: owner.ID, IsPrivate: true}
	assert.NoError(t, db.Create(&repo).Error)

	// Anonymous caller: indistinguishable from nonexistence.
	w := performRequest(repositoryRouter(0), "GET", "/repositories/"+repo.UUID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Repository not found")

	// Authenticated non-owner: still not found, never forbidden.
	w = performRequest(repositoryRouter(other.ID), "GET", "/repositories/"+repo.UUID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Repository not found")

	// Owner sees it.
	w = performRequest(repositoryRouter(owner.ID), "GET", "/repositories/"+repo.UUID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var detail repositoryDetail
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "secret", detail.Name)
	assert.Equal(t, owner.ID, detail.Owner.ID)
	assert.False(t, detail.IsStarred)
}

func TestGetRepositoryIsStarred(t *testing.T) {
	db := SetupTestDB(t)
	owner := createTestUser(t, db, "owner", "owner@example.com")
	fan := createTestUser(t, db, "fan", "fan@example.com")

	repo := models.Repository{Name: "starred", OwnerID: owner.ID}
	assert.NoError(t, db.Create(&repo).Error)
	assert.NoError(t, db.Create(&models.Star{UserID: fan.ID, RepositoryID: repo.ID}).Error)

	w := performRequest(repositoryRouter(fan.ID), "GET", "/repositories/"+repo.UUID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var detail repositoryDetail
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.True(t, detail.IsStarred)
}

func TestUpdateRepository(t *testing.T) {
	db := SetupTestDB(t)
	owner := createTestUser(t, db, "owner", "owner@example.com")
	other := createTestUser(t, db, "other", "other@example.com")

	repo := models.Repository{Name: "mutable", OwnerID: owner.ID, Description: "before"}
	assert.NoError(t, db.Create(&repo).Error)

	// Non-owner is forbidden.
	w := performRequest(repositoryRouter(other.ID), "PATCH", "/repositories/"+repo.UUID, gin.H{"description": "after"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Missing repository is not found.
	w = performRequest(repositoryRouter(owner.ID), "PATCH", "/repositories/no-such-uuid", gin.H{"description": "after"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Owner updates description only; language untouched.
	w = performRequest(repositoryRouter(owner.ID), "PATCH", "/repositories/"+repo.UUID, gin.H{"description": "after"})
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.Repository
	assert.NoError(t, db.First(&stored, repo.ID).Error)
	assert.Equal(t, "after", stored.Description)
	assert.Equal(t, "mutable", stored.Name)
}

func TestDeleteRepositoryCascadesStars(t *testing.T) {
	db := SetupTestDB(t)
	owner := createTestUser(t, db, "owner", "owner@example.com")
	fan := createTestUser(t, db, "fan", "fan@example.com")

	repo := models.Repository{Name: "doomed", OwnerID: owner.ID}
	assert.NoError(t, db.Create(&repo).Error)
	assert.NoError(t, db.Create(&models.Star{UserID: fan.ID, RepositoryID: repo.ID}).Error)

	// Non-owner is forbidden.
	w := performRequest(repositoryRouter(fan.ID), "DELETE", "/repositories/"+repo.UUID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(repositoryRouter(owner.ID), "DELETE", "/repositories/"+repo.UUID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var repoCount, starCount int64
	db.Model(&models.Repository{}).Where("id = ?", repo.ID).Count(&repoCount)
	db.Model(&models.Star{}).Where("repository_id = ?", repo.ID).Count(&starCount)
	assert.EqualValues(t, 0, repoCount)
	assert.EqualValues(t, 0, starCount)
}

func TestListRepositoriesFiltersAndSorting(t *testing.T) {
	db := SetupTestDB(t)
	owner := createTestUser(t, db, "owner", "owner@example.com")

	seed := []models.Repository{
		{Name: "zebra", OwnerID: owner.ID, Language: "Go", StarsCount: 5},
		{Name: "alpha", OwnerID: owner.ID, Language: "Rust", StarsCount: 9},
		{Name: "mango", OwnerID: owner.ID, Language: "Go", Description: "fruit parser"},
		{Name: "hidden", OwnerID: owner.ID, IsPrivate: true},
	}
	for i := range seed {
		assert.NoError(t, db.Create(&seed[i]).Error)
	}

	router := repositoryRouter(0)

	// Private repositories never show up, and total counts all matches,
	// not the returned page.
	w := performRequest(router, "GET", "/repositories?limit=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Repositories []repositorySummary `json:"repositories"`
		Total        int64               `json:"total"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed.Repositories, 2)
	assert.EqualValues(t, 3, listed.Total)

	// Lexicographic ordering by name.
	w = performRequest(router, "GET", "/repositories?sortBy=name&limit=2&offset=0", nil)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed.Repositories, 2)
	assert.Equal(t, "alpha", listed.Repositories[0].Name)
	assert.Equal(t, "mango", listed.Repositories[1].Name)

	// Stars descending.
	w = performRequest(router, "GET", "/repositories?sortBy=stars", nil)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Equal(t, "alpha", listed.Repositories[0].Name)

	// Case-insensitive substring search over name and description.
	w = performRequest(router, "GET", "/repositories?search=FRUIT", nil)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed.Repositories, 1)
	assert.Equal(t, "mango", listed.Repositories[0].Name)

	// Exact language filter.
	w = performRequest(router, "GET", "/repositories?language=Go", nil)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed.Repositories, 2)
}

func TestGetRepositoriesByUserVisibility(t *testing.T) {
	db := SetupTestDB(t)
	owner := createTestUser(t, db, "owner", "owner@example.com")
	other := createTestUser(t, db, "other", "other@example.com")

	public := models.Repository{Name: "public", OwnerID: owner.ID}
	private := models.Repository{Name: "private", OwnerID: owner.ID, IsPrivate: true}
	assert.NoError(t, db.Create(&public).Error)
	assert.NoError(t, db.Create(&private).Error)

	path := "/repositories/user/" + itoa(owner.ID)

	var listed struct {
		Repositories []repositorySummary `json:"repositories"`
		Total        int64               `json:"total"`
	}

	// Other callers see only the public repository.
	w := performRequest(repositoryRouter(other.ID), "GET", path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed.Repositories, 1)
	assert.Equal(t, "public", listed.Repositories[0].Name)

	// The owner sees both.
	w = performRequest(repositoryRouter(owner.ID), "GET", path, nil)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed.Repositories, 2)
	assert.EqualValues(t, 2, listed.Total)
}

func TestCreateRepositoryIgnoresClientOwner(t *testing.T) {
	db := SetupTestDB(t)
	user := createTestUser(t, db, "alice", "alice@example.com")
	router := repositoryRouter(user.ID)

	w := performRequest(router, "POST", "/repositories", gin.H{
		"name":     "owned",
		"owner_id": 9999,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var stored models.Repository
	assert.NoError(t, db.Where("name = ?", "owned").First(&stored).Error)
	assert.Equal(t, user.ID, stored.OwnerID)
}

func TestCreateRepositoryUnauthenticated(t *testing.T) {
	SetupTestDB(t)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/repositories", middleware.RequireAuth(), CreateRepository)

	w := performRequest(router, "POST", "/repositories", gin.H{"name": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
