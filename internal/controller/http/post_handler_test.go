package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inkwell/internal/entity"
	"inkwell/internal/usecase"
	"inkwell/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPostUseCase is a mock implementation of usecase.PostUseCase
type MockPostUseCase struct {
	mock.Mock
}

func (m *MockPostUseCase) CreatePost(userID string, in usecase.CreatePostInput) (*entity.Post, error) {
	args := m.Called(userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) GetPost(postID string) (*entity.Post, error) {
	args := m.Called(postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) ListPosts(page int) ([]*entity.Post, int64, error) {
	args := m.Called(page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entity.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostUseCase) ListOwnPosts(userID string, status entity.Status, limit, offset int) ([]*entity.Post, error) {
	args := m.Called(userID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) UpdatePost(postID, userID string, in usecase.UpdatePostInput) (*entity.Post, error) {
	args := m.Called(postID, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostUseCase) DeletePost(postID, userID string) error {
	args := m.Called(postID, userID)
	return args.Error(0)
}

func (m *MockPostUseCase) UploadCover(postID, userID string, file io.Reader, ext, contentType string) (*entity.Post, error) {
	args := m.Called(postID, userID, file, ext, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

var _ usecase.PostUseCase = (*MockPostUseCase)(nil)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time {
	return &t
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func authAs(userID string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		handler(c)
	}
}

func TestListPosts_EmbedsOwner(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts", handler.ListPosts)

	posts := []*entity.Post{
		{
			ID:          "post-1",
			UserID:      "user-1",
			Title:       "Hello",
			Content:     "World",
			PublishedAt: timePtr(testNow.Add(-time.Hour)),
			User: &entity.User{
				ID:    "user-1",
				Name:  "Author",
				Email: "author@example.com",
			},
		},
	}
	mockUseCase.On("ListPosts", 1).Return(posts, int64(1), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(1), response["current_page"])
	assert.Equal(t, float64(20), response["per_page"])
	assert.Equal(t, float64(1), response["total"])

	data := response["data"].([]interface{})
	assert.Len(t, data, 1)
	item := data[0].(map[string]interface{})
	user := item["user"].(map[string]interface{})
	assert.Equal(t, "user-1", user["id"])
	assert.Equal(t, "Author", user["name"])
	assert.Equal(t, "author@example.com", user["email"])

	mockUseCase.AssertExpectations(t)
}

func TestListPosts_PageParam(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts", handler.ListPosts)

	mockUseCase.On("ListPosts", 3).Return([]*entity.Post{}, int64(50), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts?page=3", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(3), response["last_page"])

	mockUseCase.AssertExpectations(t)
}

func TestCreatePost_Success(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts", authAs("user-1", handler.CreatePost))

	isDraft := true
	mockUseCase.On("CreatePost", "user-1", usecase.CreatePostInput{
		Title:   "Draft Post",
		Content: "Content",
		IsDraft: isDraft,
	}).Return(&entity.Post{
		ID:      "post-1",
		UserID:  "user-1",
		Title:   "Draft Post",
		Content: "Content",
		IsDraft: true,
	}, nil)

	body := `{"title":"Draft Post","content":"Content","is_draft":true}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var post entity.Post
	json.Unmarshal(w.Body.Bytes(), &post)
	assert.Equal(t, "post-1", post.ID)
	assert.True(t, post.IsDraft)

	mockUseCase.AssertExpectations(t)
}

func TestCreatePost_EmptyBodyFailsValidation(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts", authAs("user-1", handler.CreatePost))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	fields := response["errors"].(map[string]interface{})
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "content")
	assert.Contains(t, fields, "is_draft")

	mockUseCase.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
}

func TestCreatePost_TitleTooLong(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts", authAs("user-1", handler.CreatePost))

	body := `{"title":"` + strings.Repeat("x", 256) + `","content":"Content","is_draft":false}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockUseCase.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
}

func TestCreatePost_NonBooleanDraftFlag(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.POST("/posts", authAs("user-1", handler.CreatePost))

	body := `{"title":"Post","content":"Content","is_draft":"yes"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockUseCase.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
}

func TestGetPost_Active(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts/:id", handler.GetPost)

	mockUseCase.On("GetPost", "post-1").Return(&entity.Post{
		ID:          "post-1",
		Title:       "Hello",
		PublishedAt: timePtr(testNow.Add(-time.Hour)),
		User:        &entity.User{ID: "user-1", Name: "Author", Email: "author@example.com"},
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts/post-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "author@example.com")
}

func TestGetPost_HiddenReturns404(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/posts/:id", handler.GetPost)

	// Drafts, scheduled and missing posts all surface the same way
	mockUseCase.On("GetPost", "post-1").Return(nil, usecase.ErrPostNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts/post-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdatePost_Success(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.PUT("/posts/:id", authAs("user-1", handler.UpdatePost))

	title := "Updated Title"
	mockUseCase.On("UpdatePost", "post-1", "user-1", usecase.UpdatePostInput{
		Title: &title,
	}).Return(&entity.Post{
		ID:     "post-1",
		UserID: "user-1",
		Title:  "Updated Title",
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/posts/post-1", bytes.NewBufferString(`{"title":"Updated Title"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Updated Title")

	mockUseCase.AssertExpectations(t)
}

func TestUpdatePost_NotFound(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.PUT("/posts/:id", authAs("user-1", handler.UpdatePost))

	mockUseCase.On("UpdatePost", "missing", "user-1", mock.Anything).Return(nil, usecase.ErrPostNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/posts/missing", bytes.NewBufferString(`{"title":"Title"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdatePost_NotOwner(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.PUT("/posts/:id", authAs("intruder", handler.UpdatePost))

	mockUseCase.On("UpdatePost", "post-1", "intruder", mock.Anything).Return(nil, usecase.ErrNotPostOwner)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/posts/post-1", bytes.NewBufferString(`{"title":"Hack"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdatePost_EmptyTitleFailsValidation(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.PUT("/posts/:id", authAs("user-1", handler.UpdatePost))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/posts/post-1", bytes.NewBufferString(`{"title":""}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockUseCase.AssertNotCalled(t, "UpdatePost", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeletePost_RedirectsToListing(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.DELETE("/posts/:id", authAs("user-1", handler.DeletePost))

	mockUseCase.On("DeletePost", "post-1", "user-1").Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/posts/post-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts", w.Header().Get("Location"))

	mockUseCase.AssertExpectations(t)
}

func TestDeletePost_NotOwner(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.DELETE("/posts/:id", authAs("intruder", handler.DeletePost))

	mockUseCase.On("DeletePost", "post-1", "intruder").Return(usecase.ErrNotPostOwner)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/posts/post-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeletePost_NotFound(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.DELETE("/posts/:id", authAs("user-1", handler.DeletePost))

	mockUseCase.On("DeletePost", "missing", "user-1").Return(usecase.ErrPostNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/posts/missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateForm_ReturnsLiteral(t *testing.T) {
	handler := NewPostHandler(new(MockPostUseCase), logger.New())

	router := setupTestRouter()
	router.GET("/posts/create", handler.CreateForm)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts/create", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "posts.create", w.Body.String())
}

func TestEditForm_ReturnsLiteral(t *testing.T) {
	handler := NewPostHandler(new(MockPostUseCase), logger.New())

	router := setupTestRouter()
	router.GET("/posts/:id/edit", handler.EditForm)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts/post-1/edit", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "posts.edit", w.Body.String())
}

func TestListOwnPosts_InvalidStatus(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/me/posts", authAs("user-1", handler.ListOwnPosts))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me/posts?status=bogus", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockUseCase.AssertNotCalled(t, "ListOwnPosts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListOwnPosts_Drafts(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	handler := NewPostHandler(mockUseCase, logger.New())

	router := setupTestRouter()
	router.GET("/me/posts", authAs("user-1", handler.ListOwnPosts))

	mockUseCase.On("ListOwnPosts", "user-1", entity.StatusDraft, 20, 0).Return([]*entity.Post{
		{ID: "post-1", UserID: "user-1", IsDraft: true},
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me/posts?status=draft", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(1), response["count"])

	mockUseCase.AssertExpectations(t)
}
