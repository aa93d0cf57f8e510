package http

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"inkwell/internal/entity"
	"inkwell/internal/usecase"
	"inkwell/pkg/logger"

	"github.com/gin-gonic/gin"
)

const postsPerPage = 20

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

type CreatePostRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Content     string     `json:"content" binding:"required"`
	IsDraft     *bool      `json:"is_draft" binding:"required"`
	PublishedAt *time.Time `json:"published_at"`
}

type UpdatePostRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Content     *string    `json:"content" binding:"omitempty,min=1"`
	IsDraft     *bool      `json:"is_draft"`
	PublishedAt *time.Time `json:"published_at"`
}

// ListPosts godoc
// @Summary      List published posts
// @Description  Get publicly visible posts with their authors, 20 per page
// @Tags         posts
// @Produce      json
// @Param        page query int false "Page number"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	posts, total, err := h.postUseCase.ListPosts(page)
	if err != nil {
		h.logger.Error("Failed to list posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	lastPage := (total + postsPerPage - 1) / postsPerPage
	if lastPage < 1 {
		lastPage = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"data":         posts,
		"current_page": page,
		"per_page":     postsPerPage,
		"total":        total,
		"last_page":    lastPage,
	})
}

// CreatePost godoc
// @Summary      Create a post
// @Description  Create a post owned by the authenticated user. Publishing without a publish time publishes immediately.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreatePostRequest true "Post data"
// @Success      201  {object}  entity.Post
// @Failure      422  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	post, err := h.postUseCase.CreatePost(userID, usecase.CreatePostInput{
		Title:       req.Title,
		Content:     req.Content,
		IsDraft:     *req.IsDraft,
		PublishedAt: req.PublishedAt,
	})
	if err != nil {
		h.logger.Error("Failed to create post: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GetPost godoc
// @Summary      Get a post
// @Description  Get a publicly visible post with its author. Drafts and scheduled posts return 404.
// @Tags         posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200  {object}  entity.Post
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postUseCase.GetPost(c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		h.logger.Error("Failed to get post: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// UpdatePost godoc
// @Summary      Update a post
// @Description  Update any subset of a post's fields. Only the owner may update.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body UpdatePostRequest true "Fields to update"
// @Success      200  {object}  entity.Post
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]interface{}
// @Router       /posts/{id} [put]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID := c.Param("id")
	userID := c.GetString("user_id")

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	// The min=1 tag does not catch a present-but-empty string behind a
	// pointer, validator skips it as empty
	fields := make(map[string]string)
	if req.Title != nil && *req.Title == "" {
		fields["title"] = "The title field is required"
	}
	if req.Content != nil && *req.Content == "" {
		fields["content"] = "The content field is required"
	}
	if len(fields) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid",
			"errors":  fields,
		})
		return
	}

	post, err := h.postUseCase.UpdatePost(postID, userID, usecase.UpdatePostInput{
		Title:       req.Title,
		Content:     req.Content,
		IsDraft:     req.IsDraft,
		PublishedAt: req.PublishedAt,
	})
	if err != nil {
		h.respondPostError(c, err, "Failed to update post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Permanently delete a post. Only the owner may delete. Redirects to the listing.
// @Tags         posts
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      302
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID := c.Param("id")
	userID := c.GetString("user_id")

	if err := h.postUseCase.DeletePost(postID, userID); err != nil {
		h.respondPostError(c, err, "Failed to delete post")
		return
	}

	c.Redirect(http.StatusFound, "/posts")
}

// UploadCover godoc
// @Summary      Upload a post cover image
// @Description  Attach a cover image (jpg/jpeg/png) to a post. Only the owner may upload.
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        cover formData file true "Cover image"
// @Success      200  {object}  entity.Post
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /posts/{id}/cover [post]
func (h *PostHandler) UploadCover(c *gin.Context) {
	postID := c.Param("id")
	userID := c.GetString("user_id")

	file, err := c.FormFile("cover")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cover image file is required"})
		return
	}

	ext := filepath.Ext(file.Filename)
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid image format. Only jpg, jpeg, png are allowed"})
		return
	}

	src, err := file.Open()
	if err != nil {
		h.logger.Error("Failed to open file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process file"})
		return
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	post, err := h.postUseCase.UploadCover(postID, userID, src, ext, contentType)
	if err != nil {
		h.respondPostError(c, err, "Failed to upload cover")
		return
	}

	c.JSON(http.StatusOK, post)
}

// ListOwnPosts godoc
// @Summary      List own posts
// @Description  Get the authenticated user's posts filtered by status (draft, scheduled or active)
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Post status (draft, scheduled, active)"
// @Param        limit  query int false "Number of posts to return (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  map[string]interface{}
// @Failure      422  {object}  map[string]string
// @Router       /me/posts [get]
func (h *PostHandler) ListOwnPosts(c *gin.Context) {
	userID := c.GetString("user_id")

	status := entity.Status(c.DefaultQuery("status", string(entity.StatusActive)))
	switch status {
	case entity.StatusDraft, entity.StatusScheduled, entity.StatusActive:
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Status must be one of: draft, scheduled, active"})
		return
	}

	limit := postsPerPage
	offset := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	posts, err := h.postUseCase.ListOwnPosts(userID, status, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list own posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts), "offset": offset})
}

// CreateForm is a legacy server-rendered form stub.
func (h *PostHandler) CreateForm(c *gin.Context) {
	c.String(http.StatusOK, "posts.create")
}

// EditForm is a legacy server-rendered form stub.
func (h *PostHandler) EditForm(c *gin.Context) {
	c.String(http.StatusOK, "posts.edit")
}

func (h *PostHandler) respondPostError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
	case errors.Is(err, usecase.ErrNotPostOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only modify your own posts"})
	default:
		h.logger.Error("%s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
