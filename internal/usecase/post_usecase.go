package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"inkwell/internal/entity"
	"inkwell/internal/repo/persistent"
	"inkwell/pkg/clock"
	"inkwell/pkg/logger"
	"inkwell/pkg/queue"
	"inkwell/pkg/s3"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const postsPerPage = 20

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotPostOwner = errors.New("you can only modify your own posts")
)

type CreatePostInput struct {
	Title       string
	Content     string
	IsDraft     bool
	PublishedAt *time.Time
}

// UpdatePostInput carries only the fields present in the request;
// nil means the field was not supplied.
type UpdatePostInput struct {
	Title       *string
	Content     *string
	IsDraft     *bool
	PublishedAt *time.Time
}

type PostUseCase interface {
	CreatePost(userID string, in CreatePostInput) (*entity.Post, error)
	GetPost(postID string) (*entity.Post, error)
	ListPosts(page int) ([]*entity.Post, int64, error)
	ListOwnPosts(userID string, status entity.Status, limit, offset int) ([]*entity.Post, error)
	UpdatePost(postID, userID string, in UpdatePostInput) (*entity.Post, error)
	DeletePost(postID, userID string) error
	UploadCover(postID, userID string, file io.Reader, ext, contentType string) (*entity.Post, error)
}

type postUseCase struct {
	postRepo    persistent.PostRepository
	s3Client    *s3.Client
	redisClient *redis.Client
	queueClient *queue.Client
	clock       clock.Clock
	logger      *logger.Logger
}

func NewPostUseCase(
	postRepo persistent.PostRepository,
	s3Client *s3.Client,
	redisClient *redis.Client,
	queueClient *queue.Client,
	clk clock.Clock,
	log *logger.Logger,
) PostUseCase {
	return &postUseCase{
		postRepo:    postRepo,
		s3Client:    s3Client,
		redisClient: redisClient,
		queueClient: queueClient,
		clock:       clk,
		logger:      log,
	}
}

func (uc *postUseCase) CreatePost(userID string, in CreatePostInput) (*entity.Post, error) {
	publishedAt := in.PublishedAt
	if !in.IsDraft && publishedAt == nil {
		// Publishing without a time means publish now
		now := uc.clock.Now()
		publishedAt = &now
	}

	post := &entity.Post{
		UserID:      userID,
		Title:       in.Title,
		Content:     in.Content,
		IsDraft:     in.IsDraft,
		PublishedAt: publishedAt,
	}

	if err := uc.postRepo.Create(post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	uc.cachePost(post)

	if post.VisibleAt(uc.clock.Now()) {
		uc.notifyPublished(post)
	}

	return post, nil
}

func (uc *postUseCase) GetPost(postID string) (*entity.Post, error) {
	post, err := uc.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, persistent.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	// Drafts and scheduled posts are hidden from direct access too
	if !post.VisibleAt(uc.clock.Now()) {
		return nil, ErrPostNotFound
	}

	uc.cachePost(post)

	return post, nil
}

func (uc *postUseCase) ListPosts(page int) ([]*entity.Post, int64, error) {
	if page < 1 {
		page = 1
	}
	now := uc.clock.Now()

	posts, err := uc.postRepo.ListActive("", now, postsPerPage, (page-1)*postsPerPage)
	if err != nil {
		return nil, 0, err
	}

	total, err := uc.postRepo.CountActive("", now)
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (uc *postUseCase) ListOwnPosts(userID string, status entity.Status, limit, offset int) ([]*entity.Post, error) {
	now := uc.clock.Now()

	switch status {
	case entity.StatusDraft:
		return uc.postRepo.ListDraft(userID, limit, offset)
	case entity.StatusScheduled:
		return uc.postRepo.ListScheduled(userID, now, limit, offset)
	case entity.StatusActive:
		return uc.postRepo.ListActive(userID, now, limit, offset)
	default:
		return nil, fmt.Errorf("unknown post status %q", status)
	}
}

func (uc *postUseCase) UpdatePost(postID, userID string, in UpdatePostInput) (*entity.Post, error) {
	post, err := uc.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, persistent.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if post.UserID != userID {
		return nil, ErrNotPostOwner
	}

	wasVisible := post.VisibleAt(uc.clock.Now())

	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.IsDraft != nil {
		post.IsDraft = *in.IsDraft
	}
	if in.PublishedAt != nil {
		post.PublishedAt = in.PublishedAt
	}

	// Same defaulting as create: publishing without a time publishes now
	if in.IsDraft != nil && !*in.IsDraft && in.PublishedAt == nil {
		now := uc.clock.Now()
		post.PublishedAt = &now
	}

	if err := uc.postRepo.Update(post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	uc.invalidateCache(postID)

	if !wasVisible && post.VisibleAt(uc.clock.Now()) {
		uc.notifyPublished(post)
	}

	return post, nil
}

func (uc *postUseCase) DeletePost(postID, userID string) error {
	post, err := uc.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, persistent.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if post.UserID != userID {
		return ErrNotPostOwner
	}

	if err := uc.postRepo.Delete(postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	uc.invalidateCache(postID)

	return nil
}

func (uc *postUseCase) UploadCover(postID, userID string, file io.Reader, ext, contentType string) (*entity.Post, error) {
	post, err := uc.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, persistent.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if post.UserID != userID {
		return nil, ErrNotPostOwner
	}

	if uc.s3Client == nil {
		return nil, fmt.Errorf("cover storage is not configured")
	}

	fileKey := fmt.Sprintf("covers/%s/%s%s", userID, uuid.New().String(), ext)
	coverURL, err := uc.s3Client.UploadFile(fileKey, file, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload cover: %w", err)
	}

	if post.CoverURL != "" {
		if oldKey := uc.s3Client.KeyFromURL(post.CoverURL); oldKey != "" {
			if err := uc.s3Client.DeleteFile(oldKey); err != nil {
				uc.logger.Warn("Failed to delete replaced cover %s: %v", oldKey, err)
			}
		}
	}

	post.CoverURL = coverURL
	if err := uc.postRepo.Update(post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	uc.invalidateCache(postID)

	return post, nil
}

func (uc *postUseCase) cachePost(post *entity.Post) {
	if uc.redisClient == nil {
		return
	}

	ctx := context.Background()
	postKey := fmt.Sprintf("post:%s", post.ID)
	postData := map[string]interface{}{
		"id":       post.ID,
		"user_id":  post.UserID,
		"title":    post.Title,
		"is_draft": post.IsDraft,
	}
	if post.PublishedAt != nil {
		postData["published_at"] = post.PublishedAt.Format(time.RFC3339)
	}

	for k, v := range postData {
		uc.redisClient.HSet(ctx, postKey, k, v)
	}
	uc.redisClient.Expire(ctx, postKey, 24*time.Hour)
}

func (uc *postUseCase) invalidateCache(postID string) {
	if uc.redisClient == nil {
		return
	}
	uc.redisClient.Del(context.Background(), fmt.Sprintf("post:%s", postID))
}

func (uc *postUseCase) notifyPublished(post *entity.Post) {
	if uc.queueClient == nil {
		return
	}

	event := map[string]interface{}{
		"type":    "post.published",
		"post_id": post.ID,
		"user_id": post.UserID,
	}
	if post.PublishedAt != nil {
		event["published_at"] = post.PublishedAt.Format(time.RFC3339)
	}

	go func() {
		if err := uc.queueClient.PublishPostEvent(event); err != nil {
			uc.logger.Error("Failed to publish post event: %v (post_id=%s)", err, post.ID)
		}
	}()
}
