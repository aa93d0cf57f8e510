package persistent

import (
	"errors"
	"time"

	"inkwell/internal/entity"
	"inkwell/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type PostRepository interface {
	Create(post *entity.Post) error
	GetByID(id string) (*entity.Post, error)
	// ListActive returns publicly visible posts: is_draft = false and
	// published_at set and not after now. userID narrows to one author;
	// empty means all authors.
	ListActive(userID string, now time.Time, limit, offset int) ([]*entity.Post, error)
	CountActive(userID string, now time.Time) (int64, error)
	ListDraft(userID string, limit, offset int) ([]*entity.Post, error)
	ListScheduled(userID string, now time.Time, limit, offset int) ([]*entity.Post, error)
	Update(post *entity.Post) error
	Delete(id string) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *entity.Post) error {
	postModel := ToPostModel(post)
	if postModel.ID == "" {
		postModel.ID = uuid.New().String()
	}

	if err := r.db.Create(postModel).Error; err != nil {
		return err
	}

	*post = *ToPostEntity(postModel)
	return nil
}

func (r *postRepository) GetByID(id string) (*entity.Post, error) {
	var postModel model.PostModel
	if err := r.db.Preload("User").Where("id = ?", id).First(&postModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) activeScope(userID string, now time.Time) *gorm.DB {
	query := r.db.Model(&model.PostModel{}).
		Where("is_draft = ?", false).
		Where("published_at IS NOT NULL").
		Where("published_at <= ?", now)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	return query
}

func (r *postRepository) ListActive(userID string, now time.Time, limit, offset int) ([]*entity.Post, error) {
	query := r.activeScope(userID, now).Preload("User").Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var postModels []model.PostModel
	if err := query.Find(&postModels).Error; err != nil {
		return nil, err
	}
	return toPostEntities(postModels), nil
}

func (r *postRepository) CountActive(userID string, now time.Time) (int64, error) {
	var count int64
	err := r.activeScope(userID, now).Count(&count).Error
	return count, err
}

func (r *postRepository) ListDraft(userID string, limit, offset int) ([]*entity.Post, error) {
	query := r.db.Preload("User").Where("is_draft = ?", true).Order("created_at DESC")
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var postModels []model.PostModel
	if err := query.Find(&postModels).Error; err != nil {
		return nil, err
	}
	return toPostEntities(postModels), nil
}

func (r *postRepository) ListScheduled(userID string, now time.Time, limit, offset int) ([]*entity.Post, error) {
	query := r.db.Preload("User").
		Where("is_draft = ?", false).
		Where("published_at > ?", now).
		Order("created_at DESC")
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var postModels []model.PostModel
	if err := query.Find(&postModels).Error; err != nil {
		return nil, err
	}
	return toPostEntities(postModels), nil
}

func (r *postRepository) Update(post *entity.Post) error {
	postModel := ToPostModel(post)
	// Save writes all columns: last write wins on concurrent edits.
	if err := r.db.Save(postModel).Error; err != nil {
		return err
	}
	post.UpdatedAt = postModel.UpdatedAt
	return nil
}

func (r *postRepository) Delete(id string) error {
	return r.db.Delete(&model.PostModel{}, "id = ?", id).Error
}

func toPostEntities(postModels []model.PostModel) []*entity.Post {
	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		posts[i] = ToPostEntity(&postModels[i])
	}
	return posts
}
