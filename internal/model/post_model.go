package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostModel struct {
	ID          string     `gorm:"type:uuid;primary_key" json:"id"`
	UserID      string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	IsDraft     bool       `gorm:"not null;default:true;index:idx_posts_visibility" json:"is_draft"`
	PublishedAt *time.Time `gorm:"index:idx_posts_visibility" json:"published_at"`
	CoverURL    string     `gorm:"type:varchar(500)" json:"cover_url"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	User        *UserModel `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (PostModel) TableName() string {
	return "posts"
}

func (p *PostModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
