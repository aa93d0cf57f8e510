package entity

import "time"

// Status is the visibility classification of a post. It is never stored;
// it is derived from is_draft and published_at against a given instant.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
)

type Post struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	IsDraft     bool       `json:"is_draft"`
	PublishedAt *time.Time `json:"published_at"`
	CoverURL    string     `json:"cover_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	User        *User      `json:"user,omitempty"`
}

// StatusAt classifies the post at the given instant. A non-draft post
// without a publish time is treated as a draft: it has not been published.
func (p *Post) StatusAt(now time.Time) Status {
	if p.IsDraft || p.PublishedAt == nil {
		return StatusDraft
	}
	if p.PublishedAt.After(now) {
		return StatusScheduled
	}
	return StatusActive
}

// VisibleAt reports whether the post is publicly visible at the given
// instant. Only active posts are visible.
func (p *Post) VisibleAt(now time.Time) bool {
	return p.StatusAt(now) == StatusActive
}
