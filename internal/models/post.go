// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/lib/pq"
)

// PostStatus is the lifecycle state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPublished PostStatus = "published"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s PostStatus) bool {
	switch s {
	case PostStatusDraft, PostStatusScheduled, PostStatusPublished:
		return true
	}
	return false
}

// Post represents an authored post on the Inkwell platform.
//
// Invariant: Status == scheduled implies ScheduledAt is non-nil (and was in
// the future when the status was set). Published posts carry no constraint
// on ScheduledAt since a post may be published directly.
type Post struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null;index" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	CoverImage  string         `json:"cover_image"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	Status      PostStatus     `gorm:"type:varchar(16);not null;default:'draft';index:idx_posts_due,priority:1" json:"status"`
	ScheduledAt *time.Time     `gorm:"index:idx_posts_due,priority:2" json:"scheduled_at,omitempty"`
	AuthorID    uint           `gorm:"not null;index" json:"author_id"`
	Author      User           `gorm:"foreignKey:AuthorID" json:"author"`
	// UpdatedBy holds the display name of the last actor that edited the post.
	UpdatedBy *string `json:"updated_by,omitempty"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool      `gorm:"->" json:"liked"`
	Comments  []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
