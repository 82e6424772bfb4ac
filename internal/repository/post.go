// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/policy"

	"gorm.io/gorm"
)

// ListPostsParams bundles pagination, filters, and the requesting actor for
// post listings. A nil Actor means an anonymous listing.
type ListPostsParams struct {
	Page   int
	Limit  int
	Search string
	Tag    string
	Actor  *policy.Actor
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	List(ctx context.Context, params ListPostsParams) ([]*models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	PublishDue(ctx context.Context, now time.Time) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post

	// Anonymous reads of published posts are the hot path and safe to cache:
	// published is terminal, so a cached copy can only go stale on edit or
	// delete, both of which invalidate the key.
	if currentUserID == 0 {
		key := cache.PostKey(id)
		if found, err := cache.GetJSON(ctx, key, &post); err == nil && found {
			return &post, nil
		}
		if err := r.fetchByID(ctx, &post, id, 0); err != nil {
			return nil, err
		}
		if post.Status == models.PostStatusPublished {
			_ = cache.SetJSON(ctx, key, &post, cache.PostTTL)
		}
		return &post, nil
	}

	if err := r.fetchByID(ctx, &post, id, currentUserID); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) fetchByID(ctx context.Context, post *models.Post, id, currentUserID uint) error {
	return r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Comments.Author").
		First(post, id).Error
}

func (r *postRepository) List(ctx context.Context, params ListPostsParams) ([]*models.Post, int64, error) {
	// Total counts every visible match, independent of the requested page.
	var total int64
	countQuery := r.applyFilters(r.db.WithContext(ctx).Model(&models.Post{}), params)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (params.Page - 1) * params.Limit

	var posts []*models.Post
	query := r.applyFilters(r.applyPostDetails(r.db.WithContext(ctx), actorID(params.Actor)), params).
		Preload("Author").
		Order("posts.created_at DESC").
		Limit(params.Limit).
		Offset(offset)
	if err := query.Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func actorID(actor *policy.Actor) uint {
	if actor == nil {
		return 0
	}
	return actor.ID
}

// applyFilters scopes the query to what the actor may see, plus the optional
// search and tag filters. Admins see everything; users see published posts
// and their own; anonymous readers see published only.
func (r *postRepository) applyFilters(db *gorm.DB, params ListPostsParams) *gorm.DB {
	switch {
	case params.Actor == nil:
		db = db.Where("posts.status = ?", models.PostStatusPublished)
	case params.Actor.IsAdmin():
		// no visibility filter
	default:
		db = db.Where("posts.status = ? OR posts.author_id = ?", models.PostStatusPublished, params.Actor.ID)
	}

	if q := strings.TrimSpace(params.Search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ?", like, like)
	}
	if params.Tag != "" {
		db = db.Where("? = ANY(posts.tags)", params.Tag)
	}
	return db
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// Delete removes the post and its dependents in one transaction. Likes and
// comments go first so a failure partway never leaves orphaned rows visible.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	// Use INSERT ... ON CONFLICT DO NOTHING to handle race conditions
	// This is atomic and prevents duplicate key errors
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, post_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID, time.Now(),
	)
	if result.Error == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return result.Error
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{}).Error
	if err == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return err
}

// PublishDue promotes every scheduled post whose publish time has passed in a
// single conditional UPDATE. The WHERE clause makes it safe to run from any
// number of concurrent sweeps: a row is promoted exactly once and the
// returned count only reflects rows this call changed.
func (r *postRepository) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", models.PostStatusScheduled, now).
		Updates(map[string]interface{}{
			"status":     models.PostStatusPublished,
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// IsNotFound reports whether err is GORM's record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
