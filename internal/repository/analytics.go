package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// AnalyticsRepository aggregates counts for the admin dashboard and export.
type AnalyticsRepository interface {
	Metrics(ctx context.Context) (*models.SiteMetrics, error)
	PostsForExport(ctx context.Context) ([]*models.Post, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository returns a new AnalyticsRepository implementation.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) Metrics(ctx context.Context) (*models.SiteMetrics, error) {
	db := r.db.WithContext(ctx)
	var m models.SiteMetrics

	if err := db.Model(&models.User{}).Count(&m.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Post{}).Count(&m.TotalPosts).Error; err != nil {
		return nil, err
	}
	statusCounts := []struct {
		status models.PostStatus
		dest   *int64
	}{
		{models.PostStatusDraft, &m.DraftPosts},
		{models.PostStatusScheduled, &m.ScheduledPosts},
		{models.PostStatusPublished, &m.PublishedPosts},
	}
	for _, sc := range statusCounts {
		if err := db.Model(&models.Post{}).Where("status = ?", sc.status).Count(sc.dest).Error; err != nil {
			return nil, err
		}
	}
	if err := db.Model(&models.Comment{}).Count(&m.TotalComments).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Like{}).Count(&m.TotalLikes).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *analyticsRepository) PostsForExport(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at ASC").
		Find(&posts).Error
	return posts, err
}
