package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// AdminService serves the admin dashboard: site-wide metrics and the post
// export.
type AdminService struct {
	analyticsRepo repository.AnalyticsRepository
}

func NewAdminService(analyticsRepo repository.AnalyticsRepository) *AdminService {
	return &AdminService{analyticsRepo: analyticsRepo}
}

// Metrics returns the dashboard counts, cached briefly since every admin page
// load asks for them.
func (s *AdminService) Metrics(ctx context.Context) (*models.SiteMetrics, error) {
	var metrics models.SiteMetrics
	err := cache.Aside(ctx, cache.MetricsKey, &metrics, cache.MetricsTTL, func() error {
		m, err := s.analyticsRepo.Metrics(ctx)
		if err != nil {
			return models.NewStoreError(err)
		}
		metrics = *m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &metrics, nil
}

// ExportPostsCSV streams every post as CSV rows to w.
func (s *AdminService) ExportPostsCSV(ctx context.Context, w io.Writer) error {
	posts, err := s.analyticsRepo.PostsForExport(ctx)
	if err != nil {
		return models.NewStoreError(err)
	}

	cw := csv.NewWriter(w)
	header := []string{"id", "title", "author", "status", "tags", "scheduled_at", "created_at", "updated_at"}
	if err := cw.Write(header); err != nil {
		return models.NewInternalError(err)
	}

	for _, p := range posts {
		scheduledAt := ""
		if p.ScheduledAt != nil {
			scheduledAt = p.ScheduledAt.Format(time.RFC3339)
		}
		row := []string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.Title,
			p.Author.Username,
			string(p.Status),
			strings.Join(p.Tags, ";"),
			scheduledAt,
			p.CreatedAt.Format(time.RFC3339),
			p.UpdatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return models.NewInternalError(err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
