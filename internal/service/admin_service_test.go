package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type analyticsRepoStub struct {
	metricsFn        func(context.Context) (*models.SiteMetrics, error)
	postsForExportFn func(context.Context) ([]*models.Post, error)
}

func (s *analyticsRepoStub) Metrics(ctx context.Context) (*models.SiteMetrics, error) {
	return s.metricsFn(ctx)
}
func (s *analyticsRepoStub) PostsForExport(ctx context.Context) ([]*models.Post, error) {
	return s.postsForExportFn(ctx)
}

func TestAdminService_Metrics(t *testing.T) {
	t.Parallel()

	repo := &analyticsRepoStub{
		metricsFn: func(_ context.Context) (*models.SiteMetrics, error) {
			return &models.SiteMetrics{TotalPosts: 3, PublishedPosts: 1}, nil
		},
	}
	svc := NewAdminService(repo)

	m, err := svc.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.TotalPosts)
	assert.Equal(t, int64(1), m.PublishedPosts)
}

func TestAdminService_Metrics_StoreError(t *testing.T) {
	t.Parallel()

	repo := &analyticsRepoStub{
		metricsFn: func(_ context.Context) (*models.SiteMetrics, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewAdminService(repo)

	_, err := svc.Metrics(context.Background())
	assertAppError(t, err, models.CodeStoreUnavailable)
}

func TestAdminService_ExportPostsCSV(t *testing.T) {
	t.Parallel()

	scheduledAt := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	repo := &analyticsRepoStub{
		postsForExportFn: func(_ context.Context) ([]*models.Post, error) {
			return []*models.Post{
				{
					ID:        1,
					Title:     "First",
					Status:    models.PostStatusPublished,
					Tags:      []string{"go", "blog"},
					Author:    models.User{Username: "alice"},
					CreatedAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
					UpdatedAt: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
				},
				{
					ID:          2,
					Title:       "Second, with comma",
					Status:      models.PostStatusScheduled,
					ScheduledAt: &scheduledAt,
					Tags:        []string{"drafts"},
					Author:      models.User{Username: "bob"},
				},
			}, nil
		},
	}
	svc := NewAdminService(repo)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportPostsCSV(context.Background(), &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"id", "title", "author", "status", "tags", "scheduled_at", "created_at", "updated_at"}, records[0])
	assert.Equal(t, "First", records[1][1])
	assert.Equal(t, "go;blog", records[1][4])
	assert.Equal(t, "", records[1][5])
	assert.Equal(t, "Second, with comma", records[2][1])
	assert.Equal(t, "2025-07-01T09:00:00Z", records[2][5])
}
