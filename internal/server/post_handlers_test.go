package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGetPosts_Anonymous(t *testing.T) {
	_, app, m := newTestServer(t)

	// The listing path sweeps due posts before querying.
	m.posts.On("PublishDue", mock.Anything, mock.Anything).Return(int64(0), nil)
	m.posts.On("List", mock.Anything, mock.MatchedBy(func(p repository.ListPostsParams) bool {
		return p.Actor == nil && p.Page == 1 && p.Limit == 10
	})).Return([]*models.Post{
		{ID: 1, Title: "Hello", Status: models.PostStatusPublished},
	}, int64(1), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Total int64          `json:"total"`
		Page  int            `json:"page"`
		Limit int            `json:"limit"`
		Posts []*models.Post `json:"posts"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(1), body.Total)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 10, body.Limit)
	require.Len(t, body.Posts, 1)
	assert.Equal(t, "Hello", body.Posts[0].Title)

	m.posts.AssertCalled(t, "PublishDue", mock.Anything, mock.Anything)
}

func TestGetPost(t *testing.T) {
	draft := &models.Post{ID: 5, Title: "WIP", Status: models.PostStatusDraft, AuthorID: 1}
	published := &models.Post{ID: 6, Title: "Live", Status: models.PostStatusPublished, AuthorID: 1}

	tests := []struct {
		name           string
		target         string
		asUser         uint // 0 = anonymous
		mockSetup      func(m *serverMocks)
		expectedStatus int
	}{
		{
			name:   "Published Anonymous",
			target: "/api/posts/6",
			mockSetup: func(m *serverMocks) {
				m.posts.On("GetByID", mock.Anything, uint(6), uint(0)).Return(published, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Missing",
			target: "/api/posts/99",
			mockSetup: func(m *serverMocks) {
				m.posts.On("GetByID", mock.Anything, uint(99), uint(0)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "Draft Hidden From Anonymous",
			target: "/api/posts/5",
			mockSetup: func(m *serverMocks) {
				m.posts.On("GetByID", mock.Anything, uint(5), uint(0)).Return(draft, nil)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "Draft Visible To Owner",
			target: "/api/posts/5",
			asUser: 1,
			mockSetup: func(m *serverMocks) {
				mockUser(m, 1, "alice", models.RoleUser)
				m.posts.On("GetByID", mock.Anything, uint(5), uint(1)).Return(draft, nil)
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, app, m := newTestServer(t)
			tt.mockSetup(m)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.asUser != 0 {
				req.Header.Set("Authorization", bearer(t, s, tt.asUser))
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestCreatePost(t *testing.T) {
	future := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)

	tests := []struct {
		name           string
		body           map[string]any
		mockSetup      func(m *serverMocks)
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]any{
				"title":   "New Post",
				"content": "Hello world",
				"tags":    []string{"go", "blog"},
			},
			mockSetup: func(m *serverMocks) {
				m.posts.On("Create", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
					args.Get(1).(*models.Post).ID = 1
				})
				m.posts.On("GetByID", mock.Anything, uint(1), uint(1)).
					Return(&models.Post{ID: 1, Title: "New Post", Status: models.PostStatusDraft}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Future Time Forces Scheduled",
			body: map[string]any{
				"title":        "Later",
				"content":      "Patience",
				"tags":         []string{"go", "blog"},
				"scheduled_at": future,
			},
			mockSetup: func(m *serverMocks) {
				m.posts.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
					return p.Status == models.PostStatusScheduled
				})).Return(nil).Run(func(args mock.Arguments) {
					args.Get(1).(*models.Post).ID = 2
				})
				m.posts.On("GetByID", mock.Anything, uint(2), uint(1)).
					Return(&models.Post{ID: 2, Status: models.PostStatusScheduled}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Missing Content",
			body: map[string]any{
				"title": "Empty",
				"tags":  []string{"go", "blog"},
			},
			mockSetup:      func(m *serverMocks) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Too Few Tags",
			body: map[string]any{
				"title":   "New Post",
				"content": "Hello world",
				"tags":    []string{"go"},
			},
			mockSetup:      func(m *serverMocks) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, app, m := newTestServer(t)
			mockUser(m, 1, "alice", models.RoleUser)
			tt.mockSetup(m)

			req := postJSON(t, "/api/posts", tt.body)
			req.Header.Set("Authorization", bearer(t, s, 1))
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestCreatePost_RequiresAuth(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp, err := app.Test(postJSON(t, "/api/posts", map[string]any{"title": "x"}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpdatePost_ExplicitNullClearsSchedule(t *testing.T) {
	s, app, m := newTestServer(t)
	mockUser(m, 1, "alice", models.RoleUser)

	future := time.Now().Add(24 * time.Hour)
	scheduled := &models.Post{
		ID:          5,
		Title:       "Later",
		Content:     "Patience",
		Tags:        []string{"go", "blog"},
		Status:      models.PostStatusScheduled,
		ScheduledAt: &future,
		AuthorID:    1,
	}
	m.posts.On("GetByID", mock.Anything, uint(5), uint(1)).Return(scheduled, nil)
	m.posts.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.Status == models.PostStatusDraft && p.ScheduledAt == nil
	})).Return(nil)

	body := []byte(`{"status":"draft","scheduled_at":null}`)
	req := httptest.NewRequest(http.MethodPut, "/api/posts/5", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, s, 1))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	m.posts.AssertExpectations(t)
}

func TestUpdatePost_OmittedScheduleLeftAlone(t *testing.T) {
	s, app, m := newTestServer(t)
	mockUser(m, 1, "alice", models.RoleUser)

	future := time.Now().Add(24 * time.Hour)
	scheduled := &models.Post{
		ID:          5,
		Title:       "Later",
		Content:     "Patience",
		Tags:        []string{"go", "blog"},
		Status:      models.PostStatusScheduled,
		ScheduledAt: &future,
		AuthorID:    1,
	}
	m.posts.On("GetByID", mock.Anything, uint(5), uint(1)).Return(scheduled, nil)
	m.posts.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.Status == models.PostStatusScheduled && p.ScheduledAt != nil
	})).Return(nil)

	body := []byte(`{"title":"Later still"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/posts/5", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, s, 1))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	m.posts.AssertExpectations(t)
}

func TestUpdatePost_ForbiddenForNonOwner(t *testing.T) {
	s, app, m := newTestServer(t)
	mockUser(m, 2, "bob", models.RoleUser)

	published := &models.Post{ID: 6, Title: "Live", Content: "x", Status: models.PostStatusPublished, AuthorID: 1}
	m.posts.On("GetByID", mock.Anything, uint(6), uint(2)).Return(published, nil)

	req := jsonRequest(t, http.MethodPut, "/api/posts/6", map[string]any{"title": "Hijacked"})
	req.Header.Set("Authorization", bearer(t, s, 2))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPublishPostNow(t *testing.T) {
	s, app, m := newTestServer(t)
	mockUser(m, 1, "alice", models.RoleUser)

	draft := &models.Post{ID: 5, Title: "WIP", Content: "x", Tags: []string{"go", "blog"}, Status: models.PostStatusDraft, AuthorID: 1}
	m.posts.On("GetByID", mock.Anything, uint(5), uint(1)).Return(draft, nil)
	m.posts.On("Update", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.Status == models.PostStatusPublished
	})).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/posts/5/publish", nil)
	req.Header.Set("Authorization", bearer(t, s, 1))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	m.posts.AssertExpectations(t)
}

func TestDeletePost(t *testing.T) {
	s, app, m := newTestServer(t)
	mockUser(m, 1, "alice", models.RoleUser)

	published := &models.Post{ID: 6, Status: models.PostStatusPublished, AuthorID: 1}
	m.posts.On("GetByID", mock.Anything, uint(6), uint(1)).Return(published, nil)
	m.posts.On("Delete", mock.Anything, uint(6)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/posts/6", nil)
	req.Header.Set("Authorization", bearer(t, s, 1))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	m.posts.AssertCalled(t, "Delete", mock.Anything, uint(6))
}

func TestLikePost(t *testing.T) {
	s, app, m := newTestServer(t)
	mockUser(m, 2, "bob", models.RoleUser)

	published := &models.Post{ID: 6, Status: models.PostStatusPublished, AuthorID: 1}
	m.posts.On("GetByID", mock.Anything, uint(6), uint(2)).Return(published, nil)
	m.posts.On("Like", mock.Anything, uint(2), uint(6)).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/posts/6/like", nil)
	req.Header.Set("Authorization", bearer(t, s, 2))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	m.posts.AssertCalled(t, "Like", mock.Anything, uint(2), uint(6))
}
