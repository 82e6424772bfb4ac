package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{Title: "Test Post", Content: "Content", AuthorID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, post)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_PublishDue(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "status"=$1,"updated_at"=$2 WHERE status = $3 AND scheduled_at IS NOT NULL AND scheduled_at <= $4`)).
		WithArgs(models.PostStatusPublished, now, models.PostStatusScheduled, now).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	promoted, err := repo.PublishDue(ctx, now)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), promoted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_PublishDue_NothingDue(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	promoted, err := repo.PublishDue(context.Background(), now)
	assert.NoError(t, err)
	assert.Zero(t, promoted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Like_UpsertIgnoresConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	// Raw Exec is not wrapped in GORM's default transaction.
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO likes (user_id, post_id, created_at)`)).
		WithArgs(uint(2), uint(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Like(context.Background(), 2, 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_List_TagFilterUsesArrayContainment(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	// Count query first, then the page query with details and Author preload.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE posts\.status = \$1 AND \$2 = ANY\(posts\.tags\)`).
		WithArgs(models.PostStatusPublished, "go").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(`SELECT posts\.\*, .+ FROM "posts" WHERE posts\.status = \$1 AND \$2 = ANY\(posts\.tags\) ORDER BY posts\.created_at DESC LIMIT \$3`).
		WithArgs(models.PostStatusPublished, "go", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "author_id", "likes_count", "comments_count", "liked"}).
			AddRow(1, "Tagged", 4, 2, 1, false))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(4, "author"))

	posts, total, err := repo.List(context.Background(), ListPostsParams{
		Page:  1,
		Limit: 10,
		Tag:   "go",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	if assert.Len(t, posts, 1) {
		assert.Equal(t, "Tagged", posts[0].Title)
		assert.Equal(t, 2, posts[0].LikesCount)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
