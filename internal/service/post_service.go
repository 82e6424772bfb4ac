package service

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/lifecycle"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/policy"
	"inkwell/internal/repository"
)

// Sweeper is the slice of the publisher the post service needs for
// opportunistic promotion before listings.
type Sweeper interface {
	SweepQuietly(ctx context.Context, trigger string)
}

type PostService struct {
	postRepo repository.PostRepository
	sweeper  Sweeper

	// now is swappable for tests.
	now func() time.Time
}

type CreatePostInput struct {
	Actor       *policy.Actor
	Title       string
	Description string
	Content     string
	CoverImage  string
	Tags        []string
	Status      models.PostStatus
	ScheduledAt *time.Time
}

type ListPostsInput struct {
	Page   int
	Limit  int
	Search string
	Tag    string
	Actor  *policy.Actor
}

// UpdatePostInput carries a partial update. Nil pointers mean "leave alone";
// a non-nil pointer to a zero value clears the field. ScheduledAtSet
// distinguishes an omitted scheduled_at from an explicit null.
type UpdatePostInput struct {
	Actor          *policy.Actor
	PostID         uint
	Title          *string
	Description    *string
	Content        *string
	CoverImage     *string
	Tags           *[]string
	Status         *models.PostStatus
	ScheduledAt    *time.Time
	ScheduledAtSet bool
}

const (
	maxTitleLen   = 300
	maxContentLen = 50000 // 50K characters
	minTags       = 2
)

func NewPostService(postRepo repository.PostRepository, sweeper Sweeper) *PostService {
	return &PostService{
		postRepo: postRepo,
		sweeper:  sweeper,
		now:      time.Now,
	}
}

// normalizeTags trims whitespace and drops empty entries. Duplicates are kept
// as given.
func normalizeTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		if t := strings.TrimSpace(tag); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func validateTags(tags []string) error {
	if len(tags) < minTags {
		return models.NewValidationError("Posts require at least two tags")
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Actor == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}
	tags := normalizeTags(in.Tags)
	if err := validateTags(tags); err != nil {
		return nil, err
	}
	if in.Status != "" && !models.ValidStatus(in.Status) {
		return nil, models.NewValidationError("Invalid status")
	}

	now := s.now()
	status := lifecycle.StatusForCreate(in.Status, in.ScheduledAt, now)

	// A scheduled post without a future time would never fire; reject it
	// whether the status was requested outright or resolved.
	if status == models.PostStatusScheduled && (in.ScheduledAt == nil || !in.ScheduledAt.After(now)) {
		return nil, models.NewValidationError("Scheduled posts require a future scheduled_at")
	}

	post := &models.Post{
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		CoverImage:  in.CoverImage,
		Tags:        tags,
		Status:      status,
		ScheduledAt: in.ScheduledAt,
		AuthorID:    in.Actor.ID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewStoreError(err)
	}

	return s.refetch(ctx, post.ID, in.Actor.ID)
}

// refetch reloads a post after a write so callers see fresh computed fields.
// Store failures here are as transient as on the write itself.
func (s *PostService) refetch(ctx context.Context, id, actorID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, actorID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewStoreError(err)
	}
	return post, nil
}

// ListPosts sweeps due posts first so an overdue scheduled post shows up in
// the very listing that follows, then returns the visible page and the total
// match count.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, int64, error) {
	if s.sweeper != nil {
		s.sweeper.SweepQuietly(ctx, observability.SweepTriggerList)
	}

	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = 10
	}
	if in.Limit > 100 {
		in.Limit = 100
	}

	posts, total, err := s.postRepo.List(ctx, repository.ListPostsParams{
		Page:   in.Page,
		Limit:  in.Limit,
		Search: in.Search,
		Tag:    in.Tag,
		Actor:  in.Actor,
	})
	if err != nil {
		return nil, 0, models.NewStoreError(err)
	}
	return posts, total, nil
}

// GetPost returns the post if the actor may see it. A post that exists but is
// not visible yields the same not-found error as a missing one.
func (s *PostService) GetPost(ctx context.Context, id uint, actor *policy.Actor) (*models.Post, error) {
	return s.visiblePost(ctx, id, actor)
}

func (s *PostService) visiblePost(ctx context.Context, id uint, actor *policy.Actor) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, actorID(actor))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewStoreError(err)
	}
	if !policy.Visible(post, actor) {
		return nil, models.NewNotFoundError("Post", id)
	}
	return post, nil
}

func actorID(actor *policy.Actor) uint {
	if actor == nil {
		return 0
	}
	return actor.ID
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.Actor == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	post, err := s.visiblePost(ctx, in.PostID, in.Actor)
	if err != nil {
		return nil, err
	}
	if !policy.CanModify(post, in.Actor) {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, models.NewValidationError("Title is required")
		}
		if len(*in.Title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 300 characters)")
		}
		post.Title = *in.Title
	}
	if in.Description != nil {
		post.Description = *in.Description
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, models.NewValidationError("Content is required")
		}
		if len(*in.Content) > maxContentLen {
			return nil, models.NewValidationError("Content too long (max 50000 characters)")
		}
		post.Content = *in.Content
	}
	if in.CoverImage != nil {
		post.CoverImage = *in.CoverImage
	}
	if in.Tags != nil {
		tags := normalizeTags(*in.Tags)
		if err := validateTags(tags); err != nil {
			return nil, err
		}
		post.Tags = tags
	}
	if in.Status != nil && !models.ValidStatus(*in.Status) {
		return nil, models.NewValidationError("Invalid status")
	}

	now := s.now()
	currentStatus := post.Status
	scheduledAt := post.ScheduledAt
	scheduledChanged := false
	if in.ScheduledAtSet && !timesEqual(post.ScheduledAt, in.ScheduledAt) {
		scheduledAt = in.ScheduledAt
		scheduledChanged = true
	}

	status := lifecycle.StatusForUpdate(currentStatus, in.Status, scheduledAt, scheduledChanged, now)

	if in.Status != nil && *in.Status == models.PostStatusScheduled && status == models.PostStatusScheduled {
		if scheduledAt == nil || !scheduledAt.After(now) {
			return nil, models.NewValidationError("Scheduled posts require a future scheduled_at")
		}
	}
	// Clearing the time on a scheduled post without picking a new status
	// would strand it in a state the publisher can never act on.
	if status == models.PostStatusScheduled && scheduledAt == nil {
		return nil, models.NewValidationError("Scheduled posts require a scheduled_at")
	}

	post.Status = status
	post.ScheduledAt = scheduledAt
	post.UpdatedBy = &in.Actor.Name

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.NewStoreError(err)
	}
	return s.refetch(ctx, post.ID, in.Actor.ID)
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (s *PostService) DeletePost(ctx context.Context, postID uint, actor *policy.Actor) error {
	if actor == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	post, err := s.visiblePost(ctx, postID, actor)
	if err != nil {
		return err
	}
	if !policy.CanModify(post, actor) {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return models.NewStoreError(err)
	}
	return nil
}

// LikePost records the actor's like. Liking an already liked post is a no-op
// and still succeeds.
func (s *PostService) LikePost(ctx context.Context, postID uint, actor *policy.Actor) (*models.Post, error) {
	if actor == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if _, err := s.visiblePost(ctx, postID, actor); err != nil {
		return nil, err
	}
	if err := s.postRepo.Like(ctx, actor.ID, postID); err != nil {
		return nil, models.NewStoreError(err)
	}
	return s.refetch(ctx, postID, actor.ID)
}

// UnlikePost removes the actor's like if present.
func (s *PostService) UnlikePost(ctx context.Context, postID uint, actor *policy.Actor) (*models.Post, error) {
	if actor == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if _, err := s.visiblePost(ctx, postID, actor); err != nil {
		return nil, err
	}
	if err := s.postRepo.Unlike(ctx, actor.ID, postID); err != nil {
		return nil, models.NewStoreError(err)
	}
	return s.refetch(ctx, postID, actor.ID)
}
