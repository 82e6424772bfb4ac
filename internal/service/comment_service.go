package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/policy"
	"inkwell/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postService *PostService
}

type CreateCommentInput struct {
	Actor   *policy.Actor
	PostID  uint
	Content string
}

func NewCommentService(commentRepo repository.CommentRepository, postService *PostService) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postService: postService,
	}
}

// CreateComment adds a comment to a post the actor can see. Commenting on an
// invisible post fails the same way as commenting on a missing one.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Actor == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if _, err := s.postService.visiblePost(ctx, in.PostID, in.Actor); err != nil {
		return nil, err
	}

	const maxCommentLen = 10000

	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	comment := &models.Comment{
		Content:  in.Content,
		AuthorID: in.Actor.ID,
		PostID:   in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewStoreError(err)
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return created, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID uint, actor *policy.Actor) ([]*models.Comment, error) {
	if _, err := s.postService.visiblePost(ctx, postID, actor); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return comments, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, commentID uint, actor *policy.Actor) (*models.Comment, error) {
	if actor == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Comment", commentID)
		}
		return nil, models.NewStoreError(err)
	}

	if comment.AuthorID != actor.ID && !actor.IsAdmin() {
		return nil, models.NewForbiddenError("You can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return nil, models.NewStoreError(err)
	}

	return comment, nil
}
