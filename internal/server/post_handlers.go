package server

import (
	"encoding/json"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postBody is the shared request shape for create and update. Pointer fields
// let updates distinguish an omitted field from an explicit zero value.
type postBody struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Content     *string            `json:"content"`
	CoverImage  *string            `json:"cover_image"`
	Tags        *[]string          `json:"tags"`
	Status      *models.PostStatus `json:"status"`
	ScheduledAt *time.Time         `json:"scheduled_at"`
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	actor, err := s.requiredActor(c)
	if err != nil {
		return nil
	}

	var req postBody
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.CreatePostInput{
		Actor:       actor,
		Title:       strOrEmpty(req.Title),
		Description: strOrEmpty(req.Description),
		Content:     strOrEmpty(req.Content),
		CoverImage:  strOrEmpty(req.CoverImage),
		ScheduledAt: req.ScheduledAt,
	}
	if req.Tags != nil {
		in.Tags = *req.Tags
	}
	if req.Status != nil {
		in.Status = *req.Status
	}

	post, svcErr := s.postService.CreatePost(ctx, in)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 10)
	actor := s.optionalActor(c)

	posts, total, err := s.postService.ListPosts(ctx, service.ListPostsInput{
		Page:   page.Page,
		Limit:  page.Limit,
		Search: c.Query("search"),
		Tag:    c.Query("tag"),
		Actor:  actor,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"total": total,
		"page":  page.Page,
		"limit": page.Limit,
		"posts": posts,
	})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor := s.optionalActor(c)

	post, svcErr := s.postService.GetPost(ctx, id, actor)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	actor, err := s.requiredActor(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req postBody
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	// BodyParser cannot tell "scheduled_at": null from an absent key; both
	// leave the pointer nil. Peek at the raw keys so an explicit null clears
	// the schedule while omission leaves it untouched.
	var rawKeys map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &rawKeys); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	_, scheduledAtSet := rawKeys["scheduled_at"]

	post, svcErr := s.postService.UpdatePost(ctx, service.UpdatePostInput{
		Actor:          actor,
		PostID:         postID,
		Title:          req.Title,
		Description:    req.Description,
		Content:        req.Content,
		CoverImage:     req.CoverImage,
		Tags:           req.Tags,
		Status:         req.Status,
		ScheduledAt:    req.ScheduledAt,
		ScheduledAtSet: scheduledAtSet,
	})
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	return c.JSON(post)
}

// PublishPostNow handles POST /api/posts/:id/publish. It moves a draft or
// scheduled post straight to published without waiting for the sweep.
func (s *Server) PublishPostNow(c *fiber.Ctx) error {
	ctx := c.Context()
	actor, err := s.requiredActor(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	published := models.PostStatusPublished
	post, svcErr := s.postService.UpdatePost(ctx, service.UpdatePostInput{
		Actor:  actor,
		PostID: postID,
		Status: &published,
	})
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	actor, err := s.requiredActor(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if svcErr := s.postService.DeletePost(ctx, postID, actor); svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	ctx := c.Context()
	actor, err := s.requiredActor(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, svcErr := s.postService.LikePost(ctx, postID, actor)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	return c.JSON(post)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	ctx := c.Context()
	actor, err := s.requiredActor(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, svcErr := s.postService.UnlikePost(ctx, postID, actor)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	return c.JSON(post)
}
