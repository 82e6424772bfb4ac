package server

import (
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/policy"
	"inkwell/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	actor, err := s.requiredActor(c)
	if err != nil {
		return nil
	}

	user, svcErr := s.userService.GetUserByID(ctx, actor.ID)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	actor, err := s.requiredActor(c)
	if err != nil {
		return nil
	}

	var req struct {
		Username  string `json:"username" validate:"omitempty,min=3,max=30"`
		AvatarURL string `json:"avatar_url" validate:"omitempty,url,max=500"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validate.Struct(req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid profile fields: "+err.Error()))
	}

	user, svcErr := s.userService.UpdateProfile(ctx, service.UpdateProfileInput{
		UserID:    actor.ID,
		Username:  req.Username,
		AvatarURL: req.AvatarURL,
	})
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	return c.JSON(user)
}

// GetAllUsers handles GET /api/users
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 20)

	users, err := s.userService.ListUsers(ctx, page.Limit, (page.Page-1)*page.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, svcErr := s.userService.GetUserByID(ctx, id)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	return c.JSON(user)
}

// GetUserPosts handles GET /api/users/:id/posts. Unpublished posts are
// stripped unless the requester is the profile owner or an admin.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePagination(c, 10)
	actor := s.optionalActor(c)

	// Profile listings honor the same staleness contract as the main feed:
	// an overdue scheduled post is promoted before the read.
	s.publisher.SweepQuietly(ctx, observability.SweepTriggerList)

	user, svcErr := s.userRepo.GetByIDWithPosts(ctx, id, page.Limit)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	visible := make([]models.Post, 0, len(user.Posts))
	for i := range user.Posts {
		if policy.Visible(&user.Posts[i], actor) {
			visible = append(visible, user.Posts[i])
		}
	}

	return c.JSON(visible)
}
