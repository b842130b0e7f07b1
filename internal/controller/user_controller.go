package controller

import (
	"tourism-chat-be/internal/pkg/apperr"
	"tourism-chat-be/internal/pkg/serverutils"
	"tourism-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	GetStats(ctx *fiber.Ctx) error
}

type userController struct {
	userService service.IUserService
}

func NewUserController(userService service.IUserService) IUserController {
	return &userController{
		userService: userService,
	}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/users/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/stats", c.GetStats)
}

func (c *userController) GetStats(ctx *fiber.Ctx) error {
	raw, ok := ctx.Locals(serverutils.LocalUserId).(string)
	if !ok {
		return apperr.Unauthenticated("Authentication required")
	}
	userId, err := uuid.Parse(raw)
	if err != nil {
		return apperr.Unauthenticated("Invalid token subject")
	}

	stats, err := c.userService.GetStats(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"stats": stats})
}
