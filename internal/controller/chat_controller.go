package controller

import (
	"regexp"

	"tourism-chat-be/internal/dto"
	"tourism-chat-be/internal/pkg/apperr"
	"tourism-chat-be/internal/pkg/serverutils"
	"tourism-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// shareIdPattern bounds what reaches the share-token lookup. Tokens are
// hex today but older links may carry url-safe base64 characters.
var shareIdPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	CreateForAI(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	GetShared(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	AddMessage(ctx *fiber.Ctx) error
	AddBatch(ctx *fiber.Ctx) error
	AddBatchForAI(ctx *fiber.Ctx) error
	Share(ctx *fiber.Ctx) error
	Unshare(ctx *fiber.Ctx) error
}

type chatController struct {
	sessionService service.IChatSessionService
	messageService service.IChatMessageService
	shareService   service.IChatShareService
}

func NewChatController(
	sessionService service.IChatSessionService,
	messageService service.IChatMessageService,
	shareService service.IChatShareService,
) IChatController {
	return &chatController{
		sessionService: sessionService,
		messageService: messageService,
		shareService:   shareService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")

	// Fixed-segment routes must register before the :sessionId wildcards.
	h.Get("/shared/:shareId", c.GetShared)
	h.Post("/ai/create", serverutils.AIBackendMiddleware, c.CreateForAI)

	h.Post("", serverutils.JwtMiddleware, c.Create)
	h.Get("", serverutils.JwtMiddleware, c.List)

	h.Get("/:sessionId", serverutils.OptionalJwtMiddleware, c.Get)
	h.Put("/:sessionId", serverutils.JwtMiddleware, c.Update)
	h.Delete("/:sessionId", serverutils.JwtMiddleware, c.Delete)

	h.Post("/:sessionId/messages", serverutils.JwtMiddleware, c.AddMessage)
	h.Post("/:sessionId/messages/batch", serverutils.JwtMiddleware, c.AddBatch)
	h.Post("/:sessionId/messages/ai/batch", serverutils.AIBackendMiddleware, c.AddBatchForAI)

	h.Post("/:sessionId/share", serverutils.JwtMiddleware, c.Share)
	h.Delete("/:sessionId/share", serverutils.JwtMiddleware, c.Unshare)
}

func requireUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := ctx.Locals(serverutils.LocalUserId).(string)
	if !ok {
		return uuid.Nil, apperr.Unauthenticated("Authentication required")
	}
	userId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Unauthenticated("Invalid token subject")
	}
	return userId, nil
}

func optionalUserId(ctx *fiber.Ctx) *uuid.UUID {
	raw, ok := ctx.Locals(serverutils.LocalUserId).(string)
	if !ok {
		return nil
	}
	userId, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &userId
}

func (c *chatController) Create(ctx *fiber.Ctx) error {
	userId, err := requireUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateChatSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperr.InvalidInput("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).
		JSON(serverutils.NotificationWith("Chat session created", fiber.Map{"session": res}))
}

func (c *chatController) CreateForAI(ctx *fiber.Ctx) error {
	var req dto.CreateChatSessionForAIRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperr.InvalidInput("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, created, err := c.sessionService.CreateForAI(ctx.Context(), &req)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	message := "Chat session already exists"
	if created {
		status = fiber.StatusCreated
		message = "Chat session created"
	}
	return ctx.Status(status).
		JSON(serverutils.NotificationWith(message, fiber.Map{"session": res}))
}

func (c *chatController) List(ctx *fiber.Ctx) error {
	userId, err := requireUserId(ctx)
	if err != nil {
		return err
	}

	page := ctx.QueryInt("page", 1)
	limit := ctx.QueryInt("limit", 20)

	res, err := c.sessionService.List(ctx.Context(), userId, page, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) Get(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("sessionId")
	requester := optionalUserId(ctx)

	res, err := c.sessionService.Get(ctx.Context(), sessionId, requester)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"session": res})
}

func (c *chatController) GetShared(ctx *fiber.Ctx) error {
	shareId := ctx.Params("shareId")
	if !shareIdPattern.MatchString(shareId) {
		return apperr.InvalidInput("Invalid share link")
	}

	res, err := c.sessionService.GetShared(ctx.Context(), shareId)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{"session": res})
}

func (c *chatController) Update(ctx *fiber.Ctx) error {
	userId, err := requireUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateChatSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperr.InvalidInput("Invalid request body")
	}

	res, err := c.sessionService.Update(ctx.Context(), userId, ctx.Params("sessionId"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.NotificationWith("Chat session updated", fiber.Map{"session": res}))
}

func (c *chatController) Delete(ctx *fiber.Ctx) error {
	userId, err := requireUserId(ctx)
	if err != nil {
		return err
	}

	if err := c.sessionService.Delete(ctx.Context(), userId, ctx.Params("sessionId")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.Notification("Chat session deleted"))
}

func (c *chatController) AddMessage(ctx *fiber.Ctx) error {
	userId, err := requireUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.AddMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperr.InvalidInput("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.messageService.AddMessage(ctx.Context(), userId, ctx.Params("sessionId"), &req.Message)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.NotificationWith("Message added", fiber.Map{"session": res}))
}

func (c *chatController) AddBatch(ctx *fiber.Ctx) error {
	var req dto.AddMessagesBatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperr.InvalidInput("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.messageService.AddBatch(ctx.Context(), ctx.Params("sessionId"), req.Messages)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.NotificationWith("Messages added", fiber.Map{"session": res}))
}

func (c *chatController) AddBatchForAI(ctx *fiber.Ctx) error {
	var req dto.AddMessagesBatchForAIRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperr.InvalidInput("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.messageService.AddBatchForAI(ctx.Context(), ctx.Params("sessionId"), req.Messages)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.NotificationWith("Messages added", fiber.Map{"session": res}))
}

func (c *chatController) Share(ctx *fiber.Ctx) error {
	userId, err := requireUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.shareService.Share(ctx.Context(), userId, ctx.Params("sessionId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.NotificationWith("Chat session shared", fiber.Map{
		"session":  res.Session,
		"shareUrl": res.ShareUrl,
	}))
}

func (c *chatController) Unshare(ctx *fiber.Ctx) error {
	userId, err := requireUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.shareService.Unshare(ctx.Context(), userId, ctx.Params("sessionId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.NotificationWith("Chat session unshared", fiber.Map{"session": res}))
}
