package controller

import (
	"ai-webchat-be/internal/apperror"
	"ai-webchat-be/internal/dto"
	"ai-webchat-be/internal/pkg/serverutils"
	"ai-webchat-be/internal/service"
	"ai-webchat-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler)
	ListSessions(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	RenameSession(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	Completion(ctx *fiber.Ctx) error
}

type chatController struct {
	sessionService service.IChatSessionService
	messageService service.IMessageService
	orchestrator   service.IChatOrchestrator
	provider       llm.Provider
}

func NewChatController(
	sessionService service.IChatSessionService,
	messageService service.IMessageService,
	orchestrator service.IChatOrchestrator,
	provider llm.Provider,
) IChatController {
	return &chatController{
		sessionService: sessionService,
		messageService: messageService,
		orchestrator:   orchestrator,
		provider:       provider,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler) {
	h := r.Group("/chat/v1")
	h.Use(authMiddleware)
	h.Get("sessions", c.ListSessions)
	h.Post("sessions", c.CreateSession)
	h.Delete("sessions/:id", c.DeleteSession)
	h.Patch("sessions/:id", c.RenameSession)
	h.Get("sessions/:id/messages", c.GetHistory)
	h.Post("sessions/:id/messages", c.SendMessage)
	h.Post("completion", c.Completion)
}

func chatIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	chatId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.Wrapf(apperror.ErrValidationFailure, "invalid session id %q", ctx.Params("id"))
	}
	return chatId, nil
}

// userIdFromLocals never panics on an unexpected Locals value; an empty
// result fails the ownership check downstream.
func userIdFromLocals(ctx *fiber.Ctx) string {
	userId, _ := ctx.Locals("user_id").(string)
	return userId
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	userId := userIdFromLocals(ctx)

	res, err := c.sessionService.ListSessions(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	userId := userIdFromLocals(ctx)

	var req dto.CreateSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	res, err := c.sessionService.CreateSession(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	userId := userIdFromLocals(ctx)

	chatId, err := chatIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.sessionService.DeleteSession(ctx.Context(), userId, chatId); err != nil {
		return err
	}
	c.orchestrator.Disconnect(chatId)

	return ctx.JSON(serverutils.SuccessResponse("Success delete session", nil))
}

func (c *chatController) RenameSession(ctx *fiber.Ctx) error {
	userId := userIdFromLocals(ctx)

	chatId, err := chatIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.RenameSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.messageService.RenameSession(ctx.Context(), userId, chatId, req.ChatName); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success rename session", nil))
}

// GetHistory doubles as the connect call: it loads the persisted history
// into the orchestrator's transcript so subsequent turns carry full context.
func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	userId := userIdFromLocals(ctx)

	chatId, err := chatIdParam(ctx)
	if err != nil {
		return err
	}
	if err := c.messageService.AuthorizeAccess(ctx.Context(), userId, chatId); err != nil {
		return err
	}

	history, err := c.orchestrator.Connect(ctx.Context(), chatId)
	if err != nil {
		return err
	}

	res := make([]*dto.MessageResponse, 0, len(history))
	for _, msg := range history {
		res = append(res, &dto.MessageResponse{
			ConvoId:   msg.ConvoId,
			Content:   msg.Content,
			Sender:    msg.Sender,
			Timestamp: msg.Timestamp,
		})
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	userId := userIdFromLocals(ctx)

	chatId, err := chatIdParam(ctx)
	if err != nil {
		return err
	}
	if err := c.messageService.AuthorizeAccess(ctx.Context(), userId, chatId); err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.orchestrator.SendMessage(ctx.Context(), chatId, req.Content)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

// Completion is the raw pass-through: the caller supplies the full message
// context and gets the model reply back without any persistence.
func (c *chatController) Completion(ctx *fiber.Ctx) error {
	var req dto.CompletionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	messages := make([]llm.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	content, err := c.provider.Chat(ctx.Context(), messages)
	if err != nil {
		return apperror.Wrap(apperror.ErrCompletionFailure, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success completion", &dto.CompletionResponse{Content: content}))
}
