package handlers

import (
	"context"

	"edubot/internal/dto"
	"edubot/internal/service"
	"edubot/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MessageResolver turns a user message into an answer.
type MessageResolver interface {
	Resolve(ctx context.Context, input string) service.Resolution
}

type ChatHandler struct {
	resolver MessageResolver
	logger   *zap.Logger
}

func NewChatHandler(resolver MessageResolver, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// Chat godoc
// @Summary Ask a question
// @Description Answer a question about Sri Lankan education from the knowledge base, falling back to the completion service
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Chat message"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	log := middleware.Logger(c, h.logger)

	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn("Invalid chat request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: `Invalid request body: expected a JSON object with a string "message" field`,
		})
	}
	if req.Message == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: `Field "message" is required`,
		})
	}

	res := h.resolver.Resolve(c.UserContext(), *req.Message)
	log.Info("Chat message answered", zap.String("source", res.Source))

	return c.JSON(dto.ChatResponse{Response: res.Response})
}
