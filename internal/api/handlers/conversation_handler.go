package handlers

import (
	"errors"
	"time"

	"edubot/internal/dto"
	"edubot/internal/service"
	"edubot/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ConversationHandler struct {
	conversationService *service.ConversationService
	logger              *zap.Logger
}

func NewConversationHandler(conversationService *service.ConversationService, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		logger:              logger,
	}
}

// ListConversations godoc
// @Summary List logged conversations
// @Description Exchanges the knowledge base could not answer, newest first
// @Tags conversations
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} dto.ConversationResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/conversations [get]
func (h *ConversationHandler) ListConversations(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	entries, err := h.conversationService.List(c.UserContext(), limit, offset)
	if err != nil {
		middleware.Logger(c, h.logger).Error("Failed to list conversations", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to list conversations",
		})
	}

	resp := make([]dto.ConversationResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.ConversationResponse{
			ID:          e.ID.String(),
			UserInput:   e.UserInput,
			BotResponse: e.BotResponse,
			Timestamp:   e.Timestamp.UTC().Format(time.RFC3339),
			Feedback:    e.Feedback,
		})
	}
	return c.JSON(resp)
}

// SetFeedback godoc
// @Summary Attach feedback to a conversation
// @Tags conversations
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param request body dto.FeedbackRequest true "Feedback"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/conversations/{id}/feedback [post]
func (h *ConversationHandler) SetFeedback(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Invalid conversation ID",
		})
	}

	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil || req.Feedback == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: `Invalid request body: expected a JSON object with a string "feedback" field`,
		})
	}

	err = h.conversationService.SetFeedback(c.UserContext(), id, *req.Feedback)
	switch {
	case err == nil:
		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, service.ErrEmptyFeedback):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Feedback must not be empty"})
	case errors.Is(err, service.ErrConversationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "Conversation not found"})
	default:
		middleware.Logger(c, h.logger).Error("Failed to set feedback", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Failed to set feedback",
		})
	}
}
