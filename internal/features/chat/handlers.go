package chat

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/learnai-app/learnai-backend/internal/dto"
	"github.com/learnai-app/learnai-backend/internal/scope"
)

type ChatHandler struct {
	chatService *ChatService
}

func NewChatHandler(chatService *ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessage handles POST /chat/messages - relays a question to the assistant.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := scope.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Question is required",
		})
	}

	resp, err := h.chatService.SendMessage(c.Context(), userID, question)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to send message",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetHistory handles GET /chat/messages - returns the conversation, oldest first.
func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	userID, err := scope.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	msgs, err := h.chatService.History(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch messages",
		})
	}
	return c.JSON(HistoryResponse{Messages: msgs, Total: len(msgs)})
}

// ClearHistory handles DELETE /chat/messages - wipes the conversation.
func (h *ChatHandler) ClearHistory(c *fiber.Ctx) error {
	userID, err := scope.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if err := h.chatService.Clear(userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to clear messages",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
