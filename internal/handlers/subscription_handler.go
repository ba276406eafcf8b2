package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/learnai-app/learnai-backend/internal/dto"
	"github.com/learnai-app/learnai-backend/internal/scope"
	"github.com/learnai-app/learnai-backend/internal/services"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// GetStatus handles GET /subscription - reports the caller's billing state.
// A user with no subscription row is a valid free-tier user, not an error.
func (h *SubscriptionHandler) GetStatus(c *fiber.Ctx) error {
	userID, err := scope.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	sub, err := h.subscriptionService.Current(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch subscription",
		})
	}
	if sub == nil {
		return c.JSON(dto.SubscriptionStatusResponse{Active: false, Status: "none"})
	}

	return c.JSON(dto.SubscriptionStatusResponse{
		Active:           h.subscriptionService.HasActiveSubscription(userID),
		Status:           sub.Status,
		ProductID:        sub.ProductID,
		CurrentPeriodEnd: sub.CurrentPeriodEnd.UTC().Format(time.RFC3339),
	})
}
