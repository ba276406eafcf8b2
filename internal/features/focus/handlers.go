package focus

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/learnai-app/learnai-backend/internal/dto"
	"github.com/learnai-app/learnai-backend/internal/scope"
)

type FocusHandler struct {
	focusService *FocusService
}

func NewFocusHandler(focusService *FocusService) *FocusHandler {
	return &FocusHandler{focusService: focusService}
}

// GetModes handles GET /focus/modes - lists the timer presets.
func (h *FocusHandler) GetModes(c *fiber.Ctx) error {
	// Stable order for clients that render the presets as tabs.
	order := []string{"pomodoro", "deep", "sprint", "custom"}
	modes := make([]Mode, 0, len(order))
	for _, id := range order {
		modes = append(modes, Modes[id])
	}
	return c.JSON(modes)
}

// RecordSession handles POST /focus/sessions - stores a completed interval.
func (h *FocusHandler) RecordSession(c *fiber.Ctx) error {
	userID, err := scope.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req RecordSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	session, err := h.focusService.Record(userID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidMode) || errors.Is(err, ErrInvalidPhase) || errors.Is(err, ErrInvalidMinutes) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to record session",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// ListSessions handles GET /focus/sessions - returns recent sessions.
func (h *FocusHandler) ListSessions(c *fiber.Ctx) error {
	userID, err := scope.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	sessions, err := h.focusService.List(userID, c.QueryInt("limit", 50))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch sessions",
		})
	}
	return c.JSON(SessionsResponse{Sessions: sessions, Total: len(sessions)})
}

// GetStats handles GET /focus/stats - returns aggregate focus history.
func (h *FocusHandler) GetStats(c *fiber.Ctx) error {
	userID, err := scope.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	stats, err := h.focusService.Stats(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch stats",
		})
	}
	return c.JSON(stats)
}
