package plans

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/learnai-app/learnai-backend/internal/dto"
	"github.com/learnai-app/learnai-backend/internal/quota"
	"github.com/learnai-app/learnai-backend/internal/scope"
	"github.com/learnai-app/learnai-backend/internal/services"
)

type PlanHandler struct {
	planService *PlanService
	subService  *services.SubscriptionService
}

func NewPlanHandler(planService *PlanService, subService *services.SubscriptionService) *PlanHandler {
	return &PlanHandler{planService: planService, subService: subService}
}

// CreatePlan handles POST /plans - generates and stores a new learning plan.
// The quota gate runs before the webhook call so blocked requests never
// reach the generator.
func (h *PlanHandler) CreatePlan(c *fiber.Ctx) error {
	userID, err := scope.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req CreatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	var missing []string
	if strings.TrimSpace(req.Age) == "" {
		missing = append(missing, "age")
	}
	if strings.TrimSpace(req.SchoolLevel) == "" {
		missing = append(missing, "school_level")
	}
	if strings.TrimSpace(req.Subject) == "" {
		missing = append(missing, "subject")
	}
	if len(missing) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", ")),
		})
	}

	subscribed := h.subService.HasActiveSubscription(userID)
	count, err := h.planService.Count(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to check plan quota",
		})
	}
	if quota.LimitReached(subscribed, int(count)) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error:    true,
			Message:  "Free plan limit reached",
			Redirect: "/pricing",
		})
	}

	plan, err := h.planService.GenerateAndStore(c.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidSchoolLevel) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid school level",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create plan",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(plan)
}

// ListPlans handles GET /plans - returns the user's working history, newest first.
func (h *PlanHandler) ListPlans(c *fiber.Ctx) error {
	userID, err := scope.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	plans := h.planService.ListAll(userID)
	return c.JSON(PlansListResponse{Plans: plans, Total: len(plans)})
}

// GetCurrent handles GET /plans/current - returns the newest working plan.
func (h *PlanHandler) GetCurrent(c *fiber.Ctx) error {
	userID, err := scope.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	plan, err := h.planService.Current(userID)
	if err != nil {
		if errors.Is(err, ErrNoPlan) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "No current plan",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch current plan",
		})
	}
	return c.JSON(plan)
}

// SaveCurrent handles POST /plans/current/save - copies the current plan
// into the saved set.
func (h *PlanHandler) SaveCurrent(c *fiber.Ctx) error {
	userID, err := scope.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	saved, err := h.planService.PromoteCurrent(userID)
	if err != nil {
		if errors.Is(err, ErrNoPlan) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "No current plan to save",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to save plan",
		})
	}
	return c.JSON(saved)
}

// ListSaved handles GET /plans/saved - returns the saved collection.
func (h *PlanHandler) ListSaved(c *fiber.Ctx) error {
	userID, err := scope.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	plans := h.planService.ListSaved(userID)
	return c.JSON(PlansListResponse{Plans: plans, Total: len(plans)})
}

// DeleteSaved handles DELETE /plans/saved/:planId - removes a plan from
// the saved set. Unknown IDs still return 204, the outcome is the same.
func (h *PlanHandler) DeleteSaved(c *fiber.Ctx) error {
	userID, err := scope.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if err := h.planService.DeleteSaved(userID, c.Params("planId")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete plan",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetQuota handles GET /plans/quota - reports free-tier usage.
func (h *PlanHandler) GetQuota(c *fiber.Ctx) error {
	userID, err := scope.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	subscribed := h.subService.HasActiveSubscription(userID)
	count, err := h.planService.Count(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch quota",
		})
	}

	return c.JSON(QuotaResponse{
		Used:         int(count),
		Limit:        quota.FreePlanLimit,
		Remaining:    quota.Remaining(subscribed, int(count)),
		LimitReached: quota.LimitReached(subscribed, int(count)),
		Subscribed:   subscribed,
	})
}

// GetPlan handles GET /plans/:planId - looks a plan up in either set.
// Missing plans redirect the client back to its saved-plans view.
func (h *PlanHandler) GetPlan(c *fiber.Ctx) error {
	userID, err := scope.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	plan, err := h.planService.Get(userID, c.Params("planId"))
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error:    true,
				Message:  "Plan not found",
				Redirect: "/saved-plans",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch plan",
		})
	}
	return c.JSON(plan)
}

// DownloadPDF handles GET /plans/:planId/pdf - renders the plan as a PDF.
func (h *PlanHandler) DownloadPDF(c *fiber.Ctx) error {
	userID, err := scope.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	plan, err := h.planService.Get(userID, c.Params("planId"))
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error:    true,
				Message:  "Plan not found",
				Redirect: "/saved-plans",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch plan",
		})
	}

	data, filename, err := RenderPDF(plan)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to render PDF",
		})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}
