package plans

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/learnai-app/learnai-backend/internal/config"
	"github.com/learnai-app/learnai-backend/internal/hook"
	"github.com/learnai-app/learnai-backend/internal/services"
)

type PlansFeature struct {
	subService *services.SubscriptionService
}

func New(subService *services.SubscriptionService) *PlansFeature {
	return &PlansFeature{subService: subService}
}

func (f *PlansFeature) ID() string { return "plans" }

func (f *PlansFeature) Models() []interface{} {
	return []interface{}{
		&LearningPlan{},
	}
}

func (f *PlansFeature) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	gen := NewGenerator(hook.NewClient(cfg.WebhookTimeout), cfg.PlanWebhookURL)
	svc := NewPlanService(db, gen)
	handler := NewPlanHandler(svc, f.subService)

	// Static segments before the :planId wildcard.
	router.Post("/plans", handler.CreatePlan)
	router.Get("/plans", handler.ListPlans)
	router.Get("/plans/current", handler.GetCurrent)
	router.Post("/plans/current/save", handler.SaveCurrent)
	router.Get("/plans/saved", handler.ListSaved)
	router.Delete("/plans/saved/:planId", handler.DeleteSaved)
	router.Get("/plans/quota", handler.GetQuota)
	router.Get("/plans/:planId", handler.GetPlan)
	router.Get("/plans/:planId/pdf", handler.DownloadPDF)
}
