package focus

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/learnai-app/learnai-backend/internal/config"
)

type FocusFeature struct{}

func New() *FocusFeature {
	return &FocusFeature{}
}

func (f *FocusFeature) ID() string { return "focus" }

func (f *FocusFeature) Models() []interface{} {
	return []interface{}{
		&FocusSession{},
		&FocusStreak{},
	}
}

func (f *FocusFeature) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	svc := NewFocusService(db)
	handler := NewFocusHandler(svc)

	router.Get("/focus/modes", handler.GetModes)
	router.Post("/focus/sessions", handler.RecordSession)
	router.Get("/focus/sessions", handler.ListSessions)
	router.Get("/focus/stats", handler.GetStats)
}
