package chat

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/learnai-app/learnai-backend/internal/config"
	"github.com/learnai-app/learnai-backend/internal/hook"
)

type ChatFeature struct{}

func New() *ChatFeature {
	return &ChatFeature{}
}

func (f *ChatFeature) ID() string { return "chat" }

func (f *ChatFeature) Models() []interface{} {
	return []interface{}{
		&ChatMessage{},
	}
}

func (f *ChatFeature) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	svc := NewChatService(db, hook.NewClient(cfg.WebhookTimeout), cfg.ChatWebhookURL)
	handler := NewChatHandler(svc)

	router.Post("/chat/messages", handler.SendMessage)
	router.Get("/chat/messages", handler.GetHistory)
	router.Delete("/chat/messages", handler.ClearHistory)
}
