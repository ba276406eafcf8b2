// Package features holds the product surfaces (learning plans, chat
// assistant, focus timer), each mounted behind the shared auth layer.
package features

import (
	"github.com/gofiber/fiber/v2"
	"github.com/learnai-app/learnai-backend/internal/config"
	"gorm.io/gorm"
)

// Feature is the interface every product surface implements.
type Feature interface {
	// ID returns the unique feature identifier.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts feature-specific routes on the given Fiber
	// group. The group is already prefixed with /api and has JWT
	// middleware applied.
	RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}
