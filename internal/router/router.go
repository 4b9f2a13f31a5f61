package router

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-registry/internal/config"
	"github.com/noah-isme/campus-registry/internal/flash"
	"github.com/noah-isme/campus-registry/internal/handler"
	"github.com/noah-isme/campus-registry/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DB              *gorm.DB
	Flasher         *flash.Flasher
	FacultyHandler  *handler.FacultyHandler
	GroupHandler    *handler.GroupHandler
	StudentHandler  *handler.StudentHandler
	ExportHandler   *handler.ExportHandler
	ActivityHandler *handler.ActivityHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// JSON endpoints
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB))
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activity"))
	}

	app.Get("/metrics", observability.MetricsHandler())
	app.Static("/uploads", cfg.UploadDir)

	// HTML pages
	if deps.Flasher != nil {
		app.Use(deps.Flasher.Middleware())
	}
	app.Get("/", handler.Welcome(deps.Flasher))

	if deps.FacultyHandler != nil {
		deps.FacultyHandler.Register(app.Group("/faculties"))
	}
	if deps.GroupHandler != nil {
		deps.GroupHandler.Register(app)
	}
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(app)
	}
	if deps.ExportHandler != nil {
		deps.ExportHandler.Register(app.Group("/data/export"))
	}
}
