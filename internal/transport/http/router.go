package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/starrycyq/travle/internal/config"
	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
	"github.com/starrycyq/travle/internal/transport/http/handlers"
	httpmw "github.com/starrycyq/travle/internal/transport/http/middleware"
)

type RouterConfig struct {
	Tasks       ports.TaskService
	Sessions    ports.SessionService
	Search      ports.SearchService
	Preferences ports.PreferenceService
	Logger      *logger.Logger
	Config      *config.Config
}

func SetupRoutes(app *fiber.App, cfg RouterConfig) {
	taskHandler := handlers.NewTaskHandler(cfg.Tasks, cfg.Logger, cfg.Config.Scraper.MaxItems)
	sessionHandler := handlers.NewSessionHandler(cfg.Sessions, cfg.Logger)
	searchHandler := handlers.NewSearchHandler(cfg.Search, cfg.Logger)
	preferenceHandler := handlers.NewPreferenceHandler(cfg.Preferences, cfg.Logger)

	// API v1 routes
	api := app.Group("/api/v1", httpmw.APIKeyAuth(cfg.Config))

	// Scraper task routes
	tasks := api.Group("/scraper/tasks")
	tasks.Post("/", taskHandler.SubmitTask)
	tasks.Get("/", taskHandler.ListTasks)
	tasks.Get("/:id", taskHandler.GetTask)
	tasks.Get("/:id/events", taskHandler.GetTaskEvents)

	// Login session routes
	sessions := api.Group("/scraper/sessions")
	sessions.Post("/", sessionHandler.SaveSession)
	sessions.Post("/link", sessionHandler.LinkOwner)
	sessions.Get("/owner/:owner_id", sessionHandler.GetOwnerSession)
	sessions.Get("/subject/:subject", sessionHandler.GetSubjectSession)

	// Travel preference routes
	prefs := api.Group("/preferences")
	prefs.Post("/", preferenceHandler.SavePreference)
	prefs.Get("/", preferenceHandler.ListPreferences)

	// Vector search routes
	search := api.Group("/search")
	search.Post("/", searchHandler.Search)
	search.Get("/info", searchHandler.GetInfo)
}
