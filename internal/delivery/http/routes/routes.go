package routes

import (
	"net/http"

	"jobmatch/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

type Registry struct {
	Health    *handler.HealthHandler
	Claimants *handler.ClaimantHandler
	Jobs      *handler.JobHandler
	Matches   *handler.MatchHandler
	Scraper   *handler.ScraperHandler
	Events    http.Handler
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	if r.Health != nil {
		r.Health.RegisterRoutes(app)
	}
	if r.Events != nil {
		app.Get("/ws/events", adaptor.HTTPHandler(r.Events))
	}
	r.registerV1(app.Group("/api/v1"))
}

func (r *Registry) registerV1(v1 fiber.Router) {
	if r.Claimants != nil {
		r.Claimants.RegisterRoutes(v1)
	}
	if r.Matches != nil {
		r.Matches.RegisterRoutes(v1)
	}
	if r.Jobs != nil {
		r.Jobs.RegisterRoutes(v1)
	}
	if r.Scraper != nil {
		r.Scraper.RegisterRoutes(v1)
	}
}
