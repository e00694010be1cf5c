package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobmatch/internal/config"
	"jobmatch/internal/delivery/http/handler"
	"jobmatch/internal/delivery/http/middleware"
	"jobmatch/internal/delivery/http/routes"
	"jobmatch/internal/usecase"
	"jobmatch/internal/ws"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// multipart framing on top of the file itself
const uploadBodySlack = 1 << 20

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	maxUpload := c.Config.Upload.MaxBytes
	if maxUpload <= 0 {
		maxUpload = usecase.DefaultUploadMaxBytes
	}

	f := fiber.New(fiber.Config{
		AppName:   c.Config.App.AppName,
		BodyLimit: int(maxUpload) + uploadBodySlack,
	})

	registerGlobalMiddleware(f, c.Logger)

	reg := &routes.Registry{
		Health:    handler.NewHealthHandler(c.DB),
		Claimants: handler.NewClaimantHandler(c.ClaimantUC, maxUpload),
		Jobs:      handler.NewJobHandler(c.JobUC),
		Matches:   handler.NewMatchHandler(c.MatchUC),
		Scraper:   handler.NewScraperHandler(c.ScraperUC),
		Events:    ws.NewHandler(c.Hub, c.Logger),
	}
	reg.Register(f)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the container, migrates the schema and starts the
// background pieces. The returned cleanup stops them in reverse order.
func Bootstrap(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	migCtx, migCancel := context.WithTimeout(ctx, 2*time.Minute)
	defer migCancel()
	if err := c.Migrate(migCtx); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	bgCtx, bgCancel := context.WithCancel(ctx)
	go c.Hub.Run(bgCtx)

	if cfg.Scheduler.Enabled {
		if err := c.Scheduler.Start(bgCtx); err != nil {
			bgCancel()
			_ = c.Close()
			return nil, nil, err
		}
	}

	cleanup := func() error {
		bgCancel()
		if cfg.Scheduler.Enabled {
			c.Scheduler.Stop()
		}
		return c.Close()
	}
	return New(c), cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, log *zap.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(log).Middleware())
	app.Use(middleware.NewErrorMiddleware(log).Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
