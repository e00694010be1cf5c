package app

import (
	"context"
	"fmt"
	"time"

	"jobmatch/internal/config"
	"jobmatch/internal/database"
	"jobmatch/internal/database/migration"
	dbpostgres "jobmatch/internal/database/postgres"
	dbsqlite "jobmatch/internal/database/sqlite"
	"jobmatch/internal/document"
	"jobmatch/internal/infrastructure/cache"
	"jobmatch/internal/ingestion"
	"jobmatch/internal/matching"
	"jobmatch/internal/repository"
	"jobmatch/internal/scheduler"
	"jobmatch/internal/scraper"
	"jobmatch/internal/storage"
	"jobmatch/internal/usecase"
	"jobmatch/internal/ws"

	"go.uber.org/zap"
)

// expandedLimit bounds how far an uploaded document may decompress, as a
// multiple of the upload limit.
const expandedLimit = 8

// Container owns every long-lived dependency. The CLI and the HTTP server
// both build one.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Cache  *cache.Redis

	Claimants repository.ClaimantRepository
	Jobs      repository.JobPostingRepository
	Matches   repository.MatchRepository

	Engine    *matching.Engine
	Source    scraper.Source
	Ingestion *ingestion.Service
	Hub       *ws.Hub
	Notifier  *ws.Notifier
	Scheduler *scheduler.Scheduler

	ClaimantUC usecase.ClaimantUsecase
	JobUC      usecase.JobUsecase
	MatchUC    usecase.MatchUsecase
	ScraperUC  usecase.ScraperUsecase
}

func NewContainer(cfg config.Config, log *zap.Logger) (*Container, error) {
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := openDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	source, err := newSource(cfg.Scraper, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	c := &Container{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		Cache:     cache.NewRedis(cfg.Redis, log),
		Claimants: repository.NewSQLClaimantRepository(db),
		Jobs:      repository.NewSQLJobPostingRepository(db),
		Matches:   repository.NewSQLMatchRepository(db),
		Source:    source,
		Hub:       ws.NewHub(log),
	}
	c.Notifier = ws.NewNotifier(c.Hub)

	c.Engine = matching.NewEngine(c.Claimants, c.Jobs, c.Matches, matching.Config{
		MinScore:          cfg.Matching.MinScore,
		NotesKeywordLimit: cfg.Matching.NotesKeywordLimit,
		JobPageSize:       cfg.Matching.JobPageSize,
	}, log)
	c.Ingestion = ingestion.NewService(source, c.Jobs, c.Cache, c.Notifier, log)
	c.Scheduler = scheduler.New(scheduler.Options{
		Spec:     cfg.Scheduler.Spec,
		Query:    cfg.Scheduler.Query,
		Location: cfg.Scheduler.Location,
	}, c.Ingestion, c.Claimants, c.Engine, c.Cache, c.Notifier, log)

	c.ClaimantUC = usecase.NewClaimantUsecase(c.Claimants, storage.NewLocal(cfg.Upload.Dir), document.NewExtractor(log).WithMaxExpandedBytes(expandedLimit*cfg.Upload.MaxBytes), cfg.Upload.MaxBytes, log)
	c.JobUC = usecase.NewJobUsecase(c.Jobs, c.Cache, log)
	c.MatchUC = usecase.NewMatchUsecase(c.Claimants, c.Matches, c.Engine, c.Cache, c.Notifier, log)
	c.ScraperUC = usecase.NewScraperUsecase(c.Ingestion, log)

	return c, nil
}

func openDB(ctx context.Context, cfg config.DatabaseConfig) (database.DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return dbsqlite.Open(ctx, cfg.SQLitePath)
	case config.DriverPostgres, "":
		return dbpostgres.Connect(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// newSource prefers the remote feed when one is configured.
func newSource(cfg config.ScraperConfig, log *zap.Logger) (scraper.Source, error) {
	if cfg.RemoteURL != "" {
		return scraper.NewRemoteSource(cfg.RemoteURL, cfg.Timeout, log)
	}

	var fetcher scraper.PageFetcher
	if cfg.Headless {
		fetcher = scraper.NewHeadlessFetcher(cfg.Timeout)
	}
	return scraper.NewIndeedSource(scraper.IndeedConfig{
		BaseURL:    cfg.BaseURL,
		Pages:      cfg.Pages,
		Workers:    cfg.Workers,
		RatePerSec: float64(cfg.RatePerSec),
		Timeout:    cfg.Timeout,
	}, fetcher, log)
}

// Migrate applies the embedded migrations for the configured driver.
func (c *Container) Migrate(ctx context.Context) error {
	return migration.NewRunner(c.DB.Driver(), c.Logger).Run(ctx, c.DB.SQLDB())
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
