package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App       AppConfig
	Log       LogConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Matching  MatchingConfig
	Upload    UploadConfig
	Scraper   ScraperConfig
	Scheduler SchedulerConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

type DatabaseConfig struct {
	Driver string

	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration

	SQLitePath string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	TTL      time.Duration
}

type MatchingConfig struct {
	MinScore          int
	NotesKeywordLimit int
	JobPageSize       int
}

type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

type ScraperConfig struct {
	BaseURL    string
	RemoteURL  string
	Pages      int
	Workers    int
	RatePerSec int
	Headless   bool
	Timeout    time.Duration
}

type SchedulerConfig struct {
	Enabled  bool
	Spec     string
	Query    string
	Location string
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads the configuration from the environment.
func Load() (Config, error) {
	return LoadWith(viper.New())
}

// LoadFile reads path (yaml, json, toml or .env) and lets the environment
// override it.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	path = strings.TrimSpace(path)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return LoadWith(v)
}

// LoadWith resolves the configuration from v. Flags bound by the CLI land in
// the same instance and take precedence over the environment.
func LoadWith(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{}

	var missing []string
	req := func(key string) string {
		s := strings.TrimSpace(v.GetString(key))
		if s == "" {
			missing = append(missing, key)
		}
		return s
	}
	opt := func(key string) string {
		return strings.TrimSpace(v.GetString(key))
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Log = LogConfig{
		JSON:  v.GetBool("LOG_JSON"),
		Debug: v.GetBool("LOG_DEBUG"),
	}

	cfg.Database = DatabaseConfig{
		Driver:                strings.ToLower(opt("DB_DRIVER")),
		DBHost:                opt("DB_HOST"),
		DBPort:                opt("DB_PORT"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            v.GetString("DB_PASSWORD"),
		DBSSLMode:             opt("DB_SSL_MODE"),
		ConnectTimeout:        v.GetDuration("DB_CONNECT_TIMEOUT"),
		PoolMaxConns:          v.GetInt32("DB_POOL_MAX_CONNS"),
		PoolMinConns:          v.GetInt32("DB_POOL_MIN_CONNS"),
		PoolMaxConnLifetime:   v.GetDuration("DB_POOL_MAX_CONN_LIFETIME"),
		PoolMaxConnIdleTime:   v.GetDuration("DB_POOL_MAX_CONN_IDLE_TIME"),
		PoolHealthCheckPeriod: v.GetDuration("DB_POOL_HEALTH_CHECK_PERIOD"),
		SQLitePath:            opt("SQLITE_PATH"),
	}

	switch cfg.Database.Driver {
	case DriverPostgres:
		if cfg.Database.DBHost == "" {
			missing = append(missing, "DB_HOST")
		}
		if cfg.Database.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
	case DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		TTL:      durationOrSeconds(v, "REDIS_TTL"),
	}

	cfg.Matching = MatchingConfig{
		MinScore:          v.GetInt("MATCH_MIN_SCORE"),
		NotesKeywordLimit: v.GetInt("MATCH_NOTES_KEYWORD_LIMIT"),
		JobPageSize:       v.GetInt("MATCH_JOB_PAGE_SIZE"),
	}
	if cfg.Matching.MinScore < 1 {
		return Config{}, fmt.Errorf("MATCH_MIN_SCORE must be >= 1, got %d", cfg.Matching.MinScore)
	}

	cfg.Upload = UploadConfig{
		Dir:      opt("UPLOAD_DIR"),
		MaxBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
	}

	cfg.Scraper = ScraperConfig{
		BaseURL:    opt("SCRAPER_BASE_URL"),
		RemoteURL:  opt("SCRAPER_REMOTE_URL"),
		Pages:      v.GetInt("SCRAPER_PAGES"),
		Workers:    v.GetInt("SCRAPER_WORKERS"),
		RatePerSec: v.GetInt("SCRAPER_RATE_PER_SEC"),
		Headless:   v.GetBool("SCRAPER_HEADLESS"),
		Timeout:    v.GetDuration("SCRAPER_TIMEOUT"),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:  v.GetBool("SCHEDULER_ENABLED"),
		Spec:     opt("SCHEDULER_SPEC"),
		Query:    opt("SCHEDULER_QUERY"),
		Location: opt("SCHEDULER_LOCATION"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LOG_JSON", false)
	v.SetDefault("LOG_DEBUG", false)

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_CONNECT_TIMEOUT", 5*time.Second)
	v.SetDefault("SQLITE_PATH", "jobmatch.db")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_TTL", "600")

	v.SetDefault("MATCH_MIN_SCORE", 2)
	v.SetDefault("MATCH_NOTES_KEYWORD_LIMIT", 5)
	v.SetDefault("MATCH_JOB_PAGE_SIZE", 500)

	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)

	v.SetDefault("SCRAPER_BASE_URL", "https://www.indeed.co.uk")
	v.SetDefault("SCRAPER_PAGES", 1)
	v.SetDefault("SCRAPER_WORKERS", 4)
	v.SetDefault("SCRAPER_RATE_PER_SEC", 2)
	v.SetDefault("SCRAPER_HEADLESS", false)
	v.SetDefault("SCRAPER_TIMEOUT", 20*time.Second)

	v.SetDefault("SCHEDULER_ENABLED", false)
	v.SetDefault("SCHEDULER_SPEC", "@every 6h")
	v.SetDefault("SCHEDULER_QUERY", "python developer")
	v.SetDefault("SCHEDULER_LOCATION", "london")
}

// durationOrSeconds accepts both "600" and "10m".
func durationOrSeconds(v *viper.Viper, key string) time.Duration {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return time.Duration(v.GetInt(key)) * time.Second
}
