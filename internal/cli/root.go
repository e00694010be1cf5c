// Package cli holds the jobctl commands. Every command builds its own
// container from the resolved configuration and closes it on return.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"jobmatch/internal/app"
	"jobmatch/internal/config"
	"jobmatch/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const name = "jobctl"

type options struct {
	v       *viper.Viper
	cfgFile string
}

func NewRootCommand() *cobra.Command {
	opts := &options{v: viper.New()}

	root := &cobra.Command{
		Use:           name,
		Short:         "jobctl runs migrations, seeds, scrapes and matching runs against the job-matching store",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "a config file (yaml, json, toml or .env); the environment overrides it")
	root.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	root.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	_ = opts.v.BindPFlag("LOG_DEBUG", root.PersistentFlags().Lookup("debug"))
	_ = opts.v.BindPFlag("LOG_JSON", root.PersistentFlags().Lookup("json"))

	root.AddCommand(
		newMigrateCommand(opts),
		newSeedCommand(opts),
		newScrapeCommand(opts),
		newMatchCommand(opts),
	)
	return root
}

func (o *options) loadConfig() (config.Config, error) {
	if path := strings.TrimSpace(o.cfgFile); path != "" {
		o.v.SetConfigFile(path)
		if err := o.v.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return config.LoadWith(o.v)
}

// withContainer resolves config and logger, builds the container, migrates
// the schema and hands the container to fn.
func (o *options) withContainer(ctx context.Context, fn func(ctx context.Context, c *app.Container) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	c, err := app.NewContainer(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Warn("close container", zap.Error(err))
		}
	}()

	if err := c.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return fn(ctx, c)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
