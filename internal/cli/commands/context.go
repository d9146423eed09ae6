// Package commands implements the LakeGate CLI subcommands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/leapstack-labs/lakegate/internal/cli/config"
	"github.com/leapstack-labs/lakegate/internal/databricks"
	"github.com/leapstack-labs/lakegate/pkg/catalog"
	"github.com/leapstack-labs/lakegate/pkg/lineage"
	"github.com/leapstack-labs/lakegate/pkg/warehouse"
)

// CommandContext bundles the wired-up gateway components one command
// invocation needs. The cache lives for the process, so repeated
// lineage lookups in the REPL share it.
type CommandContext struct {
	Cfg         *config.Config
	Client      *databricks.Client
	Coordinator *warehouse.Coordinator
	Cache       *lineage.Cache
	Resolver    *lineage.Resolver
	Explorer    *catalog.Explorer
	Fetcher     *catalog.LineageFetcher
}

// NewCommandContext builds the gateway stack from the loaded
// configuration. Fails fast when no workspace host is configured, before
// any remote call is attempted.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.Current()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	logger := config.GetLogger(cmd.Context())

	client, err := databricks.NewClient(databricks.Config{
		Host:         cfg.Host,
		Token:        cfg.Token,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		AuthType:     cfg.AuthType,
		RateLimit:    rate.Limit(cfg.RateLimit),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("workspace client: %w (set DATABRICKS_HOST or a lakegate.yaml)", err)
	}

	coordinator := warehouse.NewCoordinator(client, cfg.WarehouseID,
		warehouse.WithPollInterval(cfg.PollInterval()),
		warehouse.WithMaxWait(cfg.MaxWait()),
		warehouse.WithLogger(logger),
	)
	cache := lineage.NewCache(client, logger)
	resolver := lineage.NewResolver(cache, logger)

	return &CommandContext{
		Cfg:         cfg,
		Client:      client,
		Coordinator: coordinator,
		Cache:       cache,
		Resolver:    resolver,
		Explorer:    catalog.NewExplorer(client, logger),
		Fetcher:     catalog.NewLineageFetcher(coordinator, resolver),
	}, nil
}

// resolveFormat returns the command-local format flag when set,
// otherwise the configured default.
func resolveFormat(format string, cfg *config.Config) string {
	if format != "" {
		return format
	}
	if cfg.Output != "" {
		return cfg.Output
	}
	return config.DefaultOutput
}
