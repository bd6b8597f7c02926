// Package app assembles the statistics client, analysis engine and tools from a Config.
// Both the MCP server and the one-shot query command start here.
package app

import (
	"fmt"

	"github.com/richard-senior/betscout/internal/config"
	"github.com/richard-senior/betscout/internal/logger"
	"github.com/richard-senior/betscout/pkg/datasource"
	"github.com/richard-senior/betscout/pkg/football/analysis"
	"github.com/richard-senior/betscout/pkg/football/catalog"
	"github.com/richard-senior/betscout/pkg/football/structural"
	"github.com/richard-senior/betscout/pkg/football/suggest"
	"github.com/richard-senior/betscout/pkg/tools"
	"github.com/richard-senior/betscout/pkg/transport"
)

// App owns everything with a lifetime. Close releases the response cache.
type App struct {
	Config  *config.Config
	Client  *datasource.Client
	Toolbox *tools.Toolbox
	cache   datasource.Cache
}

// ConfigureLogging applies the logging section of cfg to the package logger
func ConfigureLogging(cfg *config.Config) error {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLogFile(cfg.LogFile)
	logger.SetLevel(level)
	return logger.SetLogOutput(rune(cfg.LogOutput[0]))
}

// New builds the application. A cache that cannot be opened is logged and replaced by no
// cache at all rather than failing startup.
func New(cfg *config.Config) (*App, error) {
	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		c, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalogue: %w", err)
		}
		cat = c
		logger.Info("Loaded catalogue from", cfg.CatalogPath)
	}

	cache, err := datasource.OpenCache(cfg.Cache, cfg.CachePath, cfg.RedisURL)
	if err != nil {
		logger.Warn("Response cache unavailable, continuing without one:", err)
		cache = datasource.NopCache{}
	}

	if !cfg.HasAPIKey() {
		logger.Warn("BETSCOUT_API_KEY is not set; every analysis will be the fallback")
	}

	client := datasource.NewClient(datasource.ClientConfig{
		BaseURL:       cfg.APIBaseURL,
		APIKey:        cfg.APIKey,
		HTTPClient:    transport.NewHTTPClient(cfg.HTTPTimeout),
		RatePerMinute: cfg.RatePerMinute,
		CacheTTL:      cfg.CacheTTL,
		Cache:         cache,
		Logger:        logger.Named("datasource"),
	})

	engine := &analysis.Engine{
		Source:     client,
		Structural: structural.Analyzer{Catalog: cat},
		Catalog:    cat,
		Logger:     logger.Named("analysis"),
	}

	return &App{
		Config: cfg,
		Client: client,
		Toolbox: &tools.Toolbox{
			Teams:        client,
			Engine:       engine,
			Generator:    suggest.Generator{Catalog: cat},
			Sessions:     tools.NewSessionStore(tools.DefaultSessionTTL),
			DefaultLimit: cfg.SuggestionLimit,
		},
		cache: cache,
	}, nil
}

func (a *App) Close() error {
	return a.cache.Close()
}
