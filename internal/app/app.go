package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/playbook/internal/common"
	"github.com/ternarybob/playbook/internal/handlers"
	"github.com/ternarybob/playbook/internal/interfaces"
	"github.com/ternarybob/playbook/internal/marketdata"
	"github.com/ternarybob/playbook/internal/services/discovery"
	"github.com/ternarybob/playbook/internal/services/ingest"
	"github.com/ternarybob/playbook/internal/services/portfolio"
	"github.com/ternarybob/playbook/internal/services/scheduler"
	"github.com/ternarybob/playbook/internal/services/ticker"
	"github.com/ternarybob/playbook/internal/services/translation"
	"github.com/ternarybob/playbook/internal/services/triggers"
	storage "github.com/ternarybob/playbook/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Pipeline services
	Resolver      *ticker.Resolver
	Translator    *translation.Translator
	IngestService *ingest.Service

	// Market-facing services
	MarketData       *marketdata.Client
	TriggerEngine    *triggers.Engine
	SchedulerService *scheduler.Service
	PortfolioService *portfolio.Service
	DiscoveryEngine  *discovery.Engine

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	IngestHandler    *handlers.IngestHandler
	CardHandler      *handlers.CardHandler
	AlertHandler     *handlers.AlertHandler
	PortfolioHandler *handlers.PortfolioHandler
	WSHandler        *handlers.WebSocketHandler

	wsWriter  *handlers.WebSocketWriter
	logStream chan []arbormodels.LogEvent
}

// New wires the application from a loaded configuration.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, err
	}
	if err := app.initServices(); err != nil {
		app.StorageManager.Close()
		return nil, err
	}
	if err := app.initHandlers(); err != nil {
		app.StorageManager.Close()
		return nil, err
	}

	app.Logger.Info().
		Str("environment", cfg.Environment).
		Bool("scheduler_enabled", cfg.Scheduler.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage opens Badger and loads the seed catalog and glossary.
func (a *App) initStorage() error {
	manager, err := storage.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}
	a.StorageManager = manager

	ctx := context.Background()

	if path := a.Config.Seeds.InstrumentsFile; path != "" {
		if err := manager.LoadInstrumentsFromFile(ctx, path); err != nil {
			a.Logger.Warn().Err(err).Str("file", path).Msg("Failed to load instrument seeds")
		}
	}
	if path := a.Config.Seeds.GlossaryFile; path != "" {
		if err := manager.LoadGlossaryFromFile(ctx, path); err != nil {
			a.Logger.Warn().Err(err).Str("file", path).Msg("Failed to load glossary seeds")
		}
	}

	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

func (a *App) initServices() error {
	ctx := context.Background()

	resolver, err := ticker.NewResolver(ctx, a.StorageManager.InstrumentStorage())
	if err != nil {
		return fmt.Errorf("failed to build ticker resolver: %w", err)
	}
	a.Resolver = resolver

	translator, err := translation.NewTranslator(ctx,
		a.StorageManager.GlossaryStorage(),
		a.StorageManager.TranslationMemoryStorage())
	if err != nil {
		return fmt.Errorf("failed to build translator: %w", err)
	}
	a.Translator = translator

	a.IngestService = ingest.NewService(a.Resolver, a.Translator, a.Config.Ingest)

	mdOpts := []marketdata.ClientOption{}
	if a.Config.MarketData.BaseURL != "" {
		mdOpts = append(mdOpts, marketdata.WithBaseURL(a.Config.MarketData.BaseURL))
	}
	if a.Config.MarketData.RateLimit > 0 {
		mdOpts = append(mdOpts, marketdata.WithRateLimit(a.Config.MarketData.RateLimit))
	}
	if a.Config.MarketData.CacheTTL != "" {
		if ttl, err := time.ParseDuration(a.Config.MarketData.CacheTTL); err == nil {
			mdOpts = append(mdOpts, marketdata.WithCacheTTL(ttl))
		} else {
			a.Logger.Warn().Err(err).Str("cache_ttl", a.Config.MarketData.CacheTTL).Msg("Invalid market data cache TTL")
		}
	}
	a.MarketData = marketdata.NewClient(a.Config.MarketData.APIKey, mdOpts...)

	a.TriggerEngine = triggers.NewEngine(a.MarketData,
		a.StorageManager.CardStorage(),
		a.StorageManager.TriggerStorage())
	a.SchedulerService = scheduler.NewService(a.TriggerEngine)

	a.PortfolioService = portfolio.NewService(a.StorageManager.PositionStorage(), a.MarketData)
	a.DiscoveryEngine = discovery.NewEngine(a.StorageManager.CardStorage(), a.StorageManager.InstrumentStorage())

	return nil
}

func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler()
	a.IngestHandler = handlers.NewIngestHandler(a.IngestService)
	a.CardHandler = handlers.NewCardHandler(
		a.StorageManager.CardStorage(),
		a.StorageManager.InstrumentStorage(),
		a.StorageManager.TriggerStorage(),
		a.DiscoveryEngine)
	a.AlertHandler = handlers.NewAlertHandler(
		a.StorageManager.TriggerStorage(),
		a.StorageManager.CardStorage(),
		a.TriggerEngine)
	a.PortfolioHandler = handlers.NewPortfolioHandler(a.PortfolioService)
	a.WSHandler = handlers.NewWebSocketHandler()

	// Sweeps fired by the scheduler stream straight to connected clients.
	a.SchedulerService.SetNotifier(a.WSHandler.NotifyAlerts)

	wsWriter, err := handlers.NewWebSocketWriter(a.WSHandler, arbormodels.WriterConfiguration{
		Type: arbormodels.LogWriterTypeConsole,
	}, &a.Config.WebSocket)
	if err != nil {
		return fmt.Errorf("failed to create websocket log writer: %w", err)
	}
	a.wsWriter = wsWriter

	// Mirror server logs onto the websocket stream via arbor's context channel.
	a.logStream = make(chan []arbormodels.LogEvent, 10)
	a.Logger.SetChannel("context", a.logStream)
	go func() {
		for batch := range a.logStream {
			for _, entry := range batch {
				a.wsWriter.ProcessEvent(entry)
			}
		}
	}()

	return nil
}

// Close releases application resources in reverse dependency order.
func (a *App) Close() error {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}
	if a.wsWriter != nil {
		a.wsWriter.Close()
	}
	// logStream stays open; arbor may still emit during shutdown.
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}
