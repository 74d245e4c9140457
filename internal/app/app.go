package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/auth"
	"github.com/ternarybob/conduit/internal/common"
	"github.com/ternarybob/conduit/internal/engine"
	"github.com/ternarybob/conduit/internal/handlers"
	"github.com/ternarybob/conduit/internal/httpclient"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/registry"
	"github.com/ternarybob/conduit/internal/scheduler"
	"github.com/ternarybob/conduit/internal/scraper"
	"github.com/ternarybob/conduit/internal/services/llm"
	"github.com/ternarybob/conduit/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager
	Registry       interfaces.HandlerRegistry
	LLMService     interfaces.LLMService
	Orchestrator   *engine.Orchestrator
	Scheduler      interfaces.SchedulerService
	ScrapeEngine   *scraper.Engine
	StateManager   *auth.StateManager

	// WordPressAuth is the app-password credential for the configured site
	WordPressAuth *auth.AppPasswordProvider
	// OAuthProviders maps provider name to its redirect-flow implementation
	OAuthProviders map[string]interfaces.OAuthProvider
}

// New initializes the application in dependency order
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	storageManager, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager
	logger.Debug().
		Str("storage", "badger").
		Str("path", cfg.Storage.Badger.Path).
		Msg("Storage layer initialized")

	if err := app.initAuth(); err != nil {
		storageManager.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		storageManager.Close()
		return nil, err
	}

	logger.Info().
		Str("llm_provider", cfg.LLM.Provider).
		Bool("scheduler_enabled", cfg.Scheduler.Enabled).
		Msg("Application initialization complete")
	return app, nil
}

// initAuth wires credential providers against the credential store
func (a *App) initAuth() error {
	creds := a.StorageManager.CredentialStorage()

	a.StateManager = auth.NewStateManager(creds, a.Config.Auth.StateTTLDuration())
	a.WordPressAuth = auth.NewAppPasswordProvider("wordpress", creds, a.Logger)

	callbackBase := a.Config.Auth.CallbackBaseURL
	authClient := httpclient.NewDefaultHTTPClient(30 * time.Second)
	a.OAuthProviders = map[string]interfaces.OAuthProvider{
		"threads": auth.NewThreadsProvider(creds, authClient, callbackBase+"/api/auth/threads/callback", a.Logger),
	}

	a.Logger.Debug().Int("oauth_providers", len(a.OAuthProviders)).Msg("Auth providers initialized")
	return nil
}

// initServices builds the execution stack: LLM, scraper, handler registry,
// orchestrator, scheduler
func (a *App) initServices() error {
	llmService, err := llm.NewLLMService(context.Background(), a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize llm service: %w", err)
	}
	a.LLMService = llmService

	a.ScrapeEngine = scraper.NewEngine(
		&a.Config.Scraper,
		a.StorageManager.ProcessedItemStorage(),
		a.StorageManager.EngineDataStorage(),
		a.Logger,
	)

	a.Registry = registry.New(a.Logger)
	if err := handlers.RegisterAll(a.Registry, handlers.Dependencies{
		Dedup:     a.StorageManager.ProcessedItemStorage(),
		WordPress: a.WordPressAuth,
		Scraper:   a.ScrapeEngine,
		Timeout:   a.Config.Engine.StepTimeoutDuration(),
		Logger:    a.Logger,
	}); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}

	a.Orchestrator = engine.NewOrchestrator(engine.Options{
		Registry:        a.Registry,
		Storage:         a.StorageManager,
		LLM:             a.LLMService,
		StepTimeout:     a.Config.Engine.StepTimeoutDuration(),
		PersistStepData: a.Config.Engine.StepDataHistory,
		Logger:          a.Logger,
	})

	a.Scheduler = scheduler.NewService(a.Orchestrator, a.StorageManager.FlowStorage(), a.Logger)
	if a.Config.Scheduler.Enabled {
		if err := a.Scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	} else {
		a.Logger.Info().Msg("Scheduler disabled by configuration")
	}

	return nil
}

// Close shuts down all application resources in reverse dependency order
func (a *App) Close() error {
	if a.Scheduler != nil && a.Config.Scheduler.Enabled {
		a.Scheduler.Stop()
	}

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}
	return nil
}
