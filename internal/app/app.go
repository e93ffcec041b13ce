// -----------------------------------------------------------------------
// Application wiring - build services in dependency order, tear down in
// reverse
// -----------------------------------------------------------------------

package app

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/services/answer"
	"github.com/ternarybob/doceo/internal/services/chunker"
	"github.com/ternarybob/doceo/internal/services/ingest"
	"github.com/ternarybob/doceo/internal/services/llm"
	"github.com/ternarybob/doceo/internal/services/pdf"
	"github.com/ternarybob/doceo/internal/services/retrieval"
	"github.com/ternarybob/doceo/internal/services/scheduler"
	"github.com/ternarybob/doceo/internal/services/session"
	"github.com/ternarybob/doceo/internal/services/vector"
	"github.com/ternarybob/doceo/internal/storage/badger"
	"github.com/ternarybob/doceo/internal/subjects"
)

// App holds all application components and dependencies
type App struct {
	Config  *common.Config
	Logger  arbor.ILogger
	Catalog *subjects.Catalog

	StorageManager *badger.Manager

	// Remote model services
	LLMService       interfaces.LLMService
	EmbeddingService interfaces.EmbeddingService
	AuditLogger      interfaces.AuditLogger

	// Pipeline services
	IngestService    interfaces.IngestService
	ChunkerService   interfaces.ChunkerService
	VectorIndex      interfaces.VectorIndexService
	RetrievalService interfaces.RetrievalService
	AnswerService    interfaces.AnswerService

	// Application-facing orchestrator
	SessionService interfaces.SessionService

	// Background maintenance
	SchedulerService interfaces.SchedulerService
}

// New initializes the application with all dependencies. The scheduler is
// registered but not started; long-lived modes call StartScheduler.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: config,
		Logger: logger,
	}

	catalog, err := subjects.Load(config.Subjects.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load subject catalog: %w", err)
	}
	app.Catalog = catalog
	logger.Debug().Int("subjects", catalog.Len()).Msg("Subject catalog loaded")

	storageManager, err := badger.NewManager(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	app.AuditLogger = llm.NewAuditLogger(storageManager.AuditStorage(), logger)

	llmService, embeddingService, err := llm.NewServices(config, app.AuditLogger, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize LLM services: %w", err)
	}
	app.LLMService = llmService
	app.EmbeddingService = embeddingService

	app.IngestService = ingest.NewService(pdf.NewExtractor(logger), logger)
	app.ChunkerService = chunker.NewService(config, logger)
	app.VectorIndex = vector.NewService(embeddingService, storageManager.VectorStorage(), logger)
	app.RetrievalService = retrieval.NewService(config, llmService, embeddingService, app.VectorIndex, app.AuditLogger, logger)
	app.AnswerService = answer.NewService(config, llmService, logger)

	app.SessionService = session.NewService(
		catalog,
		app.IngestService,
		app.ChunkerService,
		app.VectorIndex,
		app.RetrievalService,
		app.AnswerService,
		logger,
	)
	logger.Debug().Msg("Session service initialized")

	schedulerService := scheduler.NewService(logger)
	if err := app.registerMaintenanceJobs(schedulerService); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to register maintenance jobs: %w", err)
	}
	app.SchedulerService = schedulerService

	logger.Info().
		Str("data_dir", config.Storage.DataDir).
		Str("provider", llmService.ProviderName()).
		Msg("Application initialization complete")

	return app, nil
}

// StartScheduler begins background maintenance. One-shot commands skip
// this; the chat REPL and MCP server call it after startup.
func (a *App) StartScheduler() error {
	if !a.Config.Scheduler.Enabled {
		a.Logger.Debug().Msg("Scheduler disabled by configuration")
		return nil
	}
	return a.SchedulerService.Start()
}

// registerMaintenanceJobs wires value-log GC and audit pruning onto the
// scheduler.
func (a *App) registerMaintenanceJobs(schedulerService interfaces.SchedulerService) error {
	schedule := a.Config.Scheduler.GCSchedule

	err := schedulerService.RegisterJob("storage-gc", schedule, func() error {
		if err := a.StorageManager.VectorStorage().RunGC(); err != nil {
			return fmt.Errorf("vector store GC: %w", err)
		}
		if err := a.StorageManager.AuditStorage().RunGC(); err != nil {
			return fmt.Errorf("audit store GC: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	retention := time.Duration(a.Config.Scheduler.AuditRetentionDays) * 24 * time.Hour
	return schedulerService.RegisterJob("audit-prune", schedule, func() error {
		deleted, err := a.AuditLogger.Prune(time.Now().Add(-retention))
		if err != nil {
			return err
		}
		if deleted > 0 {
			a.Logger.Info().Int("deleted", deleted).Msg("Audit records pruned")
		}
		return nil
	})
}

// Close closes all application resources in reverse initialization order.
func (a *App) Close() error {
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.SessionService != nil {
		if err := a.SessionService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close session service")
		}
	}

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	// With a Claude generation provider the embedder is a separate Gemini
	// client. Close is idempotent, so this is safe when both interfaces
	// share one instance.
	if closer, ok := a.EmbeddingService.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close embedding service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Debug().Msg("Storage closed")
	}

	return nil
}
