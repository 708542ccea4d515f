package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"NewsDigest/internal/config"
	"NewsDigest/internal/infrastructure/feed"
	"NewsDigest/internal/infrastructure/llm"
	"NewsDigest/internal/infrastructure/report"
	"NewsDigest/internal/infrastructure/scheduler"
	"NewsDigest/internal/infrastructure/storage"
	"NewsDigest/internal/ingest"
	"NewsDigest/internal/logging"
	"NewsDigest/internal/selection"
	"NewsDigest/internal/usecase"
)

// Application wires configuration to the pipeline and owns the resources
// that live for the whole process: the archive store and the model client.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	store    *storage.SQLiteStore
	model    *llm.GeminiClient
}

// New builds a runnable application instance. Archive access is the only
// hard dependency: without it, incremental runs are impossible.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Database.Path, cfg.Database.Table)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	model, err := llm.NewGeminiClient(ctx, cfg.Gemini)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create model client: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.Ingest.SiteTimeout()}

	registry := feed.NewRegistry(httpClient)

	coordinator := ingest.New(registry, cfg.Sites, cfg.Ingest,
		baseLogger.With("component", "ingest"))

	engine := selection.NewEngine(selection.Deps{
		Scorer:     model,
		Summarizer: model,
		FullText:   feed.NewFullText(httpClient),
		Logger:     baseLogger.With("component", "selection"),
	}, cfg.Selection, cfg.Summary)

	exporter := report.NewFileExporter(cfg.Export.Dir,
		baseLogger.With("component", "export"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Store:       store,
		Coordinator: coordinator,
		Engine:      engine,
		Exporter:    exporter,
		Retention:   cfg.Retention,
		Logger:      baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pipeline: pipeline,
		store:    store,
		model:    model,
	}, nil
}

// Run executes a single immediate run, or hands the pipeline to the cron
// scheduler when an expression is configured.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	loc := a.cfg.Scheduler.Location()

	if a.cfg.Scheduler.CronExpression == "" {
		return a.pipeline.ProcessDay(ctx, time.Now().In(loc))
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, loc)
	runner := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))

	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "timezone", loc.String())

	<-ctx.Done()
	return runner.Stop(context.Background())
}

func (a *Application) close() {
	if err := a.model.Close(); err != nil {
		a.logger.Error("close model client", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("close archive", "error", err)
	}
}
