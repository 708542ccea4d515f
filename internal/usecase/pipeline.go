package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsDigest/internal/config"
	"NewsDigest/internal/ingest"
	"NewsDigest/internal/ports"
	"NewsDigest/internal/selection"
)

var rawColumns = []string{"title", "url", "source", "publish_time", "description"}

var finalColumns = []string{"title", "url", "source", "importance_score", "category", "full_content"}

// PipelineDeps wires all collaborators into the run orchestration.
type PipelineDeps struct {
	Store       ports.ArchiveStore
	Coordinator *ingest.Coordinator
	Engine      *selection.Engine
	Exporter    ports.Exporter
	Retention   config.RetentionConfig
	Logger      *slog.Logger
}

// Pipeline implements one full aggregation run: ingest, select, persist,
// summarize, export. Runs are idempotent per day thanks to the archive.
type Pipeline struct {
	store       ports.ArchiveStore
	coordinator *ingest.Coordinator
	engine      *selection.Engine
	exporter    ports.Exporter
	retention   config.RetentionConfig
	logger      *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		store:       deps.Store,
		coordinator: deps.Coordinator,
		engine:      deps.Engine,
		exporter:    deps.Exporter,
		retention:   deps.Retention,
		logger:      deps.Logger,
	}
}

// ProcessDay executes one run for the given day. Early exits at the defined
// checkpoints still prune the archive; only archive access errors are fatal.
func (p *Pipeline) ProcessDay(ctx context.Context, day time.Time) error {
	existing, err := p.store.ExistingURLs(ctx)
	if err != nil {
		return fmt.Errorf("load existing urls: %w", err)
	}
	p.logger.Info("archive loaded", "known_urls", len(existing))

	batch := p.coordinator.Collect(ctx, day, existing)
	if batch.Fetched == 0 {
		p.logger.Warn("no data fetched from any source, finishing early")
		p.prune(ctx)
		return nil
	}

	if err := p.exporter.WriteTable(rawFolder(day), "raw_articles", batch.Raw, rawColumns); err != nil {
		p.logger.Error("raw table export failed", "error", err)
	}

	if len(batch.Articles) == 0 {
		p.logger.Warn("no new same-day articles, finishing early")
		p.prune(ctx)
		return nil
	}

	scored := p.engine.ApplyScores(ctx, batch.Articles)
	scored = p.engine.ApplyFrequencyBonus(scored, batch.TitleCounts)
	forced, candidates := p.engine.Partition(scored)
	picked := p.engine.SelectByQuota(candidates)
	final := p.engine.MergeFinal(forced, picked)
	p.logger.Info("selection complete",
		"forced", len(forced), "quota_selected", len(picked), "final", len(final))

	// The whole same-day batch goes to the archive, not just the final
	// list: the next run must skip everything seen today. A write failure
	// only costs idempotence of the next run, never today's report.
	if err := p.store.Append(ctx, batch.Articles); err != nil {
		p.logger.Error("archive write failed, next run may re-ingest today's urls", "error", err)
	}

	p.prune(ctx)

	final = p.engine.Hydrate(ctx, final)
	if err := p.exporter.WriteTable(finalFolder(day), "final_articles_with_content", final, finalColumns); err != nil {
		p.logger.Error("final table export failed", "error", err)
	}

	final = p.engine.Summarize(ctx, final)
	if err := p.exporter.WriteDigest(digestName(day), final); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}

	p.logger.Info("run complete", "selected", len(final))
	return nil
}

func (p *Pipeline) prune(ctx context.Context) {
	if !p.retention.Enabled {
		return
	}

	removed, err := p.store.Prune(ctx, p.retention.Days)
	if err != nil {
		p.logger.Error("archive prune failed", "error", err)
		return
	}
	if removed > 0 {
		p.logger.Info("archive pruned", "removed", removed, "retain_days", p.retention.Days)
	}
}

func rawFolder(day time.Time) string {
	return "RawData_" + day.Format("2006-01-02")
}

func finalFolder(day time.Time) string {
	return "FinalList_" + day.Format("2006-01-02")
}

func digestName(day time.Time) string {
	return "digest_" + day.Format("2006-01-02") + ".txt"
}
