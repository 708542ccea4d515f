package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/araddon/dateparse"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/scanner"
)

const defaultWorkers = 5

// Batch is the coordinator output: the new, same-day, title-deduplicated
// articles plus the counts the downstream stages need.
type Batch struct {
	// Raw is everything the adapters produced, merged in configuration
	// order, before any filtering.
	Raw []domain.Article
	// Articles is the filtered, deduplicated batch.
	Articles []domain.Article
	// TitleCounts counts titles on the post-date-filter, pre-dedup
	// population: the cross-source repetition signal for the frequency
	// bonus.
	TitleCounts map[string]int
	// Stage counts for diagnostics.
	Fetched int
	New     int
	SameDay int
}

// Coordinator fans configured sites out over a bounded worker pool and
// reduces the merged result to the day's new articles. A single site's
// failure contributes nothing and never aborts the others.
type Coordinator struct {
	registry    *scanner.Registry
	sites       []config.SiteConfig
	workers     int
	siteTimeout time.Duration
	logger      *slog.Logger
}

// New wires the adapter registry with the configured sites.
func New(registry *scanner.Registry, sites []config.SiteConfig, cfg config.IngestConfig, logger *slog.Logger) *Coordinator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Coordinator{
		registry:    registry,
		sites:       sites,
		workers:     workers,
		siteTimeout: cfg.SiteTimeout(),
		logger:      logger,
	}
}

// Collect runs every adapter, drops already-archived and empty-URL records,
// keeps only articles published on day's calendar date, and deduplicates by
// title (first occurrence in merge order wins).
func (c *Coordinator) Collect(ctx context.Context, day time.Time, existing map[string]struct{}) Batch {
	raw := c.fetchAll(ctx, day)

	batch := Batch{
		Raw:         raw,
		TitleCounts: map[string]int{},
		Fetched:     len(raw),
	}

	fresh := make([]domain.Article, 0, len(raw))
	for _, a := range raw {
		if a.URL == "" {
			c.logger.Warn("dropping article without url", "source", a.Source, "title", a.Title)
			continue
		}
		if _, seen := existing[a.URL]; seen {
			continue
		}
		fresh = append(fresh, a)
	}
	batch.New = len(fresh)

	sameDay := make([]domain.Article, 0, len(fresh))
	for _, a := range fresh {
		if a.PublishTime == "" {
			c.logger.Warn("dropping article without publish time", "source", a.Source, "title", a.Title)
			continue
		}
		published, err := dateparse.ParseIn(a.PublishTime, day.Location())
		if err != nil {
			c.logger.Warn("unparseable publish time", "source", a.Source, "value", a.PublishTime, "error", err)
			continue
		}
		if sameCalendarDay(published.In(day.Location()), day) {
			sameDay = append(sameDay, a)
		}
	}
	batch.SameDay = len(sameDay)

	for _, a := range sameDay {
		batch.TitleCounts[a.Title]++
	}

	seenTitles := make(map[string]struct{}, len(sameDay))
	for _, a := range sameDay {
		if _, dup := seenTitles[a.Title]; dup {
			continue
		}
		seenTitles[a.Title] = struct{}{}
		batch.Articles = append(batch.Articles, a)
	}

	c.logger.Info("ingestion complete",
		"fetched", batch.Fetched,
		"new", batch.New,
		"same_day", batch.SameDay,
		"deduplicated", len(batch.Articles))

	return batch
}

type siteResult struct {
	index    int
	articles []domain.Article
	err      error
}

// fetchAll runs the sites on the pool and merges per-site results in
// configuration order, so tie-breaking downstream is reproducible no matter
// which site finished first.
func (c *Coordinator) fetchAll(ctx context.Context, day time.Time) []domain.Article {
	if len(c.sites) == 0 {
		return nil
	}

	jobs := make(chan int)
	results := make(chan siteResult, len(c.sites))

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go c.worker(ctx, day, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for i := range c.sites {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	bySite := make([][]domain.Article, len(c.sites))
	for res := range results {
		site := c.sites[res.index]
		if res.err != nil {
			c.logger.Error("site failed", "site", site.Name, "error", res.err)
			continue
		}
		c.logger.Info("site done", "site", site.Name, "articles", len(res.articles))
		bySite[res.index] = res.articles
	}

	var merged []domain.Article
	for _, articles := range bySite {
		merged = append(merged, articles...)
	}
	return merged
}

func (c *Coordinator) worker(ctx context.Context, day time.Time, jobs <-chan int, results chan<- siteResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for idx := range jobs {
		site := c.sites[idx]

		strategy, err := c.registry.Resolve(site.Adapter)
		if err != nil {
			results <- siteResult{index: idx, err: err}
			continue
		}

		scanCtx := ctx
		var cancel context.CancelFunc
		if c.siteTimeout > 0 {
			scanCtx, cancel = context.WithTimeout(ctx, c.siteTimeout)
		}

		articles, err := strategy.Scan(scanCtx, scanner.Request{
			Day:      day,
			SiteName: site.Name,
			URL:      site.URL,
			Options:  site.Options,
		})
		if cancel != nil {
			cancel()
		}

		for i := range articles {
			if articles[i].Source == "" {
				articles[i].Source = site.Name
			}
		}

		results <- siteResult{index: idx, articles: articles, err: err}
	}
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
