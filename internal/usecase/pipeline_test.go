package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/ingest"
	"NewsDigest/internal/scanner"
	"NewsDigest/internal/selection"
)

type memoryStore struct {
	mu      sync.Mutex
	urls    map[string]struct{}
	pruned  int
	listErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{urls: map[string]struct{}{}}
}

func (m *memoryStore) ExistingURLs(ctx context.Context) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make(map[string]struct{}, len(m.urls))
	for u := range m.urls {
		out[u] = struct{}{}
	}
	return out, nil
}

func (m *memoryStore) Append(ctx context.Context, articles []domain.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range articles {
		if a.URL != "" {
			m.urls[a.URL] = struct{}{}
		}
	}
	return nil
}

func (m *memoryStore) Prune(ctx context.Context, retainDays int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruned++
	return 0, nil
}

func (m *memoryStore) Close() error { return nil }

type recordingExporter struct {
	tables  map[string][]domain.Article
	digests map[string][]domain.Article
}

func newRecordingExporter() *recordingExporter {
	return &recordingExporter{
		tables:  map[string][]domain.Article{},
		digests: map[string][]domain.Article{},
	}
}

func (r *recordingExporter) WriteTable(folder, base string, articles []domain.Article, columns []string) error {
	r.tables[base] = articles
	return nil
}

func (r *recordingExporter) WriteDigest(name string, articles []domain.Article) error {
	r.digests[name] = articles
	return nil
}

type fixedScanner struct {
	articles []domain.Article
	err      error
}

func (f *fixedScanner) Name() string { return "feed" }

func (f *fixedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	return f.articles, f.err
}

type tableScorer struct {
	rows []domain.TitleScore
	err  error
}

func (s *tableScorer) Score(ctx context.Context, titles []string) ([]domain.TitleScore, error) {
	return s.rows, s.err
}

type echoSummarizer struct{}

func (echoSummarizer) Summarize(ctx context.Context, content string) (string, error) {
	return "summary of: " + content[:10], nil
}

type noopFullText struct{}

func (noopFullText) Fetch(ctx context.Context, url, fallback string) string { return fallback }

var runDay = time.Date(2025, 11, 8, 7, 0, 0, 0, time.UTC)

func dayStamp(hour int) string {
	return time.Date(2025, 11, 8, hour, 0, 0, 0, time.UTC).Format(time.RFC3339)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildPipeline(t *testing.T, store *memoryStore, exporter *recordingExporter, scan *fixedScanner, scorer *tableScorer, retention config.RetentionConfig) *Pipeline {
	t.Helper()

	logger := testLogger()

	registry := scanner.NewRegistry()
	registry.Register(scan)

	coordinator := ingest.New(registry,
		[]config.SiteConfig{{Name: "site-a", Adapter: "feed", URL: "http://a/rss"}},
		config.IngestConfig{Workers: 2}, logger)

	engine := selection.NewEngine(selection.Deps{
		Scorer:     scorer,
		Summarizer: echoSummarizer{},
		FullText:   noopFullText{},
		Logger:     logger,
	}, config.SelectionConfig{TotalLimit: 10}, config.SummaryConfig{MinLength: 50, TruncateLength: 200})

	return NewPipeline(PipelineDeps{
		Store:       store,
		Coordinator: coordinator,
		Engine:      engine,
		Exporter:    exporter,
		Retention:   retention,
		Logger:      logger,
	})
}

func TestProcessDayEndToEnd(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	exporter := newRecordingExporter()
	scan := &fixedScanner{articles: []domain.Article{
		{URL: "http://a/1", Title: "Alpha", PublishTime: dayStamp(6), Description: "Body of the alpha story with plenty of characters to summarize."},
		{URL: "http://a/2", Title: "Beta", PublishTime: dayStamp(5), Description: "Short."},
	}}
	scorer := &tableScorer{rows: []domain.TitleScore{
		{Title: "Alpha", Score: 9, Category: "tech"},
		{Title: "Beta", Score: 2, Category: "world"},
	}}

	p := buildPipeline(t, store, exporter, scan, scorer, config.RetentionConfig{})

	if err := p.ProcessDay(context.Background(), runDay); err != nil {
		t.Fatalf("process day: %v", err)
	}

	if got := exporter.tables["raw_articles"]; len(got) != 2 {
		t.Fatalf("raw table must hold the unfiltered batch, got %d", len(got))
	}
	final := exporter.tables["final_articles_with_content"]
	if len(final) != 2 {
		t.Fatalf("expected 2 final articles, got %d", len(final))
	}
	if final[0].Title != "Alpha" || final[0].ImportanceScore != 9 {
		t.Fatalf("expected Alpha ranked first: %+v", final[0])
	}
	if final[0].FullContent == "" {
		t.Fatal("final articles must be hydrated")
	}

	digest := exporter.digests["digest_2025-11-08.txt"]
	if len(digest) != 2 {
		t.Fatalf("expected 2 digest articles, got %d", len(digest))
	}
	if digest[0].SummarizedContent == "" {
		t.Fatal("digest articles must carry a summary")
	}

	if _, ok := store.urls["http://a/1"]; !ok {
		t.Fatal("processed urls must reach the archive")
	}
}

func TestProcessDayRerunYieldsNothingNew(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	exporter := newRecordingExporter()
	scan := &fixedScanner{articles: []domain.Article{
		{URL: "http://a/1", Title: "Alpha", PublishTime: dayStamp(6), Description: "Body."},
	}}
	scorer := &tableScorer{rows: []domain.TitleScore{{Title: "Alpha", Score: 5, Category: "tech"}}}

	p := buildPipeline(t, store, exporter, scan, scorer, config.RetentionConfig{Enabled: true, Days: 7})

	if err := p.ProcessDay(context.Background(), runDay); err != nil {
		t.Fatalf("first run: %v", err)
	}

	second := newRecordingExporter()
	p2 := buildPipeline(t, store, second, scan, scorer, config.RetentionConfig{Enabled: true, Days: 7})
	if err := p2.ProcessDay(context.Background(), runDay); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(second.digests) != 0 {
		t.Fatalf("rerun over an archived day must not produce a digest: %v", second.digests)
	}
	if store.pruned < 2 {
		t.Fatalf("every exit path must prune, got %d prunes", store.pruned)
	}
}

func TestProcessDayNothingFetchedStillPrunes(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	exporter := newRecordingExporter()
	scan := &fixedScanner{err: fmt.Errorf("network down")}
	scorer := &tableScorer{}

	p := buildPipeline(t, store, exporter, scan, scorer, config.RetentionConfig{Enabled: true, Days: 7})

	if err := p.ProcessDay(context.Background(), runDay); err != nil {
		t.Fatalf("empty run must not error: %v", err)
	}
	if len(exporter.tables) != 0 || len(exporter.digests) != 0 {
		t.Fatal("nothing fetched must export nothing")
	}
	if store.pruned != 1 {
		t.Fatalf("early exit must still prune, got %d", store.pruned)
	}
}

func TestProcessDayDegradedScoringCompletes(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	exporter := newRecordingExporter()
	scan := &fixedScanner{articles: []domain.Article{
		{URL: "http://a/1", Title: "Alpha", PublishTime: dayStamp(6), Description: "Body."},
	}}
	scorer := &tableScorer{err: fmt.Errorf("model overloaded")}

	p := buildPipeline(t, store, exporter, scan, scorer, config.RetentionConfig{})

	if err := p.ProcessDay(context.Background(), runDay); err != nil {
		t.Fatalf("degraded run must complete: %v", err)
	}

	digest := exporter.digests["digest_2025-11-08.txt"]
	if len(digest) != 1 {
		t.Fatalf("degraded run must still produce a digest, got %d articles", len(digest))
	}
	if digest[0].ImportanceScore != 0 || digest[0].Category != domain.CategoryUnknown {
		t.Fatalf("degraded articles keep 0/unknown: %+v", digest[0])
	}
}

func TestProcessDayArchiveErrorIsFatal(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.listErr = fmt.Errorf("disk failure")

	p := buildPipeline(t, store, newRecordingExporter(), &fixedScanner{}, &tableScorer{}, config.RetentionConfig{})

	if err := p.ProcessDay(context.Background(), runDay); err == nil {
		t.Fatal("archive read failure must abort the run")
	}
}
