package ports

import (
	"context"
	"time"

	"NewsDigest/internal/domain"
)

// ArchiveStore persists previously ingested URLs so repeated runs only
// process the delta.
type ArchiveStore interface {
	ExistingURLs(ctx context.Context) (map[string]struct{}, error)
	Append(ctx context.Context, articles []domain.Article) error
	Prune(ctx context.Context, retainDays int) (int64, error)
	Close() error
}

// Scorer returns an importance score and category per title in one batched
// request. Rows may be missing or extra; callers handle both.
type Scorer interface {
	Score(ctx context.Context, titles []string) ([]domain.TitleScore, error)
}

// Summarizer condenses one article's full text.
type Summarizer interface {
	Summarize(ctx context.Context, content string) (string, error)
}

// FullTextFetcher re-fetches an article body when the feed description is
// empty. Implementations never fail: fallback is returned on any error.
type FullTextFetcher interface {
	Fetch(ctx context.Context, url, fallback string) string
}

// Exporter writes intermediate and final tables plus the text digest.
type Exporter interface {
	WriteTable(folder, base string, articles []domain.Article, columns []string) error
	WriteDigest(name string, articles []domain.Article) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
