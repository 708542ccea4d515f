package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/scanner"
)

// TitlesScanner is the lightweight adapter: core metadata only, no body
// handling beyond the feed summary. Useful for slow or flaky sources.
type TitlesScanner struct {
	client *http.Client
}

var _ scanner.Scanner = (*TitlesScanner)(nil)

// NewTitlesScanner wires an HTTP client; nil gets a 20s-timeout default.
func NewTitlesScanner(client *http.Client) *TitlesScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &TitlesScanner{client: client}
}

// Name identifies the adapter variant inside the registry.
func (t *TitlesScanner) Name() string {
	return "titles"
}

// Scan extracts title, link and publish time per item; the feed summary
// becomes the description when present.
func (t *TitlesScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	items, err := fetchFeed(ctx, t.client, req.URL)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", req.SiteName, err)
	}

	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		articles = append(articles, domain.Article{
			Title:       strings.TrimSpace(item.Title),
			URL:         strings.TrimSpace(item.Link),
			Source:      req.SiteName,
			PublishTime: publishTime(item),
			Description: cleanHTML(item.Description),
		})
	}
	return articles, nil
}
