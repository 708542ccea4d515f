package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/scanner"
)

const userAgent = "NewsDigest/1.0"

// FeedScanner is the standard adapter: one article per feed item.
type FeedScanner struct {
	client *http.Client
}

var _ scanner.Scanner = (*FeedScanner)(nil)

// NewFeedScanner wires an HTTP client; a default with a 20s timeout is used
// when nil.
func NewFeedScanner(client *http.Client) *FeedScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &FeedScanner{client: client}
}

// Name identifies the adapter variant inside the registry.
func (f *FeedScanner) Name() string {
	return "feed"
}

// Scan fetches the configured feed and maps every item onto an Article.
func (f *FeedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	items, err := fetchFeed(ctx, f.client, req.URL)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", req.SiteName, err)
	}

	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		description := item.Description
		if description == "" {
			description = item.Content
		}
		articles = append(articles, domain.Article{
			Title:       strings.TrimSpace(item.Title),
			URL:         strings.TrimSpace(item.Link),
			Source:      req.SiteName,
			PublishTime: publishTime(item),
			Description: cleanHTML(description),
		})
	}
	return articles, nil
}

func fetchFeed(ctx context.Context, client *http.Client, url string) ([]*gofeed.Item, error) {
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent

	feed, err := parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed.Items, nil
}

// publishTime prefers the raw published string; Atom feeds often only carry
// an updated timestamp.
func publishTime(item *gofeed.Item) string {
	if item.Published != "" {
		return item.Published
	}
	if item.Updated != "" {
		return item.Updated
	}
	if item.PublishedParsed != nil {
		return item.PublishedParsed.Format(time.RFC3339)
	}
	return ""
}

// cleanHTML strips markup and collapses whitespace in feed descriptions.
func cleanHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	doc.Find("script,style,iframe,noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
