package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/scanner"
)

// SplitScanner handles feeds that aggregate several stories inside a single
// entry body: each heading opens a new article, the nodes up to the next
// heading become its description. Entries without headings fall back to the
// standard one-article mapping.
type SplitScanner struct {
	client *http.Client
}

var _ scanner.Scanner = (*SplitScanner)(nil)

// NewSplitScanner wires an HTTP client; nil gets a 20s-timeout default.
func NewSplitScanner(client *http.Client) *SplitScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &SplitScanner{client: client}
}

// Name identifies the adapter variant inside the registry.
func (s *SplitScanner) Name() string {
	return "feed-split"
}

// Scan fetches the feed and splits aggregated entries into per-story
// articles. The heading tag defaults to h2 and can be overridden via the
// splitTag site option.
func (s *SplitScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	items, err := fetchFeed(ctx, s.client, req.URL)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", req.SiteName, err)
	}

	splitTag := req.Options["splitTag"]
	if splitTag == "" {
		splitTag = "h2"
	}

	var articles []domain.Article
	for _, item := range items {
		if item.Description == "" {
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(item.Description))
		if err != nil {
			continue
		}

		headings := doc.Find(splitTag)
		if headings.Length() == 0 {
			articles = append(articles, domain.Article{
				Title:       strings.TrimSpace(item.Title),
				URL:         strings.TrimSpace(item.Link),
				Source:      req.SiteName,
				PublishTime: publishTime(item),
				Description: cleanHTML(item.Description),
			})
			continue
		}

		headings.Each(func(_ int, heading *goquery.Selection) {
			title := strings.TrimSpace(heading.Text())

			// Text() on a multi-node selection concatenates without
			// separators; join node by node instead.
			var parts []string
			heading.NextUntil(splitTag).Each(func(_ int, node *goquery.Selection) {
				if text := strings.Join(strings.Fields(node.Text()), " "); text != "" {
					parts = append(parts, text)
				}
			})
			body := strings.Join(parts, " ")
			if title == "" || body == "" {
				return
			}
			articles = append(articles, domain.Article{
				Title:       title,
				URL:         strings.TrimSpace(item.Link),
				Source:      req.SiteName,
				PublishTime: publishTime(item),
				Description: body,
			})
		})
	}
	return articles, nil
}
