package feed

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsDigest/internal/ports"
)

// Bodies shorter than this usually mean the extraction hit a paywall or a
// script shell, so the fallback text is more useful.
const minExtractedLength = 100

// FullText fetches article pages and extracts paragraph text. It never
// returns an error: the caller-supplied fallback covers every failure.
type FullText struct {
	client *http.Client
}

var _ ports.FullTextFetcher = (*FullText)(nil)

// NewFullText wires an HTTP client; nil gets a 20s-timeout default.
func NewFullText(client *http.Client) *FullText {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &FullText{client: client}
}

// Fetch downloads the page at url and returns its paragraph text, or
// fallback when the request, parse, or extraction comes up short.
func (f *FullText) Fetch(ctx context.Context, url, fallback string) string {
	if url == "" {
		return fallback
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fallback
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fallback
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fallback
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	text := strings.Join(paragraphs, "\n")
	if len([]rune(text)) < minExtractedLength {
		return fallback
	}
	return text
}
