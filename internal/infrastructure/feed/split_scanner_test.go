package feed

import (
	"context"
	"testing"

	"NewsDigest/internal/scanner"
)

const aggregateFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Daily Roundup</title>
    <item>
      <title>Morning Digest</title>
      <link>http://example.com/digest</link>
      <pubDate>Sat, 08 Nov 2025 07:00:00 GMT</pubDate>
      <description><![CDATA[
        <h2>Chip plant opens</h2>
        <p>A new fabrication plant opened today.</p>
        <h2>Markets steady</h2>
        <p>Indexes closed flat.</p>
        <p>Analysts expect more of the same.</p>
      ]]></description>
    </item>
    <item>
      <title>Plain Entry</title>
      <link>http://example.com/plain</link>
      <pubDate>Sat, 08 Nov 2025 08:00:00 GMT</pubDate>
      <description><![CDATA[<p>Just one story.</p>]]></description>
    </item>
  </channel>
</rss>`

func TestSplitScannerSplitsAggregateEntries(t *testing.T) {
	t.Parallel()

	srv := serveFixture(t, aggregateFixture)
	s := NewSplitScanner(srv.Client())

	articles, err := s.Scan(context.Background(), scanner.Request{
		SiteName: "roundup",
		URL:      srv.URL,
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(articles) != 3 {
		t.Fatalf("expected 2 split + 1 plain article, got %d", len(articles))
	}

	if articles[0].Title != "Chip plant opens" {
		t.Fatalf("unexpected first split title: %q", articles[0].Title)
	}
	if articles[0].Description != "A new fabrication plant opened today." {
		t.Fatalf("unexpected first split body: %q", articles[0].Description)
	}
	if articles[1].Title != "Markets steady" {
		t.Fatalf("unexpected second split title: %q", articles[1].Title)
	}
	if articles[1].Description != "Indexes closed flat. Analysts expect more of the same." {
		t.Fatalf("split body must cover every node up to the next heading: %q", articles[1].Description)
	}

	// Both split articles inherit the entry link and publish time.
	if articles[0].URL != "http://example.com/digest" || articles[1].URL != "http://example.com/digest" {
		t.Fatalf("split articles must share the entry link")
	}

	// The heading-free entry falls back to the standard mapping.
	if articles[2].Title != "Plain Entry" || articles[2].Description != "Just one story." {
		t.Fatalf("unexpected fallback article: %+v", articles[2])
	}
}

func TestSplitScannerCustomTag(t *testing.T) {
	t.Parallel()

	fixture := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Custom</title>
    <item>
      <title>Entry</title>
      <link>http://example.com/e</link>
      <pubDate>Sat, 08 Nov 2025 07:00:00 GMT</pubDate>
      <description><![CDATA[<h3>Inner story</h3><p>Body text.</p>]]></description>
    </item>
  </channel>
</rss>`

	srv := serveFixture(t, fixture)
	s := NewSplitScanner(srv.Client())

	articles, err := s.Scan(context.Background(), scanner.Request{
		SiteName: "custom",
		URL:      srv.URL,
		Options:  map[string]string{"splitTag": "h3"},
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(articles) != 1 || articles[0].Title != "Inner story" {
		t.Fatalf("splitTag option not honored: %+v", articles)
	}
}
