package selection

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

const frequencyBonusCap = 2

const contentMissingFallback = "article body unavailable"

// Deps wires the external collaborators into the engine.
type Deps struct {
	Scorer     ports.Scorer
	Summarizer ports.Summarizer
	FullText   ports.FullTextFetcher
	Logger     *slog.Logger
}

// Engine turns the ingested batch into the bounded final list: scoring,
// frequency bonus, force-keep override, quota selection, hydration and
// summarization. Every step takes a batch in and returns a new batch out.
type Engine struct {
	scorer     ports.Scorer
	summarizer ports.Summarizer
	fullText   ports.FullTextFetcher
	logger     *slog.Logger

	rules      []config.ForceKeepRule
	quotas     map[string]int
	totalLimit int

	minLength      int
	truncateLength int
	delay          time.Duration
	sleep          func(time.Duration)
}

// NewEngine constructs the selection core from configuration.
func NewEngine(deps Deps, sel config.SelectionConfig, sum config.SummaryConfig) *Engine {
	return &Engine{
		scorer:         deps.Scorer,
		summarizer:     deps.Summarizer,
		fullText:       deps.FullText,
		logger:         deps.Logger,
		rules:          sel.ForceKeepRules,
		quotas:         sel.CategoryQuotas,
		totalLimit:     sel.TotalLimit,
		minLength:      sum.MinLength,
		truncateLength: sum.TruncateLength,
		delay:          sum.Delay(),
		sleep:          time.Sleep,
	}
}

// ApplyScores sends the batch's unique titles to the scorer in one request
// and maps the result back onto every article sharing a title. Titles the
// service missed default to score 0 / category unknown; a total service
// failure degrades the whole batch the same way instead of aborting.
func (e *Engine) ApplyScores(ctx context.Context, articles []domain.Article) []domain.Article {
	if len(articles) == 0 {
		return nil
	}

	scored := make([]domain.Article, len(articles))
	copy(scored, articles)

	rows, err := e.scorer.Score(ctx, uniqueTitles(articles))
	if err != nil {
		e.logger.Error("scoring failed, degrading whole batch", "error", err)
		for i := range scored {
			scored[i].ImportanceScore = 0
			scored[i].Category = domain.CategoryUnknown
		}
		return scored
	}

	byTitle := make(map[string]domain.TitleScore, len(rows))
	for _, row := range rows {
		byTitle[strings.TrimSpace(row.Title)] = row
	}

	missing := 0
	for i := range scored {
		row, ok := byTitle[scored[i].Title]
		if !ok {
			scored[i].ImportanceScore = 0
			scored[i].Category = domain.CategoryUnknown
			missing++
			continue
		}
		scored[i].ImportanceScore = row.Score
		scored[i].Category = domain.NormalizeCategory(row.Category)
	}
	if missing > 0 {
		e.logger.Warn("titles missing from scoring response", "count", missing)
	}

	return scored
}

// ApplyFrequencyBonus rewards cross-source repetition: each article gains
// min(count-1, 2) where count is how many batch articles shared its title
// before deduplication.
func (e *Engine) ApplyFrequencyBonus(articles []domain.Article, titleCounts map[string]int) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles)

	for i := range out {
		bonus := titleCounts[out[i].Title] - 1
		if bonus > frequencyBonusCap {
			bonus = frequencyBonusCap
		}
		if bonus > 0 {
			out[i].ImportanceScore += bonus
		}
	}
	return out
}

// Partition splits the batch into forced articles (matching any force-keep
// rule, bypassing ranking and quotas) and the remaining candidates.
func (e *Engine) Partition(articles []domain.Article) (forced, candidates []domain.Article) {
	for _, a := range articles {
		if MatchesAny(a, e.rules) {
			forced = append(forced, a)
		} else {
			candidates = append(candidates, a)
		}
	}
	return forced, candidates
}

// SelectByQuota walks the candidates sorted by score descending (stable, so
// ties keep merge order) and accepts until the per-category quotas and the
// total limit are exhausted. Quota is a ceiling per category, not a floor:
// hitting the total limit stops the walk even with quota headroom left.
func (e *Engine) SelectByQuota(candidates []domain.Article) []domain.Article {
	ranked := make([]domain.Article, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ImportanceScore > ranked[j].ImportanceScore
	})

	categoryCounts := make(map[string]int, len(e.quotas))
	var picked []domain.Article
	for _, a := range ranked {
		if len(picked) >= e.totalLimit {
			break
		}
		if quota, bounded := e.quotas[a.Category]; bounded {
			if categoryCounts[a.Category] >= quota {
				continue
			}
			categoryCounts[a.Category]++
		}
		picked = append(picked, a)
	}
	return picked
}

// MergeFinal concatenates forced then quota-selected articles and drops any
// later (url, title) duplicate, so forced articles win conflicts.
func (e *Engine) MergeFinal(forced, picked []domain.Article) []domain.Article {
	type key struct {
		url   string
		title string
	}

	seen := make(map[key]struct{}, len(forced)+len(picked))
	final := make([]domain.Article, 0, len(forced)+len(picked))
	for _, a := range append(append([]domain.Article{}, forced...), picked...) {
		k := key{url: a.URL, title: a.Title}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		final = append(final, a)
	}
	return final
}

// Hydrate fills FullContent from the description, falling back to a page
// re-fetch when the feed carried no body.
func (e *Engine) Hydrate(ctx context.Context, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles)

	for i := range out {
		if strings.TrimSpace(out[i].Description) != "" {
			out[i].FullContent = out[i].Description
			continue
		}
		out[i].FullContent = e.fullText.Fetch(ctx, out[i].URL, contentMissingFallback)
	}
	return out
}

// Summarize condenses each article long enough to warrant it, one call per
// article with a pacing delay between calls. Per-item failures fall back to
// a truncated prefix and never affect sibling articles.
func (e *Engine) Summarize(ctx context.Context, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles)

	for i := range out {
		content := out[i].FullContent
		if len([]rune(content)) < e.minLength {
			out[i].SummarizedContent = content
			continue
		}

		summary, err := e.summarizer.Summarize(ctx, content)
		if err != nil || strings.TrimSpace(summary) == "" {
			if err != nil {
				e.logger.Warn("summarization failed, truncating", "title", out[i].Title, "error", err)
			}
			out[i].SummarizedContent = truncate(content, e.truncateLength)
		} else {
			out[i].SummarizedContent = strings.TrimSpace(summary)
		}

		if e.delay > 0 && i < len(out)-1 {
			e.sleep(e.delay)
		}
	}
	return out
}

func uniqueTitles(articles []domain.Article) []string {
	seen := make(map[string]struct{}, len(articles))
	titles := make([]string, 0, len(articles))
	for _, a := range articles {
		if _, dup := seen[a.Title]; dup {
			continue
		}
		seen[a.Title] = struct{}{}
		titles = append(titles, a.Title)
	}
	return titles
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
