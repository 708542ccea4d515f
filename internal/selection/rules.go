package selection

import (
	"strings"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
)

// Rule types understood by the force-keep matcher.
const (
	RuleKeyword   = "keyword"
	RuleSource    = "source"
	RuleCategory  = "category"
	RuleComposite = "composite"
)

// MatchesAny reports whether the article matches at least one force-keep
// rule. The rule set is the OR of per-rule predicates.
func MatchesAny(a domain.Article, rules []config.ForceKeepRule) bool {
	for _, rule := range rules {
		if matches(a, rule) {
			return true
		}
	}
	return false
}

func matches(a domain.Article, rule config.ForceKeepRule) bool {
	switch rule.Type {
	case RuleKeyword:
		for _, keyword := range rule.Values {
			if containsFold(a.Title, keyword) {
				return true
			}
		}
	case RuleSource:
		for _, source := range rule.Values {
			if a.Source == source {
				return true
			}
		}
	case RuleCategory:
		for _, category := range rule.Values {
			if a.Category == category {
				return true
			}
		}
	case RuleComposite:
		return matchesComposite(a, rule.Conditions)
	}
	return false
}

// matchesComposite ANDs the set conditions; empty fields are skipped. A rule
// with no conditions at all matches nothing.
func matchesComposite(a domain.Article, c config.RuleConditions) bool {
	if c.Source == "" && c.Category == "" && c.Keyword == "" {
		return false
	}
	if c.Source != "" && a.Source != c.Source {
		return false
	}
	if c.Category != "" && a.Category != c.Category {
		return false
	}
	if c.Keyword != "" && !containsFold(a.Title, c.Keyword) {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
