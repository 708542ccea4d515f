package feed

import (
	"net/http"

	"NewsDigest/internal/scanner"
)

// NewRegistry returns a scanner registry with every adapter variant
// registered, sharing one HTTP client.
func NewRegistry(client *http.Client) *scanner.Registry {
	registry := scanner.NewRegistry()
	registry.Register(NewFeedScanner(client))
	registry.Register(NewSplitScanner(client))
	registry.Register(NewTitlesScanner(client))
	return registry
}
