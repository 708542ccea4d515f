package scanner

import (
	"context"
	"testing"

	"NewsDigest/internal/domain"
)

type namedScanner struct {
	name string
}

func (n *namedScanner) Name() string { return n.name }

func (n *namedScanner) Scan(ctx context.Context, req Request) ([]domain.Article, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&namedScanner{name: "feed"})

	got, err := registry.Resolve("feed")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Name() != "feed" {
		t.Fatalf("resolved wrong scanner: %s", got.Name())
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	if _, err := registry.Resolve("missing"); err == nil {
		t.Fatal("expected an error for an unregistered adapter")
	}
}

func TestRegistryRegisterReplaces(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	first := &namedScanner{name: "feed"}
	second := &namedScanner{name: "feed"}
	registry.Register(first)
	registry.Register(second)

	got, err := registry.Resolve("feed")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != second {
		t.Fatal("later registration must replace the earlier one")
	}
}
