package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/facetsearch/internal/db"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/filter"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn    func(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	aggregateFn func(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error)
}

func (m *mockStore) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error) {
	if m.aggregateFn != nil {
		return m.aggregateFn(ctx, q)
	}
	return &db.AggregateResult{}, nil
}

func testConfig() Config {
	return Config{Index: "products", KeyPrefix: "product:", TitleField: "title"}
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, testConfig(), nil), ms
}

func mustAnyOf(t *testing.T, key string, values ...string) filter.Condition {
	t.Helper()
	c, err := filter.NewAnyOf(key, values...)
	if err != nil {
		t.Fatalf("NewAnyOf: %v", err)
	}
	return c
}

func mustExpression(t *testing.T, must ...filter.Condition) filter.Expression {
	t.Helper()
	e, err := filter.NewExpression(must)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	return e
}
