package facetcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/facetsearch/internal/db"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/aggregation"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/filter"
)

type mockSource struct {
	buckets []aggregation.Bucket
	err     error
	calls   int
}

func (m *mockSource) Buckets(
	_ context.Context, _ string, _ filter.Expression, _ string, _ int,
) ([]aggregation.Bucket, error) {
	m.calls++
	return m.buckets, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCache(t *testing.T, inner *mockSource) (*CachedFacets, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, "facetsearch:products:", time.Minute, nil, zap.NewNop()), ms
}

func mustBucket(t *testing.T, key string, count int64) aggregation.Bucket {
	t.Helper()
	b, err := aggregation.NewBucket(key, count)
	if err != nil {
		t.Fatalf("NewBucket: %v", err)
	}
	return b
}
