package facetcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetsearch/internal/domain/search/aggregation"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/filter"
)

func TestBuckets_CacheMiss(t *testing.T) {
	inner := &mockSource{buckets: []aggregation.Bucket{mustBucket(t, "acme", 7)}}
	cf, ms := newTestCache(t, inner)

	var stored []byte
	var storedTTL time.Duration
	ms.setFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		if !strings.HasPrefix(key, "facetsearch:products:facet_cache:") {
			t.Errorf("unexpected key %q", key)
		}
		stored, storedTTL = value, ttl
		return nil
	}

	buckets, err := cf.Buckets(context.Background(), "shoes", filter.Expression{}, "brand", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buckets) != 1 || buckets[0].Key() != "acme" {
		t.Fatalf("unexpected buckets: %v", buckets)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d", inner.calls)
	}
	if string(stored) != `[{"key":"acme","doc_count":7}]` {
		t.Errorf("stored = %s", stored)
	}
	if storedTTL != time.Minute {
		t.Errorf("ttl = %v", storedTTL)
	}
}

func TestBuckets_CacheHit(t *testing.T) {
	inner := &mockSource{}
	cf, ms := newTestCache(t, inner)

	ms.getFn = func(context.Context, string) ([]byte, error) {
		return []byte(`[{"key":"1700000000","key_as_string":"2023-11-14","doc_count":2}]`), nil
	}

	buckets, err := cf.Buckets(context.Background(), "", filter.Expression{}, "date", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 0 {
		t.Error("inner source must not be called on hit")
	}
	if len(buckets) != 1 || buckets[0].Label() != "2023-11-14" || buckets[0].DocCount() != 2 {
		t.Errorf("unexpected buckets: %+v", buckets)
	}
}

func TestBuckets_CorruptCacheFallsBack(t *testing.T) {
	inner := &mockSource{buckets: []aggregation.Bucket{mustBucket(t, "acme", 1)}}
	cf, ms := newTestCache(t, inner)

	ms.getFn = func(context.Context, string) ([]byte, error) {
		return []byte(`[{"key":"acme"}]`), nil
	}

	buckets, err := cf.Buckets(context.Background(), "", filter.Expression{}, "brand", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || len(buckets) != 1 {
		t.Errorf("expected live query after corrupt entry, calls=%d", inner.calls)
	}
}

func TestBuckets_StoreErrorsDegrade(t *testing.T) {
	inner := &mockSource{buckets: []aggregation.Bucket{mustBucket(t, "acme", 1)}}
	cf, ms := newTestCache(t, inner)

	ms.getFn = func(context.Context, string) ([]byte, error) { return nil, errors.New("conn refused") }
	ms.setFn = func(context.Context, string, []byte, time.Duration) error { return errors.New("conn refused") }

	if _, err := cf.Buckets(context.Background(), "", filter.Expression{}, "brand", 10); err != nil {
		t.Fatalf("cache failures must not fail the request: %v", err)
	}
}

func TestBuckets_InnerError(t *testing.T) {
	boom := errors.New("backend down")
	inner := &mockSource{err: boom}
	cf, ms := newTestCache(t, inner)

	ms.setFn = func(context.Context, string, []byte, time.Duration) error {
		t.Error("nothing should be cached on error")
		return nil
	}

	_, err := cf.Buckets(context.Background(), "", filter.Expression{}, "brand", 10)
	if !errors.Is(err, boom) {
		t.Errorf("expected inner error, got %v", err)
	}
}

func TestCacheKey_DependsOnInputs(t *testing.T) {
	cf, _ := newTestCache(t, &mockSource{})

	acme, err := filter.NewAnyOf("brand", "acme")
	if err != nil {
		t.Fatal(err)
	}
	withBrand, err := filter.NewExpression([]filter.Condition{acme})
	if err != nil {
		t.Fatal(err)
	}

	base := cf.cacheKey("shoes", filter.Expression{}, "color", 10)
	if base != cf.cacheKey(" shoes ", filter.Expression{}, "color", 10) {
		t.Error("surrounding whitespace should not change the key")
	}
	for name, other := range map[string]string{
		"text":     cf.cacheKey("boots", filter.Expression{}, "color", 10),
		"filters":  cf.cacheKey("shoes", withBrand, "color", 10),
		"category": cf.cacheKey("shoes", filter.Expression{}, "size", 10),
		"limit":    cf.cacheKey("shoes", filter.Expression{}, "color", 20),
	} {
		if other == base {
			t.Errorf("changing %s must change the key", name)
		}
	}
}

func TestBuckets_CountsHitsAndMisses(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_facet_cache_total"}, []string{"result"})
	inner := &mockSource{buckets: []aggregation.Bucket{mustBucket(t, "acme", 1)}}

	var cached []byte
	ms := &mockKVStore{}
	ms.getFn = func(context.Context, string) ([]byte, error) {
		if cached == nil {
			return nil, nil
		}
		return cached, nil
	}
	ms.setFn = func(_ context.Context, _ string, value []byte, _ time.Duration) error {
		cached = value
		return nil
	}
	cf := New(inner, ms, "p:", time.Minute, counter, zap.NewNop())

	for range 3 {
		if _, err := cf.Buckets(context.Background(), "", filter.Expression{}, "brand", 10); err != nil {
			t.Fatal(err)
		}
	}

	if v := testutil.ToFloat64(counter.WithLabelValues("miss")); v != 1 {
		t.Errorf("miss = %f", v)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("hit")); v != 2 {
		t.Errorf("hit = %f", v)
	}
}
