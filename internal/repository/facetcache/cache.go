// Package facetcache caches facet buckets in the key-value store.
package facetcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetsearch/internal/db"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/aggregation"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/filter"
)

// source computes facet buckets; usually the search repository.
type source interface {
	Buckets(
		ctx context.Context, text string, filters filter.Expression, category string, limit int,
	) ([]aggregation.Bucket, error)
}

// store is the consumer interface for the facet cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedFacets serves buckets from the store and falls back to the inner source.
type CachedFacets struct {
	inner      source
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. Keys are namespaced by prefix (key prefix plus index).
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner source,
	s store,
	prefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedFacets {
	return &CachedFacets{
		inner:      inner,
		store:      s,
		prefix:     prefix + "facet_cache:",
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Buckets returns cached buckets or computes and stores them.
// Cache failures never fail the request.
func (c *CachedFacets) Buckets(
	ctx context.Context, text string, filters filter.Expression, category string, limit int,
) ([]aggregation.Bucket, error) {
	key := c.cacheKey(text, filters, category, limit)

	if buckets, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return buckets, nil
	}

	c.incCache("miss")

	buckets, err := c.inner.Buckets(ctx, text, filters, category, limit)
	if err != nil {
		return nil, fmt.Errorf("facet buckets: %w", err)
	}

	c.putToCache(ctx, key, buckets)
	return buckets, nil
}

func (c *CachedFacets) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes everything that changes the aggregate. Conditions come from
// sorted demand categories, so equal demands hash equally.
func (c *CachedFacets) cacheKey(text string, filters filter.Expression, category string, limit int) string {
	var sb strings.Builder
	sb.WriteString(category)
	sb.WriteByte(0)
	sb.WriteString(strings.TrimSpace(text))
	sb.WriteByte(0)
	sb.WriteString(strconv.Itoa(limit))
	for _, cond := range filters.Must() {
		sb.WriteByte(0)
		sb.WriteString(cond.Key())
		for _, v := range cond.Values() {
			sb.WriteByte(1)
			sb.WriteString(v)
		}
	}
	h := sha256.Sum256([]byte(sb.String()))
	return c.prefix + hex.EncodeToString(h[:])
}

func (c *CachedFacets) getFromCache(ctx context.Context, key string) ([]aggregation.Bucket, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached facet", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var buckets []aggregation.Bucket
	if err := json.Unmarshal(data, &buckets); err != nil {
		c.logger.Warn("Failed to parse cached facet", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return buckets, true
}

func (c *CachedFacets) putToCache(ctx context.Context, key string, buckets []aggregation.Bucket) {
	data, err := json.Marshal(buckets)
	if err != nil {
		c.logger.Warn("Failed to encode facet for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache facet", zap.String("key", key), zap.Error(err))
	}
}
