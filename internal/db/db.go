package db

import (
	"context"
	"time"
)

// Store is the database facade the composition root wires; consumers depend on
// the narrow sub-interfaces.
type Store interface {
	Pinger
	KVStore
	Searcher
	IndexInspector
	IndexCreator
	HashWriter
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides the key-value operations used for caching.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexInspector reports whether an FT index exists.
type IndexInspector interface {
	IndexExists(ctx context.Context, name string) (bool, error)
}

// IndexCreator creates FT indexes.
type IndexCreator interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
}

// HashWriter stores documents as hashes.
type HashWriter interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
}

// HashSetItem is one hash written by HSetMulti.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// Searcher runs queries against an FT index.
type Searcher interface {
	Search(ctx context.Context, q *SearchQuery) (*SearchResult, error)
	Aggregate(ctx context.Context, q *AggregateQuery) (*AggregateResult, error)
}
