package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/facetsearch/internal/db"
	"github.com/kailas-cloud/facetsearch/internal/domain"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/aggregation"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/result"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error)
}

// Config names the index and how stored documents map to results.
type Config struct {
	Index      string
	KeyPrefix  string // stripped from document keys to form result IDs
	TitleField string
}

// Repo implements usecase/search.Repository and usecase/search.FacetSource.
type Repo struct {
	store    store
	cfg      Config
	duration *prometheus.HistogramVec
}

// New creates a search repository.
// duration is a histogram vec with labels "op" and "status", passed explicitly; may be nil.
func New(s store, cfg Config, duration *prometheus.HistogramVec) *Repo {
	return &Repo{store: s, cfg: cfg, duration: duration}
}

// Hits returns one page of matching documents and the total match count.
func (r *Repo) Hits(
	ctx context.Context, text string, filters filter.Expression, offset, limit int,
) (int, []result.Result, error) {
	start := time.Now()
	sr, err := r.store.Search(ctx, &db.SearchQuery{
		IndexName: r.cfg.Index,
		Text:      text,
		Filters:   filters,
		Offset:    offset,
		Limit:     limit,
	})
	r.observe("search", start, err)
	if err != nil {
		return 0, nil, r.wrap("search", err)
	}

	hits := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		hits = append(hits, r.toResult(entry))
	}
	return sr.Total, hits, nil
}

// Buckets returns the value counts of one facet category, most frequent first.
func (r *Repo) Buckets(
	ctx context.Context, text string, filters filter.Expression, category string, limit int,
) ([]aggregation.Bucket, error) {
	start := time.Now()
	ar, err := r.store.Aggregate(ctx, &db.AggregateQuery{
		IndexName: r.cfg.Index,
		Text:      text,
		Filters:   filters,
		GroupBy:   category,
		Limit:     limit,
	})
	r.observe("aggregate", start, err)
	if err != nil {
		return nil, r.wrap("aggregate "+category, err)
	}

	buckets := make([]aggregation.Bucket, 0, len(ar.Rows))
	for i, row := range ar.Rows {
		b, err := toBucket(category, row)
		if err != nil {
			return nil, fmt.Errorf("facet %s row %d: %w", category, i, err)
		}
		buckets = append(buckets, b)
	}
	return buckets, nil
}

func (r *Repo) toResult(entry db.SearchEntry) result.Result {
	id := strings.TrimPrefix(entry.Key, r.cfg.KeyPrefix)
	title := entry.Fields[r.cfg.TitleField]

	fields := make(map[string]string, len(entry.Fields))
	for k, v := range entry.Fields {
		if k == r.cfg.TitleField {
			continue
		}
		fields[k] = v
	}
	return result.New(id, title, fields)
}

// toBucket maps an aggregate row; a row without the group key or a usable count
// breaks the backend contract.
func toBucket(category string, row db.AggregateRow) (aggregation.Bucket, error) {
	key, ok := row[category]
	if !ok {
		return aggregation.Bucket{}, fmt.Errorf("%w: missing key", domain.ErrMalformedBucket)
	}
	raw, ok := row[db.CountField]
	if !ok {
		return aggregation.Bucket{}, fmt.Errorf("%w: missing %s for key %q", domain.ErrMalformedBucket, db.CountField, key)
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return aggregation.Bucket{}, fmt.Errorf("%w: %s %q for key %q", domain.ErrMalformedBucket, db.CountField, raw, key)
	}
	return aggregation.NewBucket(key, count)
}

func (r *Repo) wrap(op string, err error) error {
	if errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("%s %s: %w", op, r.cfg.Index, domain.ErrIndexNotFound)
	}
	return fmt.Errorf("%s %s: %w", op, r.cfg.Index, err)
}

func (r *Repo) observe(op string, start time.Time, err error) {
	if r.duration == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.duration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}
