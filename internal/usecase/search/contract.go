package search

import (
	"context"

	"github.com/kailas-cloud/facetsearch/internal/domain/search/aggregation"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/result"
)

// Repository fetches pages of matching documents.
type Repository interface {
	Hits(
		ctx context.Context, text string, filters filter.Expression, offset, limit int,
	) (int, []result.Result, error)
}

// FacetSource computes the buckets of one facet category.
type FacetSource interface {
	Buckets(
		ctx context.Context, text string, filters filter.Expression, category string, limit int,
	) ([]aggregation.Bucket, error)
}
