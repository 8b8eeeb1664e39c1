package ingest

import (
	"context"

	"github.com/kailas-cloud/facetsearch/internal/domain/product"
)

// Catalog is the write side of the search index.
type Catalog interface {
	EnsureIndex(ctx context.Context) (bool, error)
	Put(ctx context.Context, products []product.Product) error
}
