// Package catalog writes products and their FT index to the database.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/facetsearch/internal/db"
	"github.com/kailas-cloud/facetsearch/internal/domain/product"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/demand"
)

// tagSeparator keeps commas inside facet values; values are single-valued.
const tagSeparator = "|"

type store interface {
	db.IndexInspector
	db.IndexCreator
	db.HashWriter
}

// Config names the index and how products map onto hashes.
type Config struct {
	Index      string
	KeyPrefix  string
	TitleField string
	Facets     []string
}

// Repo is the write side of the search index.
type Repo struct {
	store store
	cfg   Config
}

// New creates a catalog repository.
func New(s store, cfg Config) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// EnsureIndex creates the index unless it exists. Reports whether it was created.
func (r *Repo) EnsureIndex(ctx context.Context) (bool, error) {
	exists, err := r.store.IndexExists(ctx, r.cfg.Index)
	if err != nil {
		return false, fmt.Errorf("check index: %w", err)
	}
	if exists {
		return false, nil
	}

	def := r.definition()
	if err := r.store.CreateIndex(ctx, &def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index: %w", err)
	}
	return true, nil
}

// definition indexes the title as text and every facet category as an exact,
// case-sensitive tag so aggregation keys round-trip into filter values.
func (r *Repo) definition() db.IndexDefinition {
	fields := []db.IndexField{{Name: r.cfg.TitleField, Type: db.IndexFieldText, Sortable: true}}
	for _, f := range r.cfg.Facets {
		fields = append(fields, db.IndexField{
			Name:             demand.CanonicalCategory(f),
			Type:             db.IndexFieldTag,
			TagSeparator:     tagSeparator,
			TagCaseSensitive: true,
		})
	}
	return db.IndexDefinition{
		Name:     r.cfg.Index,
		Prefixes: []string{r.cfg.KeyPrefix},
		Fields:   fields,
	}
}

// Put writes one batch of products as hashes under the key prefix.
func (r *Repo) Put(ctx context.Context, products []product.Product) error {
	items := make([]db.HashSetItem, 0, len(products))
	for i := range products {
		p := &products[i]
		fields := make(map[string]string, len(p.Attributes())+1)
		for k, v := range p.Attributes() {
			fields[k] = v
		}
		if p.Title() != "" {
			fields[r.cfg.TitleField] = p.Title()
		}
		if len(fields) == 0 {
			continue
		}
		items = append(items, db.HashSetItem{Key: r.cfg.KeyPrefix + p.ID(), Fields: fields})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("put %d products: %w", len(items), err)
	}
	return nil
}
