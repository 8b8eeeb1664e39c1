package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/facetsearch/internal/domain"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/aggregation"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/demand"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/result"
)

// Config controls paging and which categories are faceted.
type Config struct {
	Facets    []string // rendered in this order
	FacetSize int
	PageSize  int
	MaxPage   int
}

// Outcome is everything the search page renders.
type Outcome struct {
	Page   result.Page
	Facets []aggregation.Facet
}

// Service runs faceted searches: hits for the full demand, and per-category
// buckets computed without that category's own filter.
type Service struct {
	repo   Repository
	facets FacetSource
	cfg    Config
	known  map[string]struct{}
}

// New creates a search service.
func New(repo Repository, facets FacetSource, cfg Config) *Service {
	canon := make([]string, 0, len(cfg.Facets))
	known := make(map[string]struct{}, len(cfg.Facets))
	for _, f := range cfg.Facets {
		c := demand.CanonicalCategory(f)
		if _, dup := known[c]; dup || c == "" {
			continue
		}
		known[c] = struct{}{}
		canon = append(canon, c)
	}
	cfg.Facets = canon
	return &Service{repo: repo, facets: facets, cfg: cfg, known: known}
}

// Search executes the demand and returns the requested page plus facets.
// page < 1 means the first page; pages past MaxPage are rejected.
func (s *Service) Search(ctx context.Context, d demand.Demand, page int) (Outcome, error) {
	if page < 1 {
		page = 1
	}
	if s.cfg.MaxPage > 0 && page > s.cfg.MaxPage {
		return Outcome{}, fmt.Errorf("%w: page %d exceeds %d", domain.ErrInvalidRequest, page, s.cfg.MaxPage)
	}

	// Only configured categories reach the backend; others stay in the demand
	// so links keep them, but they are not index fields.
	active := s.searchable(d.Filters())

	expr, err := filter.FromFilters(active)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	out := Outcome{
		Page:   result.Page{Number: page, Size: s.cfg.PageSize, Last: s.cfg.MaxPage},
		Facets: make([]aggregation.Facet, len(s.cfg.Facets)),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, hits, err := s.repo.Hits(gctx, d.Query(), expr, (page-1)*s.cfg.PageSize, s.cfg.PageSize)
		if err != nil {
			return fmt.Errorf("search hits: %w", err)
		}
		out.Page.Total = total
		out.Page.Hits = hits
		return nil
	})

	for i, category := range s.cfg.Facets {
		g.Go(func() error {
			facetExpr, err := filter.FromFilters(active, category)
			if err != nil {
				return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
			}
			buckets, err := s.facets.Buckets(gctx, d.Query(), facetExpr, category, s.cfg.FacetSize)
			if err != nil {
				return fmt.Errorf("facet %s: %w", category, err)
			}
			out.Facets[i] = aggregation.Facet{Category: category, Buckets: buckets}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// Facets returns the configured facet categories in render order.
func (s *Service) Facets() []string {
	return append([]string(nil), s.cfg.Facets...)
}

func (s *Service) searchable(f demand.Filters) demand.Filters {
	out := make(demand.Filters, len(f))
	for c, values := range f {
		if _, ok := s.known[c]; ok {
			out[c] = values
		}
	}
	return out
}
