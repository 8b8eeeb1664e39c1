package view

import (
	"github.com/kailas-cloud/facetsearch/internal/domain/search/demand"
	"github.com/kailas-cloud/facetsearch/internal/route"
)

// LinkBuilder builds the hrefs that toggle one filter value on the search page.
type LinkBuilder struct {
	urls route.Generator
}

// NewLinkBuilder creates a LinkBuilder over a URL generator.
func NewLinkBuilder(urls route.Generator) *LinkBuilder {
	return &LinkBuilder{urls: urls}
}

// LinkAdding returns the search URL with value added to category.
// The free-text query is dropped unless preserveQuery is set.
// Route resolution errors are returned unchanged.
func (b *LinkBuilder) LinkAdding(d demand.Demand, category, value string, preserveQuery bool) (string, error) {
	return b.link(d, d.WithFilterValue(category, value), preserveQuery, 0)
}

// LinkRemoving returns the search URL with value removed from category.
// The free-text query is dropped unless preserveQuery is set.
// Route resolution errors are returned unchanged.
func (b *LinkBuilder) LinkRemoving(d demand.Demand, category, value string, preserveQuery bool) (string, error) {
	return b.link(d, d.WithoutFilterValue(category, value), preserveQuery, 0)
}

// PageLink returns the search URL for page n of the current demand.
// The query is kept when there is one.
func (b *LinkBuilder) PageLink(d demand.Demand, n int) (string, error) {
	return b.link(d, d.Filters(), d.Query() != "", n)
}

func (b *LinkBuilder) link(d demand.Demand, filters demand.Filters, preserveQuery bool, page int) (string, error) {
	params := route.Params{Filters: filters, Page: page}
	if preserveQuery {
		q := d.Query()
		params.Query = &q
	}
	return b.urls.Generate(route.Search, params)
}
