package view

import (
	"html/template"

	"github.com/kailas-cloud/facetsearch/internal/domain/search/aggregation"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/demand"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/result"
)

// Extension bundles the helpers exposed to page templates.
// Per-request inputs (demand, raw filter state) reach them as template
// arguments, never through shared state.
type Extension struct {
	facets *FacetRenderer
	links  *LinkBuilder
	labels LabelBridge
	assets *AssetRenderer
}

// NewExtension creates an Extension.
func NewExtension(facets *FacetRenderer, links *LinkBuilder, labels LabelBridge, assets *AssetRenderer) *Extension {
	return &Extension{facets: facets, links: links, labels: labels, assets: assets}
}

// Funcs returns the template functions of the page templates.
func (e *Extension) Funcs() template.FuncMap {
	return template.FuncMap{
		"renderAssets":      e.assets.RenderAssets,
		"renderSingleAsset": e.assets.RenderSingleAsset,
		"facetBucket":       e.facets.RenderBucket,
		"linkAdding": func(d demand.Demand, category, value string, preserveQuery ...bool) (string, error) {
			return e.links.LinkAdding(d, category, value, firstOr(preserveQuery, false))
		},
		"linkRemoving": func(d demand.Demand, category, value string, preserveQuery ...bool) (string, error) {
			return e.links.LinkRemoving(d, category, value, firstOr(preserveQuery, false))
		},
		"filterLabel": e.labels.LabelFor,
	}
}

func firstOr(v []bool, def bool) bool {
	if len(v) == 0 {
		return def
	}
	return v[0]
}

// SearchPage is the view-model of the search page.
type SearchPage struct {
	ActionURL string
	Demand    demand.Demand
	Raw       demand.RawFilterState
	Result    result.Page
	Facets    []aggregation.Facet
	PrevURL   string
	NextURL   string
}

// ErrorPage is the view-model of the error page.
type ErrorPage struct {
	Status    int
	Message   string
	RequestID string
}
