// Package route holds the named routes of the site and builds URLs for them.
package route

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/kailas-cloud/facetsearch/internal/domain/search/demand"
)

// Search is the route name of the filtered search page.
const Search = "search"

// Query parameter names shared by URL generation and request decoding.
const (
	ParamQuery   = "q"
	ParamPage    = "page"
	ParamFilters = "filters"
)

// ErrRouteNotFound signals a URL requested for an unregistered route name.
var ErrRouteNotFound = errors.New("route not found")

// Params is the parameter bag of a search URL.
// A nil Query omits the q parameter entirely.
type Params struct {
	Filters demand.Filters
	Query   *string
	Page    int
}

// Generator builds a URL for a named route.
type Generator interface {
	Generate(name string, params Params) (string, error)
}

// Registry maps route names to paths. It is filled at startup and read-only afterwards.
type Registry struct {
	paths map[string]string
}

var _ Generator = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{paths: make(map[string]string)}
}

// Register binds name to path and returns the path for use with the router.
func (r *Registry) Register(name, path string) string {
	r.paths[name] = path
	return path
}

// Path returns the registered path of name.
func (r *Registry) Path(name string) (string, bool) {
	p, ok := r.paths[name]
	return p, ok
}

// Generate returns the path of name with params encoded as a sorted query string.
func (r *Registry) Generate(name string, params Params) (string, error) {
	path, ok := r.paths[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrRouteNotFound, name)
	}
	qs := Encode(params).Encode()
	if qs == "" {
		return path, nil
	}
	return path + "?" + qs, nil
}

// Encode converts params to url.Values: filters[category][value]=true per selection.
func Encode(params Params) url.Values {
	v := url.Values{}
	for _, category := range params.Filters.Categories() {
		for _, value := range params.Filters[category] {
			v.Set(FilterField(category, value), demand.CheckedValue)
		}
	}
	if params.Query != nil {
		v.Set(ParamQuery, *params.Query)
	}
	if params.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(params.Page))
	}
	return v
}

// FilterField returns the form field name of a facet checkbox.
func FilterField(category, value string) string {
	return ParamFilters + "[" + category + "][" + value + "]"
}
