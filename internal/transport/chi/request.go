package chi

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/schema"

	"github.com/kailas-cloud/facetsearch/internal/domain"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/demand"
	"github.com/kailas-cloud/facetsearch/internal/route"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

// searchParams holds the scalar query parameters of the search page.
type searchParams struct {
	Query string `schema:"q"`
	Page  int    `schema:"page,default:1"`
}

// searchRequest is a decoded search page request.
type searchRequest struct {
	Demand demand.Demand
	Raw    demand.RawFilterState
	Page   int
}

// decodeSearchRequest reads q, page and filters[<category>][<value>] from the query.
// The filters are read twice: once into the demand (canonical categories, only
// checked values) and once into the raw state, exactly as submitted.
func decodeSearchRequest(query url.Values) (searchRequest, error) {
	var p searchParams
	if err := decoder.Decode(&p, query); err != nil {
		return searchRequest{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	selected := make(map[string][]string)
	raw := make(demand.RawFilterState)
	for key, values := range query {
		category, value, ok := parseFilterKey(key)
		if !ok || len(values) == 0 {
			continue
		}
		submitted := values[len(values)-1]
		raw.Set(category, value, submitted)
		if submitted == demand.CheckedValue {
			selected[category] = append(selected[category], value)
		}
	}

	return searchRequest{
		Demand: demand.New(p.Query, selected),
		Raw:    raw,
		Page:   p.Page,
	}, nil
}

// parseFilterKey splits "filters[<category>][<value>]". The value may itself
// contain brackets; the category ends at the first "][".
func parseFilterKey(key string) (category, value string, ok bool) {
	rest, found := strings.CutPrefix(key, route.ParamFilters+"[")
	if !found || !strings.HasSuffix(rest, "]") {
		return "", "", false
	}
	inner := rest[:len(rest)-1]
	category, value, found = strings.Cut(inner, "][")
	if !found || category == "" || value == "" {
		return "", "", false
	}
	return category, value, true
}
