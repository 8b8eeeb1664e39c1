// Package demand models the search demand of one request: the free-text
// query plus the active filter selections, and the literal filter state the
// browser submitted.
package demand

import (
	"sort"
	"strings"
)

// Filters maps a filter category to its set of selected values.
// Values are kept sorted and unique; categories never hold an empty set.
type Filters map[string][]string

// Has reports whether value is selected in category.
func (f Filters) Has(category, value string) bool {
	for _, v := range f[category] {
		if v == value {
			return true
		}
	}
	return false
}

// Categories returns the category names in sorted order.
func (f Filters) Categories() []string {
	out := make([]string, 0, len(f))
	for c := range f {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for c, values := range f {
		out[c] = append([]string(nil), values...)
	}
	return out
}

// Demand is an immutable snapshot of the current query and filters.
type Demand struct {
	query   string
	filters Filters
}

// New creates a Demand. Categories are canonicalized, duplicate and empty
// values are dropped; the caller's map is not retained.
func New(query string, filters map[string][]string) Demand {
	norm := make(Filters, len(filters))
	for category, values := range filters {
		c := CanonicalCategory(category)
		if c == "" {
			continue
		}
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			norm[c] = addValue(norm[c], v)
		}
	}
	return Demand{query: query, filters: norm}
}

// Query returns the free-text query unchanged.
func (d Demand) Query() string { return d.query }

// Filters returns a copy of the active filters.
func (d Demand) Filters() Filters { return d.filters.Clone() }

// IsEmpty reports whether neither a query nor a filter is set.
func (d Demand) IsEmpty() bool {
	return strings.TrimSpace(d.query) == "" && len(d.filters) == 0
}

// WithFilterValue returns a copy of the filters with value added to category.
// Adding a value that is already selected leaves the set unchanged.
func (d Demand) WithFilterValue(category, value string) Filters {
	out := d.filters.Clone()
	c := CanonicalCategory(category)
	out[c] = addValue(out[c], value)
	return out
}

// WithoutFilterValue returns a copy of the filters with value removed from
// category. A category left without values is dropped.
func (d Demand) WithoutFilterValue(category, value string) Filters {
	out := d.filters.Clone()
	c := CanonicalCategory(category)
	values, ok := out[c]
	if !ok {
		return out
	}
	kept := values[:0]
	for _, v := range values {
		if v != value {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		delete(out, c)
		return out
	}
	out[c] = kept
	return out
}

// CanonicalCategory folds a category name to its lower-cased, trimmed form.
// Facet category identity is case-insensitive.
func CanonicalCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// addValue inserts v into the sorted set values.
func addValue(values []string, v string) []string {
	i := sort.SearchStrings(values, v)
	if i < len(values) && values[i] == v {
		return values
	}
	values = append(values, "")
	copy(values[i+1:], values[i:])
	values[i] = v
	return values
}
