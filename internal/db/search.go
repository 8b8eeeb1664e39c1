package db

import "github.com/kailas-cloud/facetsearch/internal/domain/search/filter"

// SearchQuery is the input for a paginated FT.SEARCH.
type SearchQuery struct {
	IndexName    string
	Text         string // free text, escaped by the driver; empty matches all
	Filters      filter.Expression
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}

// CountField is the alias the COUNT reducer is stored under in aggregate rows.
const CountField = "doc_count"

// AggregateQuery groups matching documents by one field and counts each group.
type AggregateQuery struct {
	IndexName string
	Text      string
	Filters   filter.Expression
	GroupBy   string
	Limit     int
}

// AggregateResult holds one row per group, ordered by count descending.
type AggregateResult struct {
	Rows []AggregateRow
}

// AggregateRow is a flat field map as returned by FT.AGGREGATE: the group field
// and CountField. A row may lack either when the backend misbehaves.
type AggregateRow map[string]string
