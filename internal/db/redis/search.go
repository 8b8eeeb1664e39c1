package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/facetsearch/internal/db"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/filter"
)

// Search runs a paginated FT.SEARCH combining free text and tag filters.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, errors.New("index name is required")
	}
	if q.Offset < 0 || q.Limit < 0 {
		return nil, errors.New("offset and limit must not be negative")
	}

	args := []string{q.IndexName, buildQuery(q.Text, q.Filters)}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseSearchResult(raw)
}

// Aggregate counts matching documents per value of q.GroupBy via FT.AGGREGATE,
// most frequent first.
func (s *Store) Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error) {
	if q.IndexName == "" {
		return nil, errors.New("index name is required")
	}
	if q.GroupBy == "" {
		return nil, errors.New("group by field is required")
	}
	if q.Limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	args := []string{
		q.IndexName, buildQuery(q.Text, q.Filters),
		"GROUPBY", "1", "@" + q.GroupBy,
		"REDUCE", "COUNT", "0", "AS", db.CountField,
		"SORTBY", "2", "@" + db.CountField, "DESC",
		"LIMIT", "0", strconv.Itoa(q.Limit),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	return parseAggregateResult(raw, q.GroupBy)
}

// --- Result parsing ---

func parseSearchResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, len(raw)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

// parseAggregateResult reads [total, row1, row2, ...] where each row is a flat
// field/value array. Groups whose key is null (documents without the field) are
// skipped; they are not a value anyone can filter on.
func parseAggregateResult(raw []rueidis.RedisMessage, groupBy string) (*db.AggregateResult, error) {
	if len(raw) == 0 {
		return &db.AggregateResult{}, nil
	}

	rows := make([]db.AggregateRow, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		pairs, err := raw[i].ToArray()
		if err != nil {
			return nil, fmt.Errorf("parse aggregate row %d: %w", i-1, err)
		}

		row := make(db.AggregateRow, len(pairs)/2)
		nullGroup := false
		for j := 0; j+1 < len(pairs); j += 2 {
			name, err := pairs[j].ToString()
			if err != nil {
				continue
			}
			if pairs[j+1].IsNil() {
				if name == groupBy {
					nullGroup = true
				}
				continue
			}
			value, err := pairs[j+1].ToString()
			if err != nil {
				continue
			}
			row[name] = value
		}
		if nullGroup {
			continue
		}
		rows = append(rows, row)
	}

	return &db.AggregateResult{Rows: rows}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query building ---

// buildQuery intersects the tag filters with the escaped free text.
// With neither, it matches every document.
func buildQuery(text string, expr filter.Expression) string {
	var parts []string
	if f := buildFilter(expr); f != "" {
		parts = append(parts, f)
	}
	if t := strings.TrimSpace(text); t != "" {
		parts = append(parts, "("+escapeQuery(t)+")")
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// buildFilter translates filter.Expression into FT query clauses:
// one tag clause per condition, values inside a clause OR-ed.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}

	parts := make([]string, 0, len(expr.Must()))
	for _, cond := range expr.Must() {
		if clause := buildTagFilter(cond.Key(), cond.Values()); clause != "" {
			parts = append(parts, clause)
		}
	}
	return strings.Join(parts, " ")
}

func buildTagFilter(key string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = tagEscaper.Replace(v)
	}
	return fmt.Sprintf("@%s:{%s}", key, strings.Join(escaped, " | "))
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)
