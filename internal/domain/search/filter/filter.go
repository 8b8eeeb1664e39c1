package filter

import (
	"fmt"

	"github.com/kailas-cloud/facetsearch/internal/domain/search/demand"
)

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// MaxValuesPerCondition bounds the OR-list of a single tag condition.
const MaxValuesPerCondition = 64

// Expression is a conjunction of tag conditions.
type Expression struct {
	must []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must}, nil
}

// FromFilters builds an expression with one any-of condition per category.
// Categories listed in except are left out.
func FromFilters(f demand.Filters, except ...string) (Expression, error) {
	skip := make(map[string]struct{}, len(except))
	for _, c := range except {
		skip[demand.CanonicalCategory(c)] = struct{}{}
	}

	must := make([]Condition, 0, len(f))
	for _, category := range f.Categories() {
		if _, ok := skip[category]; ok {
			continue
		}
		c, err := NewAnyOf(category, f[category]...)
		if err != nil {
			return Expression{}, err
		}
		must = append(must, c)
	}
	return NewExpression(must)
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0
}

// Condition is a tag clause matching documents whose field holds any of the values.
type Condition struct {
	key   string
	anyOf []string
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	return NewAnyOf(key, match)
}

// NewAnyOf creates a tag condition matching any of values.
func NewAnyOf(key string, values ...string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	if len(values) > MaxValuesPerCondition {
		return Condition{}, fmt.Errorf("too many values for key %q (max %d)", key, MaxValuesPerCondition)
	}
	for _, v := range values {
		if v == "" {
			return Condition{}, fmt.Errorf("match value is required for key %q", key)
		}
	}
	return Condition{key: key, anyOf: append([]string(nil), values...)}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Values returns the accepted tag values.
func (c Condition) Values() []string { return c.anyOf }
