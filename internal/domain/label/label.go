// Package label maps backend column names to human-readable filter labels.
package label

// Table is a read-only label table loaded once at startup.
type Table struct {
	labels map[string]string
}

// NewTable copies labels into a Table.
func NewTable(labels map[string]string) *Table {
	m := make(map[string]string, len(labels))
	for k, v := range labels {
		m[k] = v
	}
	return &Table{labels: m}
}

// Lookup returns the label for column, or column itself when none is configured.
func (t *Table) Lookup(column string) string {
	if l, ok := t.labels[column]; ok && l != "" {
		return l
	}
	return column
}
