package db

import (
	"errors"
	"fmt"
)

// IndexFieldType enumerates the FT schema field types the catalog uses.
type IndexFieldType int

const (
	// IndexFieldTag is an exact-match field; facets are built from these.
	IndexFieldTag IndexFieldType = iota
	// IndexFieldText is a full-text field.
	IndexFieldText
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric
)

// IndexField describes a single field in an FT index schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	// TAG options
	TagSeparator     string
	TagCaseSensitive bool

	// Sortable fields can be used by SORTBY without loading the document.
	Sortable bool
}

// IndexDefinition is an FT index over hashes sharing a key prefix.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if !IsValidIdentifier(idx.Name) {
		return fmt.Errorf("invalid index name %q", idx.Name)
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i, f := range idx.Fields {
		if f.Name == "" {
			return fmt.Errorf("field name is required at index %d", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field name: %s", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
