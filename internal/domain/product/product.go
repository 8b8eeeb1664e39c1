// Package product is the catalog entry written to the search index.
package product

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/facetsearch/internal/domain"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/demand"
)

// Product is one indexed catalog document.
type Product struct {
	id         string
	title      string
	attributes map[string]string
}

// New validates and creates a product. Attribute names are folded the same way
// facet categories are, so filters address them case-insensitively.
func New(id, title string, attributes map[string]string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, fmt.Errorf("%w: id is required", domain.ErrInvalidProduct)
	}
	if strings.ContainsAny(id, " \t\r\n") {
		return Product{}, fmt.Errorf("%w: id %q contains whitespace", domain.ErrInvalidProduct, id)
	}

	attrs := make(map[string]string, len(attributes))
	for k, v := range attributes {
		name := demand.CanonicalCategory(k)
		if name == "" {
			return Product{}, fmt.Errorf("%w: %s: empty attribute name", domain.ErrInvalidProduct, id)
		}
		if _, dup := attrs[name]; dup {
			return Product{}, fmt.Errorf("%w: %s: duplicate attribute %q", domain.ErrInvalidProduct, id, name)
		}
		attrs[name] = strings.TrimSpace(v)
	}

	return Product{id: id, title: strings.TrimSpace(title), attributes: attrs}, nil
}

// ID returns the product identifier.
func (p *Product) ID() string { return p.id }

// Title returns the display title.
func (p *Product) Title() string { return p.title }

// Attributes returns the facetable and displayed fields.
func (p *Product) Attributes() map[string]string { return p.attributes }
