// Package view renders the server-side search pages and the facet, filter
// link and asset fragments they embed.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates
var templatesFS embed.FS

// Template names.
const (
	tmplFacetBucket = "extension/facet_bucket"
	tmplAssets      = "extension/assets"
	tmplSingleAsset = "extension/single_asset"

	// PageSearch is the full search page.
	PageSearch = "pages/search"
	// PageError is the error page.
	PageError = "pages/error"
)

// Renderer turns a named template and a view-model into markup.
type Renderer interface {
	Render(name string, data any) (template.HTML, error)
}

// Engine is an html/template set parsed once at startup.
// It is safe for concurrent use.
type Engine struct {
	tmpl *template.Template
}

var _ Renderer = (*Engine)(nil)

// NewFragmentEngine parses the fragment templates used by the template functions.
func NewFragmentEngine() (*Engine, error) {
	return newEngine(nil, "templates/extension/*.html")
}

// NewPageEngine parses the page templates with funcs available to them.
func NewPageEngine(funcs template.FuncMap) (*Engine, error) {
	return newEngine(funcs, "templates/pages/*.html")
}

func newEngine(funcs template.FuncMap, patterns ...string) (*Engine, error) {
	t := template.New("root")
	if funcs != nil {
		t = t.Funcs(funcs)
	}
	t, err := t.ParseFS(templatesFS, patterns...)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Engine{tmpl: t}, nil
}

// Render executes the named template into a buffer.
// Nothing is returned on failure, so callers never emit half a page.
func (e *Engine) Render(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // output of html/template is already escaped
}
