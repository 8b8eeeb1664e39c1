// Package asset describes CSS and JavaScript includes configured per page location.
package asset

import (
	"net/url"
	"strings"
)

// Asset types understood by the include templates.
const (
	TypeCSS = "css"
	TypeJS  = "js"
)

// DefaultLocation is used when a template does not name a location.
const DefaultLocation = "header"

// Descriptor is one configured asset include.
type Descriptor struct {
	URL       string `yaml:"url"`
	Integrity string `yaml:"integrity"`
	Defer     bool   `yaml:"defer"`
}

// IsExternal reports whether url is absolute (scheme and host present).
func IsExternal(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Resolve returns rawURL unchanged when external, otherwise joined onto base.
func Resolve(base, rawURL string) string {
	if IsExternal(rawURL) || base == "" {
		return rawURL
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(rawURL, "/")
}

// Catalog maps asset type -> location -> ordered descriptors.
type Catalog map[string]map[string][]Descriptor

// Lookup returns the descriptors for (assetType, location), or nil if absent.
func (c Catalog) Lookup(assetType, location string) []Descriptor {
	if location == "" {
		location = DefaultLocation
	}
	return c[assetType][location]
}
