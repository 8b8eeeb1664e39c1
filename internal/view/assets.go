package view

import (
	"html/template"

	"github.com/kailas-cloud/facetsearch/internal/domain/asset"
)

// AssetLookup returns the configured assets of a type at a page location.
type AssetLookup interface {
	Lookup(assetType, location string) []asset.Descriptor
}

// assetView is the view-model of the single_asset template.
type assetView struct {
	Type      string
	URL       string
	Integrity string
	Defer     bool
	External  bool
}

// AssetRenderer renders <link> and <script> includes.
type AssetRenderer struct {
	engine  Renderer
	assets  AssetLookup
	baseURL string
}

// NewAssetRenderer creates an AssetRenderer. Local asset URLs are resolved against baseURL.
func NewAssetRenderer(engine Renderer, assets AssetLookup, baseURL string) *AssetRenderer {
	return &AssetRenderer{engine: engine, assets: assets, baseURL: baseURL}
}

// RenderAssets renders every asset configured for assetType at location
// (asset.DefaultLocation when omitted). Nothing configured renders nothing.
func (r *AssetRenderer) RenderAssets(assetType string, location ...string) (template.HTML, error) {
	loc := asset.DefaultLocation
	if len(location) > 0 && location[0] != "" {
		loc = location[0]
	}

	descs := r.assets.Lookup(assetType, loc)
	items := make([]assetView, 0, len(descs))
	for _, d := range descs {
		items = append(items, r.viewOf(assetType, d))
	}
	return r.engine.Render(tmplAssets, items)
}

// RenderSingleAsset renders one include for url.
func (r *AssetRenderer) RenderSingleAsset(url, assetType string) (template.HTML, error) {
	return r.engine.Render(tmplSingleAsset, r.viewOf(assetType, asset.Descriptor{URL: url}))
}

func (r *AssetRenderer) viewOf(assetType string, d asset.Descriptor) assetView {
	return assetView{
		Type:      assetType,
		URL:       asset.Resolve(r.baseURL, d.URL),
		Integrity: d.Integrity,
		Defer:     d.Defer,
		External:  asset.IsExternal(d.URL),
	}
}
