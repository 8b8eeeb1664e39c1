package view

import (
	"html/template"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/facetsearch/internal/domain/search/aggregation"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/demand"
	"github.com/kailas-cloud/facetsearch/internal/route"
)

// bucketView is the view-model of the facet_bucket template.
type bucketView struct {
	ID       string
	Name     string
	Checked  bool
	Label    string
	DocCount int64
}

// FacetRenderer renders the self-submitting checkbox of one aggregation bucket.
type FacetRenderer struct {
	engine   Renderer
	rendered *prometheus.CounterVec
}

// NewFacetRenderer creates a FacetRenderer.
// rendered is a counter vec with label "outcome" ("ok"/"malformed"); it may be nil.
func NewFacetRenderer(engine Renderer, rendered *prometheus.CounterVec) *FacetRenderer {
	return &FacetRenderer{engine: engine, rendered: rendered}
}

// RenderBucket renders the checkbox for bucket b under category.
//
// The checked state comes from raw, the literal submitted form state, looked
// up under the lower-cased category. It is not derived from the search demand.
// A bucket without key or doc count fails with domain.ErrMalformedBucket.
func (r *FacetRenderer) RenderBucket(
	category string, index int, b aggregation.Bucket, raw demand.RawFilterState,
) (template.HTML, error) {
	if err := b.Validate(); err != nil {
		r.inc("malformed")
		return "", err
	}

	category = demand.CanonicalCategory(category)
	vm := bucketView{
		ID:       category + "-" + strconv.Itoa(index),
		Name:     route.FilterField(category, b.Key()),
		Checked:  raw.IsChecked(category, b.Key()),
		Label:    b.Label(),
		DocCount: b.DocCount(),
	}

	out, err := r.engine.Render(tmplFacetBucket, vm)
	if err != nil {
		return "", err
	}
	r.inc("ok")
	return out, nil
}

func (r *FacetRenderer) inc(outcome string) {
	if r.rendered != nil {
		r.rendered.WithLabelValues(outcome).Inc()
	}
}
