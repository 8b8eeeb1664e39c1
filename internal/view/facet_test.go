package view

import (
	"errors"
	"html/template"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/facetsearch/internal/domain"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/aggregation"
	"github.com/kailas-cloud/facetsearch/internal/domain/search/demand"
)

func newTestFragments(t *testing.T) *Engine {
	t.Helper()
	e, err := NewFragmentEngine()
	if err != nil {
		t.Fatalf("NewFragmentEngine: %v", err)
	}
	return e
}

func mustBucket(t *testing.T, key string, count int64) aggregation.Bucket {
	t.Helper()
	b, err := aggregation.NewBucket(key, count)
	if err != nil {
		t.Fatalf("NewBucket: %v", err)
	}
	return b
}

func newRenderCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_rendered_total"}, []string{"outcome"})
}

func TestRenderBucket_CheckedFromRawState(t *testing.T) {
	r := NewFacetRenderer(newTestFragments(t), nil)
	raw := demand.RawFilterState{"brand": {"acme": "true"}}

	out, err := r.RenderBucket("Brand", 0, mustBucket(t, "acme", 7), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	html := string(out)

	for _, want := range []string{
		` checked`,
		`name="filters[brand][acme]"`,
		`id="brand-0"`,
		`for="brand-0"`,
		`value="true"`,
		`onchange="this.form.submit()"`,
		`<span class="custom-control-label-title">acme</span>`,
		`<span class="custom-control-label-count">(7)</span>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q:\n%s", want, html)
		}
	}
}

func TestRenderBucket_Unchecked(t *testing.T) {
	r := NewFacetRenderer(newTestFragments(t), nil)

	tests := []struct {
		name string
		raw  demand.RawFilterState
	}{
		{"no state", nil},
		{"other value", demand.RawFilterState{"brand": {"globex": "true"}}},
		{"not literal true", demand.RawFilterState{"brand": {"acme": "1"}}},
		{"submitted under mixed case", demand.RawFilterState{"Brand": {"acme": "true"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.RenderBucket("brand", 2, mustBucket(t, "acme", 1), tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Contains(string(out), "checked") {
				t.Errorf("expected unchecked:\n%s", out)
			}
		})
	}
}

func TestRenderBucket_LabelFallback(t *testing.T) {
	r := NewFacetRenderer(newTestFragments(t), nil)

	out, err := r.RenderBucket("size", 0, mustBucket(t, "42", 3), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), `<span class="custom-control-label-title">42</span>`) {
		t.Errorf("expected key as label:\n%s", out)
	}

	display := mustBucket(t, "1700000000", 2).WithKeyAsString("2023-11-14")
	out, err = r.RenderBucket("date", 1, display, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), ">2023-11-14</span>") {
		t.Errorf("expected key_as_string label:\n%s", out)
	}
	if !strings.Contains(string(out), `name="filters[date][1700000000]"`) {
		t.Errorf("field name must use the machine key:\n%s", out)
	}
}

func TestRenderBucket_EscapesValues(t *testing.T) {
	r := NewFacetRenderer(newTestFragments(t), nil)

	out, err := r.RenderBucket("brand", 0, mustBucket(t, `<b>"x"`, 1), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(out), "<b>") {
		t.Errorf("unescaped markup in output:\n%s", out)
	}
}

func TestRenderBucket_Malformed(t *testing.T) {
	counter := newRenderCounter()
	r := NewFacetRenderer(newTestFragments(t), counter)

	_, err := r.RenderBucket("brand", 0, aggregation.Bucket{}, nil)
	if !errors.Is(err, domain.ErrMalformedBucket) {
		t.Fatalf("expected ErrMalformedBucket, got %v", err)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("malformed")); v != 1 {
		t.Errorf("malformed counter = %f", v)
	}
}

func TestRenderBucket_CountsRendered(t *testing.T) {
	counter := newRenderCounter()
	r := NewFacetRenderer(newTestFragments(t), counter)

	for i := range 3 {
		if _, err := r.RenderBucket("brand", i, mustBucket(t, "acme", 1), nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("ok")); v != 3 {
		t.Errorf("ok counter = %f", v)
	}
}

type failingRenderer struct{ err error }

func (f failingRenderer) Render(string, any) (template.HTML, error) { return "", f.err }

func TestRenderBucket_EngineError(t *testing.T) {
	boom := errors.New("boom")
	r := NewFacetRenderer(failingRenderer{err: boom}, nil)

	_, err := r.RenderBucket("brand", 0, mustBucket(t, "acme", 1), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected engine error, got %v", err)
	}
}
