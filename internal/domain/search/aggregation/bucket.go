// Package aggregation holds facet buckets produced by the search backend.
package aggregation

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/facetsearch/internal/domain"
)

// Bucket is one distinct value of a facet plus the number of matching documents.
// The zero Bucket is invalid: it stands for a backend row lacking key or count.
type Bucket struct {
	key         string
	keyAsString string
	hasDisplay  bool
	docCount    int64
	valid       bool
}

// NewBucket validates and creates a Bucket.
func NewBucket(key string, docCount int64) (Bucket, error) {
	if docCount < 0 {
		return Bucket{}, fmt.Errorf("%w: negative doc_count %d for key %q", domain.ErrMalformedBucket, docCount, key)
	}
	return Bucket{key: key, docCount: docCount, valid: true}, nil
}

// WithKeyAsString returns a copy carrying a display form of the key.
func (b Bucket) WithKeyAsString(s string) Bucket {
	b.keyAsString = s
	b.hasDisplay = true
	return b
}

// Key returns the machine value of the bucket.
func (b Bucket) Key() string { return b.key }

// KeyAsString returns the display form of the key, if the backend sent one.
func (b Bucket) KeyAsString() (string, bool) { return b.keyAsString, b.hasDisplay }

// DocCount returns the number of matching documents.
func (b Bucket) DocCount() int64 { return b.docCount }

// Label returns the display form of the key, falling back to the key itself.
func (b Bucket) Label() string {
	if b.hasDisplay {
		return b.keyAsString
	}
	return b.key
}

// Validate reports ErrMalformedBucket for buckets not built via NewBucket.
func (b Bucket) Validate() error {
	if !b.valid {
		return fmt.Errorf("%w: missing key or doc_count", domain.ErrMalformedBucket)
	}
	return nil
}

type bucketJSON struct {
	Key         *string `json:"key"`
	KeyAsString *string `json:"key_as_string,omitempty"`
	DocCount    *int64  `json:"doc_count"`
}

// MarshalJSON encodes the bucket in the key/key_as_string/doc_count shape.
func (b Bucket) MarshalJSON() ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	out := bucketJSON{Key: &b.key, DocCount: &b.docCount}
	if b.hasDisplay {
		out.KeyAsString = &b.keyAsString
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a bucket, rejecting payloads without key or doc_count.
func (b *Bucket) UnmarshalJSON(data []byte) error {
	var in bucketJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decode bucket: %w", err)
	}
	if in.Key == nil || in.DocCount == nil {
		return fmt.Errorf("%w: missing key or doc_count", domain.ErrMalformedBucket)
	}
	nb, err := NewBucket(*in.Key, *in.DocCount)
	if err != nil {
		return err
	}
	if in.KeyAsString != nil {
		nb = nb.WithKeyAsString(*in.KeyAsString)
	}
	*b = nb
	return nil
}

// Facet is the bucket list of one filter category.
type Facet struct {
	Category string   `json:"category"`
	Buckets  []Bucket `json:"buckets"`
}

// IsEmpty reports whether the facet has no buckets to render.
func (f Facet) IsEmpty() bool { return len(f.Buckets) == 0 }
