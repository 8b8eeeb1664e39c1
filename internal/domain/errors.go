package domain

import "errors"

var (
	// ErrMalformedBucket signals an aggregation bucket without key or doc count.
	ErrMalformedBucket = errors.New("malformed aggregation bucket")
	// ErrIndexNotFound signals a missing search index.
	ErrIndexNotFound = errors.New("search index not found")
	// ErrInvalidRequest signals search parameters that cannot be decoded.
	ErrInvalidRequest = errors.New("invalid search request")
	// ErrInvalidProduct signals a catalog record that cannot be indexed.
	ErrInvalidProduct = errors.New("invalid product")
)
