package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingRouteSegments indicates the page route carried no path segments
	ErrMissingRouteSegments = errors.New("missing route segments")

	// ErrServiceUnavailable indicates a backing store or service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrIngestionFailed indicates the context indexer could not ingest a source
	ErrIngestionFailed = errors.New("ingestion failed")

	// ErrUnsupportedContent indicates a content source type the indexer cannot handle
	ErrUnsupportedContent = errors.New("unsupported content type")

	// ErrInvalidSessionPolicy indicates an unknown session derivation policy
	ErrInvalidSessionPolicy = errors.New("invalid session policy")
)
