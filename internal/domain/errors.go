package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the search pipeline. These four are the only error
// shapes that cross the orchestrator boundary; the transport layer maps each
// to a distinct caller-facing code so the UI can render "search is down"
// differently from "no protocols matched".
var (
	// ErrInvalidInput signals an unparseable query.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyInput signals an empty text passed to the embedder. It wraps
	// ErrInvalidInput so it maps to the same caller-facing code.
	ErrEmptyInput = fmt.Errorf("%w: empty text", ErrInvalidInput)
	// ErrProviderUnavailable signals an embedding provider failure after retries.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
	// ErrRetrievalFailed signals a vector store failure after retry.
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrTimeout signals an exceeded request deadline.
	ErrTimeout = errors.New("search deadline exceeded")
)
