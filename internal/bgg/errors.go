package bgg

import "errors"

// Import failures. Callers test with errors.Is.
var (
	// ErrInvalidURL means the input is not a BoardGameGeek game page. Not retryable.
	ErrInvalidURL = errors.New("invalid BoardGameGeek URL")

	// ErrUpstreamFetch means the XML API could not be reached or answered with an error.
	ErrUpstreamFetch = errors.New("failed to fetch game from BoardGameGeek")

	// ErrPersistence means the store rejected the new row.
	ErrPersistence = errors.New("failed to save game")
)
