// Package apperr defines the error taxonomy shared across Raido.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFolder means the configured target folder does not exist in
	// the vault. It aborts the current sync cycle only.
	ErrMissingFolder = errors.New("target folder missing")

	// ErrMalformedHeader means a document's frontmatter block exists but
	// cannot be parsed. It aborts processing of that document only.
	ErrMalformedHeader = errors.New("malformed frontmatter header")
)

// FetchError reports a network or timeout failure for a single feed URL.
// It is contained to that feed; sibling feeds keep going.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports an unparsable feed payload. Same containment as
// FetchError.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse feed %s: %v", e.URL, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }
